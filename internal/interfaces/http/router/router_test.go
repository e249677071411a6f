package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devplan-ai-api/internal/application/document"
	"devplan-ai-api/internal/application/draft"
	"devplan-ai-api/internal/application/wizard"
	"devplan-ai-api/internal/config"
	"devplan-ai-api/internal/domain/entity"
	"devplan-ai-api/internal/domain/repository"
	"devplan-ai-api/internal/infrastructure/llm"
	"devplan-ai-api/internal/interfaces/http/handler"
)

// stubCompleter 按操作返回固定回复
type stubCompleter struct{}

func (stubCompleter) CheckConfigured(llm.Operation) error { return nil }

func (stubCompleter) Complete(_ context.Context, op llm.Operation, _ []*schema.Message, _ llm.Options) (*llm.Completion, error) {
	var content string
	switch op {
	case llm.OpClarification:
		content = `[{"question":"目标用户是谁？","required":true}]`
	case llm.OpFeatures:
		content = `[{"name":"记账","priority":"high"}]`
	case llm.OpTechStack:
		content = `[{"name":"Go","category":"后端"}]`
	default:
		content = "# 文档\n\n内容"
	}
	return &llm.Completion{Content: content, Provider: "stub", Model: "stub", Attempts: 1}, nil
}

type memProjects struct {
	mu    sync.Mutex
	saved []*entity.ProjectSummary
}

func (m *memProjects) Save(_ context.Context, _ string, d *entity.ProjectDraft) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := fmt.Sprintf("p%d", len(m.saved)+1)
	m.saved = append(m.saved, &entity.ProjectSummary{ID: id, Name: d.Name, Type: d.Type})
	return id, nil
}

func (m *memProjects) List(_ context.Context, _ string, p repository.Pagination) (*repository.PagedResult[*entity.ProjectSummary], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return repository.NewPagedResult(m.saved, int64(len(m.saved)), p), nil
}

func newTestRouter(t *testing.T) (*Router, *wizard.Controller) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg, err := config.LoadFrom(t.TempDir())
	require.NoError(t, err)
	cfg.Security.Auth.Enabled = false
	cfg.Security.Auth.DefaultUserID = "u1"
	cfg.Observability.Metrics.Enabled = false

	ctrl := wizard.NewController(draft.NewManager(nil, "test"), stubCompleter{}, nil, &memProjects{}, wizard.Settings{})
	t.Cleanup(ctrl.Wait)

	handlers := &RouterHandlers{
		Health:  handler.NewHealthHandler(nil, nil),
		Wizard:  handler.NewWizardHandler(ctrl, document.NewAssembler()),
		Project: handler.NewProjectHandler(ctrl),
	}
	return NewWithDeps(cfg, handlers, nil), ctrl
}

func call(t *testing.T, r *Router, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.Engine().ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func step(body map[string]any) string {
	return body["data"].(map[string]any)["draft"].(map[string]any)["step"].(string)
}

func TestWizardFlowOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)

	code, _ := call(t, r, http.MethodPost, "/v1/wizard/advance", "")
	assert.Equal(t, http.StatusUnprocessableEntity, code, "empty basics must be refused")

	code, _ = call(t, r, http.MethodPatch, "/v1/wizard/draft",
		`{"name":"家庭记账本","description":"需要实时聊天和支付功能","type":"web应用"}`)
	require.Equal(t, http.StatusOK, code)

	code, body := call(t, r, http.MethodPost, "/v1/wizard/advance", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, string(entity.StepToolSelection), step(body))

	code, _ = call(t, r, http.MethodPost, "/v1/wizard/recommendations/apply", `{"category":"models"}`)
	require.Equal(t, http.StatusOK, code)

	code, body = call(t, r, http.MethodPost, "/v1/wizard/advance", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, string(entity.StepClarification), step(body))

	code, _ = call(t, r, http.MethodPatch, "/v1/wizard/draft", `{"answers":{"q1":"家庭用户"}}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = call(t, r, http.MethodPost, "/v1/wizard/advance", "")
	require.Equal(t, http.StatusOK, code)

	code, _ = call(t, r, http.MethodPatch, "/v1/wizard/draft", `{"selectedDocumentTypes":["prd"]}`)
	require.Equal(t, http.StatusOK, code)
	code, body = call(t, r, http.MethodPost, "/v1/wizard/advance", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, string(entity.StepGeneration), step(body))

	require.Eventually(t, func() bool {
		_, body := call(t, r, http.MethodGet, "/v1/wizard/status", "")
		return body["data"].(map[string]any)["status"].(map[string]any)["generationComplete"] == true
	}, 2*time.Second, 10*time.Millisecond)

	code, _ = call(t, r, http.MethodPost, "/v1/wizard/advance", "")
	require.Equal(t, http.StatusOK, code)

	code, body = call(t, r, http.MethodPost, "/v1/wizard/submit", "")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "p1", body["data"].(map[string]any)["projectId"])

	code, body = call(t, r, http.MethodGet, "/v1/projects", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"].(map[string]any)["projects"], 1)

	code, body = call(t, r, http.MethodGet, "/v1/wizard", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, string(entity.StepBasics), step(body), "submit resets the draft")
}

func TestForceStepDisabledByDefault(t *testing.T) {
	r, _ := newTestRouter(t)
	code, _ := call(t, r, http.MethodPost, "/v1/wizard/force", `{"step":"generation"}`)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestHealthEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)
	for _, path := range []string{"/health", "/live", "/ready"} {
		code, _ := call(t, r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, code, path)
	}
}
