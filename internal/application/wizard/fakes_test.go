package wizard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"

	"devplan-ai-api/internal/application/draft"
	"devplan-ai-api/internal/domain/entity"
	"devplan-ai-api/internal/domain/repository"
	"devplan-ai-api/internal/infrastructure/llm"
)

const (
	clarificationReply = "好的，问题如下：\n```json\n[{\"question\":\"目标用户是谁？\",\"required\":true},{\"question\":\"预算多少？\",\"required\":\"false\"}]\n```"
	featuresReply      = `[{"name":"登录","priority":"high"},{"name":"记账"}]`
	techReply          = `[{"name":"Go","category":"后端"}]`
)

type scripted struct {
	content string
	err     error
}

// fakeLLM 按操作返回预设内容，文档按名称区分
type fakeLLM struct {
	mu            sync.Mutex
	calls         map[llm.Operation]int
	docCalls      map[string]int
	notConfigured map[llm.Operation]bool
	opErr         map[llm.Operation]error
	docScript     map[string][]scripted
	docGates      map[string]chan struct{}
	clarGate      chan struct{}
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{
		calls:         map[llm.Operation]int{},
		docCalls:      map[string]int{},
		notConfigured: map[llm.Operation]bool{},
		opErr:         map[llm.Operation]error{},
		docScript:     map[string][]scripted{},
		docGates:      map[string]chan struct{}{},
	}
}

func (f *fakeLLM) CheckConfigured(op llm.Operation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notConfigured[op] {
		return llm.ErrNotConfigured
	}
	return nil
}

func (f *fakeLLM) Complete(ctx context.Context, op llm.Operation, msgs []*schema.Message, _ llm.Options) (*llm.Completion, error) {
	f.mu.Lock()
	f.calls[op]++
	opErr := f.opErr[op]
	clarGate := f.clarGate
	f.mu.Unlock()

	if opErr != nil {
		return nil, opErr
	}

	var content string
	switch op {
	case llm.OpClarification:
		if clarGate != nil {
			<-clarGate
		}
		content = clarificationReply
	case llm.OpFeatures:
		content = featuresReply
	case llm.OpTechStack:
		content = techReply
	case llm.OpDocument:
		return f.document(ctx, msgs)
	}
	return &llm.Completion{Content: content, Provider: "fake", Model: "fake-model", Attempts: 1}, nil
}

func (f *fakeLLM) document(ctx context.Context, msgs []*schema.Message) (*llm.Completion, error) {
	docType := ""
	for _, dt := range entity.DocumentTypes() {
		if strings.Contains(msgs[0].Content, dt.Name) {
			docType = dt.ID
		}
	}

	f.mu.Lock()
	n := f.docCalls[docType]
	f.docCalls[docType]++
	gate := f.docGates[docType]
	script := f.docScript[docType]
	f.mu.Unlock()

	if gate != nil && n == 0 {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if n < len(script) {
		if script[n].err != nil {
			return nil, script[n].err
		}
		return &llm.Completion{Content: script[n].content, Model: "fake-model"}, nil
	}
	return &llm.Completion{Content: "# " + docType + "\n\n正文", Model: "fake-model"}, nil
}

func (f *fakeLLM) count(op llm.Operation) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeLLM) docCount(docType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docCalls[docType]
}

var errExhausted = &llm.Failure{Operation: llm.OpDocument, Attempts: 2, LastModel: "deepseek:b", Err: errors.New("status 503")}

type memProjects struct {
	mu    sync.Mutex
	saved map[string]*entity.ProjectDraft
	err   error
}

func (m *memProjects) Save(_ context.Context, userID string, d *entity.ProjectDraft) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if m.saved == nil {
		m.saved = map[string]*entity.ProjectDraft{}
	}
	m.saved[userID] = d
	return "project-1", nil
}

func (m *memProjects) List(_ context.Context, userID string, p repository.Pagination) (*repository.PagedResult[*entity.ProjectSummary], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []*entity.ProjectSummary
	if d, ok := m.saved[userID]; ok {
		items = append(items, &entity.ProjectSummary{ID: "project-1", Name: d.Name, Type: d.Type})
	}
	return repository.NewPagedResult(items, int64(len(items)), p), nil
}

func newTestController(f *fakeLLM, settings Settings) (*Controller, *memProjects) {
	projects := &memProjects{}
	if settings.GenerationConcurrency == 0 {
		settings.GenerationConcurrency = 3
	}
	return NewController(draft.NewManager(nil, "test"), f, nil, projects, settings), projects
}

const user = "user-1"

func fillBasics(t *testing.T, c *Controller) {
	t.Helper()
	_, err := c.Edit(context.Background(), user, Edit{
		Name:        draft.Set("家庭记账本"),
		Description: draft.Set("需要实时聊天和支付功能"),
		Type:        draft.Set(entity.ProjectTypeWeb),
	})
	require.NoError(t, err)
}

// toDocumentSelection 推进到文档类型选择步骤
func toDocumentSelection(t *testing.T, c *Controller) {
	t.Helper()
	ctx := context.Background()
	fillBasics(t, c)
	_, err := c.Advance(ctx, user)
	require.NoError(t, err)
	_, err = c.Edit(ctx, user, Edit{SelectedModels: draft.Set([]string{"gpt-4o"})})
	require.NoError(t, err)
	_, err = c.Advance(ctx, user)
	require.NoError(t, err)
	_, err = c.Edit(ctx, user, Edit{Answers: map[string]string{"q1": "家庭用户"}})
	require.NoError(t, err)
	_, err = c.Advance(ctx, user)
	require.NoError(t, err)
}

func docOf(t *testing.T, c *Controller, docType string) entity.GeneratedDocument {
	t.Helper()
	v, err := c.State(context.Background(), user)
	require.NoError(t, err)
	doc, ok := v.Draft.Document(docType)
	require.True(t, ok, "document %s missing", docType)
	return doc
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}
