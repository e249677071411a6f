package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "devplan-ai-api/pkg/errors"
	"devplan-ai-api/pkg/metrics"
	"devplan-ai-api/pkg/utils"
)

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(handlers...)
	e.GET("/v1/wizard", func(c *gin.Context) {
		uid, _ := CurrentUserID(c)
		c.String(http.StatusOK, uid)
	})
	e.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return e
}

func get(e *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestAuth_JWT(t *testing.T) {
	cfg := AuthConfig{Secret: "secret", Issuer: "devplan", Enabled: true, SkipPaths: DefaultSkipPaths}
	e := newEngine(Auth(cfg))
	jwtManager := utils.NewJWTManager("secret", "devplan")

	access, err := jwtManager.GenerateToken("user-42", "access", time.Hour)
	require.NoError(t, err)
	refresh, err := jwtManager.GenerateToken("user-42", "refresh", time.Hour)
	require.NoError(t, err)
	expired, err := jwtManager.GenerateToken("user-42", "access", -time.Minute)
	require.NoError(t, err)

	w := get(e, "/v1/wizard", map[string]string{"Authorization": "Bearer " + access})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", w.Body.String())

	for name, header := range map[string]string{
		"missing":       "",
		"bad format":    "Token " + access,
		"refresh token": "Bearer " + refresh,
		"expired":       "Bearer " + expired,
		"garbage":       "Bearer not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			headers := map[string]string{}
			if header != "" {
				headers["Authorization"] = header
			}
			assert.Equal(t, http.StatusUnauthorized, get(e, "/v1/wizard", headers).Code)
		})
	}

	assert.Equal(t, http.StatusOK, get(e, "/health", nil).Code)
}

func TestAuth_JWTIgnoresUserHeader(t *testing.T) {
	e := newEngine(Auth(AuthConfig{Secret: "secret", Enabled: true}))
	w := get(e, "/v1/wizard", map[string]string{UserIDHeader: "mallory"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_Disabled(t *testing.T) {
	e := newEngine(Auth(AuthConfig{DefaultUserID: "dev-user"}))

	w := get(e, "/v1/wizard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dev-user", w.Body.String())

	w = get(e, "/v1/wizard", map[string]string{UserIDHeader: "bob"})
	assert.Equal(t, "bob", w.Body.String())

	noDefault := newEngine(Auth(AuthConfig{}))
	assert.Equal(t, http.StatusUnauthorized, get(noDefault, "/v1/wizard", nil).Code)
}

type countingLimiter struct {
	keys  []string
	limit int
	err   error
}

func (l *countingLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.keys = append(l.keys, key)
	l.limit = limit
	return len(l.keys) <= limit, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{}
	e := newEngine(
		Auth(AuthConfig{DefaultUserID: "u1"}),
		RateLimit(RateLimitConfig{Enabled: true, Limit: 2, Window: time.Minute}, limiter),
	)

	assert.Equal(t, http.StatusOK, get(e, "/v1/wizard", nil).Code)
	assert.Equal(t, http.StatusOK, get(e, "/v1/wizard", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(e, "/v1/wizard", nil).Code)
	assert.Equal(t, "u1:/v1/wizard", limiter.keys[0])
	assert.Equal(t, 2, limiter.limit)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	limiter := &countingLimiter{err: errors.New("redis down")}
	e := newEngine(RateLimit(RateLimitConfig{Enabled: true, Limit: 1}, limiter))
	assert.Equal(t, http.StatusOK, get(e, "/v1/wizard", nil).Code)
}

func TestRequestID(t *testing.T) {
	e := newEngine(RequestID())
	w := get(e, "/health", map[string]string{RequestIDHeader: "req-1"})
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))

	w = get(e, "/health", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	for _, bad := range []string{"a b", "x\nforged=1", strings.Repeat("a", 65)} {
		w = get(e, "/health", map[string]string{RequestIDHeader: bad})
		assert.Len(t, w.Header().Get(RequestIDHeader), 36, "%q replaced", bad)
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(RequestID(), Recovery())
	e.GET("/v1/wizard/advance", func(*gin.Context) { panic("boom") })

	w := get(e, "/v1/wizard/advance", map[string]string{RequestIDHeader: "req-7"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(apperrors.CodeInternalError), body["code"])
	assert.Equal(t, "req-7", body["request_id"])
}

func TestRouteGroup(t *testing.T) {
	tests := map[string]string{
		"":                                     GroupUnmatched,
		"/v1/wizard":                           GroupWizard,
		"/v1/wizard/advance":                   GroupWizard,
		"/v1/wizard/documents/:doc_type/retry": GroupWizard,
		"/v1/wizard/export":                    GroupExport,
		"/v1/projects":                         GroupProjects,
		"/health":                              GroupSystem,
		"/metrics":                             GroupSystem,
	}
	for route, want := range tests {
		assert.Equal(t, want, RouteGroup(route), route)
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestMetrics(t *testing.T) {
	e := newEngine(Metrics("/health"))

	wizardOK := metrics.HTTPRequestsTotal.WithLabelValues(GroupWizard, http.MethodGet, "/v1/wizard", "200")
	healthOK := metrics.HTTPRequestsTotal.WithLabelValues(GroupSystem, http.MethodGet, "/health", "200")
	unmatched := metrics.HTTPRequestsTotal.WithLabelValues(GroupUnmatched, http.MethodGet, GroupUnmatched, "404")
	beforeWizard := counterValue(t, wizardOK)
	beforeHealth := counterValue(t, healthOK)
	beforeUnmatched := counterValue(t, unmatched)

	get(e, "/v1/wizard", nil)
	get(e, "/health", nil)
	get(e, "/no/such/route", nil)

	assert.Equal(t, beforeWizard+1, counterValue(t, wizardOK))
	assert.Equal(t, beforeHealth, counterValue(t, healthOK), "skipped route is not recorded")
	assert.Equal(t, beforeUnmatched+1, counterValue(t, unmatched))
}

func TestCORS_ExposesExportHeaders(t *testing.T) {
	e := newEngine(CORS(CORSConfig{AllowedOrigins: []string{"https://app.example.com"}}))
	w := get(e, "/health", map[string]string{"Origin": "https://app.example.com"})

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}
