package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/crediscore/pkg/common"
	"github.com/richxcame/crediscore/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) { common.SuccessResponse(c, gin.H{"pong": true}) })
}

func healthy(ctx context.Context) error { return nil }

func failing(ctx context.Context) error { return errors.New("connection refused") }

func setupTestRouter(checks map[string]common.CheckFunc, optional ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return setupRouter(routerDeps{
		corsOrigins: "http://localhost:3000",
		handlers:    []routeRegistrar{pingHandler{}},
		checks:      checks,
		optional:    optional,
	})
}

func get(router *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ============================================================================
// Health
// ============================================================================

func TestHealthz(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]common.CheckFunc
		optional   []string
		wantCode   int
		wantStatus string
	}{
		{
			name:       "all dependencies up",
			checks:     map[string]common.CheckFunc{"database": healthy, "redis": healthy, "fraud_service": healthy},
			optional:   []string{"fraud_service"},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
		},
		{
			name:       "fraud service down degrades",
			checks:     map[string]common.CheckFunc{"database": healthy, "redis": healthy, "fraud_service": failing},
			optional:   []string{"fraud_service"},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
		},
		{
			name:       "database down is unhealthy",
			checks:     map[string]common.CheckFunc{"database": failing, "redis": healthy, "fraud_service": healthy},
			optional:   []string{"fraud_service"},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(setupTestRouter(tt.checks, tt.optional...), "/healthz", nil)

			assert.Equal(t, tt.wantCode, w.Code)
			var resp common.HealthResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, serviceName, resp.Service)
			assert.Len(t, resp.Checks, 3)
		})
	}
}

func TestHealthz_RemoteCheckIsCached(t *testing.T) {
	calls := 0
	ping := func(ctx context.Context) error {
		calls++
		return errors.New("fraud service unavailable")
	}
	router := setupTestRouter(map[string]common.CheckFunc{
		"database":      healthy,
		"fraud_service": remoteCheck(ping),
	}, "fraud_service")

	for i := 0; i < 3; i++ {
		w := get(router, "/healthz", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 1, calls)
}

func TestLiveness(t *testing.T) {
	w := get(setupTestRouter(map[string]common.CheckFunc{"database": failing}), "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"`+serviceVersion+`"`)
}

func TestMetricsEndpoint(t *testing.T) {
	router := setupTestRouter(nil)
	get(router, "/api/v1/ping", nil)

	w := get(router, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

// ============================================================================
// Middleware chain
// ============================================================================

func TestHandlersMountUnderAPIPrefix(t *testing.T) {
	router := setupTestRouter(nil)

	assert.Equal(t, http.StatusOK, get(router, "/api/v1/ping", nil).Code)
	assert.Equal(t, http.StatusNotFound, get(router, "/ping", nil).Code)
}

func TestCorrelationIDIsEchoed(t *testing.T) {
	router := setupTestRouter(nil)

	w := get(router, "/api/v1/ping", map[string]string{middleware.CorrelationIDHeader: "req-42"})
	assert.Equal(t, "req-42", w.Header().Get(middleware.CorrelationIDHeader))

	w = get(router, "/api/v1/ping", nil)
	assert.NotEmpty(t, w.Header().Get(middleware.CorrelationIDHeader))
}

func TestSecurityHeaders(t *testing.T) {
	w := get(setupTestRouter(nil), "/api/v1/ping", nil)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestCORS(t *testing.T) {
	router := setupTestRouter(nil)

	w := get(router, "/api/v1/ping", map[string]string{"Origin": "http://localhost:3000"})
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = get(router, "/api/v1/ping", map[string]string{"Origin": "http://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCorsConfig(t *testing.T) {
	assert.True(t, corsConfig("").AllowAllOrigins)
	assert.True(t, corsConfig("*").AllowAllOrigins)

	cfg := corsConfig(" https://a.example ,https://b.example,")
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowOrigins)
}
