package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"food-sustainability/internal/engine"
	"food-sustainability/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newOfflineConfig 只使用在地資料表，不連線任何外部服務
func newOfflineConfig() *config.Config {
	cfg := config.Default()
	cfg.App.Debug = true
	cfg.OpenFoodFacts.Enabled = false
	cfg.USDA.Enabled = false
	cfg.Redis.Enabled = false
	cfg.Cache.CleanupInterval = 0
	cfg.RateLimit.Enabled = false
	return cfg
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	eng, err := engine.New(context.Background(), newOfflineConfig())
	require.NoError(t, err)
	t.Cleanup(eng.Close)

	return SetupRouter(newOfflineConfig(), eng)
}

func TestRouterEndToEnd(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		status   int
		contains string
	}{
		{"impact", http.MethodGet, "/api/v1/impact/Beef", "", http.StatusOK, `"food_name":"Beef"`},
		{"impact not found", http.MethodGet, "/api/v1/impact/unobtainium", "", http.StatusNotFound, "FOOD_NOT_FOUND"},
		{"barcode without source", http.MethodGet, "/api/v1/impact/barcode/3017620422003", "", http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"recommendations", http.MethodGet, "/api/v1/recommendations/beef?limit=2", "", http.StatusOK, `"source":"ml"`},
		{"fallback", http.MethodGet, "/api/v1/recommendations/zzzz", "", http.StatusOK, `"source":"fallback"`},
		{"post recommendations", http.MethodPost, "/api/v1/recommendations", `{"food":"milk"}`, http.StatusOK, `"name":"Oat Milk"`},
		{"search", http.MethodGet, "/api/v1/search?q=milk", "", http.StatusOK, `"Almond Milk"`},
		{"foods", http.MethodGet, "/api/v1/foods", "", http.StatusOK, `"count":8`},
		{"compare", http.MethodGet, "/api/v1/compare?food1=Beef&food2=Chicken", "", http.StatusOK, `"better":"Chicken"`},
		{"food info", http.MethodGet, "/api/v1/food-info/tofu", "", http.StatusOK, `"type":"Legume"`},
		{"health", http.MethodGet, "/health", "", http.StatusOK, `"status":"ok"`},
		{"ready", http.MethodGet, "/ready", "", http.StatusOK, "local"},
		{"unknown route", http.MethodGet, "/api/v2/impact/Beef", "", http.StatusNotFound, "NOT_FOUND"},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK, "impact_resolver_cache_total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), tt.contains)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}
