package health

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"food-sustainability/internal/core/ai/cache"
	"food-sustainability/internal/core/impact"
	"food-sustainability/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(h *Checker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.HealthCheck)
	r.GET("/ready", h.ReadinessCheck)
	r.GET("/live", h.LivenessCheck)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthCheck(t *testing.T) {
	foods, err := impact.LoadCuratedFoods()
	require.NoError(t, err)
	resolver := impact.NewResolver(nil, impact.NewLocalSource(foods, nil))

	cm := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute})
	defer cm.Close()

	r := newTestRouter(NewChecker("1.2.3", resolver, cm, false))

	w := get(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.2.3"`)
	assert.Contains(t, w.Body.String(), `"sources":["local"]`)
	assert.Contains(t, w.Body.String(), `"generative_enabled":false`)
	assert.Contains(t, w.Body.String(), `"max_size":10`)

	assert.Equal(t, http.StatusOK, get(r, "/ready").Code)
	assert.Equal(t, http.StatusOK, get(r, "/live").Code)
}

func TestReadinessWithoutSources(t *testing.T) {
	r := newTestRouter(NewChecker("dev", nil, nil, false))

	w := get(r, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "not ready")

	w = get(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "response_cache")
}
