package health

import (
	"net/http"
	"runtime"
	"time"

	"food-sustainability/internal/core/ai/cache"
	"food-sustainability/internal/core/impact"
	"food-sustainability/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Runtime   map[string]interface{} `json:"runtime"`
	Engine    EngineStatus           `json:"engine"`
}

// EngineStatus 推薦引擎狀態
type EngineStatus struct {
	Sources           []string     `json:"sources"`
	ResolverCacheSize int          `json:"resolver_cache_size"`
	Generative        bool         `json:"generative_enabled"`
	ResponseCache     *cache.Stats `json:"response_cache,omitempty"`
}

// Checker 健康檢查處理器
type Checker struct {
	version    string
	resolver   *impact.Resolver
	cache      *cache.CacheManager
	generative bool
	started    time.Time
}

// NewChecker 創建健康檢查處理器；cache 可為 nil
func NewChecker(version string, resolver *impact.Resolver, cacheManager *cache.CacheManager, generative bool) *Checker {
	return &Checker{
		version:    version,
		resolver:   resolver,
		cache:      cacheManager,
		generative: generative,
		started:    time.Now(),
	}
}

func (h *Checker) engineStatus() EngineStatus {
	status := EngineStatus{
		Sources:    []string{},
		Generative: h.generative,
	}
	if h.resolver != nil {
		status.Sources = h.resolver.Sources()
		status.ResolverCacheSize = h.resolver.CacheSize()
	}
	if h.cache != nil {
		stats := h.cache.GetStats()
		status.ResponseCache = &stats
	}
	return status
}

// HealthCheck 健康檢查處理器
func (h *Checker) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Engine: h.engineStatus(),
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 至少有一個資料來源時才算就緒
func (h *Checker) ReadinessCheck(c *gin.Context) {
	status := h.engineStatus()
	if len(status.Sources) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "no impact sources configured",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"sources": status.Sources,
	})
}

// LivenessCheck 存活檢查處理器
func (h *Checker) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
