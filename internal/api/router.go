package api

import (
	"time"

	"food-sustainability/internal/api/handlers/food"
	"food-sustainability/internal/api/handlers/health"
	"food-sustainability/internal/api/middleware"
	"food-sustainability/internal/engine"
	"food-sustainability/internal/infrastructure/config"
	"food-sustainability/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, eng *engine.Engine) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(common.GenerateUUID)))
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	// 健康檢查與監控路由
	checker := health.NewChecker(cfg.App.Version, eng.Resolver, eng.Cache, eng.Generative())
	router.GET("/health", checker.HealthCheck)
	router.GET("/ready", checker.ReadinessCheck)
	router.GET("/live", checker.LivenessCheck)
	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	// API 路由組
	api := router.Group("/api/v1")
	api.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	food.NewHandler(eng.Service, cfg.App.Debug).Register(api, dedup.Middleware())

	// 未知路由回傳統一錯誤格式
	router.NoRoute(func(c *gin.Context) {
		status, resp := common.ToResponse(common.ErrNotFound, false)
		c.JSON(status, resp)
	})

	common.LogInfo("Router setup completed successfully",
		zap.Bool("generative", eng.Generative()),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}
