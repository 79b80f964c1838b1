package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-sustainability/internal/api"
	"food-sustainability/internal/engine"
	"food-sustainability/internal/infrastructure/config"
	"food-sustainability/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含可選的 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.Bool("gemini_enabled", cfg.Gemini.Enabled),
		zap.String("gemini_model", cfg.Gemini.Model),
		zap.Bool("openfoodfacts_enabled", cfg.OpenFoodFacts.Enabled),
		zap.Bool("usda_enabled", cfg.USDA.Enabled),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
	)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 10*time.Second)
	eng, err := engine.New(initCtx, cfg)
	cancelInit()
	if err != nil {
		common.LogFatal("Failed to initialize engine", zap.Error(err))
	}
	defer eng.Close()

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.SetupRouter(cfg, eng),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
