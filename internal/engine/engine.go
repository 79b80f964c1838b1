// Package engine 依設定組裝推薦引擎的所有元件，供 HTTP 服務與 CLI 共用
package engine

import (
	"context"
	"fmt"

	"food-sustainability/internal/core/ai"
	"food-sustainability/internal/core/ai/cache"
	"food-sustainability/internal/core/ai/gemini"
	"food-sustainability/internal/core/ai/service"
	"food-sustainability/internal/core/impact"
	"food-sustainability/internal/core/recommend"
	"food-sustainability/internal/infrastructure/config"
	"food-sustainability/internal/pkg/common"

	"go.uber.org/zap"
)

// Engine 組裝完成的引擎與需要關閉的資源
type Engine struct {
	Service  *recommend.Service
	Resolver *impact.Resolver
	Cache    *cache.CacheManager // 停用時為 nil
	Redis    *cache.Service

	generator ai.Generator
}

// New 依設定建立引擎。外部資料庫以熔斷器包裝，生成式服務只在啟用且有金鑰時建立
func New(ctx context.Context, cfg *config.Config) (*Engine, error) {
	foods, err := impact.LoadCuratedFoods()
	if err != nil {
		return nil, fmt.Errorf("failed to load curated foods: %w", err)
	}
	catalogue, err := recommend.LoadCatalogue()
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	est := impact.NewEstimator(cfg.Engine.Seed)
	local := impact.NewLocalSource(foods, impact.NewKeywordAnnotator())

	// 信任順序：在地資料表、Open Food Facts、USDA
	var (
		sources = []impact.Source{local}
		off     *impact.OpenFoodFactsSource
		usda    impact.Source
		offInfo impact.Source
	)
	if cfg.OpenFoodFacts.Enabled {
		off = impact.NewOpenFoodFactsSource(cfg.OpenFoodFacts, est)
		offInfo = impact.WithBreaker(off, cfg.Breaker)
		sources = append(sources, offInfo)
	}
	if cfg.USDA.Enabled {
		usda = impact.WithBreaker(impact.NewUSDASource(cfg.USDA, est), cfg.Breaker)
		sources = append(sources, usda)
	}

	e := &Engine{
		Resolver: impact.NewResolver(impact.NewMemoryCache(), sources...),
		Cache:    cache.NewManager(cfg.Cache),
	}

	e.Redis, err = cache.NewService(ctx, cfg.Redis)
	if err != nil {
		common.LogWarn("Redis 無法連線，僅使用記憶體快取", zap.Error(err))
		e.Redis, _ = cache.NewService(ctx, config.RedisConfig{})
	}

	if cfg.Gemini.Enabled && cfg.Gemini.APIKey != "" {
		client := gemini.NewClient(cfg.Gemini, cfg.Breaker)
		e.generator = service.NewService(client, cache.NewLayered(e.Cache, e.Redis))
		common.LogInfo("生成式服務已啟用", zap.String("model", client.Model()))
	} else {
		common.LogWarn("未設定生成式服務金鑰，只使用分類推薦")
	}

	info, err := recommend.NewInfoSynthesizer(catalogue, recommend.InfoSources{
		USDA:          usda,
		OpenFoodFacts: offInfo,
		Generator:     e.generator,
	}, cfg.Engine.InfoTimeout, cfg.Engine.AIInfoTimeout)
	if err != nil {
		e.Close()
		return nil, err
	}

	deps := recommend.Dependencies{
		Resolver:  e.Resolver,
		Catalogue: catalogue,
		Generator: e.generator,
		Info:      info,
		Corpus:    local.Names(),
	}
	if off != nil {
		deps.Barcode = off
	}
	e.Service = recommend.NewService(cfg.Engine, deps)

	common.LogInfo("推薦引擎初始化完成",
		zap.Strings("sources", e.Resolver.Sources()),
		zap.Bool("generative", e.generator != nil),
		zap.Bool("cache", e.Cache != nil),
		zap.Bool("redis", e.Redis.Enabled()),
	)
	return e, nil
}

// Generative 是否啟用生成式服務
func (e *Engine) Generative() bool {
	return e.generator != nil
}

// Close 釋放快取資源
func (e *Engine) Close() {
	if e.Cache != nil {
		_ = e.Cache.Close()
	}
	if e.Redis != nil {
		if err := e.Redis.Close(); err != nil {
			common.LogWarn("關閉 Redis 失敗", zap.Error(err))
		}
	}
}
