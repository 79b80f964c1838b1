package service

import (
	"context"
	"strings"

	"food-sustainability/internal/core/ai"
	"food-sustainability/internal/infrastructure/metrics"
	"food-sustainability/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 生成式服務：在產生器前加上回應快取
type Service struct {
	generator ai.Generator
	cache     ai.ResponseCache
}

var _ ai.Generator = (*Service)(nil)

// NewService 創建生成式服務；cache 可為 nil
func NewService(generator ai.Generator, cache ai.ResponseCache) *Service {
	return &Service{
		generator: generator,
		cache:     cache,
	}
}

// Model 實作 ai.Generator
func (s *Service) Model() string {
	return s.generator.Model()
}

// Generate 統一對外方法：先查快取，未命中才呼叫產生器並寫回
func (s *Service) Generate(ctx context.Context, prompt string) (*ai.Response, error) {
	// 統一 prompt 格式，去除多餘空白，確保快取 key 一致
	key := normalizePrompt(prompt)
	if key == "" {
		return nil, common.ErrInvalidRequest
	}

	if s.cache != nil {
		if resp, err := s.cache.Get(ctx, key); err == nil && resp != nil && resp.Text != "" {
			metrics.GenerativeRequests.WithLabelValues("cached").Inc()
			return resp, nil
		}
	}

	resp, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, resp); err != nil {
			common.LogWarn("生成式回應寫入快取失敗", zap.Error(err))
		}
	}

	return resp, nil
}

func normalizePrompt(prompt string) string {
	return strings.Join(strings.Fields(prompt), " ")
}
