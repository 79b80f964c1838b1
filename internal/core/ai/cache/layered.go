package cache

import (
	"context"
	"errors"

	"food-sustainability/internal/core/ai"
	"food-sustainability/internal/pkg/common"

	"go.uber.org/zap"
)

// Layered 依序查詢多層快取，較慢層命中時回填較快層
type Layered struct {
	layers []ai.ResponseCache
}

var _ ai.ResponseCache = (*Layered)(nil)

// NewLayered 創建分層快取；nil 層會被略過
func NewLayered(layers ...ai.ResponseCache) *Layered {
	l := &Layered{}
	for _, c := range layers {
		if c == nil || isNilCache(c) {
			continue
		}
		l.layers = append(l.layers, c)
	}
	return l
}

// Len 有效層數
func (l *Layered) Len() int {
	return len(l.layers)
}

// Get 實作 ai.ResponseCache
func (l *Layered) Get(ctx context.Context, prompt string) (*ai.Response, error) {
	for i, c := range l.layers {
		resp, err := c.Get(ctx, prompt)
		if err != nil {
			if !errors.Is(err, common.ErrCacheMiss) && !errors.Is(err, common.ErrCacheDisabled) {
				common.LogWarn("快取讀取失敗", zap.Int("layer", i), zap.Error(err))
			}
			continue
		}
		for j := 0; j < i; j++ {
			_ = l.layers[j].Set(ctx, prompt, resp)
		}
		return resp, nil
	}
	return nil, common.ErrCacheMiss
}

// Set 實作 ai.ResponseCache，寫入所有層
func (l *Layered) Set(ctx context.Context, prompt string, resp *ai.Response) error {
	var errs []error
	for _, c := range l.layers {
		if err := c.Set(ctx, prompt, resp); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// isNilCache 過濾以介面包裝的 nil 指標
func isNilCache(c ai.ResponseCache) bool {
	switch v := c.(type) {
	case *CacheManager:
		return v == nil
	case *Service:
		return v == nil || v.client == nil
	}
	return false
}
