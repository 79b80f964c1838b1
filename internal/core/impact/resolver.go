package impact

import (
	"context"
	"strings"

	"food-sustainability/internal/infrastructure/metrics"
	"food-sustainability/internal/pkg/common"

	"go.uber.org/zap"
)

// Resolver 依固定信任順序查詢來源並快取第一個成功的結果
type Resolver struct {
	sources []Source
	cache   Cache
}

// NewResolver 創建解析器；sources 的順序即查詢順序
func NewResolver(cache Cache, sources ...Source) *Resolver {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Resolver{
		sources: sources,
		cache:   cache,
	}
}

// Resolve 解析食物的環境資料，所有來源都沒有資料時回傳 common.ErrFoodNotFound
func (r *Resolver) Resolve(ctx context.Context, foodName string) (*Record, error) {
	key := common.NormalizeKey(foodName)
	if key == "" {
		return nil, common.ErrFoodNotFound
	}

	if rec, ok := r.cache.Get(key); ok {
		metrics.ResolverCache.WithLabelValues("hit").Inc()
		common.LogCacheHit("impact", key)
		return rec.Clone(), nil
	}
	metrics.ResolverCache.WithLabelValues("miss").Inc()
	common.LogCacheMiss("impact", key)

	name := strings.TrimSpace(foodName)
	for _, src := range r.sources {
		if ctx.Err() != nil {
			break
		}

		rec, err := src.Lookup(ctx, name)
		if err != nil {
			metrics.SourceLookups.WithLabelValues(src.Name(), "error").Inc()
			common.LogWarn("資料來源無法使用，改用下一個來源",
				zap.String("source", src.Name()),
				zap.String("food", name),
				zap.Error(err),
			)
			continue
		}
		if rec == nil {
			metrics.SourceLookups.WithLabelValues(src.Name(), "no_data").Inc()
			continue
		}

		metrics.SourceLookups.WithLabelValues(src.Name(), "found").Inc()
		metrics.Resolutions.WithLabelValues(src.Name()).Inc()
		rec.normalize()
		r.cache.Set(key, rec)
		common.LogDebug("環境資料解析完成",
			zap.String("food", name),
			zap.String("source", src.Name()),
		)
		return rec.Clone(), nil
	}

	metrics.Resolutions.WithLabelValues("not_found").Inc()
	return nil, common.ErrFoodNotFound
}

// Sources 查詢順序中的來源名稱
func (r *Resolver) Sources() []string {
	names := make([]string, 0, len(r.sources))
	for _, s := range r.sources {
		names = append(names, s.Name())
	}
	return names
}

// CacheSize 目前快取筆數
func (r *Resolver) CacheSize() int {
	return r.cache.Len()
}
