package impact

import (
	"context"

	"food-sustainability/internal/infrastructure/breaker"
	"food-sustainability/internal/infrastructure/config"
)

// GuardedSource 以熔斷器包裝外部來源；熔斷開啟時立即回傳錯誤，解析器改查下一個來源
type GuardedSource struct {
	next Source
	cb   *breaker.Breaker[*Record]
}

// WithBreaker 包裝來源
func WithBreaker(next Source, cfg config.BreakerConfig) *GuardedSource {
	return &GuardedSource{
		next: next,
		cb:   breaker.New[*Record](next.Name(), cfg),
	}
}

// Name 實作 Source
func (g *GuardedSource) Name() string { return g.next.Name() }

// Lookup 實作 Source
func (g *GuardedSource) Lookup(ctx context.Context, foodName string) (*Record, error) {
	return g.cb.Execute(func() (*Record, error) {
		return g.next.Lookup(ctx, foodName)
	})
}
