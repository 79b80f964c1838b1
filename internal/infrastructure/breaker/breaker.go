// Package breaker 為外部資料來源提供熔斷保護
package breaker

import (
	"errors"

	"food-sustainability/internal/infrastructure/config"
	"food-sustainability/internal/infrastructure/metrics"
	"food-sustainability/internal/pkg/common"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Breaker 泛型熔斷器，記錄狀態與結果到 Prometheus
type Breaker[T any] struct {
	cb   *gobreaker.CircuitBreaker[T]
	name string
}

// New 創建熔斷器
//
// 在 closed 狀態下，以 cfg.Interval 為統計窗口，請求數達 MinRequests 且失敗率
// 達 FailureRatio 時開啟；開啟 cfg.Timeout 後進入 half-open。
func New[T any](name string, cfg config.BreakerConfig) *Breaker[T] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				common.LogWarn("熔斷器開啟",
					zap.String("name", name),
					zap.Uint32("failures", counts.TotalFailures),
					zap.Float64("failure_ratio", ratio),
				)
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			common.LogInfo("熔斷器狀態變更",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}

	return &Breaker[T]{
		cb:   gobreaker.NewCircuitBreaker[T](settings),
		name: name,
	}
}

// Execute 在熔斷保護下執行 fn
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	result, err := b.cb.Execute(fn)
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	case IsRejected(err):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
	}
	return result, err
}

// State 目前狀態
func (b *Breaker[T]) State() gobreaker.State {
	return b.cb.State()
}

// Name 熔斷器名稱
func (b *Breaker[T]) Name() string {
	return b.name
}

// IsRejected 判斷錯誤是否為熔斷器拒絕
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
