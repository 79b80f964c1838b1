package impact

import (
	"math/rand"
	"sync"
)

// Estimator 有種子的亂數估算器
//
// 外部來源缺少某項指標時用來產生有上下界的估計值，這些數值是佔位估計而非量測值。
type Estimator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEstimator 創建估算器
func NewEstimator(seed int64) *Estimator {
	return &Estimator{rng: rand.New(rand.NewSource(seed))}
}

// Uniform 回傳 [lo, hi] 之間的均勻分布值
func (e *Estimator) Uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return lo + e.rng.Float64()*(hi-lo)
}

// orEstimate 值大於 0 時直接使用，否則以估計值代替
func (e *Estimator) orEstimate(v, lo, hi float64) float64 {
	if v > 0 {
		return v
	}
	return e.Uniform(lo, hi)
}
