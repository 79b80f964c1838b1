package recommend

import (
	"fmt"
	"math"

	"food-sustainability/internal/core/impact"
	"food-sustainability/internal/pkg/common"
)

func newMetrics(carbon, water, energy, waste, deforestation float64) impact.Metrics {
	return impact.Metrics{
		Carbon:        carbon,
		Water:         water,
		Energy:        energy,
		Waste:         waste,
		Deforestation: deforestation,
	}
}

// metricImprovement 單一指標相對原食物的降幅，原值不為正時為 0
func metricImprovement(original, candidate float64) float64 {
	if original <= 0 {
		return 0
	}
	return (original - candidate) / original
}

// Improvement 加權永續改善分數（0-100）
func Improvement(original, candidate impact.Metrics, prefs Preferences) float64 {
	weights := prefs.Normalized()

	var score float64
	for _, k := range impact.MetricKinds {
		imp := common.Clamp(metricImprovement(original.Get(k), candidate.Get(k)), 0, 1)
		score += imp * weights.Get(k)
	}
	return common.Round(common.Clamp(score*100, 0, 100), 1)
}

// Explain 以加權貢獻最大的指標產生說明；改善的指標權重都為 0 時改用降幅最大的指標，
// 沒有任何指標改善時回傳通用句
func Explain(originalName, candidateName string, original, candidate impact.Metrics, prefs Preferences) string {
	weights := prefs.Normalized()

	var (
		best         impact.MetricKind
		bestWeighted float64
		bestRaw      float64
		topRaw       impact.MetricKind
		topRawValue  float64
	)
	for _, k := range impact.MetricKinds {
		raw := metricImprovement(original.Get(k), candidate.Get(k))
		if raw <= 0 {
			continue
		}
		if raw > topRawValue {
			topRaw, topRawValue = k, raw
		}
		weighted := math.Min(raw, 1) * weights.Get(k)
		if weighted > bestWeighted {
			best, bestWeighted, bestRaw = k, weighted, raw
		}
	}
	if best == "" {
		best, bestRaw = topRaw, topRawValue
	}

	if best == "" {
		return fmt.Sprintf("%s is a more sustainable alternative to %s.", candidateName, originalName)
	}
	return fmt.Sprintf("%s reduces %s by %d%% compared to %s.",
		candidateName, best.DisplayName(), int(math.Round(bestRaw*100)), originalName)
}
