package impact

import (
	"math"
	"sort"
)

// 影響等級
const (
	TierLow    = "Low"
	TierMedium = "Medium"
	TierHigh   = "High"
)

// TierClassifier 以最近質心法將指標分為 Low / Medium / High
type TierClassifier struct {
	tiers     []string
	centroids map[string]Metrics
}

// NewTierClassifier 以已標記的樣本建立各等級的質心
func NewTierClassifier(samples []CuratedFood) *TierClassifier {
	sums := make(map[string]Metrics)
	counts := make(map[string]float64)
	for _, s := range samples {
		if s.Impact == "" {
			continue
		}
		norm := normalizeForTier(s.Metrics)
		acc := sums[s.Impact]
		for _, k := range MetricKinds {
			acc.Set(k, acc.Get(k)+norm.Get(k))
		}
		sums[s.Impact] = acc
		counts[s.Impact]++
	}

	c := &TierClassifier{centroids: make(map[string]Metrics, len(sums))}
	for tier, acc := range sums {
		var centroid Metrics
		for _, k := range MetricKinds {
			centroid.Set(k, acc.Get(k)/counts[tier])
		}
		c.centroids[tier] = centroid
		c.tiers = append(c.tiers, tier)
	}
	sort.Strings(c.tiers)
	return c
}

// Classify 回傳最接近的等級；沒有樣本時回傳空字串
func (c *TierClassifier) Classify(m Metrics) string {
	norm := normalizeForTier(m)
	best, bestDist := "", math.Inf(1)
	for _, tier := range c.tiers {
		centroid := c.centroids[tier]
		var dist float64
		for _, k := range MetricKinds {
			d := norm.Get(k) - centroid.Get(k)
			dist += d * d
		}
		if dist < bestDist {
			best, bestDist = tier, dist
		}
	}
	return best
}

// normalizeForTier 以評分上限縮放，避免用水量主導距離
func normalizeForTier(m Metrics) Metrics {
	var out Metrics
	for _, k := range MetricKinds {
		out.Set(k, m.Get(k)/scoreMaxima.Get(k))
	}
	return out
}
