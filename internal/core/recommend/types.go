// Package recommend 產生更永續的替代食物：候選產生器、排序融合與食物資訊
package recommend

import (
	"fmt"
	"math"

	"food-sustainability/internal/core/impact"
	"food-sustainability/internal/pkg/common"
)

// 推薦結果來源標籤
const (
	SourceAI       = "ai"
	SourceML       = "ml"
	SourceFallback = "fallback"
)

// 候選來源
const (
	OriginGenerative = "generative"
	OriginCategory   = "category"
	OriginGeneric    = "generic"
)

// Candidate 一個替代食物
type Candidate struct {
	Name                      string         `json:"name" yaml:"name"`
	Explanation               string         `json:"explanation" yaml:"explanation"`
	Impact                    impact.Metrics `json:"impact" yaml:"impact"`
	SustainabilityImprovement float64        `json:"sustainability_improvement" yaml:"sustainability_improvement"`
	SimilarityScore           float64        `json:"similarity_score" yaml:"similarity_score"`
	Origin                    string         `json:"-" yaml:"-"`
}

// Preferences 五項指標的權重，使用前會正規化為總和 1
type Preferences impact.Metrics

// DefaultPreferences 呼叫端未指定權重時使用
func DefaultPreferences() Preferences {
	return Preferences{
		Carbon:        0.3,
		Water:         0.2,
		Energy:        0.1,
		Waste:         0.1,
		Deforestation: 0.3,
	}
}

// Get 依指標取權重
func (p Preferences) Get(k impact.MetricKind) float64 {
	return impact.Metrics(p).Get(k)
}

// Validate 權重必須是非負有限值，且至少一項大於 0
func (p Preferences) Validate() error {
	var sum float64
	for _, k := range impact.MetricKinds {
		w := p.Get(k)
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return common.Wrap(common.ErrInvalidPreferences, fmt.Errorf("%s weight must be a non-negative number, got %v", k, w))
		}
		sum += w
	}
	if sum <= 0 {
		return common.Wrap(common.ErrInvalidPreferences, fmt.Errorf("at least one weight must be positive"))
	}
	return nil
}

// Normalized 各權重除以總和；總和為 0 時回傳預設權重的正規化結果
func (p Preferences) Normalized() Preferences {
	var sum float64
	for _, k := range impact.MetricKinds {
		sum += p.Get(k)
	}
	if sum <= 0 {
		return DefaultPreferences().Normalized()
	}
	return Preferences{
		Carbon:        p.Carbon / sum,
		Water:         p.Water / sum,
		Energy:        p.Energy / sum,
		Waste:         p.Waste / sum,
		Deforestation: p.Deforestation / sum,
	}
}

// Options 推薦請求參數
type Options struct {
	Preferences     *Preferences
	Limit           int
	AllowGenerative bool
	IncludeFoodInfo bool
}

// Recommendation 推薦結果
type Recommendation struct {
	Food         string      `json:"food"`
	Source       string      `json:"source"`
	Preferences  Preferences `json:"preferences"`
	Alternatives []Candidate `json:"alternatives"`
	FoodInfo     *FoodInfo   `json:"food_info,omitempty"`
}

// FoodInfo 食物的描述與營養資訊，僅供顯示
type FoodInfo struct {
	Name        string           `json:"name" yaml:"name"`
	Type        string           `json:"type" yaml:"type"`
	Description string           `json:"description" yaml:"description"`
	Details     string           `json:"details" yaml:"details"`
	Nutrition   impact.Nutrition `json:"nutrition" yaml:"nutrition"`
	Source      string           `json:"source" yaml:"-"`
}

// MetricDifference 兩個食物在單一指標上的差異
type MetricDifference struct {
	Metric     impact.MetricKind `json:"metric"`
	First      float64           `json:"first"`
	Second     float64           `json:"second"`
	Difference float64           `json:"difference"` // first - second
	Better     string            `json:"better"`     // 數值較低者的名稱，相同時為空
}

// Comparison 兩個食物的環境影響比較
type Comparison struct {
	First       *impact.Record     `json:"first"`
	Second      *impact.Record     `json:"second"`
	Differences []MetricDifference `json:"differences"`
	Better      string             `json:"better"` // 環境分數較高者，相同時為空
	Summary     string             `json:"summary"`
}
