package impact

import (
	"context"
	"math"
)

// MetricKind 環境影響指標種類
type MetricKind string

const (
	Carbon        MetricKind = "carbon"
	Water         MetricKind = "water"
	Energy        MetricKind = "energy"
	Waste         MetricKind = "waste"
	Deforestation MetricKind = "deforestation"
)

// MetricKinds 固定順序的全部指標
var MetricKinds = []MetricKind{Carbon, Water, Energy, Waste, Deforestation}

var metricDisplayNames = map[MetricKind]string{
	Carbon:        "carbon footprint",
	Water:         "water usage",
	Energy:        "energy use",
	Waste:         "waste generation",
	Deforestation: "deforestation impact",
}

// DisplayName 指標的顯示名稱
func (k MetricKind) DisplayName() string {
	if name, ok := metricDisplayNames[k]; ok {
		return name
	}
	return string(k)
}

// Metrics 五項環境指標，所有欄位恆存在，缺值為 0
type Metrics struct {
	Carbon        float64 `json:"carbon" yaml:"carbon"`
	Water         float64 `json:"water" yaml:"water"`
	Energy        float64 `json:"energy" yaml:"energy"`
	Waste         float64 `json:"waste" yaml:"waste"`
	Deforestation float64 `json:"deforestation" yaml:"deforestation"`
}

// Get 依種類取值
func (m Metrics) Get(k MetricKind) float64 {
	switch k {
	case Carbon:
		return m.Carbon
	case Water:
		return m.Water
	case Energy:
		return m.Energy
	case Waste:
		return m.Waste
	case Deforestation:
		return m.Deforestation
	}
	return 0
}

// Set 依種類設值，負值與 NaN 一律視為 0
func (m *Metrics) Set(k MetricKind, v float64) {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	switch k {
	case Carbon:
		m.Carbon = v
	case Water:
		m.Water = v
	case Energy:
		m.Energy = v
	case Waste:
		m.Waste = v
	case Deforestation:
		m.Deforestation = v
	}
}

// Map 轉為以種類為鍵的 map
func (m Metrics) Map() map[MetricKind]float64 {
	out := make(map[MetricKind]float64, len(MetricKinds))
	for _, k := range MetricKinds {
		out[k] = m.Get(k)
	}
	return out
}

// Nutrition 每 100g 營養成分
type Nutrition struct {
	Protein  float64 `json:"protein" yaml:"protein"`
	Fat      float64 `json:"fat" yaml:"fat"`
	Carbs    float64 `json:"carbs" yaml:"carbs"`
	Fiber    float64 `json:"fiber" yaml:"fiber"`
	Calories float64 `json:"calories" yaml:"calories"`
}

// IsEmpty 至少三項接近 0 時視為沒有營養資料
func (n Nutrition) IsEmpty() bool {
	zero := 0
	for _, v := range []float64{n.Protein, n.Fat, n.Carbs, n.Fiber, n.Calories} {
		if v < 0.1 {
			zero++
		}
	}
	return zero >= 3
}

// Record 單一食物的環境影響資料
type Record struct {
	FoodName           string    `json:"food_name"`
	Metrics            Metrics   `json:"metrics"`
	EnvironmentalScore float64   `json:"environmental_score"` // 0-10，越高越永續
	ImpactTier         string    `json:"impact_tier,omitempty"`
	Description        string    `json:"description,omitempty"`
	Nutrition          Nutrition `json:"nutrition"`
	Ingredients        []string  `json:"ingredients"`
	Certifications     []string  `json:"certifications"`
	Source             string    `json:"source"`
}

// Clone 深拷貝，快取中的紀錄不會被呼叫端修改
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.Ingredients = append([]string{}, r.Ingredients...)
	c.Certifications = append([]string{}, r.Certifications...)
	return &c
}

// normalize 補齊切片並確保分數落在範圍內
func (r *Record) normalize() {
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	if r.Certifications == nil {
		r.Certifications = []string{}
	}
	r.EnvironmentalScore = clampScore(r.EnvironmentalScore)
}

// Source 環境影響資料來源
//
// Lookup 找不到資料時回傳 (nil, nil)；只有傳輸或格式錯誤才回傳 error，
// 兩者對解析器而言都代表「沒有資料」。
type Source interface {
	Name() string
	Lookup(ctx context.Context, foodName string) (*Record, error)
}
