package impact

import (
	"strings"

	"food-sustainability/internal/pkg/common"
)

// 在地評分公式的權重與各指標上限
var (
	scoreWeights = Metrics{Carbon: 0.25, Water: 0.20, Energy: 0.15, Waste: 0.15, Deforestation: 0.25}
	scoreMaxima  = Metrics{Carbon: 27.0, Water: 15400.0, Energy: 40.0, Waste: 2.5, Deforestation: 9.0}
)

// WeightedScore 以固定權重計算環境分數，回傳 0-10（越高越永續）
func WeightedScore(m Metrics) float64 {
	var sum float64
	for _, k := range MetricKinds {
		sum += (m.Get(k) / scoreMaxima.Get(k)) * scoreWeights.Get(k)
	}
	score := common.Clamp(100*(1-sum), 0, 100)
	return common.Round(score/10, 2)
}

func clampScore(v float64) float64 {
	return common.Clamp(v, 0, 10)
}

// additiveRisk 關鍵字與累加的毀林風險
type additiveRisk struct {
	keyword string
	score   float64
}

// 命中即累加，多個關鍵字可同時成立
var additiveRiskTable = []additiveRisk{
	{"palm oil", 4}, {"palm kernel", 4}, {"palm fat", 4},
	{"soy", 3}, {"soya", 3}, {"soybean", 3},
	{"beef", 4}, {"cattle", 4},
	{"cocoa", 3}, {"chocolate", 3},
	{"coffee", 2},
	{"rubber", 3},
	{"timber", 3}, {"wood pulp", 3},
	{"sugar", 2}, {"sugarcane", 2},
	{"banana", 1}, {"plantain", 1},
	{"avocado", 2},
	{"corn", 1}, {"maize", 1},
	{"rice", 1},
	{"leather", 2},
}

var highRiskRegions = []string{"brazil", "indonesia", "malaysia", "congo", "argentina"}

// AdditiveDeforestationRisk 依成分與分類文字累加毀林風險，產地屬高風險地區再加 2，上限 10
func AdditiveDeforestationRisk(ingredients, categories, origins string) float64 {
	ingredients = strings.ToLower(ingredients)
	categories = strings.ToLower(categories)
	origins = strings.ToLower(origins)

	var risk float64
	for _, item := range additiveRiskTable {
		if strings.Contains(ingredients, item.keyword) || strings.Contains(categories, item.keyword) {
			risk += item.score
		}
	}
	if origins != "" && common.ContainsAny(origins, highRiskRegions...) {
		risk += 2
	}
	return common.Clamp(risk, 0, 10)
}

// rangedRisk 關鍵字與風險區間
type rangedRisk struct {
	keyword string
	low     float64
	high    float64
}

// 依序比對，第一個命中的關鍵字決定區間
var rangedRiskTable = []rangedRisk{
	{"beef", 7, 10}, {"steak", 7, 10}, {"hamburger", 7, 10}, {"cattle", 7, 10},
	{"palm oil", 8, 10}, {"palm", 8, 10},
	{"soy", 5, 8}, {"soya", 5, 8}, {"soybean", 5, 8}, {"tofu", 4, 7},
	{"cocoa", 4, 7}, {"chocolate", 4, 7},
	{"coffee", 3, 6},
	{"rubber", 4, 7},
	{"timber", 4, 7}, {"wood", 4, 7},
	{"sugar", 3, 6}, {"sugarcane", 3, 6},
	{"avocado", 3, 6},
	{"pork", 2, 5}, {"bacon", 2, 5}, {"ham", 2, 5},
	{"chicken", 2, 4}, {"poultry", 2, 4},
	{"banana", 2, 4}, {"plantain", 2, 4},
	{"corn", 1, 3}, {"maize", 1, 3},
	{"rice", 1, 3},
	{"leather", 3, 6},
}

// RiskRange 回傳名稱或描述對應的毀林風險區間
func RiskRange(name, description string) (float64, float64) {
	name = strings.ToLower(name)
	description = strings.ToLower(description)

	for _, item := range rangedRiskTable {
		if strings.Contains(name, item.keyword) || strings.Contains(description, item.keyword) {
			return item.low, item.high
		}
	}

	matches := func(terms ...string) bool {
		return common.ContainsAny(name, terms...) || common.ContainsAny(description, terms...)
	}
	switch {
	case matches("meat", "dairy", "processed"):
		return 2, 4
	case matches("fruit", "vegetable", "grain"):
		return 0, 2
	default:
		return 0, 3
	}
}

// RangedDeforestationRisk 在對應區間內抽樣
func RangedDeforestationRisk(est *Estimator, name, description string) float64 {
	lo, hi := RiskRange(name, description)
	return est.Uniform(lo, hi)
}

var ecoscoreGrades = map[string]float64{"a": 9, "b": 7, "c": 5, "d": 3, "e": 1}

// EcoscoreScore 將 A-E 等級轉為分數；未知等級為 5，沒有等級回傳 false
func EcoscoreScore(grade string) (float64, bool) {
	grade = strings.ToLower(strings.TrimSpace(grade))
	if grade == "" {
		return 0, false
	}
	if score, ok := ecoscoreGrades[grade]; ok {
		return score, true
	}
	return 5, true
}

// DescriptionScore 依食物描述粗估環境分數，基準為 5
func DescriptionScore(description string) float64 {
	description = strings.ToLower(description)
	score := 5.0
	switch {
	case common.ContainsAny(description, "beef", "lamb", "pork"):
		score -= 2
	case common.ContainsAny(description, "chicken", "turkey", "fish"):
		score -= 1
	case common.ContainsAny(description, "vegetable", "fruit", "grain", "legume"):
		score += 2
	case common.ContainsAny(description, "nut", "seed"):
		score += 1
	}
	return clampScore(score)
}
