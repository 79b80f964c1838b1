package impact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightedScore(t *testing.T) {
	tests := []struct {
		name     string
		metrics  Metrics
		expected float64
	}{
		{
			name:     "domain maximum scores zero",
			metrics:  Metrics{Carbon: 27, Water: 15400, Energy: 40, Waste: 2.5, Deforestation: 9},
			expected: 0,
		},
		{
			name:     "oat milk",
			metrics:  Metrics{Carbon: 0.5, Water: 150, Energy: 0.4, Waste: 0.05, Deforestation: 0.1},
			expected: 9.86,
		},
		{
			name:     "zero impact scores ten",
			metrics:  Metrics{},
			expected: 10,
		},
		{
			name:     "beyond maxima clamps to zero",
			metrics:  Metrics{Carbon: 60, Water: 30000, Energy: 80, Waste: 5, Deforestation: 10},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeightedScore(tt.metrics)
			assert.InDelta(t, tt.expected, got, 0.01)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 10.0)
		})
	}
}

func TestAdditiveDeforestationRisk(t *testing.T) {
	tests := []struct {
		name        string
		ingredients string
		categories  string
		origins     string
		expected    float64
	}{
		{"no matches", "water, salt", "beverages", "", 0},
		{"palm oil and sugar accumulate", "Palm Oil, sugar", "", "", 6},
		{"soybean matches soy and soybean", "soybean", "", "", 6},
		{"category text counts", "", "chocolate spreads", "", 3},
		{"high risk origin bonus", "coffee", "", "Brazil", 4},
		{"origin bonus alone", "", "", "Indonesia", 2},
		{"clamped to ten", "palm oil, beef, cocoa, soy", "", "Malaysia", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AdditiveDeforestationRisk(tt.ingredients, tt.categories, tt.origins))
		})
	}
}

func TestRiskRange(t *testing.T) {
	tests := []struct {
		name        string
		food        string
		description string
		low, high   float64
	}{
		{"beef keyword", "beef burger", "", 7, 10},
		{"hamburger before ham", "hamburger", "", 7, 10},
		{"ham", "ham sandwich", "", 2, 5},
		{"description match", "spread", "Palm oil based spread", 8, 10},
		{"tofu", "tofu", "", 4, 7},
		{"coarse fruit bucket", "grapefruit", "", 0, 2},
		{"coarse processed bucket", "processed cheese", "", 2, 4},
		{"default bucket", "xyz", "", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			low, high := RiskRange(tt.food, tt.description)
			assert.Equal(t, tt.low, low)
			assert.Equal(t, tt.high, high)
		})
	}
}

func TestRangedDeforestationRiskWithinRange(t *testing.T) {
	est := NewEstimator(7)
	for i := 0; i < 50; i++ {
		v := RangedDeforestationRisk(est, "chicken breast", "")
		assert.GreaterOrEqual(t, v, 2.0)
		assert.LessOrEqual(t, v, 4.0)
	}
}

func TestEcoscoreScore(t *testing.T) {
	score, ok := EcoscoreScore("A")
	assert.True(t, ok)
	assert.Equal(t, 9.0, score)

	score, ok = EcoscoreScore("e")
	assert.True(t, ok)
	assert.Equal(t, 1.0, score)

	score, ok = EcoscoreScore("unknown")
	assert.True(t, ok)
	assert.Equal(t, 5.0, score)

	_, ok = EcoscoreScore("")
	assert.False(t, ok)
}

func TestDescriptionScore(t *testing.T) {
	tests := []struct {
		description string
		expected    float64
	}{
		{"Beef, ground, 80% lean", 3},
		{"Fish, salmon, raw", 4},
		{"Lentils, legume, boiled", 7},
		{"Almond nut butter", 6},
		{"Water, bottled", 5},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.expected, DescriptionScore(tt.description))
		})
	}
}

func TestEstimatorDeterministic(t *testing.T) {
	a := NewEstimator(42)
	b := NewEstimator(42)
	for i := 0; i < 10; i++ {
		va := a.Uniform(0.1, 2.0)
		assert.Equal(t, va, b.Uniform(0.1, 2.0))
		assert.GreaterOrEqual(t, va, 0.1)
		assert.LessOrEqual(t, va, 2.0)
	}
	assert.Equal(t, 3.0, a.Uniform(3, 3))
}

func TestMetricsSetRejectsNegative(t *testing.T) {
	var m Metrics
	m.Set(Water, -5)
	m.Set(Carbon, 1.5)
	assert.Equal(t, 0.0, m.Get(Water))
	assert.Equal(t, 1.5, m.Get(Carbon))
	assert.Len(t, m.Map(), 5)
	assert.Equal(t, "water usage", Water.DisplayName())
}

func TestNutritionIsEmpty(t *testing.T) {
	assert.True(t, Nutrition{}.IsEmpty())
	assert.True(t, Nutrition{Protein: 3, Calories: 40}.IsEmpty())
	assert.False(t, Nutrition{Protein: 3, Fat: 2, Carbs: 5}.IsEmpty())
}
