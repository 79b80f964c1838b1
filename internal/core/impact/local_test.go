package impact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalSource(t *testing.T) *LocalSource {
	t.Helper()
	foods, err := LoadCuratedFoods()
	require.NoError(t, err)
	return NewLocalSource(foods, NewKeywordAnnotator())
}

func TestLoadCuratedFoods(t *testing.T) {
	foods, err := LoadCuratedFoods()
	require.NoError(t, err)
	require.Len(t, foods, 8)

	assert.Equal(t, "Almond Milk", foods[0].Name)
	assert.Equal(t, "Beef", foods[3].Name)
	assert.Equal(t, 15400.0, foods[3].Metrics.Water)
	assert.Equal(t, TierHigh, foods[3].Impact)
}

func TestParseCuratedFoodsRejectsMissingName(t *testing.T) {
	_, err := ParseCuratedFoods([]byte("foods:\n  - carbon: 1\n"))
	assert.Error(t, err)

	_, err = ParseCuratedFoods([]byte("foods: ["))
	assert.Error(t, err)
}

func TestLocalSourceLookup(t *testing.T) {
	src := newTestLocalSource(t)

	t.Run("case insensitive exact match", func(t *testing.T) {
		rec, err := src.Lookup(context.Background(), "  BEEF ")
		require.NoError(t, err)
		require.NotNil(t, rec)

		assert.Equal(t, "Beef", rec.FoodName)
		assert.Equal(t, SourceLocal, rec.Source)
		assert.Equal(t, 27.0, rec.Metrics.Carbon)
		assert.InDelta(t, 0.0, rec.EnvironmentalScore, 0.001)
		assert.Equal(t, TierHigh, rec.ImpactTier)
		assert.Equal(t, []string{"grass-fed"}, rec.Certifications)
		assert.Equal(t, []string{"beef"}, rec.Ingredients)
	})

	t.Run("every curated food scores within range", func(t *testing.T) {
		for _, name := range src.Names() {
			rec, err := src.Lookup(context.Background(), name)
			require.NoError(t, err)
			require.NotNil(t, rec, name)
			assert.GreaterOrEqual(t, rec.EnvironmentalScore, 0.0)
			assert.LessOrEqual(t, rec.EnvironmentalScore, 10.0)
			assert.Len(t, rec.Metrics.Map(), 5)
		}
	})

	t.Run("no partial matches", func(t *testing.T) {
		rec, err := src.Lookup(context.Background(), "milk")
		assert.NoError(t, err)
		assert.Nil(t, rec)
	})
}

func TestLocalSourceNamesKeepOrder(t *testing.T) {
	src := newTestLocalSource(t)
	assert.Equal(t, []string{
		"Almond Milk", "Oat Milk", "Apple", "Beef", "Chicken", "Soy Milk", "Rice Milk", "Cow Milk",
	}, src.Names())
}

func TestTierClassifier(t *testing.T) {
	foods, err := LoadCuratedFoods()
	require.NoError(t, err)
	c := NewTierClassifier(foods)

	assert.Equal(t, TierHigh, c.Classify(Metrics{Carbon: 27, Water: 15400, Energy: 40, Waste: 2.5, Deforestation: 9}))
	assert.Equal(t, TierLow, c.Classify(Metrics{Carbon: 0.5, Water: 150, Energy: 0.4, Waste: 0.05, Deforestation: 0.1}))
	assert.Equal(t, "", NewTierClassifier(nil).Classify(Metrics{}))
}

func TestKeywordAnnotator(t *testing.T) {
	a := NewKeywordAnnotator()

	tests := []struct {
		text           string
		ingredients    []string
		certifications []string
	}{
		{"Organic soy milk", []string{"soy", "milk"}, []string{"organic"}},
		{"Free-range poultry", []string{"poultry"}, []string{"free-range"}},
		{"Plant-based milk from almonds", []string{"milk", "almonds"}, []string{}},
		{"", []string{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			ann := a.Annotate(tt.text)
			assert.Equal(t, tt.ingredients, ann.Ingredients)
			assert.Equal(t, tt.certifications, ann.Certifications)
		})
	}
}
