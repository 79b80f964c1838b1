package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"food-sustainability/internal/core/ai"
	"food-sustainability/internal/core/impact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestSynthesizer(t *testing.T, sources InfoSources) *InfoSynthesizer {
	t.Helper()
	s, err := NewInfoSynthesizer(newTestCatalogue(t), sources, time.Second, time.Second)
	require.NoError(t, err)
	return s
}

func TestValidateNutrition(t *testing.T) {
	t.Run("fills zero and out of range values from type defaults", func(t *testing.T) {
		got := ValidateNutrition(impact.Nutrition{Protein: 30, Calories: 1000}, "Meat")
		assert.Equal(t, impact.Nutrition{Protein: 30, Fat: 15, Carbs: 0, Fiber: 0, Calories: 250}, got)
	})

	t.Run("keeps valid values", func(t *testing.T) {
		n := impact.Nutrition{Protein: 3, Fat: 0.7, Carbs: 9, Fiber: 3.6, Calories: 49}
		assert.Equal(t, n, ValidateNutrition(n, "Vegetables"))
	})

	t.Run("unknown type uses generic values", func(t *testing.T) {
		assert.Equal(t, genericNutrition, ValidateNutrition(impact.Nutrition{}, "Snack"))
	})

	t.Run("plural type names match", func(t *testing.T) {
		got := ValidateNutrition(impact.Nutrition{}, "Nuts")
		assert.Equal(t, 600.0, got.Calories)
	})
}

func TestExpandDescription(t *testing.T) {
	assert.Contains(t, ExpandDescription("", "Lamb", "Meat"), "Lamb is a meat product")
	assert.Contains(t, ExpandDescription("short", "Kale", "Vegetables"), "Kale is a vegetable")
	assert.Contains(t, ExpandDescription("", "Thing", "Snacks"), "in the Snacks category")

	long := "A crunchy snack made from roasted corn kernels."
	got := ExpandDescription(long, "Corn Nuts", "Snacks")
	assert.True(t, len(got) > len(long))
	assert.Contains(t, got, "Corn Nuts has an environmental footprint")

	withImpact := "A crunchy snack with a modest impact on land use."
	assert.Equal(t, withImpact, ExpandDescription(withImpact, "Corn Nuts", "Snacks"))
}

func TestParseNutrition(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		text := "```json\n{\"protein\": 8.5, \"fat\": \"4g\", \"carbs\": 2, \"fiber\": 1, \"calories\": 76}\n```"
		n, ok := ParseNutrition(text)
		require.True(t, ok)
		assert.Equal(t, impact.Nutrition{Protein: 8.5, Fat: 4, Carbs: 2, Fiber: 1, Calories: 76}, n)
	})

	t.Run("unquoted keys", func(t *testing.T) {
		n, ok := ParseNutrition("{protein: 20, fat: 10, carbs: 1, fiber: 0, calories: 180}")
		require.True(t, ok)
		assert.Equal(t, impact.Nutrition{Protein: 20, Fat: 10, Carbs: 1, Calories: 180}, n)
	})

	t.Run("free text", func(t *testing.T) {
		n, ok := ParseNutrition("Protein: 10g, Fat: 3g, Carbs: 20g, Fiber: 2g, Calories: 150")
		require.True(t, ok)
		assert.Equal(t, impact.Nutrition{Protein: 10, Fat: 3, Carbs: 20, Fiber: 2, Calories: 150}, n)
	})

	t.Run("nothing useful", func(t *testing.T) {
		_, ok := ParseNutrition("I cannot help with that.")
		assert.False(t, ok)
	})
}

func TestInfoSynthesizerKnownFood(t *testing.T) {
	usda := &impact.MockSource{SourceName: impact.SourceUSDA}
	s := newTestSynthesizer(t, InfoSources{USDA: usda})

	info := s.Synthesize(context.Background(), "BEEF", nil)
	require.NotNil(t, info)
	assert.Equal(t, "Beef", info.Name)
	assert.Equal(t, "Meat", info.Type)
	assert.Equal(t, InfoSourceReliable, info.Source)
	assert.Equal(t, 26.0, info.Nutrition.Protein)
	usda.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestInfoSynthesizerBasic(t *testing.T) {
	s := newTestSynthesizer(t, InfoSources{})

	assert.Equal(t, "Meat", s.Basic("chicken").Type)
	assert.Equal(t, "Vegetables", s.Basic("broccoli").Type)

	unknown := s.Basic("quinoa")
	assert.Equal(t, "Food item", unknown.Type)
	assert.Equal(t, "quinoa is a food item.", unknown.Description)
}

func TestInfoSynthesizerPrefersUSDA(t *testing.T) {
	usda := &impact.MockSource{SourceName: impact.SourceUSDA}
	usda.On("Lookup", mock.Anything, "spinach").Return(&impact.Record{
		FoodName:    "Spinach",
		Description: "Spinach, raw",
		Nutrition:   impact.Nutrition{Protein: 2.9, Fat: 0.4, Carbs: 3.6, Fiber: 2.2, Calories: 23},
	}, nil)
	off := &impact.MockSource{SourceName: impact.SourceOpenFoodFacts}
	off.On("Lookup", mock.Anything, "spinach").Return(&impact.Record{
		FoodName:  "Spinach",
		Nutrition: impact.Nutrition{Protein: 3, Fat: 1, Carbs: 4, Fiber: 2, Calories: 30},
	}, nil)

	s := newTestSynthesizer(t, InfoSources{USDA: usda, OpenFoodFacts: off})
	info := s.Synthesize(context.Background(), "spinach", nil)

	assert.Equal(t, InfoSourceUSDA, info.Source)
	assert.Equal(t, "Vegetables", info.Type)
	assert.Equal(t, 23.0, info.Nutrition.Calories)
	assert.Equal(t, "USDA Description: Spinach, raw", info.Details)
	assert.Contains(t, info.Description, "spinach is a vegetable")
}

func TestInfoSynthesizerFallsBackToOpenFoodFacts(t *testing.T) {
	usda := &impact.MockSource{SourceName: impact.SourceUSDA}
	usda.On("Lookup", mock.Anything, "granola").Return(nil, errors.New("quota exceeded"))
	off := &impact.MockSource{SourceName: impact.SourceOpenFoodFacts}
	off.On("Lookup", mock.Anything, "granola").Return(&impact.Record{
		FoodName:    "Granola",
		Nutrition:   impact.Nutrition{Protein: 10, Fat: 15, Carbs: 60, Fiber: 7, Calories: 450},
		Ingredients: []string{"oats", "honey"},
	}, nil)

	s := newTestSynthesizer(t, InfoSources{USDA: usda, OpenFoodFacts: off})
	info := s.Synthesize(context.Background(), "granola", nil)

	assert.Equal(t, InfoSourceOpenFoodFacts, info.Source)
	assert.Equal(t, "Ingredients: oats, honey", info.Details)
	assert.Equal(t, 450.0, info.Nutrition.Calories)
}

func TestInfoSynthesizerUsesGenerativeNutrition(t *testing.T) {
	gen := &ai.MockGenerator{}
	gen.On("Generate", mock.Anything, mock.Anything).Return(&ai.Response{
		Text: `{"protein": 3, "fat": 0.7, "carbs": 9, "fiber": 3.6, "calories": 49}`,
	}, nil)

	s := newTestSynthesizer(t, InfoSources{Generator: gen})
	info := s.Synthesize(context.Background(), "kale", nil)

	assert.Equal(t, InfoSourceAI, info.Source)
	assert.Equal(t, "Vegetables", info.Type)
	assert.Equal(t, 49.0, info.Nutrition.Calories)
}

func TestInfoSynthesizerWithoutSources(t *testing.T) {
	s := newTestSynthesizer(t, InfoSources{})

	t.Run("category defaults", func(t *testing.T) {
		info := s.Synthesize(context.Background(), "carrot", nil)
		assert.Equal(t, InfoSourceCategory, info.Source)
		assert.Equal(t, "Vegetables", info.Type)
		assert.Equal(t, 30.0, info.Nutrition.Calories)
	})

	t.Run("uncategorized food gets generic info", func(t *testing.T) {
		info := s.Synthesize(context.Background(), "quinoa", nil)
		assert.Equal(t, InfoSourceGeneric, info.Source)
		assert.Equal(t, "Quinoa", info.Name)
		assert.Equal(t, genericNutrition, info.Nutrition)
	})

	t.Run("impact record supplies nutrition", func(t *testing.T) {
		rec := &impact.Record{
			FoodName:    "Quinoa",
			Description: "Seed of the quinoa plant, cooked like a grain.",
			Nutrition:   impact.Nutrition{Protein: 4.4, Fat: 1.9, Carbs: 21, Fiber: 2.8, Calories: 120},
		}
		info := s.Synthesize(context.Background(), "quinoa", rec)
		assert.Equal(t, InfoSourceImpact, info.Source)
		assert.Equal(t, rec.Description, info.Description)
		assert.Equal(t, 120.0, info.Nutrition.Calories)
	})
}

func TestMeaningfulDefaults(t *testing.T) {
	s := newTestSynthesizer(t, InfoSources{})

	info := s.MeaningfulDefaults("cheddar cheese")
	assert.Equal(t, InfoSourceDefaults, info.Source)
	assert.Equal(t, "Dairy", info.Type)
	assert.Equal(t, 100.0, info.Nutrition.Calories)
}
