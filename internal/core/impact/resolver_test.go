package impact

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"food-sustainability/internal/infrastructure/breaker"
	"food-sustainability/internal/infrastructure/config"
	"food-sustainability/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMockSource(name string) *MockSource {
	return &MockSource{SourceName: name}
}

func sampleRecord(name, source string) *Record {
	return &Record{
		FoodName:           name,
		Metrics:            Metrics{Carbon: 1, Water: 100, Energy: 1, Waste: 0.1, Deforestation: 0.5},
		EnvironmentalScore: 7.5,
		Ingredients:        []string{name},
		Source:             source,
	}
}

func TestResolverFirstSuccessWins(t *testing.T) {
	first := newMockSource("first")
	second := newMockSource("second")
	third := newMockSource("third")

	first.On("Lookup", mock.Anything, "Quinoa").Return(nil, nil).Once()
	second.On("Lookup", mock.Anything, "Quinoa").Return(sampleRecord("Quinoa", "second"), nil).Once()

	r := NewResolver(nil, first, second, third)
	rec, err := r.Resolve(context.Background(), "Quinoa")
	require.NoError(t, err)
	assert.Equal(t, "second", rec.Source)

	first.AssertExpectations(t)
	second.AssertExpectations(t)
	third.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestResolverErrorsFallThrough(t *testing.T) {
	failing := newMockSource("failing")
	backup := newMockSource("backup")

	failing.On("Lookup", mock.Anything, "lentils").Return(nil, errors.New("connection refused")).Once()
	backup.On("Lookup", mock.Anything, "lentils").Return(sampleRecord("lentils", "backup"), nil).Once()

	r := NewResolver(nil, failing, backup)
	rec, err := r.Resolve(context.Background(), "lentils")
	require.NoError(t, err)
	assert.Equal(t, "backup", rec.Source)
}

func TestResolverNotFound(t *testing.T) {
	a := newMockSource("a")
	b := newMockSource("b")
	a.On("Lookup", mock.Anything, "xyzzy").Return(nil, nil)
	b.On("Lookup", mock.Anything, "xyzzy").Return(nil, errors.New("boom"))

	r := NewResolver(nil, a, b)
	rec, err := r.Resolve(context.Background(), "xyzzy")
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, common.ErrFoodNotFound)
	assert.Equal(t, 0, r.CacheSize())
}

func TestResolverEmptyName(t *testing.T) {
	src := newMockSource("a")
	r := NewResolver(nil, src)

	_, err := r.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, common.ErrFoodNotFound)
	src.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestResolverCachesByLowercaseKey(t *testing.T) {
	src := newMockSource("a")
	src.On("Lookup", mock.Anything, "Tofu").Return(sampleRecord("Tofu", "a"), nil).Once()

	r := NewResolver(nil, src)
	first, err := r.Resolve(context.Background(), "Tofu")
	require.NoError(t, err)

	second, err := r.Resolve(context.Background(), "  TOFU ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, r.CacheSize())
	src.AssertNumberOfCalls(t, "Lookup", 1)
}

func TestResolverReturnsIndependentCopies(t *testing.T) {
	src := newMockSource("a")
	src.On("Lookup", mock.Anything, "rice").Return(sampleRecord("rice", "a"), nil).Once()

	r := NewResolver(nil, src)
	first, err := r.Resolve(context.Background(), "rice")
	require.NoError(t, err)

	first.Metrics.Carbon = 999
	first.Ingredients[0] = "changed"

	second, err := r.Resolve(context.Background(), "rice")
	require.NoError(t, err)
	assert.Equal(t, 1.0, second.Metrics.Carbon)
	assert.Equal(t, []string{"rice"}, second.Ingredients)
}

func TestResolverNormalizesRecords(t *testing.T) {
	src := newMockSource("a")
	rec := &Record{FoodName: "odd", EnvironmentalScore: 42}
	src.On("Lookup", mock.Anything, "odd").Return(rec, nil).Once()

	r := NewResolver(nil, src)
	got, err := r.Resolve(context.Background(), "odd")
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.EnvironmentalScore)
	assert.NotNil(t, got.Ingredients)
	assert.NotNil(t, got.Certifications)
}

func TestResolverStopsOnCancelledContext(t *testing.T) {
	src := newMockSource("a")
	r := NewResolver(nil, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, "beef")
	assert.ErrorIs(t, err, common.ErrFoodNotFound)
	src.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestResolverConcurrentResolves(t *testing.T) {
	local, err := LoadCuratedFoods()
	require.NoError(t, err)
	r := NewResolver(nil, NewLocalSource(local, NewKeywordAnnotator()))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := r.Resolve(context.Background(), "beef")
			assert.NoError(t, err)
			assert.Equal(t, "Beef", rec.FoodName)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, r.CacheSize())
}

func TestResolverSources(t *testing.T) {
	r := NewResolver(nil, newMockSource("local"), newMockSource("openfoodfacts"), newMockSource("usda"))
	assert.Equal(t, []string{"local", "openfoodfacts", "usda"}, r.Sources())
}

func TestGuardedSourceOpensAfterFailures(t *testing.T) {
	src := newMockSource("flaky")
	src.On("Lookup", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	guarded := WithBreaker(src, config.BreakerConfig{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Hour,
		MinRequests:  2,
		FailureRatio: 0.5,
	})
	assert.Equal(t, "flaky", guarded.Name())

	for i := 0; i < 2; i++ {
		_, err := guarded.Lookup(context.Background(), "beef")
		require.Error(t, err)
		assert.False(t, breaker.IsRejected(err))
	}

	_, err := guarded.Lookup(context.Background(), "beef")
	assert.True(t, breaker.IsRejected(err))
	src.AssertNumberOfCalls(t, "Lookup", 2)
}

func TestGuardedSourceTreatsNoDataAsSuccess(t *testing.T) {
	src := newMockSource("empty")
	src.On("Lookup", mock.Anything, mock.Anything).Return(nil, nil)

	guarded := WithBreaker(src, config.BreakerConfig{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Hour,
		MinRequests:  1,
		FailureRatio: 0.5,
	})

	for i := 0; i < 5; i++ {
		rec, err := guarded.Lookup(context.Background(), "nothing")
		assert.NoError(t, err)
		assert.Nil(t, rec)
	}
	src.AssertNumberOfCalls(t, "Lookup", 5)
}
