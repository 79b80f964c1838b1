package breaker

import (
	"errors"
	"testing"
	"time"

	"food-sustainability/internal/infrastructure/config"
	"food-sustainability/internal/infrastructure/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.BreakerConfig {
	return config.BreakerConfig{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  2,
		FailureRatio: 0.5,
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	b := New[int]("test-open", testConfig())
	failure := errors.New("upstream down")

	for i := 0; i < 2; i++ {
		_, err := b.Execute(func() (int, error) { return 0, failure })
		require.ErrorIs(t, err, failure)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-open")))

	called := false
	_, err := b.Execute(func() (int, error) {
		called = true
		return 1, nil
	})
	assert.False(t, called)
	assert.True(t, IsRejected(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-open", "rejected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CircuitBreakerRequests.WithLabelValues("test-open", "failure")))
}

func TestBreakerStaysClosedBelowMinRequests(t *testing.T) {
	b := New[string]("test-closed", testConfig())

	_, err := b.Execute(func() (string, error) { return "", errors.New("once") })
	require.Error(t, err)

	v, err := b.Execute(func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, gobreaker.StateClosed, b.State())
	assert.Equal(t, "test-closed", b.Name())
}

func TestIsRejected(t *testing.T) {
	assert.True(t, IsRejected(gobreaker.ErrOpenState))
	assert.True(t, IsRejected(gobreaker.ErrTooManyRequests))
	assert.False(t, IsRejected(errors.New("other")))
}
