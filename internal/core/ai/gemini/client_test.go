package gemini

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"food-sustainability/internal/infrastructure/config"
	"food-sustainability/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.GeminiConfig {
	return config.GeminiConfig{
		Enabled:         true,
		APIKey:          "test-key",
		BaseURL:         baseURL,
		Model:           "gemini-test",
		Timeout:         2 * time.Second,
		Temperature:     0.2,
		MaxOutputTokens: 300,
		TopP:            0.8,
		TopK:            40,
	}
}

func testBreaker() config.BreakerConfig {
	return config.BreakerConfig{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Hour,
		MinRequests:  2,
		FailureRatio: 0.5,
	}
}

func TestClientGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req Request
		require.NoError(t, common.ParseJSONBytes(body, &req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "suggest tofu", req.Contents[0].Parts[0].Text)
		assert.Equal(t, 0.2, req.GenerationConfig.Temperature)
		assert.Equal(t, 300, req.GenerationConfig.MaxOutputTokens)
		assert.Equal(t, 0.8, req.GenerationConfig.TopP)
		assert.Equal(t, 40, req.GenerationConfig.TopK)

		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"parts": [{"text": "Tofu - "}, {"text": "low carbon"}]}}],
			"usageMetadata": {"promptTokenCount": 5, "candidatesTokenCount": 4, "totalTokenCount": 9}
		}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), testBreaker())
	assert.Equal(t, "gemini-test", c.Model())

	resp, err := c.Generate(context.Background(), "suggest tofu")
	require.NoError(t, err)
	assert.Equal(t, "Tofu - low carbon", resp.Text)
	assert.Equal(t, "gemini-test", resp.Model)
	assert.Equal(t, 9, resp.Usage.TotalTokens)
	assert.False(t, resp.CacheHit)
}

func TestClientGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   *common.CustomError
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"code":500,"message":"internal"}}`, common.ErrServiceUnavailable},
		{"quota", http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota exceeded"}}`, common.ErrGenerativeThrottled},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, common.ErrMalformedUpstream},
		{"broken json", http.StatusOK, `{"candidates":`, common.ErrMalformedUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(testConfig(srv.URL), testBreaker())
			resp, err := c.Generate(context.Background(), "prompt")
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClientGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	c := NewClient(cfg, testBreaker())

	_, err := c.Generate(context.Background(), "slow")
	assert.Error(t, err)
}

func TestClientBreakerOpens(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), testBreaker())
	for i := 0; i < 2; i++ {
		_, err := c.Generate(context.Background(), "x")
		require.Error(t, err)
	}

	_, err := c.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, common.ErrServiceUnavailable)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClientRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.RequestsPerSecond = 0.001
	cfg.Burst = 1
	cfg.Timeout = 100 * time.Millisecond
	c := NewClient(cfg, testBreaker())

	_, err := c.Generate(context.Background(), "first")
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "second")
	assert.ErrorIs(t, err, common.ErrGenerativeThrottled)
}
