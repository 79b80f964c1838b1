// Package gemini 實作 Google Gemini generateContent API 的 ai.Generator
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"food-sustainability/internal/core/ai"
	"food-sustainability/internal/infrastructure/breaker"
	"food-sustainability/internal/infrastructure/config"
	"food-sustainability/internal/infrastructure/metrics"
	"food-sustainability/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client Gemini API 客戶端
type Client struct {
	client  *resty.Client
	config  config.GeminiConfig
	limiter *rate.Limiter
	cb      *breaker.Breaker[*ai.Response]
}

var _ ai.Generator = (*Client)(nil)

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

// Request generateContent 請求
type Request struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// Response generateContent 回應
type Response struct {
	Candidates    []candidate   `json:"candidates"`
	UsageMetadata usageMetadata `json:"usageMetadata"`
}

// apiError Gemini 錯誤格式
type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewClient 創建新的 Gemini 客戶端
func NewClient(cfg config.GeminiConfig, breakerCfg config.BreakerConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", cfg.APIKey)

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		client:  client,
		config:  cfg,
		limiter: rate.NewLimiter(limit, burst),
		cb:      breaker.New[*ai.Response]("gemini", breakerCfg),
	}
}

// Model 實作 ai.Generator
func (c *Client) Model() string {
	return c.config.Model
}

// Generate 生成回應；受速率限制、熔斷器與逾時保護
func (c *Client) Generate(ctx context.Context, prompt string) (*ai.Response, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.GenerativeRequests.WithLabelValues("throttled").Inc()
		return nil, common.Wrap(common.ErrGenerativeThrottled, err)
	}

	resp, err := c.cb.Execute(func() (*ai.Response, error) {
		return c.generate(ctx, prompt)
	})
	switch {
	case err == nil:
		metrics.GenerativeRequests.WithLabelValues("success").Inc()
		return resp, nil
	case breaker.IsRejected(err):
		metrics.GenerativeRequests.WithLabelValues("rejected").Inc()
		return nil, common.Wrap(common.ErrServiceUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		metrics.GenerativeRequests.WithLabelValues("timeout").Inc()
		return nil, common.Wrap(common.ErrGatewayTimeout, err)
	default:
		metrics.GenerativeRequests.WithLabelValues("error").Inc()
		return nil, err
	}
}

func (c *Client) generate(ctx context.Context, prompt string) (*ai.Response, error) {
	req := &Request{
		Contents: []content{
			{
				Role:  "user",
				Parts: []part{{Text: prompt}},
			},
		},
		GenerationConfig: generationConfig{
			Temperature:     c.config.Temperature,
			MaxOutputTokens: c.config.MaxOutputTokens,
			TopP:            c.config.TopP,
			TopK:            c.config.TopK,
		},
	}

	body, err := common.MarshalJSON(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	common.LogDebug("Sending request to Gemini",
		zap.String("model", c.config.Model),
		zap.Int("prompt_length", len(prompt)),
	)

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("model", c.config.Model).
		SetBody(body).
		Post("/models/{model}:generateContent")
	if err != nil {
		common.LogError("Failed to send request to Gemini",
			zap.Error(err),
			zap.String("model", c.config.Model),
		)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, common.Wrap(common.ErrServiceUnavailable, err)
	}

	if resp.StatusCode() != http.StatusOK {
		var apiErr apiError
		msg := common.Truncate(string(resp.Body()), 200)
		if common.ParseJSONBytes(resp.Body(), &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		common.LogError("Gemini returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", c.config.Model),
			zap.String("response", msg),
		)
		if resp.StatusCode() == http.StatusTooManyRequests {
			return nil, common.Wrap(common.ErrGenerativeThrottled, fmt.Errorf("gemini: %s", msg))
		}
		return nil, common.Wrap(common.ErrServiceUnavailable, fmt.Errorf("gemini error (status %d): %s", resp.StatusCode(), msg))
	}

	var result Response
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, common.Wrap(common.ErrMalformedUpstream, fmt.Errorf("failed to parse response: %w", err))
	}

	text := result.text()
	if text == "" {
		metrics.GenerativeRequests.WithLabelValues("empty").Inc()
		return nil, common.Wrap(common.ErrMalformedUpstream, errors.New("empty content in gemini response"))
	}

	common.LogInfo("Successfully generated response from Gemini",
		zap.String("model", c.config.Model),
		zap.Int("content_length", len(text)),
		zap.Duration("duration", time.Since(start)),
	)

	return &ai.Response{
		Text:  text,
		Model: c.config.Model,
		Usage: ai.Usage{
			PromptTokens:     result.UsageMetadata.PromptTokenCount,
			CompletionTokens: result.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      result.UsageMetadata.TotalTokenCount,
		},
	}, nil
}

// text 第一個候選的所有文字片段
func (r *Response) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String())
}
