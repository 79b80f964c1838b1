package ai

import "context"

// Response 生成式文字回應
type Response struct {
	Text     string `json:"text"`
	Model    string `json:"model"`
	Usage    Usage  `json:"usage"`
	CacheHit bool   `json:"cache_hit"`
}

// Usage 使用量
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Generator 定義生成式文字服務介面
type Generator interface {
	// Generate 以單一提示詞生成文字
	Generate(ctx context.Context, prompt string) (*Response, error)

	// Model 使用中的模型名稱
	Model() string
}

// ResponseCache 以提示詞為鍵的回應快取；未命中回傳 common.ErrCacheMiss
type ResponseCache interface {
	Get(ctx context.Context, prompt string) (*Response, error)
	Set(ctx context.Context, prompt string, resp *Response) error
}
