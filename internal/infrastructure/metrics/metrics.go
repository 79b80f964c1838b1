// Package metrics 定義服務的 Prometheus 指標
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolverCache 解析器快取命中/未命中
	ResolverCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "impact_resolver_cache_total",
			Help: "Impact resolver cache lookups by result",
		},
		[]string{"result"}, // result: "hit", "miss"
	)

	// SourceLookups 各資料來源查詢結果
	SourceLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "impact_source_lookups_total",
			Help: "Impact source adapter lookups by source and outcome",
		},
		[]string{"source", "outcome"}, // outcome: "found", "no_data", "error"
	)

	// Resolutions 解析結果（由哪個來源回答或找不到）
	Resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "impact_resolutions_total",
			Help: "Impact resolutions by answering source",
		},
		[]string{"source"}, // source name or "not_found"
	)

	// GenerativeRequests 生成式產生器結果
	GenerativeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generative_requests_total",
			Help: "Generative text requests by outcome",
		},
		[]string{"outcome"}, // outcome: "success", "empty", "error", "throttled", "cached"
	)

	// ResponseCache 生成式回應快取查詢結果
	ResponseCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generative_cache_lookups_total",
			Help: "Generative response cache lookups by layer and result",
		},
		[]string{"layer", "result"}, // layer: "memory", "redis"; result: "hit", "miss", "expired", "error"
	)

	// Recommendations 推薦結果來源
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Recommendation responses by source label",
		},
		[]string{"source"}, // source: "ai", "ml", "fallback"
	)

	// CircuitBreakerState 熔斷器狀態
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerRequests 經過熔斷器的請求
	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	// HTTPRequests API 請求統計
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status class",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPDuration API 請求耗時
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)
