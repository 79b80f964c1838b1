package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Gemini        GeminiConfig        `mapstructure:"gemini"`
	OpenFoodFacts OpenFoodFactsConfig `mapstructure:"openfoodfacts"`
	USDA          USDAConfig          `mapstructure:"usda"`
	Engine        EngineConfig        `mapstructure:"engine"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Redis         RedisConfig         `mapstructure:"redis"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	Breaker       BreakerConfig       `mapstructure:"breaker"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	DedupWindow   time.Duration       `mapstructure:"dedup_window"`
	LogLevel      string              `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// GeminiConfig 生成式文字服務配置
type GeminiConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	Temperature       float64       `mapstructure:"temperature"`
	MaxOutputTokens   int           `mapstructure:"max_output_tokens"`
	TopP              float64       `mapstructure:"top_p"`
	TopK              int           `mapstructure:"top_k"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// OpenFoodFactsConfig Open Food Facts 配置
type OpenFoodFactsConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// USDAConfig USDA FoodData Central 配置
type USDAConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// EngineConfig 推薦引擎配置
type EngineConfig struct {
	DefaultLimit      int           `mapstructure:"default_limit"`
	MaxLimit          int           `mapstructure:"max_limit"`
	GenerativeTimeout time.Duration `mapstructure:"generative_timeout"`
	InfoTimeout       time.Duration `mapstructure:"info_timeout"`
	AIInfoTimeout     time.Duration `mapstructure:"ai_info_timeout"`
	Seed              int64         `mapstructure:"seed"`
}

// CacheConfig 生成式回應快取配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig 共享快取配置
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// BreakerConfig 外部來源熔斷器配置
type BreakerConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MinRequests  uint32        `mapstructure:"min_requests"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// MetricsConfig Prometheus 配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 為可選
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定常用環境變量
	_ = v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("gemini.model", "GEMINI_MODEL")
	_ = v.BindEnv("usda.api_key", "USDA_API_KEY")
	_ = v.BindEnv("redis.enabled", "REDIS_ENABLED")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("cache.enabled", "CACHE_ENABLED")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("app.env", "ENV")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	// 可選的 config.yaml
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// logger 尚未初始化，寫到 stderr 以免干擾 CLI 輸出
	fmt.Fprintln(os.Stderr, "Loading configuration", "gemini_api_key:", maskAPIKey(v.GetString("gemini.api_key")), "gemini_model:", v.GetString("gemini.model"))

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 沒有金鑰時停用生成式服務，而不是啟動失敗
	if config.Gemini.APIKey == "" {
		config.Gemini.Enabled = false
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Default 回傳只包含預設值的設定，供 CLI 與測試使用
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	_ = v.Unmarshal(&config)
	config.Gemini.Enabled = false
	return &config
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "food-sustainability")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB

	// 生成式文字服務
	v.SetDefault("gemini.enabled", true)
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.timeout", "5s")
	v.SetDefault("gemini.temperature", 0.2)
	v.SetDefault("gemini.max_output_tokens", 300)
	v.SetDefault("gemini.top_p", 0.8)
	v.SetDefault("gemini.top_k", 40)
	v.SetDefault("gemini.requests_per_second", 2.0)
	v.SetDefault("gemini.burst", 4)

	// 外部資料庫
	v.SetDefault("openfoodfacts.enabled", true)
	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.timeout", "5s")
	v.SetDefault("usda.enabled", true)
	v.SetDefault("usda.base_url", "https://api.nal.usda.gov/fdc/v1")
	v.SetDefault("usda.api_key", "DEMO_KEY")
	v.SetDefault("usda.timeout", "5s")

	// 推薦引擎
	v.SetDefault("engine.default_limit", 3)
	v.SetDefault("engine.max_limit", 20)
	v.SetDefault("engine.generative_timeout", "5s")
	v.SetDefault("engine.info_timeout", "2s")
	v.SetDefault("engine.ai_info_timeout", "3s")
	v.SetDefault("engine.seed", 42)

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "24h")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 熔斷器
	v.SetDefault("breaker.max_requests", 3)
	v.SetDefault("breaker.interval", "1m")
	v.SetDefault("breaker.timeout", "2m")
	v.SetDefault("breaker.min_requests", 10)
	v.SetDefault("breaker.failure_ratio", 0.6)

	// 監控
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}

	if config.Engine.DefaultLimit <= 0 || config.Engine.MaxLimit < config.Engine.DefaultLimit {
		return fmt.Errorf("invalid engine limits: default=%d max=%d", config.Engine.DefaultLimit, config.Engine.MaxLimit)
	}
	if config.Engine.GenerativeTimeout <= 0 || config.Engine.InfoTimeout <= 0 || config.Engine.AIInfoTimeout <= 0 {
		return fmt.Errorf("engine timeouts must be positive")
	}

	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	if config.Breaker.FailureRatio <= 0 || config.Breaker.FailureRatio > 1 {
		return fmt.Errorf("breaker failure ratio must be in (0,1]")
	}

	return nil
}
