package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"food-sustainability/internal/core/ai"
	"food-sustainability/internal/infrastructure/config"
	"food-sustainability/internal/infrastructure/metrics"
	"food-sustainability/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "food-sustainability:ai:"

// Service 以 Redis 共享的緩存服務
type Service struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ai.ResponseCache = (*Service)(nil)

// NewService 創建緩存服務；停用時回傳的服務所有操作都是空操作
func NewService(ctx context.Context, cfg config.RedisConfig) (*Service, error) {
	if !cfg.Enabled {
		return &Service{ttl: cfg.TTL}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Service{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

// Enabled 是否連線到 Redis
func (s *Service) Enabled() bool {
	return s.client != nil
}

// Get 獲取緩存
func (s *Service) Get(ctx context.Context, prompt string) (*ai.Response, error) {
	if s.client == nil {
		return nil, common.ErrCacheDisabled
	}

	data, err := s.client.Get(ctx, redisKey(prompt)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.ResponseCache.WithLabelValues("redis", "miss").Inc()
			return nil, common.ErrCacheMiss
		}
		metrics.ResponseCache.WithLabelValues("redis", "error").Inc()
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var resp ai.Response
	if err := common.ParseJSONBytes(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache: %w", err)
	}

	metrics.ResponseCache.WithLabelValues("redis", "hit").Inc()
	resp.CacheHit = true
	return &resp, nil
}

// Set 設置緩存
func (s *Service) Set(ctx context.Context, prompt string, resp *ai.Response) error {
	if s.client == nil || resp == nil {
		return nil
	}

	value := *resp
	value.CacheHit = false
	data, err := common.MarshalJSON(value)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if err := s.client.Set(ctx, redisKey(prompt), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 關閉連線
func (s *Service) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

func redisKey(prompt string) string {
	return keyPrefix + generateKey(prompt)
}
