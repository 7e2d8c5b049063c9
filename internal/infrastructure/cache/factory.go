package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/infrastructure/config"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// NewPerformanceCache returns a Redis cache when Redis is enabled and
// reachable, otherwise an in-memory one. The returned close func releases
// the Redis connection, if any.
func NewPerformanceCache(cfg config.RedisConfig, ttl time.Duration, logger *zap.Logger) (PerformanceCache, func() error) {
	noop := func() error { return nil }
	if !cfg.Enabled {
		logger.Info("using in-memory supplier performance cache")
		return NewInMemoryPerformanceCache(ttl), noop
	}

	client, err := Connect(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory supplier performance cache", zap.Error(err))
		return NewInMemoryPerformanceCache(ttl), noop
	}
	logger.Info("using Redis supplier performance cache", zap.String("addr", cfg.Addr()))
	return NewRedisPerformanceCache(client, DefaultPerformanceKey, ttl), client.Close
}

// Connect opens a Redis client and verifies it with PING
func Connect(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
