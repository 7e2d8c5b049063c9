package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/reliability"
)

// DefaultPerformanceKey is the Redis key holding the scorecard JSON
const DefaultPerformanceKey = "portal:supplier_performance"

// KV is the subset of the go-redis client the cache uses
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisPerformanceCache shares the scorecard across portal instances. The
// generation lives in its own key; a stored scorecard tagged with an older
// generation reads as a miss.
type RedisPerformanceCache struct {
	client KV
	key    string
	genKey string
	ttl    time.Duration
}

type performanceEntry struct {
	Generation int64                             `json:"generation"`
	Suppliers  []reliability.SupplierPerformance `json:"suppliers"`
}

// NewRedisPerformanceCache creates a Redis-backed cache
func NewRedisPerformanceCache(client KV, key string, ttl time.Duration) *RedisPerformanceCache {
	if key == "" {
		key = DefaultPerformanceKey
	}
	return &RedisPerformanceCache{client: client, key: key, genKey: key + ":generation", ttl: ttl}
}

// Get implements PerformanceCache
func (c *RedisPerformanceCache) Get(ctx context.Context) ([]reliability.SupplierPerformance, int64, bool, error) {
	vals, err := c.client.MGet(ctx, c.key, c.genKey).Result()
	if err != nil {
		return nil, 0, false, fmt.Errorf("read supplier performance: %w", err)
	}
	if len(vals) != 2 {
		return nil, 0, false, fmt.Errorf("read supplier performance: expected 2 values, got %d", len(vals))
	}
	gen, err := parseGeneration(vals[1])
	if err != nil {
		return nil, 0, false, err
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, false, nil
	}
	var entry performanceEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, gen, false, fmt.Errorf("decode supplier performance: %w", err)
	}
	if entry.Generation != gen {
		return nil, gen, false, nil
	}
	return entry.Suppliers, gen, true, nil
}

// Set implements PerformanceCache
func (c *RedisPerformanceCache) Set(ctx context.Context, generation int64, perf []reliability.SupplierPerformance) error {
	current, err := c.generation(ctx)
	if err != nil {
		return err
	}
	if current != generation {
		return nil
	}
	raw, err := json.Marshal(performanceEntry{Generation: generation, Suppliers: perf})
	if err != nil {
		return fmt.Errorf("encode supplier performance: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("write supplier performance: %w", err)
	}
	return nil
}

// Invalidate implements PerformanceCache
func (c *RedisPerformanceCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, c.genKey).Err(); err != nil {
		return fmt.Errorf("invalidate supplier performance: %w", err)
	}
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("invalidate supplier performance: %w", err)
	}
	return nil
}

func (c *RedisPerformanceCache) generation(ctx context.Context) (int64, error) {
	raw, err := c.client.Get(ctx, c.genKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read supplier performance generation: %w", err)
	}
	return parseGeneration(raw)
}

func parseGeneration(v any) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	gen, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode supplier performance generation: %w", err)
	}
	return gen, nil
}

var _ PerformanceCache = (*RedisPerformanceCache)(nil)
