// Package cache holds the supplier performance cache and its invalidation.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/reliability"
)

// PerformanceCache stores the last computed supplier scorecard.
//
// Every Invalidate advances a generation. A reader that misses gets the
// current generation and passes it back to Set, which drops the write if an
// invalidation happened in between, so a scorecard computed before an order
// write can never outlive that write.
type PerformanceCache interface {
	// Get returns the cached scorecard and whether it was present and fresh,
	// along with the generation a following Set must quote.
	Get(ctx context.Context) ([]reliability.SupplierPerformance, int64, bool, error)
	Set(ctx context.Context, generation int64, perf []reliability.SupplierPerformance) error
	Invalidate(ctx context.Context) error
}

// InMemoryPerformanceCache is a process-local PerformanceCache
type InMemoryPerformanceCache struct {
	mu         sync.RWMutex
	ttl        time.Duration
	now        func() time.Time
	generation int64
	value      []reliability.SupplierPerformance
	expiresAt  time.Time
}

// NewInMemoryPerformanceCache creates a cache whose entries live for ttl
func NewInMemoryPerformanceCache(ttl time.Duration) *InMemoryPerformanceCache {
	return &InMemoryPerformanceCache{ttl: ttl, now: time.Now}
}

// Get implements PerformanceCache
func (c *InMemoryPerformanceCache) Get(ctx context.Context) ([]reliability.SupplierPerformance, int64, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.value == nil || !c.now().Before(c.expiresAt) {
		return nil, c.generation, false, nil
	}
	out := make([]reliability.SupplierPerformance, len(c.value))
	copy(out, c.value)
	return out, c.generation, true, nil
}

// Set implements PerformanceCache
func (c *InMemoryPerformanceCache) Set(ctx context.Context, generation int64, perf []reliability.SupplierPerformance) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return nil
	}
	c.value = make([]reliability.SupplierPerformance, len(perf))
	copy(c.value, perf)
	c.expiresAt = c.now().Add(c.ttl)
	return nil
}

// Invalidate implements PerformanceCache
func (c *InMemoryPerformanceCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.value = nil
	return nil
}

var _ PerformanceCache = (*InMemoryPerformanceCache)(nil)
