package cache

import (
	"context"

	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/procurement"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/shared"
)

// InvalidationHandler drops the cached scorecard whenever order history changes
type InvalidationHandler struct {
	cache PerformanceCache
}

// NewInvalidationHandler creates a handler for the order event types
func NewInvalidationHandler(cache PerformanceCache) *InvalidationHandler {
	return &InvalidationHandler{cache: cache}
}

// EventTypes implements shared.EventHandler
func (h *InvalidationHandler) EventTypes() []string {
	return procurement.OrderEventTypes
}

// Handle implements shared.EventHandler
func (h *InvalidationHandler) Handle(ctx context.Context, _ shared.DomainEvent) error {
	return h.cache.Invalidate(ctx)
}

var _ shared.EventHandler = (*InvalidationHandler)(nil)
