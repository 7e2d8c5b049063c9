package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/domain/shared"
)

// DefaultChannelPrefix prefixes the Redis channel each event is published on.
const DefaultChannelPrefix = "portal:events:"

// Publisher is the subset of redis.UniversalClient the forwarder needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Envelope is the wire format of a forwarded event.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// RedisForwarder is a wildcard handler that republishes domain events on
// Redis pub/sub so other services can react to order and shipment changes.
type RedisForwarder struct {
	client Publisher
	prefix string
}

// NewRedisForwarder creates a forwarder publishing on prefix+eventType.
func NewRedisForwarder(client Publisher, prefix string) *RedisForwarder {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisForwarder{client: client, prefix: prefix}
}

// EventTypes returns nil so the forwarder receives every event.
func (f *RedisForwarder) EventTypes() []string { return nil }

// Handle serializes evt into an Envelope and publishes it.
func (f *RedisForwarder) Handle(ctx context.Context, evt shared.DomainEvent) error {
	msg, err := Encode(evt)
	if err != nil {
		return err
	}
	if err := f.client.Publish(ctx, f.prefix+evt.EventType(), msg).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", evt.EventType(), err)
	}
	return nil
}

// Encode marshals evt into an Envelope.
func Encode(evt shared.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", evt.EventType(), err)
	}
	return json.Marshal(Envelope{
		EventID:       evt.EventID().String(),
		EventType:     evt.EventType(),
		AggregateType: evt.AggregateType(),
		AggregateID:   evt.AggregateID().String(),
		OccurredAt:    evt.OccurredAt().UTC(),
		Payload:       payload,
	})
}
