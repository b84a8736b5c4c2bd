package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// envelope is the published wire shape: the event-type tag plus the
// event payload.
type envelope struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

// RedisPublisher publishes envelopes to a redis pub/sub channel.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	if client == nil {
		panic("publish: redis client must not be nil")
	}
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel, eventType string, payload map[string]any) error {
	body, err := json.Marshal(envelope{Event: eventType, Data: payload})
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", eventType, err)
	}
	if err := p.client.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", eventType, channel, err)
	}
	slog.Info("[Redis] Published event", "channel", channel, "event", eventType)
	return nil
}
