// Package notify delivers best-effort notifications to users. Deliveries
// are fire-and-forget: a failed notification is logged and never fails the
// state transition that triggered it.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind string, payload map[string]interface{}) error
}

type event struct {
	UserID  uuid.UUID              `json:"user_id"`
	Kind    string                 `json:"kind"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	SentAt  time.Time              `json:"sent_at"`
}

// RedisNotifier publishes notification events on a pub/sub channel consumed
// by the delivery workers.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(client *redis.Client, channel string) *RedisNotifier {
	return &RedisNotifier{client: client, channel: channel}
}

func (n *RedisNotifier) Notify(ctx context.Context, userID uuid.UUID, kind string, payload map[string]interface{}) error {
	b, err := json.Marshal(event{UserID: userID, Kind: kind, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, b).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}

// Nop drops every notification; used in tests and when redis is disabled.
type Nop struct{}

func (Nop) Notify(context.Context, uuid.UUID, string, map[string]interface{}) error { return nil }
