// Package notifications delivers toast messages to session clients over
// Redis pub/sub. Clients subscribe to their session channel; publishing is
// fire-and-forget and never blocks the operation that triggered it.
package notifications

import (
	"context"
	"encoding/json"
	"time"

	"chronicle/internal/middleware"
	"chronicle/internal/observability"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "notify:session:"

// Kinds of toast a session can receive.
const (
	KindSuccess = "success"
	KindError   = "error"
)

// Toast is the payload published to a session channel.
type Toast struct {
	Kind    string    `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Channel returns the pub/sub channel name for a session id.
func Channel(sid string) string {
	return channelPrefix + sid
}

// RedisNotifier publishes toasts over Redis pub/sub. A nil client falls back
// to logging the toast instead of dropping it silently.
type RedisNotifier struct {
	rdb *redis.Client
}

// NewRedisNotifier creates a notifier. rdb may be nil.
func NewRedisNotifier(rdb *redis.Client) *RedisNotifier {
	return &RedisNotifier{rdb: rdb}
}

// Publish sends a toast to the session channel. Failures are logged and
// swallowed; a lost toast never fails the operation that produced it.
func (n *RedisNotifier) Publish(ctx context.Context, sid, kind, message string) {
	toast := Toast{Kind: kind, Message: message, At: time.Now().UTC()}

	if n.rdb == nil {
		middleware.Logger.InfoContext(ctx, "toast (redis unavailable)",
			"session_id", sid, "kind", kind, "message", message)
		return
	}

	payload, err := json.Marshal(toast)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to encode toast", "error", err)
		return
	}

	if err := n.rdb.Publish(ctx, Channel(sid), payload).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish toast",
			"session_id", sid, "error", err)
		return
	}
	observability.NotificationsPublished.WithLabelValues(kind).Inc()
}
