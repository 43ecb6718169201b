// Package notifications publishes domain events to Redis pub/sub channels.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"yatube/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// BroadcastChannel receives events every subscriber should see.
const BroadcastChannel = "notifications:broadcast"

const (
	EventPostCreated  = "post_created"
	EventNewFollower  = "new_follower"
	EventCommentAdded = "comment_added"
)

// Event is the JSON envelope published on every channel.
type Event struct {
	Type      string    `json:"type"`
	ActorID   uint      `json:"actor_id"`
	PostID    uint      `json:"post_id,omitempty"`
	CommentID uint      `json:"comment_id,omitempty"`
	AuthorID  uint      `json:"author_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	At        time.Time `json:"at"`
}

// UserChannel returns the channel for events addressed to userID.
func UserChannel(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishBroadcast sends a notification payload to all subscribers.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, BroadcastChannel, payload).Err()
}

// PublishEvent encodes ev and publishes it to userID's channel, or to the
// broadcast channel when userID is 0.
func (n *Notifier) PublishEvent(ctx context.Context, userID uint, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if userID == 0 {
		return n.PublishBroadcast(ctx, string(payload))
	}
	return n.PublishUser(ctx, userID, string(payload))
}

// Notify publishes ev and logs, rather than returns, any failure.
func (n *Notifier) Notify(ctx context.Context, userID uint, ev Event) {
	if err := n.PublishEvent(ctx, userID, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish notification",
			slog.String("type", ev.Type),
			slog.String("error", err.Error()),
		)
	}
}
