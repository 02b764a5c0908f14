// Package notifications fans stored notifications out to Redis channels.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifier publishes notification payloads. A Notifier without a Redis client is a no-op.
type Notifier struct {
	rdb *redis.Client
}

func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// UserChannel is the channel a recipient's notifications are published on.
func UserChannel(userID primitive.ObjectID) string {
	return fmt.Sprintf("notifications:user:%s", userID.Hex())
}

// Publish sends notification, with its actor embedded, to the recipient's channel.
func (n *Notifier) Publish(ctx context.Context, notification models.NotificationView) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return n.rdb.Publish(ctx, UserChannel(notification.To), payload).Err()
}
