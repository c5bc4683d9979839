package providers

import (
	"context"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to notification events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.NotificationEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.NotificationEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelNotificationPrefix is the prefix for per-user notification channels
const EventChannelNotificationPrefix = "notifications:"

// GetNotificationChannel returns the channel name for a user's notifications
func GetNotificationChannel(userID string) string {
	return EventChannelNotificationPrefix + userID
}
