package entities

import (
	"time"

	"github.com/google/uuid"
)

// NotificationEvent is pushed on the event bus whenever a notification is stored
type NotificationEvent struct {
	ID           string        `json:"id"`
	UserID       string        `json:"userId"`
	Timestamp    time.Time     `json:"timestamp"`
	Notification *Notification `json:"notification"`
}

// NewNotificationEvent wraps a stored notification for delivery
func NewNotificationEvent(n *Notification) *NotificationEvent {
	return &NotificationEvent{
		ID:           uuid.New().String(),
		UserID:       n.UserID,
		Timestamp:    time.Now().UTC(),
		Notification: n,
	}
}
