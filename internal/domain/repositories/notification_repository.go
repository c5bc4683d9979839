package repositories

import (
	"context"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
)

// NotificationRepository defines the interface for in-app notification storage
type NotificationRepository interface {
	Create(ctx context.Context, notification *entities.Notification) error
	GetByID(ctx context.Context, id string) (*entities.Notification, error)
	List(ctx context.Context, filter NotificationFilter, page entities.Pagination) ([]*entities.Notification, int, error)
	MarkRead(ctx context.Context, id string, read bool) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

// NotificationFilter defines filters for listing notifications
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
}
