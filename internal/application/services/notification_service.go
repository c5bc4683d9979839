package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/providers"
	"github.com/zatekoja/vacationrentals/internal/domain/repositories"
	apperrors "github.com/zatekoja/vacationrentals/pkg/errors"
	"github.com/zatekoja/vacationrentals/pkg/validation"
)

// NotificationService stores in-app notifications and pushes them to live subscribers
type NotificationService struct {
	repo      repositories.NotificationRepository
	eventBus  providers.EventBus
	validator *validation.Validator
}

// NewNotificationService creates a new notification service. eventBus may be nil.
func NewNotificationService(repo repositories.NotificationRepository, eventBus providers.EventBus, v *validation.Validator) *NotificationService {
	return &NotificationService{
		repo:      repo,
		eventBus:  eventBus,
		validator: v,
	}
}

// CreateNotificationRequest is an administrator's system announcement to one user
type CreateNotificationRequest struct {
	UserID  string                    `json:"userId" validate:"required"`
	Type    entities.NotificationType `json:"type"`
	Title   string                    `json:"title" validate:"required,max=200"`
	Message string                    `json:"message" validate:"required,max=2000"`
	Data    entities.NotificationData `json:"data"`
}

// NotificationPage is one page of a user's notifications
type NotificationPage struct {
	Notifications []*entities.Notification `json:"notifications"`
	Pagination    entities.PageMeta        `json:"pagination"`
	UnreadCount   int                      `json:"unreadCount"`
}

// Notify stores a notification for userID and publishes it. Failures are
// logged and never returned, so business operations are not rolled back.
func (s *NotificationService) Notify(ctx context.Context, userID string, notifType entities.NotificationType, title, message string, data entities.NotificationData) {
	if s == nil || userID == "" {
		return
	}
	if _, err := s.store(ctx, userID, notifType, title, message, data); err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("user_id", userID).
			Str("type", string(notifType)).
			Msg("Failed to store notification")
	}
}

func (s *NotificationService) store(ctx context.Context, userID string, notifType entities.NotificationType, title, message string, data entities.NotificationData) (*entities.Notification, error) {
	if data == nil {
		data = entities.NotificationData{}
	}
	n := &entities.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	s.publish(ctx, n)
	return n, nil
}

func (s *NotificationService) publish(ctx context.Context, n *entities.Notification) {
	if s.eventBus == nil {
		return
	}
	channel := providers.GetNotificationChannel(n.UserID)
	if err := s.eventBus.Publish(ctx, channel, entities.NewNotificationEvent(n)); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("channel", channel).Msg("Failed to publish notification event")
	}
}

// Create stores a system notification on behalf of an administrator
func (s *NotificationService) Create(ctx context.Context, actor entities.Actor, req CreateNotificationRequest) (*entities.Notification, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, forbidden("create notifications")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	if req.Type == "" {
		req.Type = entities.NotificationSystem
	}
	if !req.Type.Valid() {
		return nil, apperrors.NewValidationError("type is invalid")
	}

	return s.store(ctx, req.UserID, req.Type,
		s.validator.Sanitize(req.Title), s.validator.Sanitize(req.Message), req.Data)
}

// List returns the actor's own notifications with the unread count
func (s *NotificationService) List(ctx context.Context, actor entities.Actor, unreadOnly bool, page entities.Pagination) (*NotificationPage, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	items, total, err := s.repo.List(ctx, repositories.NotificationFilter{
		UserID:     actor.UserID,
		UnreadOnly: unreadOnly,
	}, page)
	if err != nil {
		return nil, err
	}

	unread, err := s.repo.CountUnread(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	return &NotificationPage{
		Notifications: items,
		Pagination:    page.Meta(total),
		UnreadCount:   unread,
	}, nil
}

// Get returns a notification visible to the actor
func (s *NotificationService) Get(ctx context.Context, actor entities.Actor, id string) (*entities.Notification, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, forbidden("access this notification")
	}
	return n, nil
}

// SetRead marks a notification read or unread
func (s *NotificationService) SetRead(ctx context.Context, actor entities.Actor, id string, read bool) (*entities.Notification, error) {
	n, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkRead(ctx, id, read); err != nil {
		return nil, err
	}

	n.IsRead = read
	n.ReadAt = nil
	if read {
		now := time.Now().UTC()
		n.ReadAt = &now
	}
	return n, nil
}

// Delete removes a notification owned by the actor
func (s *NotificationService) Delete(ctx context.Context, actor entities.Actor, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// MarkAllRead marks every notification of the actor as read
func (s *NotificationService) MarkAllRead(ctx context.Context, actor entities.Actor) (int64, error) {
	if err := requireActor(actor); err != nil {
		return 0, err
	}
	return s.repo.MarkAllRead(ctx, actor.UserID)
}
