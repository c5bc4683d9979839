package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/repositories"
	"github.com/zatekoja/vacationrentals/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/vacationrentals/pkg/errors"
)

const notificationSelect = `SELECT id, user_id, type, title, message, data, is_read, created_at, read_at FROM notifications`

// NotificationAdapter implements the NotificationRepository interface
type NotificationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewNotificationAdapter creates a new notification adapter
func NewNotificationAdapter(client *postgres.Client) repositories.NotificationRepository {
	return &NotificationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create stores a notification
func (a *NotificationAdapter) Create(ctx context.Context, n *entities.Notification) error {
	_, err := a.client.DBX().NamedExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, data, is_read, created_at, read_at)
		VALUES (:id, :user_id, :type, :title, :message, :data, :is_read, :created_at, :read_at)`, n)
	if err != nil {
		return apperrors.NewInternalError("failed to create notification", err)
	}
	return nil
}

// GetByID retrieves a notification by ID
func (a *NotificationAdapter) GetByID(ctx context.Context, id string) (*entities.Notification, error) {
	var n entities.Notification
	err := a.client.DBX().GetContext(ctx, &n, notificationSelect+` WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("notification with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get notification", err)
	}
	return &n, nil
}

// List returns one page of a user's notifications, newest first
func (a *NotificationAdapter) List(ctx context.Context, filter repositories.NotificationFilter, page entities.Pagination) ([]*entities.Notification, int, error) {
	where := []exp.Expression{goqu.C("user_id").Eq(filter.UserID)}
	if filter.UnreadOnly {
		where = append(where, goqu.C("is_read").IsFalse())
	}

	countQuery, countArgs, err := a.db.From("notifications").Select(goqu.COUNT("*")).Where(where...).ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var total int
	if err := a.client.DBX().GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to count notifications", err)
	}
	if total == 0 {
		return []*entities.Notification{}, 0, nil
	}

	query, args, err := a.db.From("notifications").
		Select("id", "user_id", "type", "title", "message", "data", "is_read", "created_at", "read_at").
		Where(where...).
		Order(goqu.I("created_at").Desc()).
		Limit(uint(page.Limit())).
		Offset(uint(page.Offset())).
		ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build query", err)
	}

	notifications := []*entities.Notification{}
	if err := a.client.DBX().SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to list notifications", err)
	}
	return notifications, total, nil
}

// MarkRead flips the read flag of one notification
func (a *NotificationAdapter) MarkRead(ctx context.Context, id string, read bool) error {
	var readAt *time.Time
	if read {
		now := time.Now().UTC()
		readAt = &now
	}

	result, err := a.client.DB().ExecContext(ctx,
		`UPDATE notifications SET is_read = $1, read_at = $2 WHERE id = $3`, read, readAt, id)
	if err != nil {
		return apperrors.NewInternalError("failed to update notification", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("notification with id %s not found", id))
	}
	return nil
}

// MarkAllRead marks every unread notification of a user as read
func (a *NotificationAdapter) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result, err := a.client.DB().ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = $1 WHERE user_id = $2 AND is_read = FALSE`,
		time.Now().UTC(), userID)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to mark notifications read", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to get rows affected", err)
	}
	return n, nil
}

// Delete removes a notification
func (a *NotificationAdapter) Delete(ctx context.Context, id string) error {
	result, err := a.client.DB().ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewInternalError("failed to delete notification", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("notification with id %s not found", id))
	}
	return nil
}

// CountUnread returns the number of unread notifications for a user
func (a *NotificationAdapter) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := a.client.DBX().GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to count unread notifications", err)
	}
	return count, nil
}
