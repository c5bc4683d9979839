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

var paymentColumns = []interface{}{
	"id", "booking_id", "user_id", "amount", "refunded_amount", "currency",
	"method", "status", "provider", "provider_ref", "failure_reason",
	"created_at", "updated_at",
}

// PaymentAdapter implements the PaymentRepository interface.
// Queries are built with goqu and scanned with sqlx.
type PaymentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPaymentAdapter creates a new payment adapter
func NewPaymentAdapter(client *postgres.Client) repositories.PaymentRepository {
	return &PaymentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new payment
func (a *PaymentAdapter) Create(ctx context.Context, payment *entities.Payment) error {
	query, args, err := a.db.Insert("payments").Rows(goqu.Record{
		"id":              payment.ID,
		"booking_id":      payment.BookingID,
		"user_id":         payment.UserID,
		"amount":          payment.Amount,
		"refunded_amount": payment.RefundedAmount,
		"currency":        payment.Currency,
		"method":          payment.Method,
		"status":          payment.Status,
		"provider":        payment.Provider,
		"provider_ref":    payment.ProviderRef,
		"failure_reason":  payment.FailureReason,
		"created_at":      payment.CreatedAt,
		"updated_at":      payment.UpdatedAt,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create payment", err)
	}
	return nil
}

// GetByID retrieves a payment by ID
func (a *PaymentAdapter) GetByID(ctx context.Context, id string) (*entities.Payment, error) {
	query, args, err := a.db.Select(paymentColumns...).
		From("payments").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var payment entities.Payment
	err = a.client.DBX().GetContext(ctx, &payment, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("payment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get payment", err)
	}
	return &payment, nil
}

// Update persists status, amounts and provider fields
func (a *PaymentAdapter) Update(ctx context.Context, payment *entities.Payment) error {
	payment.UpdatedAt = time.Now().UTC()

	query, args, err := a.db.Update("payments").
		Set(goqu.Record{
			"status":          payment.Status,
			"refunded_amount": payment.RefundedAmount,
			"provider":        payment.Provider,
			"provider_ref":    payment.ProviderRef,
			"failure_reason":  payment.FailureReason,
			"updated_at":      payment.UpdatedAt,
		}).
		Where(goqu.Ex{"id": payment.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update payment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("payment with id %s not found", payment.ID))
	}
	return nil
}

// List returns one page of payments, newest first
func (a *PaymentAdapter) List(ctx context.Context, filter repositories.PaymentFilter, page entities.Pagination) ([]*entities.Payment, int, error) {
	var where []exp.Expression
	if filter.UserID != "" {
		where = append(where, goqu.C("user_id").Eq(filter.UserID))
	}
	if filter.BookingID != "" {
		where = append(where, goqu.C("booking_id").Eq(filter.BookingID))
	}
	if filter.Status != "" {
		where = append(where, goqu.C("status").Eq(filter.Status))
	}
	if filter.HostID != "" {
		hostBookings := a.db.From("bookings").Select("id").Where(goqu.C("host_id").Eq(filter.HostID))
		where = append(where, goqu.C("booking_id").In(hostBookings))
	}

	countQuery, countArgs, err := a.db.From("payments").Select(goqu.COUNT("*")).Where(where...).ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var total int
	if err := a.client.DB().QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to count payments", err)
	}
	if total == 0 {
		return []*entities.Payment{}, 0, nil
	}

	query, args, err := a.db.Select(paymentColumns...).
		From("payments").
		Where(where...).
		Order(goqu.I("created_at").Desc()).
		Limit(uint(page.Limit())).
		Offset(uint(page.Offset())).
		ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build query", err)
	}

	payments := []*entities.Payment{}
	if err := a.client.DBX().SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to list payments", err)
	}
	return payments, total, nil
}

// ListByBooking returns every payment of a booking, oldest first
func (a *PaymentAdapter) ListByBooking(ctx context.Context, bookingID string) ([]*entities.Payment, error) {
	query, args, err := a.db.Select(paymentColumns...).
		From("payments").
		Where(goqu.C("booking_id").Eq(bookingID)).
		Order(goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	payments := []*entities.Payment{}
	if err := a.client.DBX().SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list booking payments", err)
	}
	return payments, nil
}
