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

var bookingColumns = []interface{}{
	"id", "property_id", "guest_id", "host_id", "check_in", "check_out",
	"guests", "total_price", "currency", "status", "special_requests",
	"cancellation_reason", "created_at", "updated_at",
}

// BookingAdapter implements the BookingRepository interface
type BookingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewBookingAdapter creates a new booking adapter
func NewBookingAdapter(client *postgres.Client) repositories.BookingRepository {
	return &BookingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new booking
func (a *BookingAdapter) Create(ctx context.Context, booking *entities.Booking) error {
	record := goqu.Record{
		"id":                  booking.ID,
		"property_id":         booking.PropertyID,
		"guest_id":            booking.GuestID,
		"host_id":             booking.HostID,
		"check_in":            booking.CheckIn.Format(entities.DateLayout),
		"check_out":           booking.CheckOut.Format(entities.DateLayout),
		"guests":              booking.Guests,
		"total_price":         booking.TotalPrice,
		"currency":            booking.Currency,
		"status":              booking.Status,
		"special_requests":    booking.SpecialRequests,
		"cancellation_reason": booking.CancellationReason,
		"created_at":          booking.CreatedAt,
		"updated_at":          booking.UpdatedAt,
	}

	query, args, err := a.db.Insert("bookings").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create booking", err)
	}
	return nil
}

// GetByID retrieves a booking by ID
func (a *BookingAdapter) GetByID(ctx context.Context, id string) (*entities.Booking, error) {
	query, args, err := a.db.Select(bookingColumns...).
		From("bookings").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	booking, err := scanBooking(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("booking with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get booking", err)
	}
	return booking, nil
}

// UpdateStatus updates the status of a booking
func (a *BookingAdapter) UpdateStatus(ctx context.Context, id string, status entities.BookingStatus, reason string) error {
	record := goqu.Record{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if reason != "" {
		record["cancellation_reason"] = reason
	}

	query, args, err := a.db.Update("bookings").
		Set(record).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update booking status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("booking with id %s not found", id))
	}
	return nil
}

// List returns one page of bookings, newest check-in first
func (a *BookingAdapter) List(ctx context.Context, filter repositories.BookingFilter, page entities.Pagination) ([]*entities.Booking, int, error) {
	var where []exp.Expression
	if filter.GuestID != "" {
		where = append(where, goqu.C("guest_id").Eq(filter.GuestID))
	}
	if filter.HostID != "" {
		where = append(where, goqu.C("host_id").Eq(filter.HostID))
	}
	if filter.PropertyID != "" {
		where = append(where, goqu.C("property_id").Eq(filter.PropertyID))
	}
	if filter.Status != "" {
		where = append(where, goqu.C("status").Eq(filter.Status))
	}

	countQuery, countArgs, err := a.db.From("bookings").Select(goqu.COUNT("*")).Where(where...).ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var total int
	if err := a.client.DB().QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to count bookings", err)
	}
	if total == 0 {
		return []*entities.Booking{}, 0, nil
	}

	query, args, err := a.db.Select(bookingColumns...).
		From("bookings").
		Where(where...).
		Order(goqu.I("check_in").Desc(), goqu.I("created_at").Desc()).
		Limit(uint(page.Limit())).
		Offset(uint(page.Offset())).
		ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build query", err)
	}

	bookings, err := a.query(ctx, query, args)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// HasOverlap reports whether an active booking intersects [checkIn, checkOut).
// Back-to-back stays (one check-out equal to the next check-in) do not overlap.
func (a *BookingAdapter) HasOverlap(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (bool, error) {
	inner := a.db.From("bookings").
		Select(goqu.L("1")).
		Where(
			goqu.C("property_id").Eq(propertyID),
			goqu.C("status").In(entities.BookingStatusPending, entities.BookingStatusConfirmed),
			goqu.C("check_in").Lt(checkOut.Format(entities.DateLayout)),
			goqu.C("check_out").Gt(checkIn.Format(entities.DateLayout)),
		)

	query, args, err := a.db.Select(goqu.L("EXISTS ?", inner)).ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build overlap query", err)
	}

	var exists bool
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, apperrors.NewInternalError("failed to check booking overlap", err)
	}
	return exists, nil
}

// ListEndedConfirmed returns CONFIRMED bookings whose check-out is on or before asOf
func (a *BookingAdapter) ListEndedConfirmed(ctx context.Context, asOf time.Time) ([]*entities.Booking, error) {
	query, args, err := a.db.Select(bookingColumns...).
		From("bookings").
		Where(
			goqu.C("status").Eq(entities.BookingStatusConfirmed),
			goqu.C("check_out").Lte(entities.TruncateDay(asOf).Format(entities.DateLayout)),
		).
		Order(goqu.I("check_out").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.query(ctx, query, args)
}

func (a *BookingAdapter) query(ctx context.Context, query string, args []interface{}) ([]*entities.Booking, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list bookings", err)
	}
	defer rows.Close()

	bookings := []*entities.Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan booking", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate bookings", err)
	}
	return bookings, nil
}

func scanBooking(row rowScanner) (*entities.Booking, error) {
	b := &entities.Booking{}
	err := row.Scan(
		&b.ID, &b.PropertyID, &b.GuestID, &b.HostID, &b.CheckIn, &b.CheckOut,
		&b.Guests, &b.TotalPrice, &b.Currency, &b.Status, &b.SpecialRequests,
		&b.CancellationReason, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.CheckIn = entities.TruncateDay(b.CheckIn)
	b.CheckOut = entities.TruncateDay(b.CheckOut)
	return b, nil
}
