package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
)

// BookingRepository defines the interface for booking data operations
type BookingRepository interface {
	// Create creates a new booking
	Create(ctx context.Context, booking *entities.Booking) error

	// GetByID retrieves a booking by ID
	GetByID(ctx context.Context, id string) (*entities.Booking, error)

	// UpdateStatus sets status and cancellation reason
	UpdateStatus(ctx context.Context, id string, status entities.BookingStatus, reason string) error

	// List returns one page of bookings and the total match count
	List(ctx context.Context, filter BookingFilter, page entities.Pagination) ([]*entities.Booking, int, error)

	// HasOverlap reports whether a PENDING or CONFIRMED booking of the property
	// intersects [checkIn, checkOut)
	HasOverlap(ctx context.Context, propertyID string, checkIn, checkOut time.Time) (bool, error)

	// ListEndedConfirmed returns CONFIRMED bookings whose check-out is on or before asOf
	ListEndedConfirmed(ctx context.Context, asOf time.Time) ([]*entities.Booking, error)
}

// BookingFilter defines filters for listing bookings
type BookingFilter struct {
	GuestID    string
	HostID     string
	PropertyID string
	Status     entities.BookingStatus
}
