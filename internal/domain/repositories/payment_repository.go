package repositories

import (
	"context"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
)

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Create creates a new payment
	Create(ctx context.Context, payment *entities.Payment) error

	// GetByID retrieves a payment by ID
	GetByID(ctx context.Context, id string) (*entities.Payment, error)

	// Update persists status, amounts and provider fields
	Update(ctx context.Context, payment *entities.Payment) error

	// List returns one page of payments and the total match count
	List(ctx context.Context, filter PaymentFilter, page entities.Pagination) ([]*entities.Payment, int, error)

	// ListByBooking returns every payment of a booking, oldest first
	ListByBooking(ctx context.Context, bookingID string) ([]*entities.Payment, error)
}

// PaymentFilter defines filters for listing payments. HostID scopes to
// payments for bookings on that host's properties.
type PaymentFilter struct {
	UserID    string
	HostID    string
	BookingID string
	Status    entities.PaymentStatus
}
