package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusRejected  BookingStatus = "REJECTED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusRejected},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

// Valid reports whether s is a known booking status
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusRejected,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// CanTransitionTo reports whether moving from s to next is allowed
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// BlocksCalendar reports whether a booking in this state holds its nights
func (s BookingStatus) BlocksCalendar() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// Booking represents a guest's reservation of a property for a date range
type Booking struct {
	ID                 string          `json:"id" db:"id"`
	PropertyID         string          `json:"propertyId" db:"property_id"`
	GuestID            string          `json:"guestId" db:"guest_id"`
	HostID             string          `json:"hostId" db:"host_id"`
	CheckIn            time.Time       `json:"checkIn" db:"check_in"`
	CheckOut           time.Time       `json:"checkOut" db:"check_out"`
	Guests             int             `json:"guests" db:"guests"`
	TotalPrice         decimal.Decimal `json:"totalPrice" db:"total_price"`
	Currency           string          `json:"currency" db:"currency"`
	Status             BookingStatus   `json:"status" db:"status"`
	SpecialRequests    string          `json:"specialRequests,omitempty" db:"special_requests"`
	CancellationReason string          `json:"cancellationReason,omitempty" db:"cancellation_reason"`
	CreatedAt          time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time       `json:"updatedAt" db:"updated_at"`
}

// Nights returns the number of nights booked
func (b *Booking) Nights() int {
	return NightsBetween(b.CheckIn, b.CheckOut)
}

// IsGuest reports whether userID made the booking
func (b *Booking) IsGuest(userID string) bool {
	return userID != "" && b.GuestID == userID
}

// IsHost reports whether userID hosts the booked property
func (b *Booking) IsHost(userID string) bool {
	return userID != "" && b.HostID == userID
}

// Counterparty returns the other side of the booking from userID's point of view
func (b *Booking) Counterparty(userID string) string {
	if b.IsGuest(userID) {
		return b.HostID
	}
	return b.GuestID
}
