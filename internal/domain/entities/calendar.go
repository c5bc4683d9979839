package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// CalendarEntry overrides availability or price for one night of a property
type CalendarEntry struct {
	PropertyID string           `json:"propertyId" db:"property_id"`
	Date       time.Time        `json:"date" db:"date"`
	Price      *decimal.Decimal `json:"price,omitempty" db:"price"`
	Available  bool             `json:"available" db:"available"`
	Note       string           `json:"note,omitempty" db:"note"`
}

// NightlyRate is one night of a quote
type NightlyRate struct {
	Date  string          `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// Quote is the priced breakdown of a stay
type Quote struct {
	PropertyID string          `json:"propertyId"`
	CheckIn    string          `json:"checkIn"`
	CheckOut   string          `json:"checkOut"`
	Guests     int             `json:"guests"`
	Nights     int             `json:"nights"`
	Nightly    []NightlyRate   `json:"nightly"`
	Total      decimal.Decimal `json:"total"`
	Currency   string          `json:"currency"`
}

// TruncateDay returns t at UTC midnight
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date at UTC midnight
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// NightsBetween counts whole nights between two dates
func NightsBetween(checkIn, checkOut time.Time) int {
	return int(TruncateDay(checkOut).Sub(TruncateDay(checkIn)).Hours() / 24)
}
