package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// PropertyType classifies a listing
type PropertyType string

const (
	PropertyTypeApartment PropertyType = "APARTMENT"
	PropertyTypeHouse     PropertyType = "HOUSE"
	PropertyTypeVilla     PropertyType = "VILLA"
	PropertyTypeCabin     PropertyType = "CABIN"
	PropertyTypeCondo     PropertyType = "CONDO"
	PropertyTypeOther     PropertyType = "OTHER"
)

// PropertyStatus controls whether a listing can be booked
type PropertyStatus string

const (
	PropertyStatusDraft    PropertyStatus = "DRAFT"
	PropertyStatusActive   PropertyStatus = "ACTIVE"
	PropertyStatusInactive PropertyStatus = "INACTIVE"
)

// Property represents a rentable listing
type Property struct {
	ID           string          `json:"id" db:"id"`
	HostID       string          `json:"hostId" db:"host_id"`
	Title        string          `json:"title" db:"title"`
	Description  string          `json:"description" db:"description"`
	PropertyType PropertyType    `json:"propertyType" db:"property_type"`
	Address      string          `json:"address" db:"address"`
	City         string          `json:"city" db:"city"`
	Country      string          `json:"country" db:"country"`
	Latitude     *float64        `json:"latitude,omitempty" db:"latitude"`
	Longitude    *float64        `json:"longitude,omitempty" db:"longitude"`
	BasePrice    decimal.Decimal `json:"basePrice" db:"base_price"`
	Currency     string          `json:"currency" db:"currency"`
	MaxGuests    int             `json:"maxGuests" db:"max_guests"`
	Bedrooms     int             `json:"bedrooms" db:"bedrooms"`
	Bathrooms    int             `json:"bathrooms" db:"bathrooms"`
	Amenities    []string        `json:"amenities" db:"amenities"`
	Images       []string        `json:"images" db:"images"`
	Status       PropertyStatus  `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// IsBookable reports whether guests can book the property
func (p *Property) IsBookable() bool {
	return p.Status == PropertyStatusActive
}

// OwnedBy reports whether userID is the listing's host
func (p *Property) OwnedBy(userID string) bool {
	return userID != "" && p.HostID == userID
}

// ValidPropertyType reports whether t is known
func ValidPropertyType(t PropertyType) bool {
	switch t {
	case PropertyTypeApartment, PropertyTypeHouse, PropertyTypeVilla,
		PropertyTypeCabin, PropertyTypeCondo, PropertyTypeOther:
		return true
	}
	return false
}
