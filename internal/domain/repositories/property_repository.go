package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
)

// PropertyRepository defines the interface for listing data operations
type PropertyRepository interface {
	// Create creates a new property
	Create(ctx context.Context, property *entities.Property) error

	// GetByID retrieves a property by ID
	GetByID(ctx context.Context, id string) (*entities.Property, error)

	// Update persists every mutable field of a property
	Update(ctx context.Context, property *entities.Property) error

	// Delete deletes a property
	Delete(ctx context.Context, id string) error

	// List returns one page of properties matching filter and the total match count
	List(ctx context.Context, filter PropertyFilter, page entities.Pagination) ([]*entities.Property, int, error)
}

// PropertyFilter defines filters for listing properties
type PropertyFilter struct {
	HostID       string
	City         string
	Query        string
	PropertyType entities.PropertyType
	Status       entities.PropertyStatus
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Guests       int
}
