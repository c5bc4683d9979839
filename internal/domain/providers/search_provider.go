package providers

import (
	"context"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
)

// PropertySearchParams is a full-text query over listings
type PropertySearchParams struct {
	Query        string
	City         string
	PropertyType entities.PropertyType
	Guests       int
	Page         int
	PageSize     int
}

// PropertySearchResult is one page of matching property IDs
type PropertySearchResult struct {
	IDs   []string
	Total int
}

// PropertyIndex defines the interface for the property search index
type PropertyIndex interface {
	// Index inserts or replaces a property document
	Index(ctx context.Context, property *entities.Property) error

	// Remove deletes a property document
	Remove(ctx context.Context, id string) error

	// Search returns matching property IDs in relevance order
	Search(ctx context.Context, params PropertySearchParams) (*PropertySearchResult, error)
}
