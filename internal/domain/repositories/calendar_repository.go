package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
)

// CalendarRepository stores per-night availability and price overrides
type CalendarRepository interface {
	// Upsert inserts or replaces entries keyed by (property_id, date)
	Upsert(ctx context.Context, entries []*entities.CalendarEntry) error

	// ListRange returns entries for dates in [from, to)
	ListRange(ctx context.Context, propertyID string, from, to time.Time) ([]*entities.CalendarEntry, error)
}
