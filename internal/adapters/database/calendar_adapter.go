package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/shopspring/decimal"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/repositories"
	"github.com/zatekoja/vacationrentals/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/vacationrentals/pkg/errors"
)

// CalendarAdapter implements the CalendarRepository interface
type CalendarAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewCalendarAdapter creates a new calendar adapter
func NewCalendarAdapter(client *postgres.Client) repositories.CalendarRepository {
	return &CalendarAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Upsert inserts or replaces entries keyed by (property_id, date)
func (a *CalendarAdapter) Upsert(ctx context.Context, entries []*entities.CalendarEntry) error {
	if len(entries) == 0 {
		return nil
	}

	rows := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		var price interface{}
		if e.Price != nil {
			price = *e.Price
		}
		rows = append(rows, goqu.Record{
			"property_id": e.PropertyID,
			"date":        entities.TruncateDay(e.Date).Format(entities.DateLayout),
			"price":       price,
			"available":   e.Available,
			"note":        e.Note,
		})
	}

	query, args, err := a.db.Insert("property_calendar").
		Rows(rows...).
		OnConflict(goqu.DoUpdate("property_id, date", goqu.Record{
			"price":     goqu.L("EXCLUDED.price"),
			"available": goqu.L("EXCLUDED.available"),
			"note":      goqu.L("EXCLUDED.note"),
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert calendar", err)
	}
	return nil
}

// ListRange returns entries for dates in [from, to)
func (a *CalendarAdapter) ListRange(ctx context.Context, propertyID string, from, to time.Time) ([]*entities.CalendarEntry, error) {
	query, args, err := a.db.Select("property_id", "date", "price", "available", "note").
		From("property_calendar").
		Where(
			goqu.C("property_id").Eq(propertyID),
			goqu.C("date").Gte(entities.TruncateDay(from).Format(entities.DateLayout)),
			goqu.C("date").Lt(entities.TruncateDay(to).Format(entities.DateLayout)),
		).
		Order(goqu.I("date").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list calendar", err)
	}
	defer rows.Close()

	entries := []*entities.CalendarEntry{}
	for rows.Next() {
		e := &entities.CalendarEntry{}
		var price decimal.NullDecimal
		if err := rows.Scan(&e.PropertyID, &e.Date, &price, &e.Available, &e.Note); err != nil {
			return nil, apperrors.NewInternalError("failed to scan calendar entry", err)
		}
		if price.Valid {
			p := price.Decimal
			e.Price = &p
		}
		e.Date = entities.TruncateDay(e.Date)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate calendar", err)
	}
	return entries, nil
}
