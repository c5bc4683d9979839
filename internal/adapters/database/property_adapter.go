package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/repositories"
	"github.com/zatekoja/vacationrentals/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/vacationrentals/pkg/errors"
)

var propertyColumns = []interface{}{
	"id", "host_id", "title", "description", "property_type",
	"address", "city", "country", "latitude", "longitude",
	"base_price", "currency", "max_guests", "bedrooms", "bathrooms",
	"amenities", "images", "status", "created_at", "updated_at",
}

// PropertyAdapter implements the PropertyRepository interface
type PropertyAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPropertyAdapter creates a new property adapter
func NewPropertyAdapter(client *postgres.Client) repositories.PropertyRepository {
	return &PropertyAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func propertyRecord(p *entities.Property) goqu.Record {
	return goqu.Record{
		"host_id":       p.HostID,
		"title":         p.Title,
		"description":   p.Description,
		"property_type": p.PropertyType,
		"address":       p.Address,
		"city":          p.City,
		"country":       p.Country,
		"latitude":      nullableFloat(p.Latitude),
		"longitude":     nullableFloat(p.Longitude),
		"base_price":    p.BasePrice,
		"currency":      p.Currency,
		"max_guests":    p.MaxGuests,
		"bedrooms":      p.Bedrooms,
		"bathrooms":     p.Bathrooms,
		"amenities":     pq.Array(nonNil(p.Amenities)),
		"images":        pq.Array(nonNil(p.Images)),
		"status":        p.Status,
		"updated_at":    p.UpdatedAt,
	}
}

// Create creates a new property
func (a *PropertyAdapter) Create(ctx context.Context, property *entities.Property) error {
	record := propertyRecord(property)
	record["id"] = property.ID
	record["created_at"] = property.CreatedAt

	query, args, err := a.db.Insert("properties").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create property", err)
	}
	return nil
}

// GetByID retrieves a property by ID
func (a *PropertyAdapter) GetByID(ctx context.Context, id string) (*entities.Property, error) {
	query, args, err := a.db.Select(propertyColumns...).
		From("properties").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	property, err := scanProperty(a.client.DB().QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("property with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get property", err)
	}
	return property, nil
}

// Update persists every mutable field of a property
func (a *PropertyAdapter) Update(ctx context.Context, property *entities.Property) error {
	property.UpdatedAt = time.Now().UTC()

	query, args, err := a.db.Update("properties").
		Set(propertyRecord(property)).
		Where(goqu.Ex{"id": property.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	return a.execOne(ctx, query, args, "failed to update property", property.ID)
}

// Delete deletes a property
func (a *PropertyAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("properties").Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}
	return a.execOne(ctx, query, args, "failed to delete property", id)
}

func (a *PropertyAdapter) execOne(ctx context.Context, query string, args []interface{}, failMsg, id string) error {
	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError(failMsg, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("property with id %s not found", id))
	}
	return nil
}

// List returns one page of properties matching filter and the total match count
func (a *PropertyAdapter) List(ctx context.Context, filter repositories.PropertyFilter, page entities.Pagination) ([]*entities.Property, int, error) {
	where := propertyConditions(filter)

	countQuery, countArgs, err := a.db.From("properties").
		Select(goqu.COUNT("*")).
		Where(where...).
		ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var total int
	if err := a.client.DB().QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to count properties", err)
	}
	if total == 0 {
		return []*entities.Property{}, 0, nil
	}

	query, args, err := a.db.Select(propertyColumns...).
		From("properties").
		Where(where...).
		Order(goqu.I("created_at").Desc(), goqu.I("id").Asc()).
		Limit(uint(page.Limit())).
		Offset(uint(page.Offset())).
		ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to list properties", err)
	}
	defer rows.Close()

	properties := []*entities.Property{}
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return nil, 0, apperrors.NewInternalError("failed to scan property", err)
		}
		properties = append(properties, property)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to iterate properties", err)
	}

	return properties, total, nil
}

func propertyConditions(filter repositories.PropertyFilter) []exp.Expression {
	var where []exp.Expression
	if filter.HostID != "" {
		where = append(where, goqu.C("host_id").Eq(filter.HostID))
	}
	if filter.Status != "" {
		where = append(where, goqu.C("status").Eq(filter.Status))
	}
	if filter.PropertyType != "" {
		where = append(where, goqu.C("property_type").Eq(filter.PropertyType))
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		where = append(where, goqu.Func("LOWER", goqu.C("city")).Eq(strings.ToLower(city)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		where = append(where, goqu.Or(
			goqu.Func("LOWER", goqu.C("title")).Like(pattern),
			goqu.Func("LOWER", goqu.C("description")).Like(pattern),
			goqu.Func("LOWER", goqu.C("city")).Like(pattern),
		))
	}
	if filter.MinPrice != nil {
		where = append(where, goqu.C("base_price").Gte(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		where = append(where, goqu.C("base_price").Lte(*filter.MaxPrice))
	}
	if filter.Guests > 0 {
		where = append(where, goqu.C("max_guests").Gte(filter.Guests))
	}
	return where
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProperty(row rowScanner) (*entities.Property, error) {
	p := &entities.Property{}
	var latitude, longitude sql.NullFloat64
	err := row.Scan(
		&p.ID, &p.HostID, &p.Title, &p.Description, &p.PropertyType,
		&p.Address, &p.City, &p.Country, &latitude, &longitude,
		&p.BasePrice, &p.Currency, &p.MaxGuests, &p.Bedrooms, &p.Bathrooms,
		pq.Array(&p.Amenities), pq.Array(&p.Images), &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if latitude.Valid {
		p.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		p.Longitude = &longitude.Float64
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return p, nil
}

func nullableFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
