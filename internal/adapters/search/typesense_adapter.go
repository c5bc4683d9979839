package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/providers"
	tsclient "github.com/zatekoja/vacationrentals/internal/infrastructure/clients/typesense"
)

const queryBy = "title,description,city"

// TypesenseAdapter implements property search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ providers.PropertyIndex = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// Index upserts a property document
func (a *TypesenseAdapter) Index(ctx context.Context, property *entities.Property) error {
	_, err := a.client.Client().Collection(tsclient.PropertiesCollection).Documents().Upsert(ctx, propertyDocument(property))
	if err != nil {
		return fmt.Errorf("failed to index property: %w", err)
	}
	return nil
}

// Remove deletes a property from the index
func (a *TypesenseAdapter) Remove(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.PropertiesCollection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete property from index: %w", err)
	}
	return nil
}

// Search runs a full-text query over active listings
func (a *TypesenseAdapter) Search(ctx context.Context, params providers.PropertySearchParams) (*providers.PropertySearchResult, error) {
	page := entities.NewPagination(params.Page, params.PageSize)

	q := strings.TrimSpace(params.Query)
	if q == "" {
		q = "*"
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(q),
		QueryBy:  pointer.String(queryBy),
		FilterBy: pointer.String(buildFilter(params)),
		Page:     pointer.Int(page.Page),
		PerPage:  pointer.Int(page.PageSize),
	}

	result, err := a.client.Client().Collection(tsclient.PropertiesCollection).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search properties: %w", err)
	}

	out := &providers.PropertySearchResult{IDs: []string{}}
	if result.Found != nil {
		out.Total = *result.Found
	}
	if result.Hits == nil {
		return out, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		if id, ok := (*hit.Document)["id"].(string); ok {
			out.IDs = append(out.IDs, id)
		}
	}
	return out, nil
}

func propertyDocument(p *entities.Property) map[string]interface{} {
	price, _ := p.BasePrice.Float64()
	doc := map[string]interface{}{
		"id":            p.ID,
		"title":         p.Title,
		"description":   p.Description,
		"city":          p.City,
		"country":       p.Country,
		"property_type": string(p.PropertyType),
		"host_id":       p.HostID,
		"status":        string(p.Status),
		"base_price":    price,
		"max_guests":    p.MaxGuests,
		"amenities":     p.Amenities,
		"created_at":    p.CreatedAt.Unix(),
	}
	if p.Amenities == nil {
		doc["amenities"] = []string{}
	}
	if p.Latitude != nil && p.Longitude != nil {
		doc["location"] = []float64{*p.Latitude, *p.Longitude}
	}
	return doc
}

func buildFilter(params providers.PropertySearchParams) string {
	clauses := []string{"status:=" + string(entities.PropertyStatusActive)}
	if city := strings.TrimSpace(params.City); city != "" {
		clauses = append(clauses, fmt.Sprintf("city:=`%s`", strings.ReplaceAll(city, "`", "")))
	}
	if params.PropertyType != "" {
		clauses = append(clauses, "property_type:="+string(params.PropertyType))
	}
	if params.Guests > 0 {
		clauses = append(clauses, fmt.Sprintf("max_guests:>=%d", params.Guests))
	}
	return strings.Join(clauses, " && ")
}
