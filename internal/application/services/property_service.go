package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/providers"
	"github.com/zatekoja/vacationrentals/internal/domain/repositories"
	apperrors "github.com/zatekoja/vacationrentals/pkg/errors"
	"github.com/zatekoja/vacationrentals/pkg/validation"
)

// PropertyService manages listings and their search index
type PropertyService struct {
	repo            repositories.PropertyRepository
	index           providers.PropertyIndex
	cache           *CacheInvalidationService
	validator       *validation.Validator
	defaultCurrency string
}

// NewPropertyService creates a new property service. index and cache may be nil.
func NewPropertyService(
	repo repositories.PropertyRepository,
	index providers.PropertyIndex,
	cache *CacheInvalidationService,
	v *validation.Validator,
	defaultCurrency string,
) *PropertyService {
	if defaultCurrency == "" {
		defaultCurrency = "USD"
	}
	return &PropertyService{
		repo:            repo,
		index:           index,
		cache:           cache,
		validator:       v,
		defaultCurrency: defaultCurrency,
	}
}

// CreatePropertyRequest is the payload for a new listing
type CreatePropertyRequest struct {
	HostID       string                  `json:"hostId"`
	Title        string                  `json:"title" validate:"required,min=3,max=200"`
	Description  string                  `json:"description" validate:"max=5000"`
	PropertyType entities.PropertyType   `json:"propertyType" validate:"required,oneof=APARTMENT HOUSE VILLA CABIN CONDO OTHER"`
	Address      string                  `json:"address" validate:"max=300"`
	City         string                  `json:"city" validate:"required,max=100"`
	Country      string                  `json:"country" validate:"required,max=100"`
	Latitude     *float64                `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude    *float64                `json:"longitude,omitempty" validate:"omitempty,longitude"`
	BasePrice    decimal.Decimal         `json:"basePrice" validate:"gt=0"`
	Currency     string                  `json:"currency" validate:"omitempty,len=3"`
	MaxGuests    int                     `json:"maxGuests" validate:"min=1,max=50"`
	Bedrooms     int                     `json:"bedrooms" validate:"min=0,max=100"`
	Bathrooms    int                     `json:"bathrooms" validate:"min=0,max=100"`
	Amenities    []string                `json:"amenities" validate:"max=50,dive,max=100"`
	Images       []string                `json:"images" validate:"max=30,dive,url"`
	Status       entities.PropertyStatus `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE INACTIVE"`
}

// UpdatePropertyRequest is a partial update; nil fields are left unchanged
type UpdatePropertyRequest struct {
	Title        *string                  `json:"title" validate:"omitempty,min=3,max=200"`
	Description  *string                  `json:"description" validate:"omitempty,max=5000"`
	PropertyType *entities.PropertyType   `json:"propertyType" validate:"omitempty,oneof=APARTMENT HOUSE VILLA CABIN CONDO OTHER"`
	Address      *string                  `json:"address" validate:"omitempty,max=300"`
	City         *string                  `json:"city" validate:"omitempty,min=1,max=100"`
	Country      *string                  `json:"country" validate:"omitempty,min=1,max=100"`
	Latitude     *float64                 `json:"latitude" validate:"omitempty,latitude"`
	Longitude    *float64                 `json:"longitude" validate:"omitempty,longitude"`
	BasePrice    *decimal.Decimal         `json:"basePrice" validate:"omitempty,gt=0"`
	Currency     *string                  `json:"currency" validate:"omitempty,len=3"`
	MaxGuests    *int                     `json:"maxGuests" validate:"omitempty,min=1,max=50"`
	Bedrooms     *int                     `json:"bedrooms" validate:"omitempty,min=0,max=100"`
	Bathrooms    *int                     `json:"bathrooms" validate:"omitempty,min=0,max=100"`
	Amenities    []string                 `json:"amenities" validate:"omitempty,max=50,dive,max=100"`
	Images       []string                 `json:"images" validate:"omitempty,max=30,dive,url"`
	Status       *entities.PropertyStatus `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE INACTIVE"`
}

// PropertyPage is one page of listings
type PropertyPage struct {
	Properties []*entities.Property `json:"properties"`
	Pagination entities.PageMeta    `json:"pagination"`
}

// Create stores a new listing owned by the actor (or by hostId when an admin creates it)
func (s *PropertyService) Create(ctx context.Context, actor entities.Actor, req CreatePropertyRequest) (*entities.Property, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.CanManageProperties() {
		return nil, forbidden("create properties")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	hostID := actor.UserID
	if actor.IsAdmin() && strings.TrimSpace(req.HostID) != "" {
		hostID = strings.TrimSpace(req.HostID)
	}

	status := req.Status
	if status == "" {
		status = entities.PropertyStatusActive
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = s.defaultCurrency
	}

	now := time.Now().UTC()
	property := &entities.Property{
		ID:           uuid.New().String(),
		HostID:       hostID,
		Title:        s.validator.Sanitize(req.Title),
		Description:  s.validator.Sanitize(req.Description),
		PropertyType: req.PropertyType,
		Address:      s.validator.Sanitize(req.Address),
		City:         s.validator.Sanitize(req.City),
		Country:      s.validator.Sanitize(req.Country),
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		BasePrice:    req.BasePrice.Round(2),
		Currency:     currency,
		MaxGuests:    req.MaxGuests,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		Amenities:    s.validator.SanitizeAll(req.Amenities),
		Images:       nonNilStrings(req.Images),
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if property.Title == "" {
		return nil, apperrors.NewValidationError("title is required")
	}
	if property.Amenities == nil {
		property.Amenities = []string{}
	}

	if err := s.repo.Create(ctx, property); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, property)
	return property, nil
}

// Get returns a listing by ID. Listings that are not ACTIVE are only visible
// to their host and admins; everyone else gets not found.
func (s *PropertyService) Get(ctx context.Context, actor entities.Actor, id string) (*entities.Property, error) {
	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if property.Status != entities.PropertyStatusActive && !property.OwnedBy(actor.UserID) && !actor.IsAdmin() {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("property with id %s not found", id))
	}
	return property, nil
}

// List returns listings matching filter. Callers other than admins and the
// filtered host only see ACTIVE listings.
func (s *PropertyService) List(ctx context.Context, actor entities.Actor, filter repositories.PropertyFilter, page entities.Pagination) (*PropertyPage, error) {
	privileged := actor.IsAdmin() || (filter.HostID != "" && filter.HostID == actor.UserID)
	if !privileged {
		filter.Status = entities.PropertyStatusActive
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, apperrors.NewValidationError("minPrice must not exceed maxPrice")
	}

	properties, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return &PropertyPage{Properties: properties, Pagination: page.Meta(total)}, nil
}

// Update applies a partial update; only the host or an admin may edit
func (s *PropertyService) Update(ctx context.Context, actor entities.Actor, id string, req UpdatePropertyRequest) (*entities.Property, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !property.OwnedBy(actor.UserID) && !actor.IsAdmin() {
		return nil, forbidden("edit this property")
	}

	if req.Title != nil {
		if property.Title = s.validator.Sanitize(*req.Title); property.Title == "" {
			return nil, apperrors.NewValidationError("title is required")
		}
	}
	if req.Description != nil {
		property.Description = s.validator.Sanitize(*req.Description)
	}
	if req.PropertyType != nil {
		property.PropertyType = *req.PropertyType
	}
	if req.Address != nil {
		property.Address = s.validator.Sanitize(*req.Address)
	}
	if req.City != nil {
		property.City = s.validator.Sanitize(*req.City)
	}
	if req.Country != nil {
		property.Country = s.validator.Sanitize(*req.Country)
	}
	if req.Latitude != nil {
		property.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		property.Longitude = req.Longitude
	}
	if req.BasePrice != nil {
		property.BasePrice = req.BasePrice.Round(2)
	}
	if req.Currency != nil {
		property.Currency = strings.ToUpper(*req.Currency)
	}
	if req.MaxGuests != nil {
		property.MaxGuests = *req.MaxGuests
	}
	if req.Bedrooms != nil {
		property.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		property.Bathrooms = *req.Bathrooms
	}
	if req.Amenities != nil {
		property.Amenities = s.validator.SanitizeAll(req.Amenities)
	}
	if req.Images != nil {
		property.Images = req.Images
	}
	if req.Status != nil {
		property.Status = *req.Status
	}

	if err := s.repo.Update(ctx, property); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, property)
	return property, nil
}

// Delete removes a listing; only the host or an admin may delete
func (s *PropertyService) Delete(ctx context.Context, actor entities.Actor, id string) error {
	if err := requireActor(actor); err != nil {
		return err
	}

	property, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !property.OwnedBy(actor.UserID) && !actor.IsAdmin() {
		return forbidden("delete this property")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.Remove(ctx, id); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("property_id", id).Msg("Failed to remove property from search index")
		}
	}
	s.invalidate(ctx)
	return nil
}

// Search runs a full-text query through the index when one is configured and
// falls back to the database filter otherwise or when the index fails.
func (s *PropertyService) Search(ctx context.Context, params providers.PropertySearchParams) (*PropertyPage, error) {
	page := entities.NewPagination(params.Page, params.PageSize)
	params.Page, params.PageSize = page.Page, page.PageSize

	if s.index != nil {
		result, err := s.index.Search(ctx, params)
		if err == nil {
			properties := make([]*entities.Property, 0, len(result.IDs))
			for _, id := range result.IDs {
				p, err := s.repo.GetByID(ctx, id)
				if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
					continue
				}
				if err != nil {
					return nil, err
				}
				properties = append(properties, p)
			}
			return &PropertyPage{Properties: properties, Pagination: page.Meta(result.Total)}, nil
		}
		log.Ctx(ctx).Warn().Err(err).Msg("Search index query failed, falling back to database")
	}

	return s.List(ctx, entities.Actor{}, repositories.PropertyFilter{
		Query:        params.Query,
		City:         params.City,
		PropertyType: params.PropertyType,
		Guests:       params.Guests,
	}, page)
}

// Reindex pushes every ACTIVE listing into the search index and returns the count
func (s *PropertyService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, errors.New("search index is not configured")
	}

	filter := repositories.PropertyFilter{Status: entities.PropertyStatusActive}
	indexed := 0
	for pageNum := 1; ; pageNum++ {
		page := entities.NewPagination(pageNum, entities.MaxPageSize)
		properties, total, err := s.repo.List(ctx, filter, page)
		if err != nil {
			return indexed, err
		}
		for _, p := range properties {
			if err := s.index.Index(ctx, p); err != nil {
				return indexed, err
			}
			indexed++
		}
		if len(properties) == 0 || page.Offset()+len(properties) >= total {
			return indexed, nil
		}
	}
}

func (s *PropertyService) afterWrite(ctx context.Context, property *entities.Property) {
	if s.index != nil {
		var err error
		if property.IsBookable() {
			err = s.index.Index(ctx, property)
		} else {
			err = s.index.Remove(ctx, property.ID)
		}
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("property_id", property.ID).Msg("Failed to sync property with search index")
		}
	}
	s.invalidate(ctx)
}

func (s *PropertyService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidatePropertyCaches(ctx); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Failed to invalidate property caches")
	}
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
