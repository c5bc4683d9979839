package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/zatekoja/vacationrentals/internal/api/middleware"
	"github.com/zatekoja/vacationrentals/internal/application/services"
	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/providers"
	"github.com/zatekoja/vacationrentals/internal/domain/repositories"
	apperrors "github.com/zatekoja/vacationrentals/pkg/errors"
)

// PropertyService defines the property operations used by the handler.
type PropertyService interface {
	Create(ctx context.Context, actor entities.Actor, req services.CreatePropertyRequest) (*entities.Property, error)
	Get(ctx context.Context, actor entities.Actor, id string) (*entities.Property, error)
	List(ctx context.Context, actor entities.Actor, filter repositories.PropertyFilter, page entities.Pagination) (*services.PropertyPage, error)
	Update(ctx context.Context, actor entities.Actor, id string, req services.UpdatePropertyRequest) (*entities.Property, error)
	Delete(ctx context.Context, actor entities.Actor, id string) error
	Search(ctx context.Context, params providers.PropertySearchParams) (*services.PropertyPage, error)
}

// PropertyHandler handles listing CRUD and search
type PropertyHandler struct {
	service PropertyService
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(service PropertyService) *PropertyHandler {
	return &PropertyHandler{service: service}
}

// ListProperties handles GET /api/properties
func (h *PropertyHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.PropertyFilter{
		HostID:       q.Get("hostId"),
		City:         q.Get("city"),
		Query:        q.Get("q"),
		PropertyType: entities.PropertyType(strings.ToUpper(q.Get("type"))),
		Status:       entities.PropertyStatus(strings.ToUpper(q.Get("status"))),
	}

	var err error
	if filter.MinPrice, err = decimalQuery(r, "minPrice"); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if filter.MaxPrice, err = decimalQuery(r, "maxPrice"); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if filter.Guests, err = intQuery(r, "guests"); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if filter.PropertyType != "" && !entities.ValidPropertyType(filter.PropertyType) {
		respondWithError(w, http.StatusBadRequest, "unknown property type")
		return
	}

	result, err := h.service.List(r.Context(), middleware.ActorFromContext(r.Context()), filter, pageFromQuery(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// SearchProperties handles GET /api/properties/search
func (h *PropertyHandler) SearchProperties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	guests, err := intQuery(r, "guests")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	page := pageFromQuery(r)

	result, err := h.service.Search(r.Context(), providers.PropertySearchParams{
		Query:        strings.TrimSpace(q.Get("q")),
		City:         q.Get("city"),
		PropertyType: entities.PropertyType(strings.ToUpper(q.Get("type"))),
		Guests:       guests,
		Page:         page.Page,
		PageSize:     page.PageSize,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// GetProperty handles GET /api/properties/{id}
func (h *PropertyHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	property, err := h.service.Get(r.Context(), middleware.ActorFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, property)
}

// CreateProperty handles POST /api/properties
func (h *PropertyHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req services.CreatePropertyRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	property, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, property)
}

// UpdateProperty handles PATCH /api/properties/{id}
func (h *PropertyHandler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req services.UpdatePropertyRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	property, err := h.service.Update(r.Context(), actor, r.PathValue("id"), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, property)
}

// DeleteProperty handles DELETE /api/properties/{id}
func (h *PropertyHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decimalQuery(r *http.Request, name string) (*decimal.Decimal, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperrors.NewValidationError(name + " must be a number")
	}
	return &d, nil
}
