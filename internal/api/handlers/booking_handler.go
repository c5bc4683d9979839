package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/zatekoja/vacationrentals/internal/application/services"
	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/repositories"
)

// BookingService defines the booking operations used by the handler.
type BookingService interface {
	Create(ctx context.Context, actor entities.Actor, req services.CreateBookingRequest) (*entities.Booking, error)
	Get(ctx context.Context, actor entities.Actor, id string) (*entities.Booking, error)
	List(ctx context.Context, actor entities.Actor, filter repositories.BookingFilter, page entities.Pagination) (*services.BookingPage, error)
	UpdateStatus(ctx context.Context, actor entities.Actor, id string, req services.UpdateBookingStatusRequest) (*entities.Booking, error)
}

// BookingHandler handles booking requests and their lifecycle
type BookingHandler struct {
	service BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(service BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// ListBookings handles GET /api/bookings?status=&propertyId=
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	status := entities.BookingStatus(strings.ToUpper(r.URL.Query().Get("status")))
	if status != "" && !status.Valid() {
		respondWithError(w, http.StatusBadRequest, "unknown booking status")
		return
	}

	result, err := h.service.List(r.Context(), actor, repositories.BookingFilter{
		PropertyID: r.URL.Query().Get("propertyId"),
		Status:     status,
	}, pageFromQuery(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req services.CreateBookingRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	booking, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, booking)
}

// GetBooking handles GET /api/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	booking, err := h.service.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, booking)
}

// UpdateBookingStatus handles PATCH /api/bookings/{id}/status
func (h *BookingHandler) UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req services.UpdateBookingStatusRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	req.Status = entities.BookingStatus(strings.ToUpper(string(req.Status)))

	booking, err := h.service.UpdateStatus(r.Context(), actor, r.PathValue("id"), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, booking)
}
