package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/zatekoja/vacationrentals/internal/application/services"
	"github.com/zatekoja/vacationrentals/internal/domain/entities"
)

// defaultCalendarDays is the window returned when ?to is omitted
const defaultCalendarDays = 30

// AvailabilityService defines the calendar and pricing operations used by the handler.
type AvailabilityService interface {
	SetCalendar(ctx context.Context, actor entities.Actor, propertyID string, req services.SetCalendarRequest) ([]*entities.CalendarEntry, error)
	GetCalendar(ctx context.Context, propertyID string, from, to time.Time) ([]*entities.CalendarEntry, error)
	Quote(ctx context.Context, propertyID string, checkIn, checkOut time.Time, guests int) (*entities.Quote, error)
}

// AvailabilityHandler serves property calendars and stay quotes
type AvailabilityHandler struct {
	service AvailabilityService
}

// NewAvailabilityHandler creates a new availability handler
func NewAvailabilityHandler(service AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// GetCalendar handles GET /api/properties/{id}/calendar?from=&to=
func (h *AvailabilityHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	from := entities.TruncateDay(time.Now())
	if r.URL.Query().Get("from") != "" {
		parsed, err := dateQuery(r, "from")
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		from = parsed
	}

	to := from.AddDate(0, 0, defaultCalendarDays)
	if r.URL.Query().Get("to") != "" {
		parsed, err := dateQuery(r, "to")
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		to = parsed
	}

	entries, err := h.service.GetCalendar(r.Context(), r.PathValue("id"), from, to)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"propertyId": r.PathValue("id"),
		"from":       from.Format(entities.DateLayout),
		"to":         to.Format(entities.DateLayout),
		"entries":    entries,
	})
}

// SetCalendar handles PUT /api/properties/{id}/calendar
func (h *AvailabilityHandler) SetCalendar(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req services.SetCalendarRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	entries, err := h.service.SetCalendar(r.Context(), actor, r.PathValue("id"), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"propertyId": r.PathValue("id"),
		"entries":    entries,
	})
}

// GetQuote handles GET /api/properties/{id}/quote?checkIn=&checkOut=&guests=
func (h *AvailabilityHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	checkIn, err := dateQuery(r, "checkIn")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	checkOut, err := dateQuery(r, "checkOut")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	guests, err := intQuery(r, "guests")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	if guests == 0 {
		guests = 1
	}

	quote, err := h.service.Quote(r.Context(), r.PathValue("id"), checkIn, checkOut, guests)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, quote)
}
