package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/vacationrentals/internal/api/handlers"
	"github.com/zatekoja/vacationrentals/internal/application/services"
	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/repositories"
	apperrors "github.com/zatekoja/vacationrentals/pkg/errors"
)

func TestBookingHandler_Create(t *testing.T) {
	svc := new(MockBookingService)
	handler := handlers.NewBookingHandler(svc)

	want := services.CreateBookingRequest{PropertyID: "p-1", CheckIn: "2026-11-01", CheckOut: "2026-11-04", Guests: 2}
	svc.On("Create", mock.Anything, *guest, want).
		Return(&entities.Booking{ID: "b-1", Status: entities.BookingStatusPending}, nil)

	body := `{"propertyId":"p-1","checkIn":"2026-11-01","checkOut":"2026-11-04","guests":2}`
	w := serve("POST /api/bookings", handler.CreateBooking, newRequest(http.MethodPost, "/api/bookings", body, guest))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"b-1"`)
	svc.AssertExpectations(t)
}

func TestBookingHandler_CreateOverlap(t *testing.T) {
	svc := new(MockBookingService)
	handler := handlers.NewBookingHandler(svc)

	svc.On("Create", mock.Anything, *guest, mock.Anything).
		Return(nil, apperrors.NewConflictError("property is already booked for the selected dates"))

	body := `{"propertyId":"p-1","checkIn":"2026-11-01","checkOut":"2026-11-04","guests":2}`
	w := serve("POST /api/bookings", handler.CreateBooking, newRequest(http.MethodPost, "/api/bookings", body, guest))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "property is already booked for the selected dates", decodeError(t, w.Body.Bytes()))
}

func TestBookingHandler_UpdateStatusUppercases(t *testing.T) {
	svc := new(MockBookingService)
	handler := handlers.NewBookingHandler(svc)

	svc.On("UpdateStatus", mock.Anything, *host, "b-1", services.UpdateBookingStatusRequest{
		Status: entities.BookingStatusConfirmed,
	}).Return(&entities.Booking{ID: "b-1", Status: entities.BookingStatusConfirmed}, nil)

	w := serve("PATCH /api/bookings/{id}/status", handler.UpdateBookingStatus,
		newRequest(http.MethodPatch, "/api/bookings/b-1/status", `{"status":"confirmed"}`, host))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestBookingHandler_List(t *testing.T) {
	svc := new(MockBookingService)
	handler := handlers.NewBookingHandler(svc)

	svc.On("List", mock.Anything, *guest, repositories.BookingFilter{
		PropertyID: "p-1",
		Status:     entities.BookingStatusCancelled,
	}, entities.NewPagination(0, 0)).Return(&services.BookingPage{Bookings: []*entities.Booking{}}, nil)

	w := serve("GET /api/bookings", handler.ListBookings,
		newRequest(http.MethodGet, "/api/bookings?propertyId=p-1&status=cancelled", "", guest))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve("GET /api/bookings", handler.ListBookings,
		newRequest(http.MethodGet, "/api/bookings?status=lost", "", guest))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "unknown booking status", decodeError(t, w.Body.Bytes()))

	w = serve("GET /api/bookings", handler.ListBookings, newRequest(http.MethodGet, "/api/bookings", "", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	svc.AssertExpectations(t)
}
