package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/zatekoja/vacationrentals/internal/application/services"
	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/repositories"
)

// PaymentService defines the payment operations used by the handler.
type PaymentService interface {
	Create(ctx context.Context, actor entities.Actor, req services.CreatePaymentRequest) (*entities.Payment, error)
	Get(ctx context.Context, actor entities.Actor, id string) (*entities.Payment, error)
	List(ctx context.Context, actor entities.Actor, filter repositories.PaymentFilter, page entities.Pagination) (*services.PaymentPage, error)
	UpdateStatus(ctx context.Context, actor entities.Actor, id string, req services.UpdatePaymentStatusRequest) (*entities.Payment, error)
	Refund(ctx context.Context, actor entities.Actor, id string, req services.RefundRequest) (*entities.Payment, error)
}

// PaymentHandler handles charges, settlement and refunds
type PaymentHandler struct {
	service PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// ListPayments handles GET /api/payments?status=&bookingId=
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	result, err := h.service.List(r.Context(), actor, repositories.PaymentFilter{
		BookingID: r.URL.Query().Get("bookingId"),
		Status:    entities.PaymentStatus(strings.ToUpper(r.URL.Query().Get("status"))),
	}, pageFromQuery(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// CreatePayment handles POST /api/payments
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req services.CreatePaymentRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	req.Method = entities.PaymentMethod(strings.ToUpper(string(req.Method)))

	payment, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, payment)
}

// GetPayment handles GET /api/payments/{id}
func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	payment, err := h.service.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, payment)
}

// UpdatePaymentStatus handles PATCH /api/payments/{id}/status
func (h *PaymentHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req services.UpdatePaymentStatusRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	req.Status = entities.PaymentStatus(strings.ToUpper(string(req.Status)))

	payment, err := h.service.UpdateStatus(r.Context(), actor, r.PathValue("id"), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, payment)
}

// RefundPayment handles POST /api/payments/{id}/refund with an optional {amount}
func (h *PaymentHandler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req services.RefundRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	payment, err := h.service.Refund(r.Context(), actor, r.PathValue("id"), req)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, payment)
}
