package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/providers"
	"github.com/zatekoja/vacationrentals/internal/domain/repositories"
	"github.com/zatekoja/vacationrentals/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/vacationrentals/pkg/errors"
	"github.com/zatekoja/vacationrentals/pkg/validation"
)

// PaymentService charges and refunds bookings through a payment gateway
type PaymentService struct {
	payments      repositories.PaymentRepository
	bookings      repositories.BookingRepository
	provider      providers.PaymentProvider
	notifications *NotificationService
	emails        *EmailService
	metrics       *observability.Metrics
	validator     *validation.Validator
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	payments repositories.PaymentRepository,
	bookings repositories.BookingRepository,
	provider providers.PaymentProvider,
	notifications *NotificationService,
	emails *EmailService,
	metrics *observability.Metrics,
	v *validation.Validator,
) *PaymentService {
	return &PaymentService{
		payments:      payments,
		bookings:      bookings,
		provider:      provider,
		notifications: notifications,
		emails:        emails,
		metrics:       metrics,
		validator:     v,
	}
}

// CreatePaymentRequest pays for a booking
type CreatePaymentRequest struct {
	BookingID string                 `json:"bookingId" validate:"required"`
	Method    entities.PaymentMethod `json:"method" validate:"required,oneof=CREDIT_CARD PAYPAL BANK_TRANSFER"`
	Token     string                 `json:"token" validate:"max=255"`
}

// UpdatePaymentStatusRequest settles or fails a pending payment
type UpdatePaymentStatusRequest struct {
	Status entities.PaymentStatus `json:"status" validate:"required,oneof=COMPLETED FAILED"`
	Reason string                 `json:"reason" validate:"max=500"`
}

// RefundRequest returns money; a nil amount refunds everything still held
type RefundRequest struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// PaymentPage is one page of payments
type PaymentPage struct {
	Payments   []*entities.Payment `json:"payments"`
	Pagination entities.PageMeta   `json:"pagination"`
}

// Create charges the booking total. Declines are stored as FAILED payments;
// gateway errors are reported as external failures.
func (s *PaymentService) Create(ctx context.Context, actor entities.Actor, req CreatePaymentRequest) (*entities.Payment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsGuest(actor.UserID) && !actor.IsAdmin() {
		return nil, forbidden("pay for this booking")
	}
	if booking.Status != entities.BookingStatusPending && booking.Status != entities.BookingStatusConfirmed {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cannot pay for a %s booking", booking.Status))
	}

	if err := s.ensureNotPaid(ctx, booking.ID, "", true); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment := &entities.Payment{
		ID:             uuid.New().String(),
		BookingID:      booking.ID,
		UserID:         booking.GuestID,
		Amount:         booking.TotalPrice,
		RefundedAmount: decimal.Zero,
		Currency:       booking.Currency,
		Method:         req.Method,
		Status:         entities.PaymentStatusPending,
		Provider:       s.provider.Name(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	result, chargeErr := s.provider.Charge(ctx, providers.ChargeRequest{
		PaymentID: payment.ID,
		BookingID: booking.ID,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Method:    payment.Method,
		Token:     req.Token,
	})
	if chargeErr != nil {
		payment.Status = entities.PaymentStatusFailed
		payment.FailureReason = "payment provider error"
		if err := s.payments.Update(ctx, payment); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("payment_id", payment.ID).Msg("Failed to record failed charge")
		}
		s.paymentSettled(ctx, payment, booking)
		return nil, apperrors.NewExternalError("payment provider failed", chargeErr)
	}

	payment.Status = result.Status
	payment.ProviderRef = result.ProviderRef
	payment.FailureReason = result.FailureReason
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}

	s.paymentSettled(ctx, payment, booking)
	return payment, nil
}

// Get returns a payment visible to the actor
func (s *PaymentService) Get(ctx context.Context, actor entities.Actor, id string) (*entities.Payment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment.UserID == actor.UserID || actor.IsAdmin() {
		return payment, nil
	}

	booking, err := s.bookings.GetByID(ctx, payment.BookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsHost(actor.UserID) {
		return nil, forbidden("access this payment")
	}
	return payment, nil
}

// List scopes payments by role like bookings
func (s *PaymentService) List(ctx context.Context, actor entities.Actor, filter repositories.PaymentFilter, page entities.Pagination) (*PaymentPage, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown payment status %q", filter.Status))
	}

	switch {
	case actor.IsAdmin():
	case actor.ManagesListings():
		filter.HostID = actor.UserID
		filter.UserID = ""
	default:
		filter.UserID = actor.UserID
		filter.HostID = ""
	}

	payments, total, err := s.payments.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return &PaymentPage{Payments: payments, Pagination: page.Meta(total)}, nil
}

// UpdateStatus lets an administrator settle or fail a PENDING payment
func (s *PaymentService) UpdateStatus(ctx context.Context, actor entities.Actor, id string, req UpdatePaymentStatusRequest) (*entities.Payment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, forbidden("change payment status")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !payment.Status.CanTransitionTo(req.Status) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cannot change payment from %s to %s", payment.Status, req.Status))
	}

	if req.Status == entities.PaymentStatusCompleted {
		if err := s.ensureNotPaid(ctx, payment.BookingID, payment.ID, false); err != nil {
			return nil, err
		}
	}

	payment.Status = req.Status
	if req.Status == entities.PaymentStatusFailed {
		payment.FailureReason = s.validator.Sanitize(req.Reason)
	}
	if err := s.payments.Update(ctx, payment); err != nil {
		return nil, err
	}

	if booking, err := s.bookings.GetByID(ctx, payment.BookingID); err == nil {
		s.paymentSettled(ctx, payment, booking)
	} else {
		log.Ctx(ctx).Warn().Err(err).Str("payment_id", payment.ID).Msg("Skipping payment notifications: booking lookup failed")
	}
	return payment, nil
}

// ensureNotPaid rejects a charge when another payment of the booking already
// holds money. With blockPending a payment awaiting settlement conflicts too.
func (s *PaymentService) ensureNotPaid(ctx context.Context, bookingID, exceptID string, blockPending bool) error {
	existing, err := s.payments.ListByBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	for _, p := range existing {
		if p.ID == exceptID {
			continue
		}
		switch {
		case p.Status == entities.PaymentStatusCompleted, p.Status == entities.PaymentStatusPartialRefund:
			return apperrors.NewConflictError("booking is already paid")
		case blockPending && p.Status == entities.PaymentStatusPending:
			return apperrors.NewConflictError("booking has a payment awaiting settlement")
		}
	}
	return nil
}

// Refund returns part or all of a settled payment; host or admin only
func (s *PaymentService) Refund(ctx context.Context, actor entities.Actor, id string, req RefundRequest) (*entities.Payment, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	payment, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	booking, err := s.bookings.GetByID(ctx, payment.BookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsHost(actor.UserID) && !actor.IsAdmin() {
		return nil, forbidden("refund this payment")
	}

	if err := s.refund(ctx, payment, booking, req.Amount); err != nil {
		return nil, err
	}
	return payment, nil
}

// RefundBooking refunds everything still held for a booking
func (s *PaymentService) RefundBooking(ctx context.Context, booking *entities.Booking) error {
	payments, err := s.payments.ListByBooking(ctx, booking.ID)
	if err != nil {
		return err
	}

	var errs []error
	for _, p := range payments {
		if !p.Status.IsRefundable() {
			continue
		}
		if err := s.refund(ctx, p, booking, nil); err != nil {
			errs = append(errs, fmt.Errorf("payment %s: %w", p.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *PaymentService) refund(ctx context.Context, payment *entities.Payment, booking *entities.Booking, amount *decimal.Decimal) error {
	if !payment.Status.IsRefundable() {
		return apperrors.NewValidationError(fmt.Sprintf("cannot refund a %s payment", payment.Status))
	}

	remaining := payment.Refundable()
	refundAmount := remaining
	if amount != nil {
		refundAmount = *amount
	}
	if !refundAmount.IsPositive() {
		return apperrors.NewValidationError("refund amount must be greater than 0")
	}
	if refundAmount.GreaterThan(remaining) {
		return apperrors.NewValidationError(fmt.Sprintf("refund amount exceeds refundable balance of %s", remaining.StringFixed(2)))
	}

	next := entities.PaymentStatusPartialRefund
	if refundAmount.Equal(remaining) {
		next = entities.PaymentStatusRefunded
	}
	if !payment.Status.CanTransitionTo(next) {
		return apperrors.NewValidationError(fmt.Sprintf("cannot change payment from %s to %s", payment.Status, next))
	}

	refundRef, err := s.provider.Refund(ctx, payment.ProviderRef, refundAmount)
	if err != nil {
		return apperrors.NewExternalError("payment provider refund failed", err)
	}

	payment.RefundedAmount = payment.RefundedAmount.Add(refundAmount)
	payment.Status = next
	if err := s.payments.Update(ctx, payment); err != nil {
		return err
	}

	observability.RecordPaymentTransition(ctx, s.metrics, string(next), string(payment.Method))
	log.Ctx(ctx).Info().
		Str("payment_id", payment.ID).
		Str("refund_ref", refundRef).
		Str("amount", refundAmount.StringFixed(2)).
		Str("status", string(next)).
		Msg("Payment refunded")

	data := paymentData(payment)
	data["refundAmount"] = refundAmount.StringFixed(2)
	s.notifications.Notify(ctx, payment.UserID, entities.NotificationPaymentRefunded,
		"Refund issued",
		fmt.Sprintf("%s %s was refunded for booking %s", refundAmount.StringFixed(2), payment.Currency, booking.ID),
		data)
	vars := paymentVars(payment)
	vars["amount"] = refundAmount.StringFixed(2)
	s.emails.SendEvent(ctx, payment.UserID, entities.NotificationPaymentRefunded, vars)
	return nil
}

func (s *PaymentService) paymentSettled(ctx context.Context, payment *entities.Payment, booking *entities.Booking) {
	observability.RecordPaymentTransition(ctx, s.metrics, string(payment.Status), string(payment.Method))

	switch payment.Status {
	case entities.PaymentStatusCompleted:
		message := fmt.Sprintf("Payment of %s %s received for booking %s",
			payment.Amount.StringFixed(2), payment.Currency, booking.ID)
		for _, userID := range []string{booking.GuestID, booking.HostID} {
			s.notifications.Notify(ctx, userID, entities.NotificationPaymentReceived, "Payment received", message, paymentData(payment))
			s.emails.SendEvent(ctx, userID, entities.NotificationPaymentReceived, paymentVars(payment))
		}
	case entities.PaymentStatusFailed:
		s.notifications.Notify(ctx, booking.GuestID, entities.NotificationPaymentFailed, "Payment failed",
			fmt.Sprintf("Your payment for booking %s failed: %s", booking.ID, payment.FailureReason),
			paymentData(payment))
		s.emails.SendEvent(ctx, booking.GuestID, entities.NotificationPaymentFailed, paymentVars(payment))
	}
}

func paymentData(p *entities.Payment) entities.NotificationData {
	return entities.NotificationData{
		"paymentId": p.ID,
		"bookingId": p.BookingID,
		"amount":    p.Amount.StringFixed(2),
		"status":    string(p.Status),
	}
}

func paymentVars(p *entities.Payment) map[string]string {
	reason := p.FailureReason
	if reason == "" {
		reason = "unknown reason"
	}
	return map[string]string{
		"booking_id": p.BookingID,
		"amount":     p.Amount.StringFixed(2),
		"currency":   p.Currency,
		"reason":     reason,
	}
}
