package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/repositories"
	"github.com/zatekoja/vacationrentals/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/vacationrentals/pkg/errors"
	"github.com/zatekoja/vacationrentals/pkg/validation"
)

// BookingRefunder returns a cancelled booking's settled payments
type BookingRefunder interface {
	RefundBooking(ctx context.Context, booking *entities.Booking) error
}

// BookingService handles the reservation lifecycle
type BookingService struct {
	bookings      repositories.BookingRepository
	properties    repositories.PropertyRepository
	availability  *AvailabilityService
	refunder      BookingRefunder
	notifications *NotificationService
	emails        *EmailService
	metrics       *observability.Metrics
	validator     *validation.Validator
	now           func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookings repositories.BookingRepository,
	properties repositories.PropertyRepository,
	availability *AvailabilityService,
	notifications *NotificationService,
	emails *EmailService,
	metrics *observability.Metrics,
	v *validation.Validator,
) *BookingService {
	return &BookingService{
		bookings:      bookings,
		properties:    properties,
		availability:  availability,
		notifications: notifications,
		emails:        emails,
		metrics:       metrics,
		validator:     v,
		now:           time.Now,
	}
}

// SetRefunder wires the payment side used when a booking is cancelled
func (s *BookingService) SetRefunder(r BookingRefunder) {
	s.refunder = r
}

// CreateBookingRequest is the payload for a new reservation
type CreateBookingRequest struct {
	PropertyID      string `json:"propertyId" validate:"required"`
	CheckIn         string `json:"checkIn" validate:"required"`
	CheckOut        string `json:"checkOut" validate:"required"`
	Guests          int    `json:"guests" validate:"min=1"`
	SpecialRequests string `json:"specialRequests" validate:"max=1000"`
}

// UpdateBookingStatusRequest moves a booking along its lifecycle
type UpdateBookingStatusRequest struct {
	Status entities.BookingStatus `json:"status" validate:"required"`
	Reason string                 `json:"reason" validate:"max=500"`
}

// BookingPage is one page of bookings
type BookingPage struct {
	Bookings   []*entities.Booking `json:"bookings"`
	Pagination entities.PageMeta   `json:"pagination"`
}

// Create prices and stores a PENDING booking and tells the host
func (s *BookingService) Create(ctx context.Context, actor entities.Actor, req CreateBookingRequest) (*entities.Booking, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	checkIn, err := entities.ParseDate(req.CheckIn)
	if err != nil {
		return nil, apperrors.NewValidationError("checkIn must be a YYYY-MM-DD date")
	}
	checkOut, err := entities.ParseDate(req.CheckOut)
	if err != nil {
		return nil, apperrors.NewValidationError("checkOut must be a YYYY-MM-DD date")
	}
	if checkIn.Before(entities.TruncateDay(s.now())) {
		return nil, apperrors.NewValidationError("check-in cannot be in the past")
	}

	property, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if property.OwnedBy(actor.UserID) {
		return nil, apperrors.NewForbiddenError("hosts cannot book their own property")
	}

	property, quote, err := s.availability.quote(ctx, property.ID, checkIn, checkOut, req.Guests)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	booking := &entities.Booking{
		ID:              uuid.New().String(),
		PropertyID:      property.ID,
		GuestID:         actor.UserID,
		HostID:          property.HostID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          req.Guests,
		TotalPrice:      quote.Total,
		Currency:        quote.Currency,
		Status:          entities.BookingStatusPending,
		SpecialRequests: s.validator.Sanitize(req.SpecialRequests),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}

	observability.RecordBookingTransition(ctx, s.metrics, string(booking.Status))
	log.Ctx(ctx).Info().
		Str("booking_id", booking.ID).
		Str("property_id", property.ID).
		Int("nights", quote.Nights).
		Msg("Booking requested")

	s.notifications.Notify(ctx, property.HostID, entities.NotificationBookingRequest,
		"New booking request",
		fmt.Sprintf("New request for %s from %s to %s", property.Title, quote.CheckIn, quote.CheckOut),
		bookingData(booking))
	s.emails.SendEvent(ctx, property.HostID, entities.NotificationBookingRequest, bookingVars(booking, property, ""))

	return booking, nil
}

// Get returns a booking visible to the actor
func (s *BookingService) Get(ctx context.Context, actor entities.Actor, id string) (*entities.Booking, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.IsGuest(actor.UserID) && !booking.IsHost(actor.UserID) && !actor.IsAdmin() {
		return nil, forbidden("access this booking")
	}
	return booking, nil
}

// List scopes bookings by role: hosts see bookings on their properties,
// admins see everything, everyone else sees their own stays.
func (s *BookingService) List(ctx context.Context, actor entities.Actor, filter repositories.BookingFilter, page entities.Pagination) (*BookingPage, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown booking status %q", filter.Status))
	}

	switch {
	case actor.IsAdmin():
	case actor.ManagesListings():
		filter.HostID = actor.UserID
		filter.GuestID = ""
	default:
		filter.GuestID = actor.UserID
		filter.HostID = ""
	}

	bookings, total, err := s.bookings.List(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	return &BookingPage{Bookings: bookings, Pagination: page.Meta(total)}, nil
}

// UpdateStatus applies a lifecycle transition on behalf of the actor
func (s *BookingService) UpdateStatus(ctx context.Context, actor entities.Actor, id string, req UpdateBookingStatusRequest) (*entities.Booking, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}
	if !req.Status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown booking status %q", req.Status))
	}

	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canSetBookingStatus(actor, booking, req.Status) {
		return nil, forbidden(fmt.Sprintf("mark this booking %s", req.Status))
	}

	return s.transition(ctx, actor, booking, req.Status, s.validator.Sanitize(req.Reason))
}

func canSetBookingStatus(actor entities.Actor, booking *entities.Booking, next entities.BookingStatus) bool {
	if actor.IsAdmin() || booking.IsHost(actor.UserID) {
		return true
	}
	return next == entities.BookingStatusCancelled && booking.IsGuest(actor.UserID)
}

func (s *BookingService) transition(ctx context.Context, actor entities.Actor, booking *entities.Booking, next entities.BookingStatus, reason string) (*entities.Booking, error) {
	if !booking.Status.CanTransitionTo(next) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cannot change booking from %s to %s", booking.Status, next))
	}

	if err := s.bookings.UpdateStatus(ctx, booking.ID, next, reason); err != nil {
		return nil, err
	}
	booking.Status = next
	if reason != "" {
		booking.CancellationReason = reason
	}
	booking.UpdatedAt = s.now().UTC()

	observability.RecordBookingTransition(ctx, s.metrics, string(next))
	log.Ctx(ctx).Info().
		Str("booking_id", booking.ID).
		Str("status", string(next)).
		Str("actor", actor.UserID).
		Msg("Booking status changed")

	if next == entities.BookingStatusCancelled && s.refunder != nil {
		if err := s.refunder.RefundBooking(ctx, booking); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("booking_id", booking.ID).Msg("Failed to refund cancelled booking")
		}
	}

	s.announce(ctx, actor, booking, reason)
	return booking, nil
}

func (s *BookingService) announce(ctx context.Context, actor entities.Actor, booking *entities.Booking, reason string) {
	var (
		notifType  entities.NotificationType
		title      string
		recipients []string
	)
	switch booking.Status {
	case entities.BookingStatusConfirmed:
		notifType, title, recipients = entities.NotificationBookingConfirmed, "Booking confirmed", []string{booking.GuestID}
	case entities.BookingStatusRejected:
		notifType, title, recipients = entities.NotificationBookingRejected, "Booking declined", []string{booking.GuestID}
	case entities.BookingStatusCompleted:
		notifType, title, recipients = entities.NotificationBookingCompleted, "Stay completed", []string{booking.GuestID}
	case entities.BookingStatusCancelled:
		notifType, title = entities.NotificationBookingCancelled, "Booking cancelled"
		if booking.IsGuest(actor.UserID) || booking.IsHost(actor.UserID) {
			recipients = []string{booking.Counterparty(actor.UserID)}
		} else {
			recipients = []string{booking.GuestID, booking.HostID}
		}
	default:
		return
	}

	var property *entities.Property
	if p, err := s.properties.GetByID(ctx, booking.PropertyID); err == nil {
		property = p
	}

	message := fmt.Sprintf("Booking %s from %s to %s is now %s",
		booking.ID, booking.CheckIn.Format(entities.DateLayout), booking.CheckOut.Format(entities.DateLayout), booking.Status)
	if property != nil {
		message = fmt.Sprintf("Your booking at %s from %s to %s is now %s",
			property.Title, booking.CheckIn.Format(entities.DateLayout), booking.CheckOut.Format(entities.DateLayout), booking.Status)
	}

	for _, userID := range recipients {
		s.notifications.Notify(ctx, userID, notifType, title, message, bookingData(booking))
		s.emails.SendEvent(ctx, userID, notifType, bookingVars(booking, property, reason))
	}
}

// CompleteEndedStays marks CONFIRMED bookings whose check-out has passed as
// COMPLETED and returns how many were completed.
func (s *BookingService) CompleteEndedStays(ctx context.Context, now time.Time) (int, error) {
	ended, err := s.bookings.ListEndedConfirmed(ctx, now)
	if err != nil {
		return 0, err
	}

	system := entities.Actor{UserID: "system", Role: entities.RoleAdmin}
	completed := 0
	for _, booking := range ended {
		if _, err := s.transition(ctx, system, booking, entities.BookingStatusCompleted, ""); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("booking_id", booking.ID).Msg("Failed to complete stay")
			continue
		}
		completed++
	}

	log.Ctx(ctx).Info().Int("candidates", len(ended)).Int("completed", completed).Msg("Completed ended stays")
	return completed, nil
}

func bookingData(b *entities.Booking) entities.NotificationData {
	return entities.NotificationData{
		"bookingId":  b.ID,
		"propertyId": b.PropertyID,
		"status":     string(b.Status),
	}
}

func bookingVars(b *entities.Booking, p *entities.Property, reason string) map[string]string {
	vars := map[string]string{
		"booking_id":     b.ID,
		"check_in":       b.CheckIn.Format(entities.DateLayout),
		"check_out":      b.CheckOut.Format(entities.DateLayout),
		"guests":         strconv.Itoa(b.Guests),
		"total":          b.TotalPrice.StringFixed(2),
		"currency":       b.Currency,
		"reason":         reason,
		"property_title": "your property",
	}
	if p != nil {
		vars["property_title"] = p.Title
	}
	if reason == "" {
		vars["reason"] = "not provided"
	}
	return vars
}
