package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/vacationrentals/internal/application/services"
	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/repositories"
	apperrors "github.com/zatekoja/vacationrentals/pkg/errors"
)

type fakeRefunder struct {
	refunded []string
}

func (f *fakeRefunder) RefundBooking(ctx context.Context, b *entities.Booking) error {
	f.refunded = append(f.refunded, b.ID)
	return nil
}

type bookingFixture struct {
	properties    *MockPropertyRepository
	calendar      *MockCalendarRepository
	bookings      *MockBookingRepository
	notifications *MockNotificationRepository
	refunder      *fakeRefunder
	service       *services.BookingService
}

func newBookingFixture(t *testing.T) *bookingFixture {
	f := &bookingFixture{
		properties: new(MockPropertyRepository),
		calendar:   new(MockCalendarRepository),
		bookings:   new(MockBookingRepository),
		refunder:   &fakeRefunder{},
	}
	notifier, repo := newNotifier(t)
	f.notifications = repo
	availability := services.NewAvailabilityService(f.properties, f.calendar, f.bookings, validator)
	f.service = services.NewBookingService(f.bookings, f.properties, availability, notifier,
		services.NewEmailService(nil, nil), nil, validator)
	f.service.SetRefunder(f.refunder)
	return f
}

func TestBookingService_Create(t *testing.T) {
	ctx := context.Background()
	in := futureDay(10)
	out := in.AddDate(0, 0, 2)
	req := services.CreateBookingRequest{
		PropertyID: "prop-1",
		CheckIn:    in.Format(entities.DateLayout),
		CheckOut:   out.Format(entities.DateLayout),
		Guests:     2,
	}

	t.Run("stores a pending booking and notifies the host", func(t *testing.T) {
		f := newBookingFixture(t)
		f.properties.On("GetByID", mock.Anything, "prop-1").Return(activeProperty(), nil)
		f.calendar.On("ListRange", mock.Anything, "prop-1", in, out).Return([]*entities.CalendarEntry{}, nil)
		f.bookings.On("HasOverlap", mock.Anything, "prop-1", in, out).Return(false, nil)
		f.bookings.On("Create", mock.Anything, mock.MatchedBy(func(b *entities.Booking) bool {
			return b.Status == entities.BookingStatusPending &&
				b.HostID == "host-1" &&
				b.GuestID == "guest-1" &&
				b.TotalPrice.String() == "200"
		})).Return(nil)

		booking, err := f.service.Create(ctx, guestActor, req)
		require.NoError(t, err)
		assert.NotEmpty(t, booking.ID)
		assert.Equal(t, 2, booking.Nights())
		assert.Equal(t, []entities.NotificationType{entities.NotificationBookingRequest}, notifiedTypes(f.notifications)["host-1"])
	})

	t.Run("host cannot book own property", func(t *testing.T) {
		f := newBookingFixture(t)
		f.properties.On("GetByID", mock.Anything, "prop-1").Return(activeProperty(), nil)

		_, err := f.service.Create(ctx, hostActor, req)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))
		f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("check-in in the past", func(t *testing.T) {
		f := newBookingFixture(t)
		past := req
		past.CheckIn = futureDay(-3).Format(entities.DateLayout)

		_, err := f.service.Create(ctx, guestActor, past)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newBookingFixture(t)

		_, err := f.service.Create(ctx, guestActor, services.CreateBookingRequest{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "propertyId is required")
	})

	t.Run("requires identity", func(t *testing.T) {
		f := newBookingFixture(t)

		_, err := f.service.Create(ctx, entities.Actor{}, req)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})
}

func TestBookingService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("host confirms and guest is told", func(t *testing.T) {
		f := newBookingFixture(t)
		f.bookings.On("GetByID", mock.Anything, "booking-1").Return(pendingBooking(), nil)
		f.bookings.On("UpdateStatus", mock.Anything, "booking-1", entities.BookingStatusConfirmed, "").Return(nil)
		f.properties.On("GetByID", mock.Anything, "prop-1").Return(activeProperty(), nil)

		booking, err := f.service.UpdateStatus(ctx, hostActor, "booking-1", services.UpdateBookingStatusRequest{Status: entities.BookingStatusConfirmed})
		require.NoError(t, err)
		assert.Equal(t, entities.BookingStatusConfirmed, booking.Status)
		assert.Equal(t, []entities.NotificationType{entities.NotificationBookingConfirmed}, notifiedTypes(f.notifications)["guest-1"])
		assert.Empty(t, f.refunder.refunded)
	})

	t.Run("guest cannot confirm", func(t *testing.T) {
		f := newBookingFixture(t)
		f.bookings.On("GetByID", mock.Anything, "booking-1").Return(pendingBooking(), nil)

		_, err := f.service.UpdateStatus(ctx, guestActor, "booking-1", services.UpdateBookingStatusRequest{Status: entities.BookingStatusConfirmed})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))
	})

	t.Run("illegal transition", func(t *testing.T) {
		f := newBookingFixture(t)
		f.bookings.On("GetByID", mock.Anything, "booking-1").Return(pendingBooking(), nil)

		_, err := f.service.UpdateStatus(ctx, hostActor, "booking-1", services.UpdateBookingStatusRequest{Status: entities.BookingStatusCompleted})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		f.bookings.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newBookingFixture(t)

		_, err := f.service.UpdateStatus(ctx, hostActor, "booking-1", services.UpdateBookingStatusRequest{Status: "ARCHIVED"})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("guest cancels, host is told and payments refunded", func(t *testing.T) {
		f := newBookingFixture(t)
		confirmed := pendingBooking()
		confirmed.Status = entities.BookingStatusConfirmed
		f.bookings.On("GetByID", mock.Anything, "booking-1").Return(confirmed, nil)
		f.bookings.On("UpdateStatus", mock.Anything, "booking-1", entities.BookingStatusCancelled, "Change of plans").Return(nil)
		f.properties.On("GetByID", mock.Anything, "prop-1").Return(activeProperty(), nil)

		booking, err := f.service.UpdateStatus(ctx, guestActor, "booking-1", services.UpdateBookingStatusRequest{
			Status: entities.BookingStatusCancelled,
			Reason: "Change of plans",
		})
		require.NoError(t, err)
		assert.Equal(t, "Change of plans", booking.CancellationReason)
		assert.Equal(t, []string{"booking-1"}, f.refunder.refunded)

		notified := notifiedTypes(f.notifications)
		assert.Equal(t, []entities.NotificationType{entities.NotificationBookingCancelled}, notified["host-1"])
		assert.Empty(t, notified["guest-1"])
	})

	t.Run("admin cancel tells both sides", func(t *testing.T) {
		f := newBookingFixture(t)
		confirmed := pendingBooking()
		confirmed.Status = entities.BookingStatusConfirmed
		f.bookings.On("GetByID", mock.Anything, "booking-1").Return(confirmed, nil)
		f.bookings.On("UpdateStatus", mock.Anything, "booking-1", entities.BookingStatusCancelled, "").Return(nil)
		f.properties.On("GetByID", mock.Anything, "prop-1").Return(nil, apperrors.NewNotFoundError("gone"))

		_, err := f.service.UpdateStatus(ctx, adminActor, "booking-1", services.UpdateBookingStatusRequest{Status: entities.BookingStatusCancelled})
		require.NoError(t, err)

		notified := notifiedTypes(f.notifications)
		assert.Len(t, notified["host-1"], 1)
		assert.Len(t, notified["guest-1"], 1)
	})
}

func TestBookingService_ListScopesByRole(t *testing.T) {
	ctx := context.Background()
	page := entities.NewPagination(1, 10)

	tests := []struct {
		name   string
		actor  entities.Actor
		expect repositories.BookingFilter
	}{
		{"guest sees own stays", guestActor, repositories.BookingFilter{GuestID: "guest-1"}},
		{"investor sees own stays", entities.Actor{UserID: "inv-1", Role: entities.RoleInvestor}, repositories.BookingFilter{GuestID: "inv-1"}},
		{"host sees their properties", hostActor, repositories.BookingFilter{HostID: "host-1"}},
		{"admin sees everything", adminActor, repositories.BookingFilter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)
			f.bookings.On("List", mock.Anything, tt.expect, page).Return([]*entities.Booking{pendingBooking()}, 11, nil)

			result, err := f.service.List(ctx, tt.actor, repositories.BookingFilter{}, page)
			require.NoError(t, err)
			assert.Equal(t, 2, result.Pagination.TotalPages)
			assert.Len(t, result.Bookings, 1)
		})
	}
}

func TestBookingService_GetForbidsStrangers(t *testing.T) {
	f := newBookingFixture(t)
	f.bookings.On("GetByID", mock.Anything, "booking-1").Return(pendingBooking(), nil)

	stranger := entities.Actor{UserID: "guest-9", Role: entities.RoleGuest}
	_, err := f.service.Get(context.Background(), stranger, "booking-1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))

	b, err := f.service.Get(context.Background(), hostActor, "booking-1")
	require.NoError(t, err)
	assert.Equal(t, "booking-1", b.ID)
}

func TestBookingService_CompleteEndedStays(t *testing.T) {
	f := newBookingFixture(t)
	now := time.Now()

	first := pendingBooking()
	first.Status = entities.BookingStatusConfirmed
	second := pendingBooking()
	second.ID = "booking-2"
	second.Status = entities.BookingStatusConfirmed

	f.bookings.On("ListEndedConfirmed", mock.Anything, now).Return([]*entities.Booking{first, second}, nil)
	f.bookings.On("UpdateStatus", mock.Anything, "booking-1", entities.BookingStatusCompleted, "").Return(nil)
	f.bookings.On("UpdateStatus", mock.Anything, "booking-2", entities.BookingStatusCompleted, "").Return(errors.New("db down"))
	f.properties.On("GetByID", mock.Anything, "prop-1").Return(activeProperty(), nil)

	completed, err := f.service.CompleteEndedStays(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, completed)
	assert.Equal(t, []entities.NotificationType{entities.NotificationBookingCompleted}, notifiedTypes(f.notifications)["guest-1"])
}
