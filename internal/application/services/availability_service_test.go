package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/vacationrentals/internal/application/services"
	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	apperrors "github.com/zatekoja/vacationrentals/pkg/errors"
)

type availabilityFixture struct {
	properties *MockPropertyRepository
	calendar   *MockCalendarRepository
	bookings   *MockBookingRepository
	service    *services.AvailabilityService
}

func newAvailabilityFixture() *availabilityFixture {
	f := &availabilityFixture{
		properties: new(MockPropertyRepository),
		calendar:   new(MockCalendarRepository),
		bookings:   new(MockBookingRepository),
	}
	f.service = services.NewAvailabilityService(f.properties, f.calendar, f.bookings, validator)
	return f
}

func TestAvailabilityService_Quote(t *testing.T) {
	ctx := context.Background()
	in := futureDay(5)
	out := in.AddDate(0, 0, 3)

	t.Run("uses overrides and base price", func(t *testing.T) {
		f := newAvailabilityFixture()
		special := decimal.RequireFromString("150.50")
		f.properties.On("GetByID", mock.Anything, "prop-1").Return(activeProperty(), nil)
		f.calendar.On("ListRange", mock.Anything, "prop-1", in, out).Return([]*entities.CalendarEntry{
			{PropertyID: "prop-1", Date: in.AddDate(0, 0, 1), Price: &special, Available: true},
		}, nil)
		f.bookings.On("HasOverlap", mock.Anything, "prop-1", in, out).Return(false, nil)

		quote, err := f.service.Quote(ctx, "prop-1", in, out, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, quote.Nights)
		require.Len(t, quote.Nightly, 3)
		assert.True(t, special.Equal(quote.Nightly[1].Price))
		assert.Equal(t, "350.5", quote.Total.String())
		assert.Equal(t, "USD", quote.Currency)
	})

	t.Run("blocked night is rejected", func(t *testing.T) {
		f := newAvailabilityFixture()
		blocked := in.AddDate(0, 0, 2)
		f.properties.On("GetByID", mock.Anything, "prop-1").Return(activeProperty(), nil)
		f.calendar.On("ListRange", mock.Anything, "prop-1", in, out).Return([]*entities.CalendarEntry{
			{PropertyID: "prop-1", Date: blocked, Available: false},
		}, nil)

		_, err := f.service.Quote(ctx, "prop-1", in, out, 2)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Contains(t, err.Error(), "property is not available on "+blocked.Format(entities.DateLayout))
		f.bookings.AssertNotCalled(t, "HasOverlap", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("overlapping booking conflicts", func(t *testing.T) {
		f := newAvailabilityFixture()
		f.properties.On("GetByID", mock.Anything, "prop-1").Return(activeProperty(), nil)
		f.calendar.On("ListRange", mock.Anything, "prop-1", in, out).Return([]*entities.CalendarEntry{}, nil)
		f.bookings.On("HasOverlap", mock.Anything, "prop-1", in, out).Return(true, nil)

		_, err := f.service.Quote(ctx, "prop-1", in, out, 2)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	})

	t.Run("check-out must follow check-in", func(t *testing.T) {
		f := newAvailabilityFixture()

		_, err := f.service.Quote(ctx, "prop-1", in, in, 2)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		f.properties.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("too many guests", func(t *testing.T) {
		f := newAvailabilityFixture()
		f.properties.On("GetByID", mock.Anything, "prop-1").Return(activeProperty(), nil)

		_, err := f.service.Quote(ctx, "prop-1", in, out, 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at most 4 guests")
	})

	t.Run("inactive property", func(t *testing.T) {
		f := newAvailabilityFixture()
		p := activeProperty()
		p.Status = entities.PropertyStatusInactive
		f.properties.On("GetByID", mock.Anything, "prop-1").Return(p, nil)

		_, err := f.service.Quote(ctx, "prop-1", in, out, 1)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}

func TestAvailabilityService_SetCalendar(t *testing.T) {
	ctx := context.Background()
	price := decimal.NewFromInt(180)
	blocked := false

	t.Run("owner sets sorted, deduplicated entries", func(t *testing.T) {
		f := newAvailabilityFixture()
		f.properties.On("GetByID", mock.Anything, "prop-1").Return(activeProperty(), nil)
		f.calendar.On("Upsert", mock.Anything, mock.MatchedBy(func(entries []*entities.CalendarEntry) bool {
			return len(entries) == 2 &&
				entries[0].Date.Format(entities.DateLayout) == "2026-12-24" &&
				entries[0].Price != nil &&
				!entries[1].Available
		})).Return(nil)

		entries, err := f.service.SetCalendar(ctx, hostActor, "prop-1", services.SetCalendarRequest{
			Entries: []services.CalendarEntryInput{
				{Date: "2026-12-25", Available: &blocked, Note: "<b>Family</b>"},
				{Date: "2026-12-24", Price: &price},
				{Date: "2026-12-25", Available: &blocked, Note: "Family"},
			},
		})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "Family", entries[1].Note)
		f.calendar.AssertExpectations(t)
	})

	t.Run("other host is forbidden", func(t *testing.T) {
		f := newAvailabilityFixture()
		f.properties.On("GetByID", mock.Anything, "prop-1").Return(activeProperty(), nil)

		other := entities.Actor{UserID: "host-2", Role: entities.RoleHost}
		_, err := f.service.SetCalendar(ctx, other, "prop-1", services.SetCalendarRequest{
			Entries: []services.CalendarEntryInput{{Date: "2026-12-24"}},
		})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeForbidden))
		f.calendar.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("non-positive price", func(t *testing.T) {
		f := newAvailabilityFixture()
		f.properties.On("GetByID", mock.Anything, "prop-1").Return(activeProperty(), nil)
		zero := decimal.Zero

		_, err := f.service.SetCalendar(ctx, adminActor, "prop-1", services.SetCalendarRequest{
			Entries: []services.CalendarEntryInput{{Date: "2026-12-24", Price: &zero}},
		})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("bad date", func(t *testing.T) {
		f := newAvailabilityFixture()
		f.properties.On("GetByID", mock.Anything, "prop-1").Return(activeProperty(), nil)

		_, err := f.service.SetCalendar(ctx, hostActor, "prop-1", services.SetCalendarRequest{
			Entries: []services.CalendarEntryInput{{Date: "24/12/2026"}},
		})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("anonymous caller", func(t *testing.T) {
		f := newAvailabilityFixture()
		_, err := f.service.SetCalendar(ctx, entities.Actor{}, "prop-1", services.SetCalendarRequest{})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})
}

func TestAvailabilityService_GetCalendarRejectsInvertedRange(t *testing.T) {
	f := newAvailabilityFixture()
	from := futureDay(3)

	_, err := f.service.GetCalendar(context.Background(), "prop-1", from, from.AddDate(0, 0, -1))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}
