package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/repositories"
	apperrors "github.com/zatekoja/vacationrentals/pkg/errors"
	"github.com/zatekoja/vacationrentals/pkg/validation"
)

// maxCalendarSpan bounds calendar reads, writes and quotes.
const maxCalendarSpan = 366

// AvailabilityService owns per-night availability and stay pricing
type AvailabilityService struct {
	properties repositories.PropertyRepository
	calendar   repositories.CalendarRepository
	bookings   repositories.BookingRepository
	validator  *validation.Validator
}

// NewAvailabilityService creates a new availability service
func NewAvailabilityService(
	properties repositories.PropertyRepository,
	calendar repositories.CalendarRepository,
	bookings repositories.BookingRepository,
	v *validation.Validator,
) *AvailabilityService {
	return &AvailabilityService{
		properties: properties,
		calendar:   calendar,
		bookings:   bookings,
		validator:  v,
	}
}

// CalendarEntryInput sets one night. Available defaults to true; a nil price
// clears any override.
type CalendarEntryInput struct {
	Date      string           `json:"date" validate:"required"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	Available *bool            `json:"available,omitempty"`
	Note      string           `json:"note" validate:"max=500"`
}

// SetCalendarRequest is the body of PUT /api/properties/{id}/calendar
type SetCalendarRequest struct {
	Entries []CalendarEntryInput `json:"entries" validate:"required,min=1,max=366,dive"`
}

// SetCalendar stores overrides for a property; only its host or an admin may do so
func (s *AvailabilityService) SetCalendar(ctx context.Context, actor entities.Actor, propertyID string, req SetCalendarRequest) ([]*entities.CalendarEntry, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !property.OwnedBy(actor.UserID) && !actor.IsAdmin() {
		return nil, forbidden("edit this calendar")
	}

	byDate := make(map[time.Time]*entities.CalendarEntry, len(req.Entries))
	for _, in := range req.Entries {
		date, err := entities.ParseDate(in.Date)
		if err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", in.Date))
		}
		if in.Price != nil && !in.Price.IsPositive() {
			return nil, apperrors.NewValidationError(fmt.Sprintf("price for %s must be positive", in.Date))
		}
		available := true
		if in.Available != nil {
			available = *in.Available
		}
		entry := &entities.CalendarEntry{
			PropertyID: propertyID,
			Date:       date,
			Available:  available,
			Note:       s.validator.Sanitize(in.Note),
		}
		if in.Price != nil {
			price := in.Price.Round(2)
			entry.Price = &price
		}
		byDate[date] = entry
	}

	entries := make([]*entities.CalendarEntry, 0, len(byDate))
	for _, e := range byDate {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })

	if err := s.calendar.Upsert(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// GetCalendar returns stored overrides for dates in [from, to)
func (s *AvailabilityService) GetCalendar(ctx context.Context, propertyID string, from, to time.Time) ([]*entities.CalendarEntry, error) {
	from, to = entities.TruncateDay(from), entities.TruncateDay(to)
	if !to.After(from) {
		return nil, apperrors.NewValidationError("to must be after from")
	}
	if entities.NightsBetween(from, to) > maxCalendarSpan {
		return nil, apperrors.NewValidationError(fmt.Sprintf("calendar range cannot exceed %d days", maxCalendarSpan))
	}
	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		return nil, err
	}
	return s.calendar.ListRange(ctx, propertyID, from, to)
}

// Quote prices a stay night by night. Calendar overrides win over the base
// price; blocked nights and overlapping bookings make the stay unavailable.
func (s *AvailabilityService) Quote(ctx context.Context, propertyID string, checkIn, checkOut time.Time, guests int) (*entities.Quote, error) {
	_, quote, err := s.quote(ctx, propertyID, checkIn, checkOut, guests)
	return quote, err
}

func (s *AvailabilityService) quote(ctx context.Context, propertyID string, checkIn, checkOut time.Time, guests int) (*entities.Property, *entities.Quote, error) {
	checkIn, checkOut = entities.TruncateDay(checkIn), entities.TruncateDay(checkOut)
	if !checkOut.After(checkIn) {
		return nil, nil, apperrors.NewValidationError("check-out must be after check-in")
	}
	nights := entities.NightsBetween(checkIn, checkOut)
	if nights > maxCalendarSpan {
		return nil, nil, apperrors.NewValidationError(fmt.Sprintf("stay cannot exceed %d nights", maxCalendarSpan))
	}
	if guests < 1 {
		return nil, nil, apperrors.NewValidationError("guests must be at least 1")
	}

	property, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		return nil, nil, err
	}
	if guests > property.MaxGuests {
		return nil, nil, apperrors.NewValidationError(fmt.Sprintf("property accommodates at most %d guests", property.MaxGuests))
	}
	if !property.IsBookable() {
		return nil, nil, apperrors.NewValidationError("property is not available for booking")
	}

	entries, err := s.calendar.ListRange(ctx, propertyID, checkIn, checkOut)
	if err != nil {
		return nil, nil, err
	}
	overrides := make(map[string]*entities.CalendarEntry, len(entries))
	for _, e := range entries {
		overrides[e.Date.Format(entities.DateLayout)] = e
	}

	quote := &entities.Quote{
		PropertyID: propertyID,
		CheckIn:    checkIn.Format(entities.DateLayout),
		CheckOut:   checkOut.Format(entities.DateLayout),
		Guests:     guests,
		Nights:     nights,
		Nightly:    make([]entities.NightlyRate, 0, nights),
		Total:      decimal.Zero,
		Currency:   property.Currency,
	}
	for night := checkIn; night.Before(checkOut); night = night.AddDate(0, 0, 1) {
		day := night.Format(entities.DateLayout)
		price := property.BasePrice
		if e, ok := overrides[day]; ok {
			if !e.Available {
				return nil, nil, apperrors.NewValidationError("property is not available on " + day)
			}
			if e.Price != nil {
				price = *e.Price
			}
		}
		quote.Nightly = append(quote.Nightly, entities.NightlyRate{Date: day, Price: price})
		quote.Total = quote.Total.Add(price)
	}

	overlap, err := s.bookings.HasOverlap(ctx, propertyID, checkIn, checkOut)
	if err != nil {
		return nil, nil, err
	}
	if overlap {
		return nil, nil, apperrors.NewConflictError("property is already booked for the selected dates")
	}

	return property, quote, nil
}
