package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/vacationrentals/internal/application/services"
	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/pkg/validation"
)

var (
	guestActor = entities.Actor{UserID: "guest-1", Role: entities.RoleGuest}
	hostActor  = entities.Actor{UserID: "host-1", Role: entities.RoleHost}
	adminActor = entities.Actor{UserID: "admin-1", Role: entities.RoleAdmin}
	validator  = validation.New()
)

func activeProperty() *entities.Property {
	return &entities.Property{
		ID:           "prop-1",
		HostID:       "host-1",
		Title:        "Sea Loft",
		PropertyType: entities.PropertyTypeApartment,
		City:         "Lisbon",
		BasePrice:    decimal.NewFromInt(100),
		Currency:     "USD",
		MaxGuests:    4,
		Status:       entities.PropertyStatusActive,
	}
}

func futureDay(days int) time.Time {
	return entities.TruncateDay(time.Now()).AddDate(0, 0, days)
}

func pendingBooking() *entities.Booking {
	in := futureDay(10)
	return &entities.Booking{
		ID:         "booking-1",
		PropertyID: "prop-1",
		GuestID:    "guest-1",
		HostID:     "host-1",
		CheckIn:    in,
		CheckOut:   in.AddDate(0, 0, 2),
		Guests:     2,
		TotalPrice: decimal.NewFromInt(200),
		Currency:   "USD",
		Status:     entities.BookingStatusPending,
	}
}

// newNotifier returns a notification service whose stored rows can be asserted on.
func newNotifier(t *testing.T) (*services.NotificationService, *MockNotificationRepository) {
	t.Helper()
	repo := new(MockNotificationRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	return services.NewNotificationService(repo, nil, validator), repo
}

func notifiedTypes(repo *MockNotificationRepository) map[string][]entities.NotificationType {
	out := map[string][]entities.NotificationType{}
	for _, call := range repo.Calls {
		if call.Method != "Create" {
			continue
		}
		n := call.Arguments.Get(1).(*entities.Notification)
		out[n.UserID] = append(out[n.UserID], n.Type)
	}
	return out
}
