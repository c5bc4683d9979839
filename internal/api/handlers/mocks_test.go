package handlers_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/vacationrentals/internal/api/middleware"
	"github.com/zatekoja/vacationrentals/internal/application/services"
	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/providers"
	"github.com/zatekoja/vacationrentals/internal/domain/repositories"
)

var (
	guest = &entities.Actor{UserID: "guest-1", Role: entities.RoleGuest}
	host  = &entities.Actor{UserID: "host-1", Role: entities.RoleHost}
	admin = &entities.Actor{UserID: "admin-1", Role: entities.RoleAdmin}
)

// serve routes req through a mux holding only pattern, behind the identity middleware
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	w := httptest.NewRecorder()
	middleware.IdentityMiddleware(mux).ServeHTTP(w, req)
	return w
}

func newRequest(method, target, body string, actor *entities.Actor) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req.Header.Set(middleware.HeaderUserID, actor.UserID)
		req.Header.Set(middleware.HeaderUserRole, string(actor.Role))
	}
	return req
}

type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) Create(ctx context.Context, actor entities.Actor, req services.CreatePropertyRequest) (*entities.Property, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Property), args.Error(1)
}

func (m *MockPropertyService) Get(ctx context.Context, actor entities.Actor, id string) (*entities.Property, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Property), args.Error(1)
}

func (m *MockPropertyService) List(ctx context.Context, actor entities.Actor, filter repositories.PropertyFilter, page entities.Pagination) (*services.PropertyPage, error) {
	args := m.Called(ctx, actor, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PropertyPage), args.Error(1)
}

func (m *MockPropertyService) Update(ctx context.Context, actor entities.Actor, id string, req services.UpdatePropertyRequest) (*entities.Property, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Property), args.Error(1)
}

func (m *MockPropertyService) Delete(ctx context.Context, actor entities.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockPropertyService) Search(ctx context.Context, params providers.PropertySearchParams) (*services.PropertyPage, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PropertyPage), args.Error(1)
}

type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) SetCalendar(ctx context.Context, actor entities.Actor, propertyID string, req services.SetCalendarRequest) ([]*entities.CalendarEntry, error) {
	args := m.Called(ctx, actor, propertyID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CalendarEntry), args.Error(1)
}

func (m *MockAvailabilityService) GetCalendar(ctx context.Context, propertyID string, from, to time.Time) ([]*entities.CalendarEntry, error) {
	args := m.Called(ctx, propertyID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CalendarEntry), args.Error(1)
}

func (m *MockAvailabilityService) Quote(ctx context.Context, propertyID string, checkIn, checkOut time.Time, guests int) (*entities.Quote, error) {
	args := m.Called(ctx, propertyID, checkIn, checkOut, guests)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Quote), args.Error(1)
}

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Create(ctx context.Context, actor entities.Actor, req services.CreateBookingRequest) (*entities.Booking, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *MockBookingService) Get(ctx context.Context, actor entities.Actor, id string) (*entities.Booking, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

func (m *MockBookingService) List(ctx context.Context, actor entities.Actor, filter repositories.BookingFilter, page entities.Pagination) (*services.BookingPage, error) {
	args := m.Called(ctx, actor, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.BookingPage), args.Error(1)
}

func (m *MockBookingService) UpdateStatus(ctx context.Context, actor entities.Actor, id string, req services.UpdateBookingStatusRequest) (*entities.Booking, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Booking), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Create(ctx context.Context, actor entities.Actor, req services.CreatePaymentRequest) (*entities.Payment, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentService) Get(ctx context.Context, actor entities.Actor, id string) (*entities.Payment, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentService) List(ctx context.Context, actor entities.Actor, filter repositories.PaymentFilter, page entities.Pagination) (*services.PaymentPage, error) {
	args := m.Called(ctx, actor, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PaymentPage), args.Error(1)
}

func (m *MockPaymentService) UpdateStatus(ctx context.Context, actor entities.Actor, id string, req services.UpdatePaymentStatusRequest) (*entities.Payment, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentService) Refund(ctx context.Context, actor entities.Actor, id string, req services.RefundRequest) (*entities.Payment, error) {
	args := m.Called(ctx, actor, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Create(ctx context.Context, actor entities.Actor, req services.CreateNotificationRequest) (*entities.Notification, error) {
	args := m.Called(ctx, actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Notification), args.Error(1)
}

func (m *MockNotificationService) List(ctx context.Context, actor entities.Actor, unreadOnly bool, page entities.Pagination) (*services.NotificationPage, error) {
	args := m.Called(ctx, actor, unreadOnly, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.NotificationPage), args.Error(1)
}

func (m *MockNotificationService) Get(ctx context.Context, actor entities.Actor, id string) (*entities.Notification, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Notification), args.Error(1)
}

func (m *MockNotificationService) SetRead(ctx context.Context, actor entities.Actor, id string, read bool) (*entities.Notification, error) {
	args := m.Called(ctx, actor, id, read)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Notification), args.Error(1)
}

func (m *MockNotificationService) Delete(ctx context.Context, actor entities.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockNotificationService) MarkAllRead(ctx context.Context, actor entities.Actor) (int64, error) {
	args := m.Called(ctx, actor)
	return args.Get(0).(int64), args.Error(1)
}

type MockAssistantService struct {
	mock.Mock
}

func (m *MockAssistantService) Chat(ctx context.Context, req services.AssistantRequest) (*services.AssistantResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AssistantResponse), args.Error(1)
}
