package database

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/repositories"
	"github.com/zatekoja/vacationrentals/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/vacationrentals/pkg/errors"
)

func setupMockDB(t *testing.T) (*postgres.Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return postgres.NewFromDB(db), mock
}

var propertyRowColumns = []string{
	"id", "host_id", "title", "description", "property_type",
	"address", "city", "country", "latitude", "longitude",
	"base_price", "currency", "max_guests", "bedrooms", "bathrooms",
	"amenities", "images", "status", "created_at", "updated_at",
}

var bookingRowColumns = []string{
	"id", "property_id", "guest_id", "host_id", "check_in", "check_out",
	"guests", "total_price", "currency", "status", "special_requests",
	"cancellation_reason", "created_at", "updated_at",
}

func TestMigrate_AppliesEveryStatementInTransaction(t *testing.T) {
	client, mock := setupMockDB(t)

	for range migrations {
		mock.ExpectBegin()
		mock.ExpectExec(".+").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()
	}

	require.NoError(t, Migrate(context.Background(), client.DB()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_StopsOnFailure(t *testing.T) {
	client, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := Migrate(context.Background(), client.DB())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration 0")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserAdapter_GetByEmail(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewUserAdapter(client)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM "users" WHERE \("email" = 'host@example.com'\)`).
		WillReturnRows(sqlmock.NewRows(userColumnNames()).
			AddRow("u1", "host@example.com", "Ada", "", "HOST", now, now))

	user, err := adapter.GetByEmail(context.Background(), "host@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, entities.RoleHost, user.Role)
}

func TestUserAdapter_GetByIDNotFound(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewUserAdapter(client)

	mock.ExpectQuery(`SELECT .+ FROM "users"`).WillReturnRows(sqlmock.NewRows(userColumnNames()))

	_, err := adapter.GetByID(context.Background(), "missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func userColumnNames() []string {
	return []string{"id", "email", "name", "phone", "role", "created_at", "updated_at"}
}

func TestPropertyAdapter_Create(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewPropertyAdapter(client)
	now := time.Now().UTC()

	mock.ExpectExec(`INSERT INTO "properties"`).WillReturnResult(sqlmock.NewResult(1, 1))

	err := adapter.Create(context.Background(), &entities.Property{
		ID:           "p1",
		HostID:       "h1",
		Title:        "Loft",
		PropertyType: entities.PropertyTypeApartment,
		BasePrice:    decimal.NewFromInt(120),
		Currency:     "USD",
		MaxGuests:    2,
		Status:       entities.PropertyStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyAdapter_GetByID(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewPropertyAdapter(client)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM "properties" WHERE \("id" = 'p1'\)`).
		WillReturnRows(sqlmock.NewRows(propertyRowColumns).AddRow(
			"p1", "h1", "Loft", "Sunny", "APARTMENT",
			"1 Main St", "Lisbon", "PT", 38.7, nil,
			"120.50", "EUR", 4, 2, 1,
			"{wifi,pool}", "{}", "ACTIVE", now, now,
		))

	p, err := adapter.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", p.City)
	assert.True(t, decimal.RequireFromString("120.50").Equal(p.BasePrice))
	assert.Equal(t, []string{"wifi", "pool"}, p.Amenities)
	assert.Equal(t, []string{}, p.Images)
	require.NotNil(t, p.Latitude)
	assert.Equal(t, 38.7, *p.Latitude)
	assert.Nil(t, p.Longitude)
}

func TestPropertyAdapter_DeleteNotFound(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewPropertyAdapter(client)

	mock.ExpectExec(`DELETE FROM "properties"`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.Delete(context.Background(), "missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestPropertyAdapter_ListAppliesFiltersAndPaging(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewPropertyAdapter(client)
	now := time.Now().UTC()
	minPrice := decimal.NewFromInt(50)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "properties" WHERE .*"status" = 'ACTIVE'.*LOWER\("city"\) = 'lisbon'.*"base_price" >= `).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT .+ FROM "properties" .+ LIMIT 5 OFFSET 5`).
		WillReturnRows(sqlmock.NewRows(propertyRowColumns).AddRow(
			"p6", "h1", "Loft", "", "APARTMENT", "", "Lisbon", "PT", nil, nil,
			"80", "EUR", 2, 1, 1, "{}", "{}", "ACTIVE", now, now,
		))

	props, total, err := adapter.List(context.Background(), repositories.PropertyFilter{
		City:     " Lisbon ",
		Status:   entities.PropertyStatusActive,
		MinPrice: &minPrice,
	}, entities.NewPagination(2, 5))
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	require.Len(t, props, 1)
	assert.Equal(t, "p6", props[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPropertyAdapter_ListEmptySkipsPageQuery(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewPropertyAdapter(client)

	mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	props, total, err := adapter.List(context.Background(), repositories.PropertyFilter{}, entities.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, props)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarAdapter_UpsertUsesOnConflict(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewCalendarAdapter(client)
	price := decimal.NewFromInt(150)
	day := time.Date(2026, 7, 1, 15, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO "property_calendar" .+'2026-07-01'.+NULL.+ON CONFLICT \(property_id, date\) DO UPDATE SET`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := adapter.Upsert(context.Background(), []*entities.CalendarEntry{
		{PropertyID: "p1", Date: day, Price: &price, Available: true},
		{PropertyID: "p1", Date: day.AddDate(0, 0, 1), Available: false, Note: "maintenance"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarAdapter_UpsertEmptyIsNoop(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewCalendarAdapter(client)

	require.NoError(t, adapter.Upsert(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarAdapter_ListRange(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewCalendarAdapter(client)
	from := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM "property_calendar" WHERE .+"date" >= '2026-07-01'.+"date" < '2026-07-03'`).
		WillReturnRows(sqlmock.NewRows([]string{"property_id", "date", "price", "available", "note"}).
			AddRow("p1", from, "150.00", true, "").
			AddRow("p1", from.AddDate(0, 0, 1), nil, false, "maintenance"))

	entries, err := adapter.ListRange(context.Background(), "p1", from, from.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].Price)
	assert.True(t, decimal.NewFromInt(150).Equal(*entries[0].Price))
	assert.Nil(t, entries[1].Price)
	assert.False(t, entries[1].Available)
}

func TestBookingAdapter_HasOverlap(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewBookingAdapter(client)
	in := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM "bookings" WHERE .+"status" IN \('PENDING', 'CONFIRMED'\).+"check_in" < '2026-07-04'.+"check_out" > '2026-07-01'`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	overlap, err := adapter.HasOverlap(context.Background(), "p1", in, in.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.True(t, overlap)
}

func TestBookingAdapter_UpdateStatusNotFound(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewBookingAdapter(client)

	mock.ExpectExec(`UPDATE "bookings" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.UpdateStatus(context.Background(), "missing", entities.BookingStatusConfirmed, "")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestBookingAdapter_ListByHost(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewBookingAdapter(client)
	in := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "bookings" WHERE \("host_id" = 'h1'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM "bookings" WHERE \("host_id" = 'h1'\) ORDER BY "check_in" DESC`).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns).AddRow(
			"b1", "p1", "g1", "h1", in, in.AddDate(0, 0, 2), 2, "240", "USD", "PENDING", "", "", now, now,
		))

	bookings, total, err := adapter.List(context.Background(), repositories.BookingFilter{HostID: "h1"}, entities.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, bookings, 1)
	assert.Equal(t, 2, bookings[0].Nights())
	assert.Equal(t, entities.BookingStatusPending, bookings[0].Status)
}

func TestPaymentAdapter_GetByID(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewPaymentAdapter(client)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .+ FROM "payments" WHERE \("id" = 'pay1'\)`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_id", "user_id", "amount", "refunded_amount", "currency",
			"method", "status", "provider", "provider_ref", "failure_reason",
			"created_at", "updated_at",
		}).AddRow("pay1", "b1", "g1", "240.00", "0", "USD", "CREDIT_CARD", "COMPLETED", "mock", "mock_ch_1", "", now, now))

	p, err := adapter.GetByID(context.Background(), "pay1")
	require.NoError(t, err)
	assert.Equal(t, entities.PaymentStatusCompleted, p.Status)
	assert.True(t, decimal.NewFromInt(240).Equal(p.Refundable()))
}

func TestPaymentAdapter_ListScopesHostThroughBookings(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewPaymentAdapter(client)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "payments" WHERE \("booking_id" IN \(SELECT "id" FROM "bookings" WHERE \("host_id" = 'h1'\)\)\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	payments, total, err := adapter.List(context.Background(), repositories.PaymentFilter{HostID: "h1"}, entities.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, payments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationAdapter_ListUnread(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewNotificationAdapter(client)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "notifications" WHERE \(\("user_id" = 'u1'\) AND \("is_read" IS FALSE\)\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT .+ FROM "notifications"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "type", "title", "message", "data", "is_read", "created_at", "read_at"}).
			AddRow("n1", "u1", "BOOKING_REQUEST", "New request", "Someone wants to stay", []byte(`{"bookingId":"b1"}`), false, now, nil))

	list, total, err := adapter.List(context.Background(), repositories.NotificationFilter{UserID: "u1", UnreadOnly: true}, entities.NewPagination(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "b1", list[0].Data["bookingId"])
	assert.Nil(t, list[0].ReadAt)
}

func TestNotificationAdapter_MarkAllRead(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewNotificationAdapter(client)

	mock.ExpectExec(`UPDATE notifications SET is_read = TRUE`).
		WithArgs(sqlmock.AnyArg(), "u1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := adapter.MarkAllRead(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestNotificationAdapter_DeleteNotFound(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewNotificationAdapter(client)

	mock.ExpectExec(`DELETE FROM notifications`).WithArgs("n9").WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.Delete(context.Background(), "n9")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
