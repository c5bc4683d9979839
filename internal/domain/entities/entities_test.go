package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusRejected, true},
		{BookingStatusPending, BookingStatusCompleted, false},
		{BookingStatusPending, BookingStatusCancelled, false},
		{BookingStatusConfirmed, BookingStatusCompleted, true},
		{BookingStatusConfirmed, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusRejected, false},
		{BookingStatusRejected, BookingStatusConfirmed, false},
		{BookingStatusCompleted, BookingStatusCancelled, false},
		{BookingStatusCancelled, BookingStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.True(t, BookingStatusCancelled.IsTerminal())
	assert.False(t, BookingStatusPending.IsTerminal())
}

func TestPaymentStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, PaymentStatusPending.CanTransitionTo(PaymentStatusCompleted))
	assert.True(t, PaymentStatusPending.CanTransitionTo(PaymentStatusFailed))
	assert.True(t, PaymentStatusCompleted.CanTransitionTo(PaymentStatusRefunded))
	assert.True(t, PaymentStatusCompleted.CanTransitionTo(PaymentStatusPartialRefund))
	assert.True(t, PaymentStatusPartialRefund.CanTransitionTo(PaymentStatusRefunded))
	assert.False(t, PaymentStatusFailed.CanTransitionTo(PaymentStatusCompleted))
	assert.False(t, PaymentStatusRefunded.CanTransitionTo(PaymentStatusPartialRefund))
	assert.False(t, PaymentStatusPending.CanTransitionTo(PaymentStatusRefunded))
}

func TestPayment_Refundable(t *testing.T) {
	p := &Payment{Amount: decimal.RequireFromString("300.00"), RefundedAmount: decimal.RequireFromString("100.50"), Status: PaymentStatusPartialRefund}
	assert.True(t, decimal.RequireFromString("199.50").Equal(p.Refundable()))

	p.Status = PaymentStatusFailed
	assert.True(t, p.Refundable().IsZero())
}

func TestPagination(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		wantPage   int
		wantSize   int
		wantOffset int
	}{
		{"defaults", 0, 0, 1, DefaultPageSize, 0},
		{"negative page", -3, 20, 1, 20, 0},
		{"clamped size", 2, 500, 2, MaxPageSize, MaxPageSize},
		{"regular", 3, 25, 3, 25, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.size)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantSize, p.PageSize)
			assert.Equal(t, tt.wantOffset, p.Offset())
		})
	}
}

func TestNewPageMeta(t *testing.T) {
	assert.Equal(t, 0, NewPageMeta(0, 1, 10).TotalPages)
	assert.Equal(t, 1, NewPageMeta(10, 1, 10).TotalPages)
	assert.Equal(t, 2, NewPageMeta(11, 1, 10).TotalPages)
	assert.Equal(t, 34, NewPageMeta(100, 1, 3).TotalPages)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" property_manager ")
	require.NoError(t, err)
	assert.Equal(t, RolePropertyManager, r)

	_, err = ParseRole("superuser")
	assert.Error(t, err)

	assert.True(t, Actor{Role: RoleHost}.CanManageProperties())
	assert.False(t, Actor{Role: RoleInvestor}.CanManageProperties())
	assert.True(t, Actor{Role: RoleAdmin}.IsAdmin())
}

func TestNightsBetween(t *testing.T) {
	in := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, NightsBetween(in, out))

	b := &Booking{CheckIn: in, CheckOut: out, GuestID: "g", HostID: "h"}
	assert.Equal(t, 3, b.Nights())
	assert.Equal(t, "h", b.Counterparty("g"))
	assert.Equal(t, "g", b.Counterparty("h"))
}

func TestNotificationData_ScanValue(t *testing.T) {
	var d NotificationData
	require.NoError(t, d.Scan([]byte(`{"bookingId":"b-1"}`)))
	assert.Equal(t, "b-1", d["bookingId"])

	require.NoError(t, d.Scan(nil))
	assert.Empty(t, d)

	v, err := NotificationData(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)

	assert.Error(t, d.Scan(42))
}
