package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// NotificationType identifies what a notification is about
type NotificationType string

const (
	NotificationBookingRequest   NotificationType = "BOOKING_REQUEST"
	NotificationBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	NotificationBookingRejected  NotificationType = "BOOKING_REJECTED"
	NotificationBookingCancelled NotificationType = "BOOKING_CANCELLED"
	NotificationBookingCompleted NotificationType = "BOOKING_COMPLETED"
	NotificationPaymentReceived  NotificationType = "PAYMENT_RECEIVED"
	NotificationPaymentFailed    NotificationType = "PAYMENT_FAILED"
	NotificationPaymentRefunded  NotificationType = "PAYMENT_REFUNDED"
	NotificationSystem           NotificationType = "SYSTEM"
)

// Valid reports whether t is a known notification type
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationBookingRequest, NotificationBookingConfirmed, NotificationBookingRejected,
		NotificationBookingCancelled, NotificationBookingCompleted, NotificationPaymentReceived,
		NotificationPaymentFailed, NotificationPaymentRefunded, NotificationSystem:
		return true
	}
	return false
}

// NotificationData is the JSON payload attached to a notification,
// e.g. {"bookingId": "...", "propertyId": "..."}.
type NotificationData map[string]interface{}

// Value implements driver.Valuer
func (d NotificationData) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner
func (d *NotificationData) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*d = NotificationData{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported notification data type %T", src)
	}
	out := NotificationData{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return err
		}
	}
	*d = out
	return nil
}

// Notification is an in-app message for one user
type Notification struct {
	ID        string           `json:"id" db:"id"`
	UserID    string           `json:"userId" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Data      NotificationData `json:"data" db:"data"`
	IsRead    bool             `json:"isRead" db:"is_read"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
	ReadAt    *time.Time       `json:"readAt,omitempty" db:"read_at"`
}
