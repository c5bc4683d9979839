package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the lifecycle state of a payment
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "PENDING"
	PaymentStatusCompleted     PaymentStatus = "COMPLETED"
	PaymentStatusFailed        PaymentStatus = "FAILED"
	PaymentStatusRefunded      PaymentStatus = "REFUNDED"
	PaymentStatusPartialRefund PaymentStatus = "PARTIAL_REFUND"
)

// PaymentMethod identifies how the guest pays
type PaymentMethod string

const (
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodPayPal       PaymentMethod = "PAYPAL"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:       {PaymentStatusCompleted, PaymentStatusFailed},
	PaymentStatusCompleted:     {PaymentStatusRefunded, PaymentStatusPartialRefund},
	PaymentStatusPartialRefund: {PaymentStatusPartialRefund, PaymentStatusRefunded},
}

// Valid reports whether s is a known payment status
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed,
		PaymentStatusRefunded, PaymentStatusPartialRefund:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsRefundable reports whether money is held that can still be returned
func (s PaymentStatus) IsRefundable() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusPartialRefund
}

// Valid reports whether m is a known payment method
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodPayPal, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// Payment represents money moving for one booking
type Payment struct {
	ID             string          `json:"id" db:"id"`
	BookingID      string          `json:"bookingId" db:"booking_id"`
	UserID         string          `json:"userId" db:"user_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	RefundedAmount decimal.Decimal `json:"refundedAmount" db:"refunded_amount"`
	Currency       string          `json:"currency" db:"currency"`
	Method         PaymentMethod   `json:"method" db:"method"`
	Status         PaymentStatus   `json:"status" db:"status"`
	Provider       string          `json:"provider" db:"provider"`
	ProviderRef    string          `json:"providerRef,omitempty" db:"provider_ref"`
	FailureReason  string          `json:"failureReason,omitempty" db:"failure_reason"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`
}

// Refundable returns the amount that has not been refunded yet
func (p *Payment) Refundable() decimal.Decimal {
	if !p.Status.IsRefundable() {
		return decimal.Zero
	}
	return p.Amount.Sub(p.RefundedAmount)
}
