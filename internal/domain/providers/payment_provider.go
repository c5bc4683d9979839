package providers

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
)

// ChargeRequest is what the payment service asks a gateway to collect
type ChargeRequest struct {
	PaymentID string
	BookingID string
	Amount    decimal.Decimal
	Currency  string
	Method    entities.PaymentMethod
	Token     string
}

// ChargeResult is the gateway's answer to a charge
type ChargeResult struct {
	Status        entities.PaymentStatus
	ProviderRef   string
	FailureReason string
}

// PaymentProvider defines the interface for payment gateways (Stripe, PayPal, ...)
type PaymentProvider interface {
	// Charge collects money; a declined charge is a FAILED result, not an error
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)

	// Refund returns amount of a settled charge and yields the refund reference
	Refund(ctx context.Context, providerRef string, amount decimal.Decimal) (string, error)

	// Name identifies the gateway, stored on each payment
	Name() string
}
