package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zatekoja/vacationrentals/internal/domain/entities"
	"github.com/zatekoja/vacationrentals/internal/domain/providers"
)

// DeclineToken makes the mock gateway decline a charge.
const DeclineToken = "tok_fail"

// MockGateway settles card and PayPal charges immediately for local development.
// Bank transfers stay PENDING until an administrator marks them settled.
type MockGateway struct{}

// NewMockGateway creates a mock payment provider.
func NewMockGateway() providers.PaymentProvider {
	return &MockGateway{}
}

// Name identifies the gateway.
func (m *MockGateway) Name() string {
	return "mock"
}

// Charge returns a deterministic outcome based on method and token.
func (m *MockGateway) Charge(ctx context.Context, req providers.ChargeRequest) (*providers.ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("charge amount must be positive, got %s", req.Amount)
	}

	if req.Token == DeclineToken {
		return &providers.ChargeResult{
			Status:        entities.PaymentStatusFailed,
			ProviderRef:   "mock_ch_" + shortID(),
			FailureReason: "card declined",
		}, nil
	}

	switch req.Method {
	case entities.PaymentMethodBankTransfer:
		return &providers.ChargeResult{
			Status:      entities.PaymentStatusPending,
			ProviderRef: "mock_bt_" + shortID(),
		}, nil
	case entities.PaymentMethodCreditCard, entities.PaymentMethodPayPal:
		return &providers.ChargeResult{
			Status:      entities.PaymentStatusCompleted,
			ProviderRef: "mock_ch_" + shortID(),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported payment method %q", req.Method)
	}
}

// Refund returns a refund reference for a settled charge.
func (m *MockGateway) Refund(ctx context.Context, providerRef string, amount decimal.Decimal) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if providerRef == "" {
		return "", errors.New("provider reference is required")
	}
	if !amount.IsPositive() {
		return "", fmt.Errorf("refund amount must be positive, got %s", amount)
	}
	return "mock_re_" + shortID(), nil
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
