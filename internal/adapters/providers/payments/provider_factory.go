package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/zatekoja/vacationrentals/internal/domain/providers"
	"github.com/zatekoja/vacationrentals/pkg/retry"
)

// ProviderConfig configures payment providers.
type ProviderConfig struct {
	Provider string
	Retry    retry.Config
}

// NewPaymentProvider creates the configured gateway wrapped with retrying refunds.
func NewPaymentProvider(cfg ProviderConfig) (providers.PaymentProvider, error) {
	var gateway providers.PaymentProvider
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "mock":
		gateway = NewMockGateway()
	default:
		return nil, fmt.Errorf("payment provider %q is not supported", cfg.Provider)
	}

	if cfg.Retry.MaxAttempts <= 1 {
		return gateway, nil
	}
	return &RetryingProvider{inner: gateway, cfg: cfg.Retry}, nil
}

// RetryingProvider retries refunds with backoff. Charges are never retried
// since a timed-out charge may already have been captured.
type RetryingProvider struct {
	inner providers.PaymentProvider
	cfg   retry.Config
}

// Name identifies the wrapped gateway.
func (p *RetryingProvider) Name() string {
	return p.inner.Name()
}

// Charge delegates to the wrapped gateway once.
func (p *RetryingProvider) Charge(ctx context.Context, req providers.ChargeRequest) (*providers.ChargeResult, error) {
	return p.inner.Charge(ctx, req)
}

// Refund retries the wrapped gateway's refund.
func (p *RetryingProvider) Refund(ctx context.Context, providerRef string, amount decimal.Decimal) (string, error) {
	var ref string
	err := retry.DoWithLog(ctx, p.cfg, p.inner.Name(), func() error {
		var err error
		ref, err = p.inner.Refund(ctx, providerRef, amount)
		return err
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Ctx(ctx).Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).
			Str("provider_ref", providerRef).Msg("Refund attempt failed")
	})
	return ref, err
}
