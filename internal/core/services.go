package core

import (
	"github.com/rs/zerolog"

	"github.com/lutrii/payments/internal/events"
	"github.com/lutrii/payments/internal/oracle"
)

type Services struct {
	TokenRegistry  *TokenRegistryService
	Merchant       *MerchantService
	Subscription   *SubscriptionService
	PlatformConfig *PlatformConfigService
	Receipt        *ReceiptService
	Executor       *PaymentExecutor
	Discount       *DiscountService
}

// NewServices wires the full service graph. The discount token is the token
// burned for annual prepayments; the escrow account inside cfg holds swap
// proceeds mid-payment.
func NewServices(db TxDB, swapper Swapper, prices oracle.Source, policy Policy, discountToken string, escrowAccount string, emitter events.Emitter, logger zerolog.Logger) (*Services, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	dist, err := NewDistributor(policy.Distribution)
	if err != nil {
		return nil, err
	}

	fees := NewFeePolicy(policy.Fees)
	registry := NewTokenRegistryService(db)
	merchants := NewMerchantService(db, registry)

	return &Services{
		TokenRegistry:  registry,
		Merchant:       merchants,
		Subscription:   NewSubscriptionService(db, registry, merchants),
		PlatformConfig: NewPlatformConfigService(db),
		Receipt:        NewReceiptService(db),
		Executor: NewPaymentExecutor(db, swapper, fees, dist, ExecutorConfig{
			SlippageBps:   policy.SlippageBps,
			EscrowAccount: escrowAccount,
		}, emitter, logger),
		Discount: NewDiscountService(db, prices, fees, policy.Prepay, discountToken, emitter, logger),
	}, nil
}
