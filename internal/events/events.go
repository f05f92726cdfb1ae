package events

import (
	"context"
	"time"
)

// PaymentExecuted is emitted after each committed charge.
type PaymentExecuted struct {
	SubscriptionID   string    `json:"subscription_id"`
	MerchantID       string    `json:"merchant_id"`
	SettlementToken  string    `json:"settlement_token"`
	SettlementAmount int64     `json:"settlement_amount"`
	Fee              int64     `json:"fee"`
	MerchantReceived int64     `json:"merchant_received"`
	Swapped          bool      `json:"swapped"`
	PaymentCount     int64     `json:"payment_count"`
	Timestamp        time.Time `json:"timestamp"`
}

// FeesDistributed is emitted when a non-zero fee was split out.
type FeesDistributed struct {
	SubscriptionID string    `json:"subscription_id"`
	Token          string    `json:"token"`
	Total          int64     `json:"total"`
	Timestamp      time.Time `json:"timestamp"`
}

// AnnualFeesPrepaid is emitted after a committed prepayment burn.
type AnnualFeesPrepaid struct {
	SubscriptionID string    `json:"subscription_id"`
	Token          string    `json:"token"`
	BurnedAmount   int64     `json:"burned_amount"`
	BurnedValue    int64     `json:"burned_value"`
	PrepaidUntil   time.Time `json:"prepaid_until"`
	Timestamp      time.Time `json:"timestamp"`
}

// Emitter publishes domain events. Events are informational: emitters never
// return errors to the caller, and delivery failure must not fail a payment
// that already committed.
type Emitter interface {
	PaymentExecuted(ctx context.Context, ev PaymentExecuted)
	FeesDistributed(ctx context.Context, ev FeesDistributed)
	AnnualFeesPrepaid(ctx context.Context, ev AnnualFeesPrepaid)
}

// Nop drops all events. Used in tests and when no broker is configured.
type Nop struct{}

func (Nop) PaymentExecuted(context.Context, PaymentExecuted)     {}
func (Nop) FeesDistributed(context.Context, FeesDistributed)     {}
func (Nop) AnnualFeesPrepaid(context.Context, AnnualFeesPrepaid) {}
