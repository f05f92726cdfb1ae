package model

import "time"

// PaymentReceipt records one successful charge. SettlementAmount is what the
// payer's funds converted to in the settlement token; MerchantReceived is
// SettlementAmount minus Fee. SwapAmountIn is zero when no swap happened.
type PaymentReceipt struct {
	ID               string    `json:"id" db:"id"`
	SubscriptionID   string    `json:"subscription_id" db:"subscription_id"`
	MerchantID       string    `json:"merchant_id" db:"merchant_id"`
	PaymentToken     string    `json:"payment_token" db:"payment_token"`
	SettlementToken  string    `json:"settlement_token" db:"settlement_token"`
	SettlementAmount int64     `json:"settlement_amount" db:"settlement_amount"`
	Fee              int64     `json:"fee" db:"fee"`
	MerchantReceived int64     `json:"merchant_received" db:"merchant_received"`
	Swapped          bool      `json:"swapped" db:"swapped"`
	SwapAmountIn     int64     `json:"swap_amount_in" db:"swap_amount_in"`
	PaymentCount     int64     `json:"payment_count" db:"payment_count"`
	ExecutedAt       time.Time `json:"executed_at" db:"executed_at"`
}

// BurnReceipt records one annual-fee prepayment: BurnedAmount discount-token
// minor units destroyed, worth BurnedValue settlement minor units at
// OraclePrice.
type BurnReceipt struct {
	ID             string    `json:"id" db:"id"`
	SubscriptionID string    `json:"subscription_id" db:"subscription_id"`
	TokenID        string    `json:"token_id" db:"token_id"`
	BurnedAmount   int64     `json:"burned_amount" db:"burned_amount"`
	BurnedValue    int64     `json:"burned_value" db:"burned_value"`
	OraclePrice    int64     `json:"oracle_price" db:"oracle_price"`
	PrepaidUntil   time.Time `json:"prepaid_until" db:"prepaid_until"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
