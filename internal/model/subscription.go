package model

import "time"

// Billing interval constants.
const (
	IntervalDaily   = "daily"
	IntervalWeekly  = "weekly"
	IntervalMonthly = "monthly"
)

// Subscription status constants.
const (
	SubscriptionActive   = "active"
	SubscriptionPaused   = "paused"
	SubscriptionCanceled = "canceled"
)

// Subscription is a standing agreement to charge a subscriber on a fixed
// cadence. Amount is denominated in the merchant's settlement token.
// MaxPerPayment and LifetimeCap are safety caps; zero means uncapped.
type Subscription struct {
	ID                string     `json:"id" db:"id"`
	SubscriberID      string     `json:"subscriber_id" db:"subscriber_id"`
	MerchantID        string     `json:"merchant_id" db:"merchant_id"`
	PaymentToken      string     `json:"payment_token" db:"payment_token"`
	Amount            int64      `json:"amount" db:"amount"`
	Interval          string     `json:"interval" db:"billing_interval"`
	NextPaymentDue    time.Time  `json:"next_payment_due" db:"next_payment_due"`
	LastPaymentAt     *time.Time `json:"last_payment_at,omitempty" db:"last_payment_at"`
	PaymentCount      int64      `json:"payment_count" db:"payment_count"`
	TotalPaid         int64      `json:"total_paid" db:"total_paid"`
	MaxPerPayment     int64      `json:"max_per_payment" db:"max_per_payment"`
	LifetimeCap       int64      `json:"lifetime_cap" db:"lifetime_cap"`
	Status            string     `json:"status" db:"status"`
	PaymentInProgress bool       `json:"payment_in_progress" db:"payment_in_progress"`
	PrepaidUntil      *time.Time `json:"prepaid_until,omitempty" db:"prepaid_until"`
	TotalBurned       int64      `json:"total_burned" db:"total_burned"`
	SchemaVersion     int        `json:"schema_version" db:"schema_version"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}
