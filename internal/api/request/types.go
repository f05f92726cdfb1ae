package request

// CreateToken registers a token on the allow-list.
type CreateToken struct {
	ID       string `json:"id" validate:"required"`
	Symbol   string `json:"symbol" validate:"required"`
	Decimals int    `json:"decimals" validate:"gte=0,lte=18"`
}

// CreateMerchant registers a merchant settlement profile.
type CreateMerchant struct {
	Name              string   `json:"name" validate:"required"`
	SettlementToken   string   `json:"settlement_token" validate:"required"`
	SettlementAccount string   `json:"settlement_account" validate:"required"`
	AcceptedTokens    []string `json:"accepted_tokens" validate:"required,min=1,max=4,unique"`
	FeeTier           string   `json:"fee_tier" validate:"required,oneof=verified community premium"`
}

// UpdateMerchant replaces the mutable parts of a merchant profile.
type UpdateMerchant struct {
	Name              string   `json:"name" validate:"required"`
	SettlementToken   string   `json:"settlement_token" validate:"required"`
	SettlementAccount string   `json:"settlement_account" validate:"required"`
	AcceptedTokens    []string `json:"accepted_tokens" validate:"required,min=1,max=4,unique"`
	FeeTier           string   `json:"fee_tier" validate:"required,oneof=verified community premium"`
}

// CreateSubscription opens a recurring payment agreement.
type CreateSubscription struct {
	SubscriberID  string `json:"subscriber_id" validate:"required"`
	MerchantID    string `json:"merchant_id" validate:"required"`
	PaymentToken  string `json:"payment_token" validate:"required"`
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	Interval      string `json:"interval" validate:"required,oneof=daily weekly monthly"`
	MaxPerPayment int64  `json:"max_per_payment" validate:"gte=0"`
	LifetimeCap   int64  `json:"lifetime_cap" validate:"gte=0"`
}

// UpdateSubscriptionLimits changes the subscriber's safety caps. Omitted
// fields keep their current value; zero lifts the cap.
type UpdateSubscriptionLimits struct {
	MaxPerPayment *int64 `json:"max_per_payment" validate:"omitempty,gte=0"`
	LifetimeCap   *int64 `json:"lifetime_cap" validate:"omitempty,gte=0"`
}

// ExecutePayment names the subscription to charge.
type ExecutePayment struct {
	SubscriptionID string `json:"subscription_id" validate:"required"`
}

// SetVolumeLimit sets the platform's rolling 24h volume cap.
type SetVolumeLimit struct {
	Limit int64 `json:"limit" validate:"gte=0"`
}
