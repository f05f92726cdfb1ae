package model

import "time"

// Fee tier constants. The tier decides the basis-point rate applied to
// each charge.
const (
	TierVerified  = "verified"
	TierCommunity = "community"
	TierPremium   = "premium"
)

// Merchant status constants.
const (
	MerchantActive    = "active"
	MerchantSuspended = "suspended"
)

// MaxAcceptedTokens caps how many payment tokens a merchant may accept.
const MaxAcceptedTokens = 4

type MerchantProfile struct {
	ID                string    `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	SettlementToken   string    `json:"settlement_token" db:"settlement_token"`
	SettlementAccount string    `json:"settlement_account" db:"settlement_account"`
	AcceptedTokens    []string  `json:"accepted_tokens" db:"accepted_tokens"`
	FeeTier           string    `json:"fee_tier" db:"fee_tier"`
	Status            string    `json:"status" db:"status"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// AcceptsToken reports whether the profile lists token as a payment option.
func (m *MerchantProfile) AcceptsToken(token string) bool {
	for _, t := range m.AcceptedTokens {
		if t == token {
			return true
		}
	}
	return false
}
