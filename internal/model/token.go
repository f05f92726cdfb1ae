package model

import "time"

// Token status constants.
const (
	TokenActive   = "active"
	TokenDisabled = "disabled"
)

// Token is an entry in the platform's allow-list of payment and
// settlement tokens. Amounts everywhere are integer minor units
// scaled by Decimals.
type Token struct {
	ID           string    `json:"id" db:"id"`
	Symbol       string    `json:"symbol" db:"symbol"`
	Decimals     int       `json:"decimals" db:"decimals"`
	BurnedSupply int64     `json:"burned_supply" db:"burned_supply"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
