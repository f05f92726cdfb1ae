package core

import (
	"fmt"
	"math/big"
	"time"
)

const bpsDivisor = 10_000

// FeePolicy computes the platform fee for a single charge.
type FeePolicy struct {
	cfg FeeConfig
}

func NewFeePolicy(cfg FeeConfig) FeePolicy {
	return FeePolicy{cfg: cfg}
}

// ComputeFee returns the fee owed on amount in settlement-token minor units.
// A charge inside the prepaid window owes nothing. Otherwise the tier rate
// applies and the result is clamped to [MinFee, MaxFee]; a MaxFee of zero
// means no upper bound.
func (p FeePolicy) ComputeFee(amount int64, tier string, prepaidUntil *time.Time, now time.Time) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("compute fee: negative amount %d", amount)
	}
	if prepaidUntil != nil && now.Before(*prepaidUntil) {
		return 0, nil
	}
	bps, ok := p.cfg.Tiers[tier]
	if !ok {
		return 0, fmt.Errorf("compute fee: unknown fee tier %q", tier)
	}
	fee, err := mulDivBps(amount, bps)
	if err != nil {
		return 0, fmt.Errorf("compute fee: %w", err)
	}
	if fee < p.cfg.MinFee {
		fee = p.cfg.MinFee
	}
	if p.cfg.MaxFee > 0 && fee > p.cfg.MaxFee {
		fee = p.cfg.MaxFee
	}
	return fee, nil
}

// mulDivBps computes v*bps/10000 with a widened intermediate so the product
// cannot wrap before the division.
func mulDivBps(v, bps int64) (int64, error) {
	r := new(big.Int).Mul(big.NewInt(v), big.NewInt(bps))
	r.Quo(r, big.NewInt(bpsDivisor))
	if !r.IsInt64() {
		return 0, fmt.Errorf("%d * %d bps: %w", v, bps, ErrArithmeticOverflow)
	}
	return r.Int64(), nil
}

// mulInt64 multiplies with an overflow check.
func mulInt64(a, b int64) (int64, error) {
	r := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	if !r.IsInt64() {
		return 0, fmt.Errorf("%d * %d: %w", a, b, ErrArithmeticOverflow)
	}
	return r.Int64(), nil
}

// addInt64 adds with an overflow check.
func addInt64(a, b int64) (int64, error) {
	r := a + b
	if (b > 0 && r < a) || (b < 0 && r > a) {
		return 0, fmt.Errorf("%d + %d: %w", a, b, ErrArithmeticOverflow)
	}
	return r, nil
}
