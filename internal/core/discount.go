package core

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/rs/zerolog"

	"github.com/lutrii/payments/internal/events"
	"github.com/lutrii/payments/internal/model"
	"github.com/lutrii/payments/internal/oracle"
	"github.com/lutrii/payments/internal/platform"
)

// DiscountService sells fee-free coverage windows: the subscriber burns
// discount tokens worth a configured fraction of a year's fees and charges
// inside the window owe no fee. The burn scales with fee value, so the
// subscriber's saving relative to the burn is the same at any token price.
type DiscountService struct {
	db            TxDB
	prices        oracle.Source
	ledger        TokenLedger
	fees          FeePolicy
	prepay        PrepayConfig
	discountToken string
	events        events.Emitter
	logger        zerolog.Logger

	now func() time.Time
}

func NewDiscountService(db TxDB, prices oracle.Source, fees FeePolicy, prepay PrepayConfig, discountToken string, emitter events.Emitter, logger zerolog.Logger) *DiscountService {
	return &DiscountService{
		db:            db,
		prices:        prices,
		fees:          fees,
		prepay:        prepay,
		discountToken: discountToken,
		events:        emitter,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Prepay burns discount tokens from the subscriber and extends the
// subscription's fee-free window by the coverage period. Extending an
// unexpired window stacks on top of its end, never on top of now, so paying
// early loses nothing.
func (s *DiscountService) Prepay(ctx context.Context, subscriptionID string) (receipt *model.BurnReceipt, err error) {
	now := s.now()

	// The oracle call happens before the transaction opens so a slow feed
	// never extends the row lock.
	price, err := s.prices.TokenPrice(ctx, s.discountToken)
	if err != nil {
		return nil, fmt.Errorf("price discount token: %w", err)
	}
	if age := now.Sub(price.Timestamp); age > s.prepay.OracleMaxAge {
		return nil, fmt.Errorf("price aged %s: %w", age.Truncate(time.Second), oracle.ErrStalePrice)
	}
	if price.Value <= 0 {
		return nil, fmt.Errorf("price discount token: non-positive price %d", price.Value)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin prepay transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	sub, err := lockSubscription(ctx, tx, subscriptionID)
	if err != nil {
		return nil, err
	}
	switch sub.Status {
	case model.SubscriptionActive:
	case model.SubscriptionPaused:
		return nil, ErrSubscriptionPaused
	default:
		return nil, ErrSubscriptionNotActive
	}

	merchant, err := snapshotMerchant(ctx, tx, sub.MerchantID)
	if err != nil {
		return nil, err
	}

	// Annual fee estimate at the undiscounted tier rate; the prepaid window
	// itself never discounts its own price.
	perPayment, err := s.fees.ComputeFee(sub.Amount, merchant.FeeTier, nil, now)
	if err != nil {
		return nil, err
	}
	perYear, err := PaymentsPerYear(sub.Interval)
	if err != nil {
		return nil, err
	}
	annualFee, err := mulInt64(perPayment, perYear)
	if err != nil {
		return nil, err
	}
	burnValue, err := mulDivBps(annualFee, s.prepay.FractionBps)
	if err != nil {
		return nil, err
	}
	if burnValue <= 0 {
		return nil, fmt.Errorf("prepay subscription %s: burn value rounds to zero", sub.ID)
	}

	var decimals int
	if err = tx.QueryRow(ctx, `SELECT decimals FROM tokens WHERE id = $1 AND status = $2`,
		s.discountToken, model.TokenActive,
	).Scan(&decimals); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedToken, s.discountToken)
	}

	burnAmount, err := tokenUnitsForValue(burnValue, decimals, price.Value)
	if err != nil {
		return nil, err
	}

	if err = s.ledger.Burn(ctx, tx, s.discountToken, sub.SubscriberID, burnAmount); err != nil {
		return nil, err
	}

	base := now
	if sub.PrepaidUntil != nil && sub.PrepaidUntil.After(now) {
		base = *sub.PrepaidUntil
	}
	until := base.Add(time.Duration(s.prepay.CoverageDays) * 24 * time.Hour)

	if _, err = tx.Exec(ctx,
		`UPDATE subscriptions SET prepaid_until = $1, total_burned = total_burned + $2, updated_at = $3 WHERE id = $4`,
		until, burnAmount, now, sub.ID,
	); err != nil {
		return nil, fmt.Errorf("extend prepaid window for %s: %w", sub.ID, err)
	}

	receipt = &model.BurnReceipt{
		ID:             platform.NewID(),
		SubscriptionID: sub.ID,
		TokenID:        s.discountToken,
		BurnedAmount:   burnAmount,
		BurnedValue:    burnValue,
		OraclePrice:    price.Value,
		PrepaidUntil:   until,
		CreatedAt:      now,
	}
	if _, err = tx.Exec(ctx,
		`INSERT INTO burn_receipts (id, subscription_id, token_id, burned_amount, burned_value, oracle_price, prepaid_until, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		receipt.ID, receipt.SubscriptionID, receipt.TokenID, receipt.BurnedAmount,
		receipt.BurnedValue, receipt.OraclePrice, receipt.PrepaidUntil, receipt.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert burn receipt: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit prepay for subscription %s: %w", sub.ID, err)
	}

	s.logger.Info().
		Str("subscription_id", sub.ID).
		Int64("burned_amount", burnAmount).
		Int64("burned_value", burnValue).
		Time("prepaid_until", until).
		Msg("annual fees prepaid")

	s.events.AnnualFeesPrepaid(ctx, events.AnnualFeesPrepaid{
		SubscriptionID: sub.ID,
		Token:          s.discountToken,
		BurnedAmount:   burnAmount,
		BurnedValue:    burnValue,
		PrepaidUntil:   until,
		Timestamp:      now,
	})

	return receipt, nil
}

// tokenUnitsForValue converts a settlement-denominated value into token
// minor units at the given price (settlement minor units per whole token).
func tokenUnitsForValue(value int64, decimals int, price int64) (int64, error) {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	units := new(big.Int).Mul(big.NewInt(value), scale)
	units.Quo(units, big.NewInt(price))
	if !units.IsInt64() {
		return 0, fmt.Errorf("value %d at price %d: %w", value, price, ErrArithmeticOverflow)
	}
	if units.Int64() <= 0 {
		return 0, fmt.Errorf("value %d at price %d rounds below one token unit", value, price)
	}
	return units.Int64(), nil
}
