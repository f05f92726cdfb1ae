package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lutrii/payments/internal/events"
	"github.com/lutrii/payments/internal/model"
	"github.com/lutrii/payments/internal/platform"
	"github.com/lutrii/payments/internal/swap"
)

// Swapper converts payment-token funds into settlement-token funds.
// Implemented by swap.Adapter.
type Swapper interface {
	QuoteOut(ctx context.Context, sourceToken, destToken string, amountOut int64) (swap.Quote, error)
	Execute(ctx context.Context, quote swap.Quote, minAmountOut int64) (int64, error)
}

// ExecutorConfig carries the executor's own policy knobs.
type ExecutorConfig struct {
	SlippageBps int64
	// EscrowAccount holds swap proceeds between conversion and settlement.
	EscrowAccount string
}

// PaymentExecutor runs the whole charge for one subscription as a single
// database transaction: validate, optionally swap, collect and distribute
// the fee, settle the merchant, advance the schedule. Any failure rolls the
// transaction back, so a failed attempt leaves every balance and counter
// exactly as it found them.
//
// Retry policy deliberately does not live here. Callers decide whether and
// when to try again; a retried attempt re-runs validation from scratch with
// fresh market data.
type PaymentExecutor struct {
	db      TxDB
	swapper Swapper
	fees    FeePolicy
	dist    *Distributor
	ledger  TokenLedger
	cfg     ExecutorConfig
	events  events.Emitter
	logger  zerolog.Logger

	now func() time.Time
}

func NewPaymentExecutor(db TxDB, swapper Swapper, fees FeePolicy, dist *Distributor, cfg ExecutorConfig, emitter events.Emitter, logger zerolog.Logger) *PaymentExecutor {
	return &PaymentExecutor{
		db:      db,
		swapper: swapper,
		fees:    fees,
		dist:    dist,
		cfg:     cfg,
		events:  emitter,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ExecutePayment attempts one charge. It is safe to call from anywhere at
// any time: a subscription that is not due, not active, or already being
// charged fails validation with a typed error and nothing changes.
func (e *PaymentExecutor) ExecutePayment(ctx context.Context, subscriptionID string) (receipt *model.PaymentReceipt, err error) {
	now := e.now()

	tx, err := e.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin payment transaction: %w", err)
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
	if err = validateDue(sub, now); err != nil {
		return nil, err
	}

	pc, err := lockPlatformConfig(ctx, tx)
	if err != nil {
		return nil, err
	}
	if pc.EmergencyPause {
		return nil, ErrSystemPaused
	}

	merchant, err := snapshotMerchant(ctx, tx, sub.MerchantID)
	if err != nil {
		return nil, err
	}
	if err = tokenSupported(ctx, tx, sub.PaymentToken); err != nil {
		return nil, err
	}
	if err = tokenSupported(ctx, tx, merchant.SettlementToken); err != nil {
		return nil, err
	}
	if !merchant.AcceptsToken(sub.PaymentToken) {
		return nil, fmt.Errorf("%w: %s", ErrTokenNotAccepted, sub.PaymentToken)
	}

	// The 24h window resets lazily on the first charge past its end.
	volume := pc.Volume24h
	windowStart := pc.LastVolumeReset
	if !now.Before(pc.LastVolumeReset.Add(24 * time.Hour)) {
		volume = 0
		windowStart = now
	}
	if pc.DailyVolumeLimit > 0 && volume+sub.Amount > pc.DailyVolumeLimit {
		return nil, ErrVelocityExceeded
	}

	// First mutation inside the transaction. The row lock already excludes
	// concurrent attempts; the flag additionally survives for observers
	// reading outside the transaction.
	if _, err = tx.Exec(ctx,
		`UPDATE subscriptions SET payment_in_progress = true WHERE id = $1`, sub.ID,
	); err != nil {
		return nil, fmt.Errorf("set payment guard: %w", err)
	}

	feeEstimate, err := e.fees.ComputeFee(sub.Amount, merchant.FeeTier, sub.PrepaidUntil, now)
	if err != nil {
		return nil, err
	}

	settleAmount := sub.Amount
	payerAccount := sub.SubscriberID
	swapped := false
	var swapAmountIn int64

	if sub.PaymentToken != merchant.SettlementToken {
		totalNeeded, aerr := addInt64(sub.Amount, feeEstimate)
		if aerr != nil {
			return nil, aerr
		}
		quote, qerr := e.swapper.QuoteOut(ctx, sub.PaymentToken, merchant.SettlementToken, totalNeeded)
		if qerr != nil {
			err = fmt.Errorf("quote swap for subscription %s: %w", sub.ID, qerr)
			return nil, err
		}
		minOut := swap.MinOut(totalNeeded, e.cfg.SlippageBps)

		// Fund the swap from the subscriber's payment-token balance; the
		// proceeds settle into escrow and everything downstream pays out of
		// escrow instead of the subscriber.
		if err = e.ledger.Transfer(ctx, tx, sub.PaymentToken, sub.SubscriberID, e.cfg.EscrowAccount, quote.AmountIn); err != nil {
			return nil, err
		}
		actualOut, serr := e.swapper.Execute(ctx, quote, minOut)
		if serr != nil {
			err = fmt.Errorf("execute swap for subscription %s: %w", sub.ID, serr)
			return nil, err
		}
		if err = e.ledger.Credit(ctx, tx, merchant.SettlementToken, e.cfg.EscrowAccount, actualOut); err != nil {
			return nil, err
		}

		settleAmount = actualOut
		payerAccount = e.cfg.EscrowAccount
		swapped = true
		swapAmountIn = quote.AmountIn
	}

	// The authoritative fee comes from what actually settled, not the
	// pre-swap estimate.
	fee, err := e.fees.ComputeFee(settleAmount, merchant.FeeTier, sub.PrepaidUntil, now)
	if err != nil {
		return nil, err
	}
	if fee > settleAmount {
		return nil, fmt.Errorf("fee %d on settlement %d: %w", fee, settleAmount, ErrFeeExceedsAmount)
	}

	if fee > 0 {
		var shares []Share
		shares, err = e.dist.Split(fee)
		if err != nil {
			return nil, err
		}
		for _, share := range shares {
			if share.Amount == 0 {
				continue
			}
			if terr := e.ledger.Transfer(ctx, tx, merchant.SettlementToken, payerAccount, share.Account, share.Amount); terr != nil {
				err = fmt.Errorf("%w: share to %s: %v", ErrDistributionFailed, share.Account, terr)
				return nil, err
			}
		}
	}

	merchantAmount := settleAmount - fee
	if err = e.ledger.Transfer(ctx, tx, merchant.SettlementToken, payerAccount, merchant.SettlementAccount, merchantAmount); err != nil {
		return nil, fmt.Errorf("settle merchant %s: %w", merchant.ID, err)
	}

	nextDue, err := NextDue(sub.NextPaymentDue, sub.Interval)
	if err != nil {
		return nil, err
	}
	newTotalPaid, err := addInt64(sub.TotalPaid, sub.Amount)
	if err != nil {
		return nil, err
	}

	if _, err = tx.Exec(ctx,
		`UPDATE subscriptions SET last_payment_at = $1, next_payment_due = $2, payment_count = payment_count + 1, total_paid = $3, payment_in_progress = false, updated_at = $1
		 WHERE id = $4`,
		now, nextDue, newTotalPaid, sub.ID,
	); err != nil {
		return nil, fmt.Errorf("advance subscription %s: %w", sub.ID, err)
	}

	if _, err = tx.Exec(ctx,
		`UPDATE platform_config SET volume_24h = $1, last_volume_reset = $2, total_executions = total_executions + 1, updated_at = $3 WHERE id = 1`,
		volume+sub.Amount, windowStart, now,
	); err != nil {
		return nil, fmt.Errorf("account platform volume: %w", err)
	}

	receipt = &model.PaymentReceipt{
		ID:               platform.NewID(),
		SubscriptionID:   sub.ID,
		MerchantID:       merchant.ID,
		PaymentToken:     sub.PaymentToken,
		SettlementToken:  merchant.SettlementToken,
		SettlementAmount: settleAmount,
		Fee:              fee,
		MerchantReceived: merchantAmount,
		Swapped:          swapped,
		SwapAmountIn:     swapAmountIn,
		PaymentCount:     sub.PaymentCount + 1,
		ExecutedAt:       now,
	}
	if _, err = tx.Exec(ctx,
		`INSERT INTO payment_receipts (id, subscription_id, merchant_id, payment_token, settlement_token, settlement_amount, fee, merchant_received, swapped, swap_amount_in, payment_count, executed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		receipt.ID, receipt.SubscriptionID, receipt.MerchantID, receipt.PaymentToken,
		receipt.SettlementToken, receipt.SettlementAmount, receipt.Fee,
		receipt.MerchantReceived, receipt.Swapped, receipt.SwapAmountIn,
		receipt.PaymentCount, receipt.ExecutedAt,
	); err != nil {
		return nil, fmt.Errorf("insert payment receipt: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit payment for subscription %s: %w", sub.ID, err)
	}

	e.logger.Info().
		Str("subscription_id", sub.ID).
		Str("merchant_id", merchant.ID).
		Int64("settlement_amount", settleAmount).
		Int64("fee", fee).
		Bool("swapped", swapped).
		Msg("payment executed")

	e.events.PaymentExecuted(ctx, events.PaymentExecuted{
		SubscriptionID:   sub.ID,
		MerchantID:       merchant.ID,
		SettlementToken:  merchant.SettlementToken,
		SettlementAmount: settleAmount,
		Fee:              fee,
		MerchantReceived: merchantAmount,
		Swapped:          swapped,
		PaymentCount:     receipt.PaymentCount,
		Timestamp:        now,
	})
	if fee > 0 {
		e.events.FeesDistributed(ctx, events.FeesDistributed{
			SubscriptionID: sub.ID,
			Token:          merchant.SettlementToken,
			Total:          fee,
			Timestamp:      now,
		})
	}

	return receipt, nil
}

// validateDue runs the precondition checks that gate every charge. Ordering
// matters for error reporting: lifecycle state first, then the guard flag,
// then schedule, then safety caps.
func validateDue(sub model.Subscription, now time.Time) error {
	switch sub.Status {
	case model.SubscriptionActive:
	case model.SubscriptionPaused:
		return ErrSubscriptionPaused
	default:
		return ErrSubscriptionNotActive
	}
	if sub.PaymentInProgress {
		return ErrPaymentInProgress
	}
	if now.Before(sub.NextPaymentDue) {
		return ErrPaymentNotDue
	}
	if sub.MaxPerPayment > 0 && sub.Amount > sub.MaxPerPayment {
		return ErrPerPaymentCapExceeded
	}
	if sub.LifetimeCap > 0 && sub.TotalPaid+sub.Amount > sub.LifetimeCap {
		return ErrLifetimeCapExceeded
	}
	return nil
}
