package activity

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lutrii/payments/internal/core"
	"github.com/lutrii/payments/internal/metrics"
	"github.com/lutrii/payments/internal/model"
)

// Executor runs one payment attempt for a subscription.
type Executor interface {
	ExecutePayment(ctx context.Context, subscriptionID string) (*model.PaymentReceipt, error)
}

// Payments holds the activities behind the payment sweep workflow.
type Payments struct {
	db     core.DB
	exec   Executor
	logger zerolog.Logger
}

func NewPayments(db core.DB, exec Executor, logger zerolog.Logger) *Payments {
	return &Payments{db: db, exec: exec, logger: logger}
}

// SweepParams bounds one sweep run.
type SweepParams struct {
	BatchSize   int `json:"batch_size"`
	Concurrency int `json:"concurrency"`
}

// SweepResult summarizes one sweep run.
type SweepResult struct {
	Due      int `json:"due"`
	Executed int `json:"executed"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// ListDueSubscriptions returns IDs of active subscriptions whose next
// payment is due, oldest due date first.
func (a *Payments) ListDueSubscriptions(ctx context.Context, batchSize int) ([]string, error) {
	rows, err := a.db.Query(ctx,
		`SELECT id FROM subscriptions
		 WHERE status = $1 AND next_payment_due <= now() AND payment_in_progress = false
		 ORDER BY next_payment_due
		 LIMIT $2`,
		model.SubscriptionActive, batchSize,
	)
	if err != nil {
		return nil, fmt.Errorf("list due subscriptions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subscription id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due subscriptions: %w", err)
	}
	return ids, nil
}

// ExecuteDuePayments attempts one charge for every due subscription with
// bounded concurrency. Precondition failures count as skipped, not failed:
// another caller charging first is normal under permissionless execution.
func (a *Payments) ExecuteDuePayments(ctx context.Context, params SweepParams) (SweepResult, error) {
	if params.BatchSize <= 0 {
		params.BatchSize = 100
	}
	if params.Concurrency <= 0 {
		params.Concurrency = 8
	}

	ids, err := a.ListDueSubscriptions(ctx, params.BatchSize)
	if err != nil {
		return SweepResult{}, err
	}

	var executed, skipped, failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(params.Concurrency)
	for _, id := range ids {
		g.Go(func() error {
			receipt, err := a.exec.ExecutePayment(ctx, id)
			switch {
			case err == nil:
				metrics.ObservePayment(receipt.Fee, receipt.Swapped, nil)
				executed.Add(1)
			case isPrecondition(err):
				metrics.ObservePayment(0, false, err)
				skipped.Add(1)
				a.logger.Debug().Err(err).Str("subscription_id", id).Msg("skipped due payment")
			default:
				metrics.ObservePayment(0, false, err)
				failed.Add(1)
				a.logger.Error().Err(err).Str("subscription_id", id).Msg("payment attempt failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	result := SweepResult{
		Due:      len(ids),
		Executed: int(executed.Load()),
		Skipped:  int(skipped.Load()),
		Failed:   int(failed.Load()),
	}
	a.logger.Info().
		Int("due", result.Due).
		Int("executed", result.Executed).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Msg("payment sweep completed")
	return result, nil
}

// isPrecondition reports whether the attempt failed a validation gate rather
// than failing mid-execution.
func isPrecondition(err error) bool {
	return errors.Is(err, core.ErrNotFound) ||
		errors.Is(err, core.ErrSubscriptionNotActive) ||
		errors.Is(err, core.ErrSubscriptionPaused) ||
		errors.Is(err, core.ErrPaymentNotDue) ||
		errors.Is(err, core.ErrPaymentInProgress) ||
		errors.Is(err, core.ErrPerPaymentCapExceeded) ||
		errors.Is(err, core.ErrLifetimeCapExceeded) ||
		errors.Is(err, core.ErrSystemPaused) ||
		errors.Is(err, core.ErrVelocityExceeded)
}
