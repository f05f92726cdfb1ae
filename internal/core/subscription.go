package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lutrii/payments/internal/model"
)

const subscriptionColumns = `id, subscriber_id, merchant_id, payment_token, amount, billing_interval, next_payment_due, last_payment_at, payment_count, total_paid, max_per_payment, lifetime_cap, status, payment_in_progress, prepaid_until, total_burned, schema_version, created_at, updated_at`

// subscriptionSchemaVersion tags new rows so later migrations can translate
// old shapes on read instead of padding the table up front.
const subscriptionSchemaVersion = 1

// SubscriptionService manages the subscription lifecycle. Payment execution
// lives in PaymentExecutor; this service never moves balances.
type SubscriptionService struct {
	db        DB
	registry  *TokenRegistryService
	merchants *MerchantService
}

func NewSubscriptionService(db DB, registry *TokenRegistryService, merchants *MerchantService) *SubscriptionService {
	return &SubscriptionService{db: db, registry: registry, merchants: merchants}
}

// Create validates the agreement against the merchant profile and schedules
// the first charge one interval out.
func (s *SubscriptionService) Create(ctx context.Context, sub *model.Subscription) error {
	if sub.Amount <= 0 {
		return fmt.Errorf("create subscription: non-positive amount %d", sub.Amount)
	}
	if sub.MaxPerPayment < 0 || sub.LifetimeCap < 0 {
		return errors.New("create subscription: negative safety cap")
	}
	interval, err := IntervalDuration(sub.Interval)
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	if err := s.registry.IsSupported(ctx, sub.PaymentToken); err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	merchant, err := s.merchants.GetByID(ctx, sub.MerchantID)
	if err != nil {
		return fmt.Errorf("create subscription: merchant %s: %w", sub.MerchantID, err)
	}
	if !merchant.AcceptsToken(sub.PaymentToken) {
		return fmt.Errorf("create subscription: %w: %s", ErrTokenNotAccepted, sub.PaymentToken)
	}

	sub.Status = model.SubscriptionActive
	sub.NextPaymentDue = sub.CreatedAt.Add(interval)
	sub.SchemaVersion = subscriptionSchemaVersion

	_, err = s.db.Exec(ctx,
		`INSERT INTO subscriptions (`+subscriptionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		sub.ID, sub.SubscriberID, sub.MerchantID, sub.PaymentToken, sub.Amount,
		sub.Interval, sub.NextPaymentDue, sub.LastPaymentAt, sub.PaymentCount,
		sub.TotalPaid, sub.MaxPerPayment, sub.LifetimeCap, sub.Status,
		sub.PaymentInProgress, sub.PrepaidUntil, sub.TotalBurned,
		sub.SchemaVersion, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert subscription %s: %w", sub.ID, err)
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE platform_config SET total_subscriptions = total_subscriptions + 1, updated_at = now() WHERE id = 1`,
	); err != nil {
		return fmt.Errorf("count subscription %s: %w", sub.ID, err)
	}
	return nil
}

func (s *SubscriptionService) GetByID(ctx context.Context, id string) (*model.Subscription, error) {
	row := s.db.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id)
	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get subscription %s: %w", id, err)
	}
	return &sub, nil
}

func (s *SubscriptionService) ListByMerchant(ctx context.Context, merchantID string, limit int, cursor string) ([]model.Subscription, bool, error) {
	return s.list(ctx, "merchant_id", merchantID, limit, cursor)
}

func (s *SubscriptionService) ListBySubscriber(ctx context.Context, subscriberID string, limit int, cursor string) ([]model.Subscription, bool, error) {
	return s.list(ctx, "subscriber_id", subscriberID, limit, cursor)
}

func (s *SubscriptionService) list(ctx context.Context, field, value string, limit int, cursor string) ([]model.Subscription, bool, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE ` + field + ` = $1`
	args := []any{value}
	argIdx := 2

	if cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list subscriptions by %s %s: %w", field, value, err)
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, false, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate subscriptions: %w", err)
	}

	hasMore := len(subs) > limit
	if hasMore {
		subs = subs[:limit]
	}
	return subs, hasMore, nil
}

// Pause suspends charging. The due date keeps advancing on paper; Resume
// reschedules it, so a long pause does not produce a burst of catch-up
// charges.
func (s *SubscriptionService) Pause(ctx context.Context, id string) error {
	return s.transition(ctx, id, model.SubscriptionActive, model.SubscriptionPaused)
}

// Resume reactivates a paused subscription with the next charge one full
// interval from now.
func (s *SubscriptionService) Resume(ctx context.Context, id string) error {
	sub, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sub.Status != model.SubscriptionPaused {
		return fmt.Errorf("resume subscription %s: %w", id, ErrSubscriptionNotActive)
	}
	interval, err := IntervalDuration(sub.Interval)
	if err != nil {
		return fmt.Errorf("resume subscription %s: %w", id, err)
	}
	_, err = s.db.Exec(ctx,
		`UPDATE subscriptions SET status = $1, next_payment_due = $2, updated_at = now() WHERE id = $3 AND status = $4`,
		model.SubscriptionActive, time.Now().UTC().Add(interval), id, model.SubscriptionPaused,
	)
	if err != nil {
		return fmt.Errorf("resume subscription %s: %w", id, err)
	}
	return nil
}

// Cancel is terminal. Canceled subscriptions are kept for receipt history
// but never charge again.
func (s *SubscriptionService) Cancel(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE subscriptions SET status = $1, updated_at = now() WHERE id = $2 AND status != $1`,
		model.SubscriptionCanceled, id,
	)
	if err != nil {
		return fmt.Errorf("cancel subscription %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		sub, gerr := s.GetByID(ctx, id)
		if gerr != nil {
			return gerr
		}
		return fmt.Errorf("cancel subscription %s in status %s: %w", id, sub.Status, ErrSubscriptionNotActive)
	}
	if _, err := s.db.Exec(ctx,
		`UPDATE platform_config SET total_subscriptions = total_subscriptions - 1, updated_at = now() WHERE id = 1 AND total_subscriptions > 0`,
	); err != nil {
		return fmt.Errorf("uncount subscription %s: %w", id, err)
	}
	return nil
}

// UpdateLimits changes the subscriber's safety caps on a live subscription.
// Nil fields keep their current value; zero lifts the cap. A per-payment cap
// below the charge amount or a lifetime cap below what has already been paid
// would make every future charge fail, so both are rejected up front.
func (s *SubscriptionService) UpdateLimits(ctx context.Context, id string, maxPerPayment, lifetimeCap *int64) (*model.Subscription, error) {
	sub, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != model.SubscriptionActive {
		return nil, fmt.Errorf("update limits for subscription %s in status %s: %w", id, sub.Status, ErrSubscriptionNotActive)
	}

	if maxPerPayment != nil {
		if *maxPerPayment < 0 {
			return nil, fmt.Errorf("update limits for subscription %s: negative per-payment cap", id)
		}
		if *maxPerPayment > 0 && sub.Amount > *maxPerPayment {
			return nil, fmt.Errorf("update limits for subscription %s: cap below charge amount: %w", id, ErrPerPaymentCapExceeded)
		}
		sub.MaxPerPayment = *maxPerPayment
	}
	if lifetimeCap != nil {
		if *lifetimeCap < 0 {
			return nil, fmt.Errorf("update limits for subscription %s: negative lifetime cap", id)
		}
		if *lifetimeCap > 0 && sub.TotalPaid > *lifetimeCap {
			return nil, fmt.Errorf("update limits for subscription %s: cap below total paid: %w", id, ErrLifetimeCapExceeded)
		}
		sub.LifetimeCap = *lifetimeCap
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE subscriptions SET max_per_payment = $1, lifetime_cap = $2, updated_at = now() WHERE id = $3`,
		sub.MaxPerPayment, sub.LifetimeCap, id,
	); err != nil {
		return nil, fmt.Errorf("update limits for subscription %s: %w", id, err)
	}
	return sub, nil
}

func (s *SubscriptionService) transition(ctx context.Context, id, from, to string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE subscriptions SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		to, id, from,
	)
	if err != nil {
		return fmt.Errorf("set subscription %s %s: %w", id, to, err)
	}
	if tag.RowsAffected() == 0 {
		sub, gerr := s.GetByID(ctx, id)
		if gerr != nil {
			return gerr
		}
		return fmt.Errorf("set subscription %s %s from %s: %w", id, to, sub.Status, ErrSubscriptionNotActive)
	}
	return nil
}

func scanSubscription(row pgx.Row) (model.Subscription, error) {
	var sub model.Subscription
	err := row.Scan(&sub.ID, &sub.SubscriberID, &sub.MerchantID, &sub.PaymentToken,
		&sub.Amount, &sub.Interval, &sub.NextPaymentDue, &sub.LastPaymentAt,
		&sub.PaymentCount, &sub.TotalPaid, &sub.MaxPerPayment, &sub.LifetimeCap,
		&sub.Status, &sub.PaymentInProgress, &sub.PrepaidUntil, &sub.TotalBurned,
		&sub.SchemaVersion, &sub.CreatedAt, &sub.UpdatedAt)
	return sub, err
}

// lockSubscription takes the row lock that serializes all payment attempts
// for one subscription. NOWAIT turns lock contention into an immediate
// failure instead of queueing a second charge behind the first.
func lockSubscription(ctx context.Context, q DB, id string) (model.Subscription, error) {
	row := q.QueryRow(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1 FOR UPDATE NOWAIT`, id)
	sub, err := scanSubscription(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "55P03" {
			return sub, ErrPaymentInProgress
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return sub, ErrNotFound
		}
		return sub, fmt.Errorf("lock subscription %s: %w", id, err)
	}
	return sub, nil
}
