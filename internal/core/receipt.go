package core

import (
	"context"
	"fmt"

	"github.com/lutrii/payments/internal/model"
)

// ReceiptService reads the payment and burn history written by the executor
// and the discount service.
type ReceiptService struct {
	db DB
}

func NewReceiptService(db DB) *ReceiptService {
	return &ReceiptService{db: db}
}

func (s *ReceiptService) ListPayments(ctx context.Context, subscriptionID string, limit int, cursor string) ([]model.PaymentReceipt, bool, error) {
	query := `SELECT id, subscription_id, merchant_id, payment_token, settlement_token, settlement_amount, fee, merchant_received, swapped, swap_amount_in, payment_count, executed_at
		 FROM payment_receipts WHERE subscription_id = $1`
	args := []any{subscriptionID}
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
		return nil, false, fmt.Errorf("list payment receipts for %s: %w", subscriptionID, err)
	}
	defer rows.Close()

	var receipts []model.PaymentReceipt
	for rows.Next() {
		var r model.PaymentReceipt
		if err := rows.Scan(&r.ID, &r.SubscriptionID, &r.MerchantID, &r.PaymentToken,
			&r.SettlementToken, &r.SettlementAmount, &r.Fee, &r.MerchantReceived,
			&r.Swapped, &r.SwapAmountIn, &r.PaymentCount, &r.ExecutedAt); err != nil {
			return nil, false, fmt.Errorf("scan payment receipt: %w", err)
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate payment receipts: %w", err)
	}

	hasMore := len(receipts) > limit
	if hasMore {
		receipts = receipts[:limit]
	}
	return receipts, hasMore, nil
}

func (s *ReceiptService) ListBurns(ctx context.Context, subscriptionID string, limit int, cursor string) ([]model.BurnReceipt, bool, error) {
	query := `SELECT id, subscription_id, token_id, burned_amount, burned_value, oracle_price, prepaid_until, created_at
		 FROM burn_receipts WHERE subscription_id = $1`
	args := []any{subscriptionID}
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
		return nil, false, fmt.Errorf("list burn receipts for %s: %w", subscriptionID, err)
	}
	defer rows.Close()

	var receipts []model.BurnReceipt
	for rows.Next() {
		var r model.BurnReceipt
		if err := rows.Scan(&r.ID, &r.SubscriptionID, &r.TokenID, &r.BurnedAmount,
			&r.BurnedValue, &r.OraclePrice, &r.PrepaidUntil, &r.CreatedAt); err != nil {
			return nil, false, fmt.Errorf("scan burn receipt: %w", err)
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate burn receipts: %w", err)
	}

	hasMore := len(receipts) > limit
	if hasMore {
		receipts = receipts[:limit]
	}
	return receipts, hasMore, nil
}
