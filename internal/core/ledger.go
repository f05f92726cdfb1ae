package core

import (
	"context"
	"fmt"
)

// TokenLedger implements the balance-movement primitives over the
// token_balances table. Every method takes the caller's querier so it joins
// whatever transaction the caller holds; nothing here commits.
type TokenLedger struct{}

// Transfer moves amount of token from one account to another. A zero amount
// is a no-op. Fails with ErrInsufficientFunds when the source balance does
// not cover the amount.
func (TokenLedger) Transfer(ctx context.Context, q DB, token, from, to string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("transfer %s: negative amount %d", token, amount)
	}
	if amount == 0 {
		return nil
	}
	if err := debit(ctx, q, token, from, amount); err != nil {
		return fmt.Errorf("transfer %s from %s: %w", token, from, err)
	}
	if err := credit(ctx, q, token, to, amount); err != nil {
		return fmt.Errorf("transfer %s to %s: %w", token, to, err)
	}
	return nil
}

// Credit records token units received from an external counterparty, such as
// swap output settling into the escrow account.
func (TokenLedger) Credit(ctx context.Context, q DB, token, account string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("credit %s: negative amount %d", token, amount)
	}
	if amount == 0 {
		return nil
	}
	if err := credit(ctx, q, token, account, amount); err != nil {
		return fmt.Errorf("credit %s to %s: %w", token, account, err)
	}
	return nil
}

// Burn irreversibly destroys amount of token held by account. The destroyed
// units are added to the token's burned supply counter.
func (TokenLedger) Burn(ctx context.Context, q DB, token, account string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("burn %s: non-positive amount %d", token, amount)
	}
	if err := debit(ctx, q, token, account, amount); err != nil {
		return fmt.Errorf("burn %s from %s: %w", token, account, err)
	}
	_, err := q.Exec(ctx,
		`UPDATE tokens SET burned_supply = burned_supply + $1, updated_at = now() WHERE id = $2`,
		amount, token,
	)
	if err != nil {
		return fmt.Errorf("record burned supply of %s: %w", token, err)
	}
	return nil
}

// Balance reads an account's balance; missing rows read as zero.
func (TokenLedger) Balance(ctx context.Context, q DB, token, account string) (int64, error) {
	var balance int64
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(balance), 0) FROM token_balances WHERE token_id = $1 AND account_id = $2`,
		token, account,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("read balance of %s for %s: %w", token, account, err)
	}
	return balance, nil
}

// debit is conditional on sufficient balance so two statements never race a
// balance below zero.
func debit(ctx context.Context, q DB, token, account string, amount int64) error {
	tag, err := q.Exec(ctx,
		`UPDATE token_balances SET balance = balance - $1
		 WHERE token_id = $2 AND account_id = $3 AND balance >= $1`,
		amount, token, account,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

func credit(ctx context.Context, q DB, token, account string, amount int64) error {
	_, err := q.Exec(ctx,
		`INSERT INTO token_balances (token_id, account_id, balance) VALUES ($1, $2, $3)
		 ON CONFLICT (token_id, account_id) DO UPDATE SET balance = token_balances.balance + EXCLUDED.balance`,
		token, account, amount,
	)
	return err
}
