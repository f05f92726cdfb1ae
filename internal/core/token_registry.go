package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lutrii/payments/internal/model"
)

// TokenRegistryService maintains the allow-list of payment and settlement
// tokens. Registration and disabling are admin operations; execution-path
// lookups fail closed.
type TokenRegistryService struct {
	db DB
}

func NewTokenRegistryService(db DB) *TokenRegistryService {
	return &TokenRegistryService{db: db}
}

func (s *TokenRegistryService) Create(ctx context.Context, token *model.Token) error {
	if token.Decimals < 0 || token.Decimals > 18 {
		return fmt.Errorf("register token %s: decimals %d out of range", token.ID, token.Decimals)
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO tokens (id, symbol, decimals, burned_supply, status, created_at, updated_at)
		 VALUES ($1, $2, $3, 0, $4, $5, $6)`,
		token.ID, token.Symbol, token.Decimals, token.Status, token.CreatedAt, token.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert token %s: %w", token.ID, err)
	}
	return nil
}

func (s *TokenRegistryService) GetByID(ctx context.Context, id string) (*model.Token, error) {
	var t model.Token
	err := s.db.QueryRow(ctx,
		`SELECT id, symbol, decimals, burned_supply, status, created_at, updated_at
		 FROM tokens WHERE id = $1`, id,
	).Scan(&t.ID, &t.Symbol, &t.Decimals, &t.BurnedSupply, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get token %s: %w", id, err)
	}
	return &t, nil
}

func (s *TokenRegistryService) List(ctx context.Context) ([]model.Token, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, symbol, decimals, burned_supply, status, created_at, updated_at
		 FROM tokens ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var tokens []model.Token
	for rows.Next() {
		var t model.Token
		if err := rows.Scan(&t.ID, &t.Symbol, &t.Decimals, &t.BurnedSupply, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tokens: %w", err)
	}
	return tokens, nil
}

// Disable removes a token from the active allow-list. Existing subscriptions
// referencing it start failing validation on their next charge.
func (s *TokenRegistryService) Disable(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE tokens SET status = $1, updated_at = now() WHERE id = $2`,
		model.TokenDisabled, id,
	)
	if err != nil {
		return fmt.Errorf("disable token %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IsSupported reports whether id is on the active allow-list.
func (s *TokenRegistryService) IsSupported(ctx context.Context, id string) error {
	return tokenSupported(ctx, s.db, id)
}

// tokenSupported fails closed: an unknown token, a disabled token, and a
// failed lookup all read as unsupported.
func tokenSupported(ctx context.Context, q DB, id string) error {
	var status string
	if err := q.QueryRow(ctx, `SELECT status FROM tokens WHERE id = $1`, id).Scan(&status); err != nil {
		return fmt.Errorf("%w: %s", ErrUnsupportedToken, id)
	}
	if status != model.TokenActive {
		return fmt.Errorf("%w: %s", ErrUnsupportedToken, id)
	}
	return nil
}
