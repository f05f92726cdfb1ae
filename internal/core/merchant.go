package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lutrii/payments/internal/model"
)

// MerchantService manages merchant settlement profiles.
type MerchantService struct {
	db       DB
	registry *TokenRegistryService
}

func NewMerchantService(db DB, registry *TokenRegistryService) *MerchantService {
	return &MerchantService{db: db, registry: registry}
}

func (s *MerchantService) Create(ctx context.Context, m *model.MerchantProfile) error {
	if err := s.validateProfile(ctx, m); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO merchants (id, name, settlement_token, settlement_account, accepted_tokens, fee_tier, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.Name, m.SettlementToken, m.SettlementAccount, m.AcceptedTokens,
		m.FeeTier, m.Status, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert merchant %s: %w", m.ID, err)
	}
	return nil
}

func (s *MerchantService) GetByID(ctx context.Context, id string) (*model.MerchantProfile, error) {
	m, err := snapshotMerchant(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MerchantService) List(ctx context.Context, limit int, cursor string) ([]model.MerchantProfile, bool, error) {
	query := `SELECT id, name, settlement_token, settlement_account, accepted_tokens, fee_tier, status, created_at, updated_at FROM merchants`
	args := []any{}
	if cursor != "" {
		query += ` WHERE id > $1`
		args = append(args, cursor)
	}
	query += fmt.Sprintf(` ORDER BY id LIMIT $%d`, len(args)+1)
	args = append(args, limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list merchants: %w", err)
	}
	defer rows.Close()

	var merchants []model.MerchantProfile
	for rows.Next() {
		var m model.MerchantProfile
		if err := rows.Scan(&m.ID, &m.Name, &m.SettlementToken, &m.SettlementAccount,
			&m.AcceptedTokens, &m.FeeTier, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan merchant: %w", err)
		}
		merchants = append(merchants, m)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate merchants: %w", err)
	}

	hasMore := len(merchants) > limit
	if hasMore {
		merchants = merchants[:limit]
	}
	return merchants, hasMore, nil
}

// UpdateProfile replaces the settlement configuration. The same invariants
// apply as on create; in-flight payments are unaffected because the executor
// snapshots the profile inside its own transaction.
func (s *MerchantService) UpdateProfile(ctx context.Context, m *model.MerchantProfile) error {
	if err := s.validateProfile(ctx, m); err != nil {
		return err
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE merchants SET name = $1, settlement_token = $2, settlement_account = $3, accepted_tokens = $4, fee_tier = $5, updated_at = now()
		 WHERE id = $6`,
		m.Name, m.SettlementToken, m.SettlementAccount, m.AcceptedTokens, m.FeeTier, m.ID,
	)
	if err != nil {
		return fmt.Errorf("update merchant %s: %w", m.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// validateProfile enforces the profile invariants: a supported settlement
// token, 1..MaxAcceptedTokens accepted tokens with no duplicates, the
// settlement token among them, and a recognized fee tier.
func (s *MerchantService) validateProfile(ctx context.Context, m *model.MerchantProfile) error {
	if m.SettlementAccount == "" {
		return errors.New("merchant profile: empty settlement account")
	}
	switch m.FeeTier {
	case model.TierVerified, model.TierCommunity, model.TierPremium:
	default:
		return fmt.Errorf("merchant profile: unknown fee tier %q", m.FeeTier)
	}
	if len(m.AcceptedTokens) == 0 {
		return errors.New("merchant profile: no accepted tokens")
	}
	if len(m.AcceptedTokens) > model.MaxAcceptedTokens {
		return fmt.Errorf("merchant profile: %d accepted tokens, max %d", len(m.AcceptedTokens), model.MaxAcceptedTokens)
	}
	seen := make(map[string]bool, len(m.AcceptedTokens))
	for _, t := range m.AcceptedTokens {
		if seen[t] {
			return fmt.Errorf("merchant profile: duplicate accepted token %s", t)
		}
		seen[t] = true
		if err := s.registry.IsSupported(ctx, t); err != nil {
			return fmt.Errorf("merchant profile: %w", err)
		}
	}
	if !m.AcceptsToken(m.SettlementToken) {
		return fmt.Errorf("merchant profile: settlement token %s not in accepted tokens", m.SettlementToken)
	}
	return nil
}

// snapshotMerchant reads a merchant profile through the given querier so the
// executor gets a consistent view inside its transaction.
func snapshotMerchant(ctx context.Context, q DB, id string) (*model.MerchantProfile, error) {
	var m model.MerchantProfile
	err := q.QueryRow(ctx,
		`SELECT id, name, settlement_token, settlement_account, accepted_tokens, fee_tier, status, created_at, updated_at
		 FROM merchants WHERE id = $1`, id,
	).Scan(&m.ID, &m.Name, &m.SettlementToken, &m.SettlementAccount,
		&m.AcceptedTokens, &m.FeeTier, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get merchant %s: %w", id, err)
	}
	return &m, nil
}
