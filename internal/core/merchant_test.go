package core

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lutrii/payments/internal/model"
)

func testMerchant() *model.MerchantProfile {
	now := time.Now().UTC()
	return &model.MerchantProfile{
		ID:                "merchant-1",
		Name:              "Acme Hosting",
		SettlementToken:   "usdc",
		SettlementAccount: "acme-settlement",
		AcceptedTokens:    []string{"usdc", "usdt"},
		FeeTier:           model.TierVerified,
		Status:            model.MerchantActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// expectTokensActive answers every token status lookup with active.
func expectTokensActive(db *mockDB, ctx context.Context) {
	db.On("QueryRow", ctx, sqlContains("SELECT status FROM tokens"), mock.Anything).
		Return(tokenStatusRow(model.TokenActive))
}

func TestMerchantService_Create_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewMerchantService(db, NewTokenRegistryService(db))
	ctx := context.Background()

	expectTokensActive(db, ctx)
	db.On("Exec", ctx, sqlContains("INSERT INTO merchants"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	err := svc.Create(ctx, testMerchant())
	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestMerchantService_Create_InvalidProfiles(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(m *model.MerchantProfile)
		errIn  string
	}{
		{"empty settlement account", func(m *model.MerchantProfile) { m.SettlementAccount = "" }, "settlement account"},
		{"unknown fee tier", func(m *model.MerchantProfile) { m.FeeTier = "gold" }, "fee tier"},
		{"no accepted tokens", func(m *model.MerchantProfile) { m.AcceptedTokens = nil }, "no accepted tokens"},
		{"too many accepted tokens", func(m *model.MerchantProfile) {
			m.AcceptedTokens = []string{"a", "b", "c", "d", "e"}
		}, "max 4"},
		{"duplicate accepted token", func(m *model.MerchantProfile) {
			m.AcceptedTokens = []string{"usdc", "usdc"}
		}, "duplicate"},
		{"settlement token not accepted", func(m *model.MerchantProfile) {
			m.SettlementToken = "dai"
		}, "not in accepted tokens"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := &mockDB{}
			svc := NewMerchantService(db, NewTokenRegistryService(db))
			ctx := context.Background()
			expectTokensActive(db, ctx)

			m := testMerchant()
			tc.mutate(m)

			err := svc.Create(ctx, m)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errIn)
			db.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestMerchantService_Create_UnsupportedAcceptedToken(t *testing.T) {
	db := &mockDB{}
	svc := NewMerchantService(db, NewTokenRegistryService(db))
	ctx := context.Background()

	db.On("QueryRow", ctx, sqlContains("SELECT status FROM tokens"), mock.Anything).
		Return(tokenStatusRow(model.TokenDisabled))

	err := svc.Create(ctx, testMerchant())
	require.ErrorIs(t, err, ErrUnsupportedToken)
	db.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
}

func TestMerchantService_GetByID_Success(t *testing.T) {
	db := &mockDB{}
	svc := NewMerchantService(db, NewTokenRegistryService(db))
	ctx := context.Background()

	want := testMerchant()
	db.On("QueryRow", ctx, sqlContains("FROM merchants"), mock.Anything).
		Return(merchantRow(*want))

	got, err := svc.GetByID(ctx, want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.AcceptedTokens, got.AcceptedTokens)
	assert.Equal(t, want.FeeTier, got.FeeTier)
}

func TestMerchantService_GetByID_NotFound(t *testing.T) {
	db := &mockDB{}
	svc := NewMerchantService(db, NewTokenRegistryService(db))
	ctx := context.Background()

	db.On("QueryRow", ctx, sqlContains("FROM merchants"), mock.Anything).
		Return(errorRow(pgx.ErrNoRows))

	_, err := svc.GetByID(ctx, "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMerchantService_UpdateProfile_NotFound(t *testing.T) {
	db := &mockDB{}
	svc := NewMerchantService(db, NewTokenRegistryService(db))
	ctx := context.Background()

	expectTokensActive(db, ctx)
	db.On("Exec", ctx, sqlContains("UPDATE merchants"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	err := svc.UpdateProfile(ctx, testMerchant())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMerchantService_List_Pagination(t *testing.T) {
	db := &mockDB{}
	svc := NewMerchantService(db, NewTokenRegistryService(db))
	ctx := context.Background()

	now := time.Now().UTC()
	scan := func(id string) func(dest ...any) error {
		return func(dest ...any) error {
			*(dest[0].(*string)) = id
			*(dest[1].(*string)) = "m"
			*(dest[2].(*string)) = "usdc"
			*(dest[3].(*string)) = "acct"
			*(dest[4].(*[]string)) = []string{"usdc"}
			*(dest[5].(*string)) = model.TierCommunity
			*(dest[6].(*string)) = model.MerchantActive
			*(dest[7].(*time.Time)) = now
			*(dest[8].(*time.Time)) = now
			return nil
		}
	}
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(newMockRows(scan("m-1"), scan("m-2"), scan("m-3")), nil)

	merchants, hasMore, err := svc.List(ctx, 2, "")
	require.NoError(t, err)
	assert.Len(t, merchants, 2)
	assert.True(t, hasMore)
}

func TestMerchantProfile_AcceptsToken(t *testing.T) {
	m := testMerchant()
	assert.True(t, m.AcceptsToken("usdc"))
	assert.True(t, m.AcceptsToken("usdt"))
	assert.False(t, m.AcceptsToken("dai"))
}
