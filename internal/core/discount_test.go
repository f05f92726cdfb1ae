package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lutrii/payments/internal/events"
	"github.com/lutrii/payments/internal/model"
	"github.com/lutrii/payments/internal/oracle"
)

// ---------- Fake oracle ----------

type fakeOracle struct {
	price oracle.Price
	err   error
}

func (f *fakeOracle) TokenPrice(ctx context.Context, token string) (oracle.Price, error) {
	if f.err != nil {
		return oracle.Price{}, f.err
	}
	return f.price, nil
}

// ---------- Fixture ----------

type discountFixture struct {
	db     *mockDB
	tx     *mockTx
	prices *fakeOracle
	svc    *DiscountService
	now    time.Time
}

func newDiscountFixture(t *testing.T) *discountFixture {
	t.Helper()
	db := &mockDB{}
	tx := &mockTx{}
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	prices := &fakeOracle{price: oracle.Price{Value: 10_000, Timestamp: now.Add(-time.Minute)}}

	svc := NewDiscountService(db, prices, NewFeePolicy(testFeeConfig()), PrepayConfig{
		FractionBps:  5_000,
		CoverageDays: 365,
		OracleMaxAge: 5 * time.Minute,
	}, "lutra", events.Nop{}, zerolog.Nop())
	svc.now = func() time.Time { return now }

	db.On("Begin", mock.Anything).Return(tx, nil)

	return &discountFixture{db: db, tx: tx, prices: prices, svc: svc, now: now}
}

func (f *discountFixture) expectLock(sub model.Subscription) {
	f.tx.On("QueryRow", mock.Anything, sqlContains("FOR UPDATE NOWAIT"), mock.Anything).
		Return(subscriptionRow(sub))
}

func (f *discountFixture) expectMerchant(m model.MerchantProfile) {
	f.tx.On("QueryRow", mock.Anything, sqlContains("FROM merchants"), mock.Anything).
		Return(merchantRow(m))
}

func (f *discountFixture) expectDiscountTokenDecimals(decimals int) {
	f.tx.On("QueryRow", mock.Anything, sqlContains("SELECT decimals FROM tokens"), mock.Anything).
		Return(&mockRow{scanFunc: func(dest ...any) error {
			*(dest[0].(*int)) = decimals
			return nil
		}})
}

func (f *discountFixture) expectBurnAndRecord() {
	f.tx.On("Exec", mock.Anything, sqlContains("UPDATE token_balances SET balance = balance -"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 1"), nil)
	f.tx.On("Exec", mock.Anything, sqlContains("UPDATE tokens SET burned_supply"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 1"), nil)
	f.tx.On("Exec", mock.Anything, sqlContains("SET prepaid_until"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 1"), nil)
	f.tx.On("Exec", mock.Anything, sqlContains("INSERT INTO burn_receipts"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)
	f.tx.On("Commit", mock.Anything).Return(nil)
}

func (f *discountFixture) expectRollback() {
	f.tx.On("Rollback", mock.Anything).Return(nil)
}

// ---------- Prepay ----------

func TestDiscountService_Prepay_Success(t *testing.T) {
	f := newDiscountFixture(t)
	sub := testSubscription()

	f.expectLock(sub)
	f.expectMerchant(*testMerchant())
	f.expectDiscountTokenDecimals(6)
	f.expectBurnAndRecord()

	receipt, err := f.svc.Prepay(context.Background(), sub.ID)
	require.NoError(t, err)

	// Monthly 100.000000 at 2.5% is 2.500000 per charge, 30.000000 per year;
	// half of that is burned, priced at 0.010000 per whole token.
	assert.Equal(t, int64(15_000_000), receipt.BurnedValue)
	assert.Equal(t, int64(1_500_000_000), receipt.BurnedAmount)
	assert.Equal(t, int64(10_000), receipt.OraclePrice)
	assert.Equal(t, "lutra", receipt.TokenID)
	assert.Equal(t, f.now.Add(365*24*time.Hour), receipt.PrepaidUntil)

	f.tx.AssertExpectations(t)
	f.db.AssertExpectations(t)
}

// Prepaying before the current window expires stacks coverage on top of the
// window's end, so paying early never forfeits time.
func TestDiscountService_Prepay_StacksOnUnexpiredWindow(t *testing.T) {
	f := newDiscountFixture(t)
	sub := testSubscription()
	until := f.now.Add(100 * 24 * time.Hour)
	sub.PrepaidUntil = &until

	f.expectLock(sub)
	f.expectMerchant(*testMerchant())
	f.expectDiscountTokenDecimals(6)
	f.expectBurnAndRecord()

	receipt, err := f.svc.Prepay(context.Background(), sub.ID)
	require.NoError(t, err)
	assert.Equal(t, until.Add(365*24*time.Hour), receipt.PrepaidUntil)
}

// The burn amount scales inversely with price while the burned value stays
// constant, so the subscriber's saving is price-independent.
func TestDiscountService_Prepay_BurnScalesWithPrice(t *testing.T) {
	for _, price := range []int64{100, 10_000, 1_000_000, 100_000_000} {
		f := newDiscountFixture(t)
		f.prices.price.Value = price
		sub := testSubscription()

		f.expectLock(sub)
		f.expectMerchant(*testMerchant())
		f.expectDiscountTokenDecimals(6)
		f.expectBurnAndRecord()

		receipt, err := f.svc.Prepay(context.Background(), sub.ID)
		require.NoError(t, err)

		assert.Equal(t, int64(15_000_000), receipt.BurnedValue, "price %d", price)
		assert.Equal(t, int64(15_000_000)*1_000_000/price, receipt.BurnedAmount, "price %d", price)
	}
}

func TestDiscountService_Prepay_StalePrice(t *testing.T) {
	f := newDiscountFixture(t)
	f.prices.price.Timestamp = f.now.Add(-10 * time.Minute)

	_, err := f.svc.Prepay(context.Background(), "sub-1")
	require.ErrorIs(t, err, oracle.ErrStalePrice)
	// A stale price aborts before any transaction opens.
	f.db.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestDiscountService_Prepay_OracleDown(t *testing.T) {
	f := newDiscountFixture(t)
	f.prices.err = errors.New("feed unavailable")

	_, err := f.svc.Prepay(context.Background(), "sub-1")
	require.Error(t, err)
	f.db.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestDiscountService_Prepay_NonPositivePrice(t *testing.T) {
	f := newDiscountFixture(t)
	f.prices.price.Value = 0

	_, err := f.svc.Prepay(context.Background(), "sub-1")
	require.Error(t, err)
	f.db.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestDiscountService_Prepay_InactiveSubscription(t *testing.T) {
	f := newDiscountFixture(t)
	f.expectRollback()
	sub := testSubscription()
	sub.Status = model.SubscriptionCanceled
	f.expectLock(sub)

	_, err := f.svc.Prepay(context.Background(), sub.ID)
	require.ErrorIs(t, err, ErrSubscriptionNotActive)
	f.tx.AssertCalled(t, "Rollback", mock.Anything)
	f.tx.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestDiscountService_Prepay_DisabledDiscountToken(t *testing.T) {
	f := newDiscountFixture(t)
	f.expectRollback()
	sub := testSubscription()
	f.expectLock(sub)
	f.expectMerchant(*testMerchant())
	f.tx.On("QueryRow", mock.Anything, sqlContains("SELECT decimals FROM tokens"), mock.Anything).
		Return(errorRow(errors.New("no rows")))

	_, err := f.svc.Prepay(context.Background(), sub.ID)
	require.ErrorIs(t, err, ErrUnsupportedToken)
}

func TestDiscountService_Prepay_InsufficientDiscountTokens(t *testing.T) {
	f := newDiscountFixture(t)
	f.expectRollback()
	sub := testSubscription()
	f.expectLock(sub)
	f.expectMerchant(*testMerchant())
	f.expectDiscountTokenDecimals(6)
	f.tx.On("Exec", mock.Anything, sqlContains("UPDATE token_balances SET balance = balance -"), mock.Anything).
		Return(pgconn.NewCommandTag("UPDATE 0"), nil)

	_, err := f.svc.Prepay(context.Background(), sub.ID)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	f.tx.AssertNotCalled(t, "Commit", mock.Anything)
}

// ---------- tokenUnitsForValue ----------

func TestTokenUnitsForValue(t *testing.T) {
	// 15.000000 of value at 0.010000 per whole 6-decimal token.
	units, err := tokenUnitsForValue(15_000_000, 6, 10_000)
	require.NoError(t, err)
	assert.Equal(t, int64(1_500_000_000), units)

	// 18-decimal token at a high price still fits.
	units, err = tokenUnitsForValue(15_000_000, 8, 2_500_000)
	require.NoError(t, err)
	assert.Equal(t, int64(600_000_000), units)

	// Values that round below one minor unit are rejected.
	_, err = tokenUnitsForValue(1, 0, 1_000_000)
	require.Error(t, err)
}
