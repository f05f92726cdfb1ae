package core

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/lutrii/payments/internal/model"
)

// ---------- Mock DB ----------

// mockDB implements the DB and TxDB interfaces for testing.
type mockDB struct {
	mock.Mock
}

func (m *mockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

func (m *mockDB) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

// ---------- Mock Tx ----------

// mockTx implements pgx.Tx for testing the transactional services. Only the
// query and commit/rollback surface is mocked; the batch and copy methods are
// stubs because nothing under test uses them.
type mockTx struct {
	mock.Mock
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockTx) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

func (m *mockTx) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockTx) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { return m, nil }
func (m *mockTx) Conn() *pgx.Conn                           { return nil }
func (m *mockTx) LargeObjects() pgx.LargeObjects            { return pgx.LargeObjects{} }
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

// ---------- Mock Row ----------

// mockRow implements pgx.Row for testing.
type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	return m.scanFunc(dest...)
}

// ---------- Mock Rows ----------

// mockRows implements pgx.Rows for testing.
// It iterates through a list of scan functions, one per row.
type mockRows struct {
	callIndex int
	scanFuncs []func(dest ...any) error
	err       error
}

func newMockRows(scanFuncs ...func(dest ...any) error) *mockRows {
	return &mockRows{scanFuncs: scanFuncs}
}

// newEmptyMockRows returns a mockRows that yields zero rows.
func newEmptyMockRows() *mockRows {
	return &mockRows{}
}

func (m *mockRows) Next() bool {
	return m.callIndex < len(m.scanFuncs)
}

func (m *mockRows) Scan(dest ...any) error {
	if m.callIndex < len(m.scanFuncs) {
		fn := m.scanFuncs[m.callIndex]
		m.callIndex++
		return fn(dest...)
	}
	return nil
}

func (m *mockRows) Err() error                                   { return m.err }
func (m *mockRows) Close()                                       {}
func (m *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *mockRows) RawValues() [][]byte                          { return nil }
func (m *mockRows) Values() ([]any, error)                       { return nil, nil }
func (m *mockRows) Conn() *pgx.Conn                              { return nil }

// ---------- Matchers and row builders ----------

// sqlContains matches any SQL statement containing the given fragment, so
// expectations can target individual statements within a transaction.
func sqlContains(fragment string) any {
	return mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, fragment)
	})
}

// subscriptionRow builds a pgx.Row that scans into the subscription column
// set in the order services select it.
func subscriptionRow(sub model.Subscription) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = sub.ID
		*(dest[1].(*string)) = sub.SubscriberID
		*(dest[2].(*string)) = sub.MerchantID
		*(dest[3].(*string)) = sub.PaymentToken
		*(dest[4].(*int64)) = sub.Amount
		*(dest[5].(*string)) = sub.Interval
		*(dest[6].(*time.Time)) = sub.NextPaymentDue
		*(dest[7].(**time.Time)) = sub.LastPaymentAt
		*(dest[8].(*int64)) = sub.PaymentCount
		*(dest[9].(*int64)) = sub.TotalPaid
		*(dest[10].(*int64)) = sub.MaxPerPayment
		*(dest[11].(*int64)) = sub.LifetimeCap
		*(dest[12].(*string)) = sub.Status
		*(dest[13].(*bool)) = sub.PaymentInProgress
		*(dest[14].(**time.Time)) = sub.PrepaidUntil
		*(dest[15].(*int64)) = sub.TotalBurned
		*(dest[16].(*int)) = sub.SchemaVersion
		*(dest[17].(*time.Time)) = sub.CreatedAt
		*(dest[18].(*time.Time)) = sub.UpdatedAt
		return nil
	}}
}

func merchantRow(m model.MerchantProfile) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = m.ID
		*(dest[1].(*string)) = m.Name
		*(dest[2].(*string)) = m.SettlementToken
		*(dest[3].(*string)) = m.SettlementAccount
		*(dest[4].(*[]string)) = m.AcceptedTokens
		*(dest[5].(*string)) = m.FeeTier
		*(dest[6].(*string)) = m.Status
		*(dest[7].(*time.Time)) = m.CreatedAt
		*(dest[8].(*time.Time)) = m.UpdatedAt
		return nil
	}}
}

func platformConfigRow(pc model.PlatformConfig) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*bool)) = pc.EmergencyPause
		*(dest[1].(*int64)) = pc.DailyVolumeLimit
		*(dest[2].(*int64)) = pc.Volume24h
		*(dest[3].(*time.Time)) = pc.LastVolumeReset
		*(dest[4].(*int64)) = pc.TotalSubscriptions
		*(dest[5].(*int64)) = pc.TotalExecutions
		*(dest[6].(*time.Time)) = pc.UpdatedAt
		return nil
	}}
}

func tokenStatusRow(status string) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*(dest[0].(*string)) = status
		return nil
	}}
}

func errorRow(err error) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		return err
	}}
}
