package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the minimal query surface shared by *pgxpool.Pool and pgx.Tx, so
// every service method works both standalone and inside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxDB additionally opens transactions. *pgxpool.Pool satisfies it.
type TxDB interface {
	DB
	Begin(ctx context.Context) (pgx.Tx, error)
}
