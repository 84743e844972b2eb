// Package db holds the row models and the SQL of the catalog. Its shape follows
// sqlc's pgx/v5 output so that queries run unchanged on a pool or inside a transaction.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{
		db: tx,
	}
}

// SetLockTimeout bounds how long statements of the current transaction wait for row locks.
// A zero timeout keeps the server default.
func (q *Queries) SetLockTimeout(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		return nil
	}
	// SET does not accept bind parameters, the value is an integer number of milliseconds.
	_, err := q.db.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", timeout.Milliseconds()))
	return err
}

type scanner interface {
	Scan(dest ...any) error
}
