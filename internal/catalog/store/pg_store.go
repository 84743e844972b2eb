package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
	"github.com/abgdnv/observatory/internal/catalog/store/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"

	usernameConstraint = "users_username_key"
)

// PgStore implements Store using PostgreSQL as the data store.
type PgStore struct {
	db          *pgxpool.Pool
	q           *db.Queries
	lockTimeout time.Duration
}

// NewPgStore creates a new instance of Store using a PostgreSQL connection pool.
// Writes wait at most lockTimeout for row locks.
func NewPgStore(dbp *pgxpool.Pool, lockTimeout time.Duration) *PgStore {
	return &PgStore{
		db:          dbp,
		q:           db.New(dbp),
		lockTimeout: lockTimeout,
	}
}

var readOnly = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
var readWrite = pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite}

// withTransaction runs fn in a transaction, rolling back when fn fails.
func (p *PgStore) withTransaction(ctx context.Context, opts pgx.TxOptions, fn func(qtx *db.Queries) error) error {
	tx, err := p.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", catalogerrors.ErrTransactionBegin, err)
	}
	qtx := p.q.WithTx(tx)

	if opts.AccessMode != pgx.ReadOnly {
		if err := qtx.SetLockTimeout(ctx, p.lockTimeout); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("%w: %w", catalogerrors.ErrTransactionBegin, err)
		}
	}

	err = fn(qtx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("%w: %w", catalogerrors.ErrTransactionRollback, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return storageError(catalogerrors.ErrTransactionCommit, err)
	}

	return nil
}

// storageError maps lock and serialization failures to ErrConflict and wraps every
// other error with the operation sentinel.
func storageError(op error, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return fmt.Errorf("%w: %s", catalogerrors.ErrConflict, pgErr.Message)
		}
	}
	return fmt.Errorf("%w: %w", op, err)
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraint
}
