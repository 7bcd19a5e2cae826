// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx shared by [pgxpool.Pool] and [pgx.Tx], so a
// repository method can run either standalone or inside [WithTx].
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxStarter is implemented by [pgxpool.Pool].
type TxStarter interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DB is what a repository holds: plain queries plus transactions. It is
// satisfied by [pgxpool.Pool] in production.
type DB interface {
	Querier
	TxStarter
}

/*
WithTx runs fn inside a single transaction.

The transaction commits when fn returns nil and rolls back on error or panic.
A panic is re-raised after the rollback.

Parameters:
  - ctx: context.Context bounding the whole transaction
  - db: TxStarter (usually *pgxpool.Pool)
  - fn: func(pgx.Tx) error

Returns:
  - error: fn's error, or a begin/commit failure
*/
func WithTx(ctx context.Context, db TxStarter, fn func(tx pgx.Tx) error) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres_tx_begin_failed: %w", err)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			_ = tx.Rollback(ctx)
			panic(recovered)
		}

		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("postgres_tx_rollback_failed: %w", rollbackErr))
			}
			return
		}

		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("postgres_tx_commit_failed: %w", commitErr)
		}
	}()

	return fn(tx)
}
