// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
//
// # Fail Closed
//
// Anything the classifier does not recognise becomes a PERSISTENCE_ERROR.
// A timed-out or cancelled round trip is a persistence failure too, so an
// authorization check can never mistake a slow store for a missing session.
package dberr

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/helphub/internal/platform/apperr"
)

/*
Wrap inspects a database error and converts it into an [apperr.AppError].

Parameters:
  - err: error returned by pgx (may be nil)
  - resource: human-readable resource name used in client messages ("Session")

Returns:
  - error: nil, NOT_FOUND, CONFLICT or PERSISTENCE_ERROR
*/
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// Already classified further down the stack
	if apperr.IsAppError(err) {
		return err
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	// 2. Deadlines and cancellations are store failures, never "absent"
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.Persistence(err)
	}

	// 3. Constraint violations reported by PostgreSQL
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		switch pgError.Code {
		case pgerrcode.UniqueViolation:
			return withCause(apperr.Conflict(resource+" already exists"), err)
		case pgerrcode.ForeignKeyViolation:
			return withCause(apperr.Conflict(resource+" is still referenced"), err)
		case pgerrcode.QueryCanceled, pgerrcode.LockNotAvailable:
			// statement_timeout and lock_timeout, see postgres.ParseConfig
			return apperr.Persistence(err)
		}
	}

	return apperr.Persistence(err)
}

func withCause(appError *apperr.AppError, cause error) *apperr.AppError {
	appError.Cause = cause
	return appError
}
