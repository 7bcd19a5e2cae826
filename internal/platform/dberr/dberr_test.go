// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/helphub/internal/platform/apperr"
	"github.com/taibuivan/helphub/internal/platform/dberr"
)

/*
TestWrap_Classification checks every branch of the pgx error classifier.
*/
func TestWrap_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"no_rows", pgx.ErrNoRows, apperr.CodeNotFound},
		{"wrapped_no_rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), apperr.CodeNotFound},
		{"deadline", context.DeadlineExceeded, apperr.CodePersistence},
		{"canceled", fmt.Errorf("query: %w", context.Canceled), apperr.CodePersistence},
		{"unique", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, apperr.CodeConflict},
		{"foreign_key", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, apperr.CodeConflict},
		{"statement_timeout", &pgconn.PgError{Code: pgerrcode.QueryCanceled}, apperr.CodePersistence},
		{"lock_timeout", &pgconn.PgError{Code: pgerrcode.LockNotAvailable}, apperr.CodePersistence},
		{"unknown", errors.New("connection reset by peer"), apperr.CodePersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := dberr.Wrap(tt.err, "Session")

			ae := apperr.As(wrapped)
			require.NotNil(t, ae)
			assert.Equal(t, tt.code, ae.Code)
		})
	}
}

/*
TestWrap_Passthrough verifies nil and already-classified errors are untouched.
*/
func TestWrap_Passthrough(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "Session"))

	conflict := apperr.Conflict("Username is already taken")
	assert.Same(t, conflict, dberr.Wrap(conflict, "Account"))
}
