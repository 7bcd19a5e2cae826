// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/helphub/internal/platform/apperr"
	"github.com/taibuivan/helphub/internal/users/session"
)

func newMockRepository(t *testing.T) (*session.PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return session.NewRepository(mock), mock
}

func exactly(query string) string {
	return "^" + regexp.QuoteMeta(query) + "$"
}

func TestPostgresRepository_SoftEndStatements(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)
	cutoff := at.Add(-30 * time.Minute)

	repository, mock := newMockRepository(t)

	mock.ExpectExec(exactly("UPDATE users.session SET lastactivity = $2 WHERE id = $1 AND isactive")).
		WithArgs(int64(3), at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(exactly("UPDATE users.session SET isactive = FALSE, endedat = $2 WHERE id = $1 AND isactive")).
		WithArgs(int64(3), at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(exactly("UPDATE users.session SET isactive = FALSE, endedat = $2 WHERE accountid = $1 AND isactive")).
		WithArgs(int64(7), at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectExec(exactly("UPDATE users.session SET isactive = FALSE, endedat = $2 WHERE isactive AND lastactivity <= $1")).
		WithArgs(cutoff, at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 5))

	require.NoError(t, repository.TouchActivity(ctx, 3, at))
	require.NoError(t, repository.Deactivate(ctx, 3, at))

	ended, err := repository.DeactivateAllForAccount(ctx, 7, at)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ended)

	swept, err := repository.DeactivateIdleSince(ctx, cutoff, at)
	require.NoError(t, err)
	assert.Equal(t, int64(5), swept)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_FindActiveByTokenHash(t *testing.T) {
	repository, mock := newMockRepository(t)

	mock.ExpectQuery(exactly("SELECT id, tokenhash, accountid, logintime, lastactivity, isactive, endedat FROM users.session WHERE tokenhash = $1 AND isactive")).
		WithArgs("digest").
		WillReturnError(pgx.ErrNoRows)

	_, err := repository.FindActiveByTokenHash(context.Background(), "digest")
	assert.True(t, apperr.IsNotFound(err), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_StoreTimeoutIsPersistence(t *testing.T) {
	repository, mock := newMockRepository(t)

	mock.ExpectExec(exactly("UPDATE users.session SET lastactivity = $2 WHERE id = $1 AND isactive")).
		WithArgs(int64(3), pgxmock.AnyArg()).
		WillReturnError(context.DeadlineExceeded)

	err := repository.TouchActivity(context.Background(), 3, time.Now())
	assert.True(t, apperr.IsPersistence(err), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
