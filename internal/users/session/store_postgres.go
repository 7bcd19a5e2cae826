// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taibuivan/helphub/internal/platform/database/schema"
	"github.com/taibuivan/helphub/internal/platform/dberr"
	"github.com/taibuivan/helphub/internal/platform/postgres"
)

const resourceSession = "Session"

// PostgresRepository implements [Repository] on the users.session table.
type PostgresRepository struct {
	db postgres.DB
}

// NewRepository creates a new PostgreSQL implementation of [Repository].
func NewRepository(db postgres.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var sessionColumns = strings.Join(schema.UserSession.Columns(), ", ")

/*
Create persists a new session record into the users.session table.

Parameters:
  - context: context.Context
  - session: *Session (ID is filled in)

Returns:
  - error: PERSISTENCE_ERROR, or CONFLICT on a token digest collision
*/
func (repository *PostgresRepository) Create(context context.Context, session *Session) error {
	table := schema.UserSession
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`,
		table.Table, table.TokenHash, table.AccountID, table.LoginTime, table.LastActivity, table.IsActive,
		table.ID)

	err := repository.db.QueryRow(context, query,
		session.TokenHash,
		session.AccountID,
		session.LoginTime,
		session.LastActivity,
		session.Active,
	).Scan(&session.ID)

	if err != nil {
		return fmt.Errorf("postgres_session_repo_create_failed: %w", dberr.Wrap(err, resourceSession))
	}
	return nil
}

// FindActiveByTokenHash implements [Repository].
func (repository *PostgresRepository) FindActiveByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	table := schema.UserSession
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 AND %s",
		sessionColumns, table.Table, table.TokenHash, table.IsActive)

	session := &Session{}
	err := repository.db.QueryRow(context, query, tokenHash).Scan(
		&session.ID,
		&session.TokenHash,
		&session.AccountID,
		&session.LoginTime,
		&session.LastActivity,
		&session.Active,
		&session.EndedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres_session_repo_find_failed: %w", dberr.Wrap(err, resourceSession))
	}
	return session, nil
}

// TouchActivity implements [Repository].
func (repository *PostgresRepository) TouchActivity(context context.Context, id int64, at time.Time) error {
	table := schema.UserSession
	query := fmt.Sprintf("UPDATE %s SET %s = $2 WHERE %s = $1 AND %s",
		table.Table, table.LastActivity, table.ID, table.IsActive)

	if _, err := repository.db.Exec(context, query, id, at); err != nil {
		return fmt.Errorf("postgres_session_repo_touch_failed: %w", dberr.Wrap(err, resourceSession))
	}
	return nil
}

// Deactivate implements [Repository].
func (repository *PostgresRepository) Deactivate(context context.Context, id int64, at time.Time) error {
	table := schema.UserSession
	query := fmt.Sprintf("UPDATE %s SET %s = FALSE, %s = $2 WHERE %s = $1 AND %s",
		table.Table, table.IsActive, table.EndedAt, table.ID, table.IsActive)

	if _, err := repository.db.Exec(context, query, id, at); err != nil {
		return fmt.Errorf("postgres_session_repo_deactivate_failed: %w", dberr.Wrap(err, resourceSession))
	}
	return nil
}

// DeactivateAllForAccount implements [Repository].
func (repository *PostgresRepository) DeactivateAllForAccount(context context.Context, accountID int64, at time.Time) (int64, error) {
	table := schema.UserSession
	query := fmt.Sprintf("UPDATE %s SET %s = FALSE, %s = $2 WHERE %s = $1 AND %s",
		table.Table, table.IsActive, table.EndedAt, table.AccountID, table.IsActive)

	tag, err := repository.db.Exec(context, query, accountID, at)
	if err != nil {
		return 0, fmt.Errorf("postgres_session_repo_deactivate_all_failed: %w", dberr.Wrap(err, resourceSession))
	}
	return tag.RowsAffected(), nil
}

// DeactivateIdleSince implements [Repository].
func (repository *PostgresRepository) DeactivateIdleSince(context context.Context, cutoff time.Time, at time.Time) (int64, error) {
	table := schema.UserSession
	query := fmt.Sprintf("UPDATE %s SET %s = FALSE, %s = $2 WHERE %s AND %s <= $1",
		table.Table, table.IsActive, table.EndedAt, table.IsActive, table.LastActivity)

	tag, err := repository.db.Exec(context, query, cutoff, at)
	if err != nil {
		return 0, fmt.Errorf("postgres_session_repo_cleanup_failed: %w", dberr.Wrap(err, resourceSession))
	}
	return tag.RowsAffected(), nil
}
