// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/helphub/internal/platform/apperr"
	"github.com/taibuivan/helphub/internal/platform/database/schema"
	"github.com/taibuivan/helphub/internal/platform/dberr"
	"github.com/taibuivan/helphub/internal/platform/postgres"
)

const resourceProfile = "Role profile"

// PostgresRepository implements [Repository] on the users.profile table.
type PostgresRepository struct {
	db postgres.DB
}

// NewRepository creates a new PostgreSQL implementation of [Repository].
func NewRepository(db postgres.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var profileColumns = strings.Join(schema.UserProfile.Columns(), ", ")

func scanProfile(row pgx.Row) (*Profile, error) {
	var snapshot Snapshot
	if err := row.Scan(&snapshot.RoleName, &snapshot.Description, &snapshot.Permissions); err != nil {
		return nil, err
	}

	// Rows written by hand may carry names outside the catalog.
	profile, err := FromSnapshot(snapshot)
	if err != nil {
		return nil, fmt.Errorf("postgres_profile_repo_corrupt_row %q: %w", snapshot.RoleName, apperr.Internal(err))
	}
	return profile, nil
}

// FindByName implements [Repository].
func (repository *PostgresRepository) FindByName(context context.Context, roleName string) (*Profile, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		profileColumns, schema.UserProfile.Table, schema.UserProfile.RoleName)

	profile, err := scanProfile(repository.db.QueryRow(context, query, roleName))
	if err != nil {
		return nil, fmt.Errorf("postgres_profile_repo_find_failed: %w", dberr.Wrap(err, resourceProfile))
	}
	return profile, nil
}

// List implements [Repository].
func (repository *PostgresRepository) List(context context.Context) ([]*Profile, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		profileColumns, schema.UserProfile.Table, schema.UserProfile.RoleName)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_profile_repo_list_failed: %w", dberr.Wrap(err, resourceProfile))
	}
	defer rows.Close()

	profiles := make([]*Profile, 0)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_profile_repo_list_scan_failed: %w", dberr.Wrap(err, resourceProfile))
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_profile_repo_list_failed: %w", dberr.Wrap(err, resourceProfile))
	}
	return profiles, nil
}

// Create implements [Repository].
func (repository *PostgresRepository) Create(context context.Context, profile *Profile) error {
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES ($1, $2, $3)",
		schema.UserProfile.Table, profileColumns)

	snapshot := profile.Snapshot()
	_, err := repository.db.Exec(context, query, snapshot.RoleName, snapshot.Description, snapshot.Permissions)
	if err != nil {
		return fmt.Errorf("postgres_profile_repo_create_failed: %w", dberr.Wrap(err, resourceProfile))
	}
	return nil
}

// CreateIfMissing implements [Repository].
func (repository *PostgresRepository) CreateIfMissing(context context.Context, profile *Profile) (bool, error) {
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES ($1, $2, $3) ON CONFLICT (%s) DO NOTHING",
		schema.UserProfile.Table, profileColumns, schema.UserProfile.RoleName)

	snapshot := profile.Snapshot()
	tag, err := repository.db.Exec(context, query, snapshot.RoleName, snapshot.Description, snapshot.Permissions)
	if err != nil {
		return false, fmt.Errorf("postgres_profile_repo_seed_failed: %w", dberr.Wrap(err, resourceProfile))
	}
	return tag.RowsAffected() == 1, nil
}

// Update implements [Repository].
func (repository *PostgresRepository) Update(context context.Context, currentName string, profile *Profile) error {
	query := fmt.Sprintf("UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = NOW() WHERE %s = $1",
		schema.UserProfile.Table,
		schema.UserProfile.RoleName, schema.UserProfile.Description, schema.UserProfile.Permissions,
		schema.UserProfile.UpdatedAt, schema.UserProfile.RoleName)

	snapshot := profile.Snapshot()
	tag, err := repository.db.Exec(context, query, currentName, snapshot.RoleName, snapshot.Description, snapshot.Permissions)
	if err != nil {
		return fmt.Errorf("postgres_profile_repo_update_failed: %w", dberr.Wrap(err, resourceProfile))
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceProfile)
	}
	return nil
}

// Delete implements [Repository].
func (repository *PostgresRepository) Delete(context context.Context, roleName string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", schema.UserProfile.Table, schema.UserProfile.RoleName)

	tag, err := repository.db.Exec(context, query, roleName)
	if err != nil {
		return fmt.Errorf("postgres_profile_repo_delete_failed: %w", dberr.Wrap(err, resourceProfile))
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceProfile)
	}
	return nil
}
