// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package migration applies the HelpHub schema with golang-migrate and lets
// readiness confirm the schema has not drifted since startup.
//
// The users and platform migrations must be in place before the role
// profiles are seeded, so [RunUp] runs before any repository is used. The
// version it reports is the one [Verify] later expects.
package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/helphub/internal/platform/postgres"
)

// versionTable is golang-migrate's bookkeeping table.
const versionTable = "schema_migrations"

// Status describes the schema after [RunUp].
type Status struct {
	// From is the version found before migrating, 0 on an empty database.
	From uint
	// Version is the version the database is at now.
	Version uint
}

// Changed reports whether RunUp applied at least one migration.
func (status Status) Changed() bool { return status.From != status.Version }

/*
RunUp applies all pending up migrations.

A database left dirty by an interrupted run is refused; it needs an operator.

Parameters:
  - dsn: A libpq-compatible DSN or postgres:// URL
  - migrationsPath: Filesystem path to the migrations directory
  - logger: Structured logger for migration events

Returns:
  - Status: Versions before and after
  - error: Initialization, dirty state or a failed migration
*/
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) (Status, error) {
	migrator, err := migrate.New("file://"+migrationsPath, PgxURL(dsn))
	if err != nil {
		return Status{}, fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer func() {
		sourceError, dbError := migrator.Close()
		if sourceError != nil {
			logger.Error("migration_source_close_failed", slog.Any("error", sourceError))
		}
		if dbError != nil {
			logger.Error("migration_db_close_failed", slog.Any("error", dbError))
		}
	}()

	migrator.Log = &migrateLogger{logger: logger}

	from, err := version(migrator)
	if err != nil {
		return Status{}, err
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return Status{}, fmt.Errorf("migration: up failed from version %d: %w", from, err)
	}

	to, err := version(migrator)
	if err != nil {
		return Status{}, err
	}

	status := Status{From: from, Version: to}
	logger.Info("migration_completed",
		slog.Uint64("from_version", uint64(status.From)),
		slog.Uint64("schema_version", uint64(status.Version)),
		slog.Bool("changed", status.Changed()),
	)
	return status, nil
}

func version(migrator *migrate.Migrate) (uint, error) {
	current, dirty, err := migrator.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("migration: failed to read version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("migration: database is dirty at version %d (manual intervention required)", current)
	}
	return current, nil
}

/*
Verify checks that the live schema is still at version want and not dirty.
Readiness calls it so a rollback or a half-applied migration run by another
deployment takes this instance out of rotation.

Parameters:
  - ctx: context.Context
  - db: postgres.Querier
  - want: uint (the version reported by RunUp)

Returns:
  - error: Read failure, dirty flag or version mismatch
*/
func Verify(ctx context.Context, db postgres.Querier, want uint) error {
	var (
		current int64
		dirty   bool
	)
	query := fmt.Sprintf("SELECT version, dirty FROM %s LIMIT 1", versionTable)
	err := db.QueryRow(ctx, query).Scan(&current, &dirty)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		current = 0
	case err != nil:
		return fmt.Errorf("migration: failed to read schema version: %w", err)
	}

	if dirty {
		return fmt.Errorf("migration: schema is dirty at version %d", current)
	}
	if current != int64(want) {
		return fmt.Errorf("migration: schema at version %d, expected %d", current, want)
	}
	return nil
}

// PgxURL rewrites a postgres:// or postgresql:// URL to the pgx5:// scheme
// the golang-migrate pgx driver registers. Other values pass through.
func PgxURL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(dsn, prefix); ok {
			return "pgx5://" + rest
		}
	}
	return dsn
}

// migrateLogger adapts golang-migrate's logger interface to slog.
type migrateLogger struct {
	logger *slog.Logger
}

// Printf implements migrate.Logger.
func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug("migration_step", slog.String("detail", strings.TrimSpace(fmt.Sprintf(format, args...))))
}

// Verbose implements migrate.Logger.
func (l *migrateLogger) Verbose() bool {
	return l.logger.Enabled(context.Background(), slog.LevelDebug)
}
