// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package postgres provides the process-wide PostgreSQL connection pool and
// the transaction helper used by multi-statement writes.
//
// # Architecture
//
// One [pgxpool.Pool] is created at startup and injected into every repository
// as a [DB]. Each repository call acquires a connection for a single round
// trip and pgx releases it on every exit path.
//
// The server side enforces the same store timeout as the services: every
// connection starts with statement_timeout and lock_timeout set to it, so a
// query that outlives its context is also cancelled by PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool settings for the HelpHub workload.
const (
	// maxConns covers the request path plus the session janitor.
	maxConns = 25
	// minConns keeps a warm set of connections to avoid cold-start latency.
	minConns = 5
	// maxConnLifetime ensures connections are periodically recycled.
	maxConnLifetime = 60 * time.Minute
	// maxConnIdleTime closes connections that have been idle too long.
	maxConnIdleTime = 10 * time.Minute
	// healthCheckPeriod is the frequency of background connection health checks.
	healthCheckPeriod = 1 * time.Minute
	// connectTimeout is the maximum time allowed to establish a new connection.
	connectTimeout = 5 * time.Second
	// pingTimeout is the maximum duration for a health check ping.
	pingTimeout = 2 * time.Second

	applicationName = "helphub"
)

/*
ParseConfig builds the pool configuration for dsn.

Parameters:
  - dsn: A libpq-compatible connection string or postgres:// URL
  - storeTimeout: Upper bound for one statement and for one lock wait

Returns:
  - *pgxpool.Config: Tuned configuration
  - error: Malformed DSN or non-positive timeout
*/
func ParseConfig(dsn string, storeTimeout time.Duration) (*pgxpool.Config, error) {
	if storeTimeout <= 0 {
		return nil, fmt.Errorf("postgres: store timeout must be positive, got %s", storeTimeout)
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid DSN: %w", err)
	}

	poolConfig.MaxConns = maxConns
	poolConfig.MinConns = minConns
	poolConfig.MaxConnLifetime = maxConnLifetime
	poolConfig.MaxConnIdleTime = maxConnIdleTime
	poolConfig.HealthCheckPeriod = healthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = connectTimeout

	// Startup parameters cost no extra round trip per connection.
	millis := strconv.FormatInt(storeTimeout.Milliseconds(), 10)
	runtime := poolConfig.ConnConfig.RuntimeParams
	runtime["application_name"] = applicationName
	runtime["statement_timeout"] = millis
	runtime["lock_timeout"] = millis

	return poolConfig, nil
}

// NewPool creates and validates a new PostgreSQL connection pool.
//
// # Parameters
//   - ctx: Context for the initial connection attempt.
//   - dsn: A libpq-compatible connection string or postgres:// URL.
//   - storeTimeout: Server-side statement and lock timeout.
//   - logger: Structured logger for pool-level events.
func NewPool(ctx context.Context, dsn string, storeTimeout time.Duration, logger *slog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := ParseConfig(dsn, storeTimeout)
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	if err := Ping(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	stats := pool.Stat()
	logger.Info("postgres_pool_connected",
		slog.String("host", poolConfig.ConnConfig.Host),
		slog.String("database", poolConfig.ConnConfig.Database),
		slog.Int("max_conns", int(stats.MaxConns())),
		slog.Int("total_conns", int(stats.TotalConns())),
		slog.Duration("statement_timeout", storeTimeout),
	)

	return pool, nil
}

// Ping verifies that the PostgreSQL connection pool is healthy.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("postgres: ping failed: %w", err)
	}

	return nil
}
