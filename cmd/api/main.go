// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the HelpHub HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Seed the default role profiles.
//  7. Wire the session store, authorization gate and HTTP handlers.
//  8. Start the session janitor and the HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/taibuivan/helphub/internal/api"
	"github.com/taibuivan/helphub/internal/platform/config"
	"github.com/taibuivan/helphub/internal/platform/constants"
	"github.com/taibuivan/helphub/internal/platform/middleware"
	"github.com/taibuivan/helphub/internal/platform/migration"
	pgstore "github.com/taibuivan/helphub/internal/platform/postgres"
	redisstore "github.com/taibuivan/helphub/internal/platform/redis"
	"github.com/taibuivan/helphub/internal/platform/telemetry"
	"github.com/taibuivan/helphub/internal/users/account"
	"github.com/taibuivan/helphub/internal/users/auth"
	"github.com/taibuivan/helphub/internal/users/authz"
	"github.com/taibuivan/helphub/internal/users/role"
	"github.com/taibuivan/helphub/internal/users/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "helphub"))
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "helphub"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Int("session_timeout_minutes", cfg.SessionTimeoutMinutes),
		slog.Bool("single_session_per_account", cfg.SingleSessionPerAccount),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Application context, cancelled on shutdown to stop background workers.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, cfg.StoreTimeout, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, cfg.StoreTimeout, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	schema, err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log)
	must(log, err, "run migrations")

	// ── 6. Telemetry ──────────────────────────────────────────────────────
	// Instruments bind to the global provider; exporters are configured by
	// the deployment.
	metrics, err := telemetry.NewMetrics(otel.Meter(telemetry.MeterName))
	must(log, err, "create metrics")

	// ── 7. Role Profiles ──────────────────────────────────────────────────
	roleService := role.NewService(
		role.NewRepository(pool),
		role.NewRedisCache(rdb, cfg.ProfileCacheTTL),
		cfg.StoreTimeout,
		log,
	)
	_, err = roleService.SeedDefaults(startupCtx)
	must(log, err, "seed role profiles")

	// ── 8. Accounts, Sessions & Gate ──────────────────────────────────────
	accountService := account.NewService(account.NewRepository(pool), roleService, account.Options{
		BcryptCost:   cfg.BcryptCost,
		StoreTimeout: cfg.StoreTimeout,
	}, log)

	sessionManager := session.NewManager(session.NewRepository(pool), accountService, session.Options{
		IdleTimeout:  cfg.SessionTimeout(),
		StoreTimeout: cfg.StoreTimeout,
	}, log)

	gate := authz.NewGate(sessionManager, metrics, log)
	guard := middleware.NewGuard(gate)

	authService := auth.NewService(accountService, sessionManager, gate, auth.Options{
		SingleSessionPerAccount: cfg.SingleSessionPerAccount,
	}, metrics, log)

	// ── 9. Background Workers ─────────────────────────────────────────────
	janitor := session.NewJanitor(sessionManager, cfg.SessionCleanupInterval, metrics, log)
	go janitor.Run(appCtx)

	// ── 10. Health handlers (wired with real dependency checkers) ─────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
		CheckSchema: func() error {
			return migration.Verify(context.Background(), pool, schema.Version)
		},
		SchemaVersion: schema.Version,
	}, log)

	// ── 11. HTTP Server ───────────────────────────────────────────────────
	loginLimit := middleware.RateLimitWith(appCtx, constants.LoginRateLimitRPS, constants.LoginRateLimitBurst)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, cfg.SessionTimeout(), loginLimit),
		Accounts:  account.NewHandler(accountService, guard),
		Profiles:  role.NewHandler(roleService, guard),
	}

	server := api.NewServer(appCtx, cfg, log, handlers)

	// ── 12. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Stop the janitor and rate limiter sweeps before draining requests.
	appCancel()

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
