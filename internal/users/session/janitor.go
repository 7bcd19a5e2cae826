// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/taibuivan/helphub/internal/platform/telemetry"
)

// Janitor periodically ends idle sessions so the active set stays small.
type Janitor struct {
	manager  *Manager
	interval time.Duration
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

// NewJanitor constructs a [Janitor]. metrics may be nil.
func NewJanitor(manager *Manager, interval time.Duration, metrics *telemetry.Metrics, logger *slog.Logger) *Janitor {
	return &Janitor{manager: manager, interval: interval, metrics: metrics, logger: logger}
}

// Run sweeps on every tick until ctx is cancelled.
func (janitor *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(janitor.interval)
	defer ticker.Stop()

	janitor.logger.Info("session_janitor_started", slog.Duration("interval", janitor.interval))

	for {
		select {
		case <-ctx.Done():
			janitor.logger.Info("session_janitor_stopped")
			return
		case <-ticker.C:
			janitor.Sweep(ctx)
		}
	}
}

// Sweep runs one cleanup pass. Failures are logged and retried on the next tick.
func (janitor *Janitor) Sweep(ctx context.Context) int64 {
	ended, err := janitor.manager.CleanupExpired(ctx, 0)
	if err != nil {
		janitor.logger.ErrorContext(ctx, "session_sweep_failed", slog.Any("error", err))
		return 0
	}

	janitor.metrics.RecordSweep(ctx, ended)
	if ended > 0 {
		janitor.logger.InfoContext(ctx, "session_sweep_completed", slog.Int64("ended", ended))
	}
	return ended
}
