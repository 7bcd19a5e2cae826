// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package telemetry records HelpHub's security counters through OpenTelemetry.

The instruments are created from an injected [metric.Meter]. Production wiring
uses the global meter provider; tests use an SDK provider with a manual reader.
A nil [*Metrics] is a valid no-op recorder.
*/
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of every HelpHub instrument.
const MeterName = "github.com/taibuivan/helphub"

// Instrument names.
const (
	MetricAuthzDecisions = "helphub.authz.decisions"
	MetricSessionsSwept  = "helphub.sessions.swept"
	MetricLoginAttempts  = "helphub.auth.logins"
)

// Metrics groups the counters used by the authorization core.
type Metrics struct {
	decisions metric.Int64Counter
	swept     metric.Int64Counter
	logins    metric.Int64Counter
}

// NewMetrics creates the counters on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	decisions, err := meter.Int64Counter(MetricAuthzDecisions,
		metric.WithDescription("Authorization gate decisions by check and reason"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create %s: %w", MetricAuthzDecisions, err)
	}

	swept, err := meter.Int64Counter(MetricSessionsSwept,
		metric.WithDescription("Idle sessions ended by the background janitor"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create %s: %w", MetricSessionsSwept, err)
	}

	logins, err := meter.Int64Counter(MetricLoginAttempts,
		metric.WithDescription("Login attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("telemetry: create %s: %w", MetricLoginAttempts, err)
	}

	return &Metrics{decisions: decisions, swept: swept, logins: logins}, nil
}

// RecordDecision counts one gate decision.
func (metrics *Metrics) RecordDecision(ctx context.Context, check, reason string) {
	if metrics == nil {
		return
	}
	metrics.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("reason", reason),
	))
}

// RecordSweep counts sessions ended by one cleanup pass.
func (metrics *Metrics) RecordSweep(ctx context.Context, ended int64) {
	if metrics == nil || ended <= 0 {
		return
	}
	metrics.swept.Add(ctx, ended)
}

// RecordLogin counts one login attempt.
func (metrics *Metrics) RecordLogin(ctx context.Context, outcome string) {
	if metrics == nil {
		return
	}
	metrics.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
