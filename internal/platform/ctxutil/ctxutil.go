// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil provides helpers for interacting with values stored in [context.Context].
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/helphub/internal/platform/ctxkey"
)

// # Request Tracing

// WithRequestID returns a new context with the provided request ID attached.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID retrieves the request ID from the context.
// Returns an empty string if not found.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger retrieves the logger from the context.
// If no logger is found, it returns the global default logger.
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}

// # Identity & Access

// Principal is the slice of an authenticated account that request-scoped code
// needs. It is kept free of domain types so any package can read it.
type Principal struct {
	AccountID   int64
	Username    string
	RoleName    string
	Permissions []string
}

// Has reports whether the principal's role granted the named permission at
// the time the request was authorized.
func (principal *Principal) Has(name string) bool {
	if principal == nil {
		return false
	}
	for _, granted := range principal.Permissions {
		if granted == name {
			return true
		}
	}
	return false
}

// WithPrincipal returns a new context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, ctxkey.KeyAccount, principal)
}

// GetPrincipal retrieves the [*Principal] from the context, or nil when anonymous.
func GetPrincipal(ctx context.Context) *Principal {
	principal, ok := ctx.Value(ctxkey.KeyAccount).(*Principal)
	if !ok {
		return nil
	}
	return principal
}

// WithSessionToken stores the raw bearer token presented with the request.
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxkey.KeySessionToken, token)
}

// GetSessionToken returns the bearer token, or "" when none was presented.
func GetSessionToken(ctx context.Context) string {
	token, _ := ctx.Value(ctxkey.KeySessionToken).(string)
	return token
}
