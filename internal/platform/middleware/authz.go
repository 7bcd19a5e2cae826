// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/taibuivan/helphub/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/helphub/internal/platform/request"
	"github.com/taibuivan/helphub/internal/platform/respond"
	"github.com/taibuivan/helphub/internal/users/account"
	"github.com/taibuivan/helphub/internal/users/authz"
	"github.com/taibuivan/helphub/internal/users/permission"
)

// Gate is the part of [authz.Gate] the HTTP guard relies on.
//
// Defining it here lets tests drive the guard with a stub.
type Gate interface {
	CheckPermission(context context.Context, token string, action permission.Permission) (authz.Decision, error)
	VerifyOwnershipOrPermission(context context.Context, token string, ownerID int64, action permission.Permission) (authz.Decision, error)
}

// Guard gates routes on the authorization gate. It implements [permission.Guard].
type Guard struct {
	gate Gate
}

var _ permission.Guard = (*Guard)(nil)

// NewGuard constructs a [Guard].
func NewGuard(gate Gate) *Guard {
	return &Guard{gate: gate}
}

// Require admits the request when the caller's role grants action.
//
// # Flow
//  1. Extract the bearer token (a malformed header is 401).
//  2. Ask the gate.
//  3. Deny with 401/403 from [authz.Decision.Err], or store the principal and continue.
func (guard *Guard) Require(action permission.Permission) func(http.Handler) http.Handler {
	return guard.middleware(func(request *http.Request, token string) (authz.Decision, error) {
		return guard.gate.CheckPermission(request.Context(), token, action)
	})
}

// RequireOwnerOr admits the owner of the addressed resource, or a caller whose
// role grants action. An owner that cannot be extracted from the request is
// reported before the gate runs.
func (guard *Guard) RequireOwnerOr(action permission.Permission, owner permission.OwnerFunc) func(http.Handler) http.Handler {
	return guard.middleware(func(request *http.Request, token string) (authz.Decision, error) {
		ownerID, err := owner(request)
		if err != nil {
			return authz.Decision{}, err
		}
		return guard.gate.VerifyOwnershipOrPermission(request.Context(), token, ownerID, action)
	})
}

type decide func(request *http.Request, token string) (authz.Decision, error)

func (guard *Guard) middleware(check decide) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Token Extraction ───────────────────────────────────────────
			token, err := requestutil.BearerToken(request)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 2. Gate Decision ──────────────────────────────────────────────
			decision, err := check(request, token)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}
			if !decision.Authorized {
				ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "request_denied",
					slog.String("reason", string(decision.Reason)))
				respond.Error(writer, request, decision.Err())
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			principal := principalOf(decision.Account)
			if holder := principalHolderFrom(request.Context()); holder != nil {
				holder.set(principal)
			}

			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			ctx = ctxutil.WithSessionToken(ctx, token)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

func principalOf(acc *account.Account) *ctxutil.Principal {
	perms := acc.Profile.Permissions()
	names := make([]string, len(perms))
	for i, perm := range perms {
		names[i] = perm.String()
	}

	return &ctxutil.Principal{
		AccountID:   acc.ID,
		Username:    acc.Username,
		RoleName:    acc.RoleName,
		Permissions: names,
	}
}

// # Principal Holder

// principalHolder carries the principal back up to [StructuredLogger], which
// wraps the guard and therefore never sees the guard's derived context.
type principalHolder struct {
	mu        sync.Mutex
	principal *ctxutil.Principal
}

type holderKey struct{}

func withPrincipalHolder(ctx context.Context) (context.Context, *principalHolder) {
	holder := &principalHolder{}
	return context.WithValue(ctx, holderKey{}, holder), holder
}

func principalHolderFrom(ctx context.Context) *principalHolder {
	holder, _ := ctx.Value(holderKey{}).(*principalHolder)
	return holder
}

func (holder *principalHolder) set(principal *ctxutil.Principal) {
	holder.mu.Lock()
	defer holder.mu.Unlock()
	holder.principal = principal
}

func (holder *principalHolder) get() *ctxutil.Principal {
	holder.mu.Lock()
	defer holder.mu.Unlock()
	return holder.principal
}
