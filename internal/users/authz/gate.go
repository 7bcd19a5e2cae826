// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package authz is the authorization gate: it turns a bearer token and a
requirement into a [Decision].

# Pipeline

Every check shares one resolution path:

 1. No token: deny, authentication required.
 2. Unknown or ended session: deny, invalid or expired session.
 3. Idle past the timeout: end the session, deny, session timed out.
 4. Refresh the session's last activity.
 5. Apply the check's predicate to the session owner.

Checks are therefore not read-only: every call that reaches step 4 extends
the sliding window. Storage failures are returned as errors and never turned
into an authorized decision.
*/
package authz

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/helphub/internal/platform/telemetry"
	"github.com/taibuivan/helphub/internal/users/account"
	"github.com/taibuivan/helphub/internal/users/permission"
	"github.com/taibuivan/helphub/internal/users/session"
)

// Sessions is the part of [session.Manager] the gate relies on.
type Sessions interface {
	FindByToken(context context.Context, token string) (*session.Session, error)
	IsValid(session *session.Session) bool
	UpdateActivity(context context.Context, session *session.Session) error
	End(context context.Context, session *session.Session) error
}

// Check names, used as the metric and log attribute.
const (
	CheckAuthenticate          = "authenticate"
	CheckPermission            = "permission"
	CheckAnyPermission         = "any_permission"
	CheckAllPermissions        = "all_permissions"
	CheckOwnership             = "ownership"
	CheckOwnershipOrPermission = "ownership_or_permission"
)

// Gate evaluates authorization checks.
type Gate struct {
	sessions Sessions
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

// NewGate constructs a [Gate]. metrics may be nil.
func NewGate(sessions Sessions, metrics *telemetry.Metrics, logger *slog.Logger) *Gate {
	return &Gate{sessions: sessions, metrics: metrics, logger: logger}
}

// predicate decides on a resolved owner. It returns the denial reason and
// message when the owner is refused.
type predicate func(owner *account.Account) (bool, Reason, string)

// # Checks

// Authenticate runs the pipeline without a predicate.
func (gate *Gate) Authenticate(context context.Context, token string) (Decision, error) {
	return gate.evaluate(context, CheckAuthenticate, token, nil)
}

/*
CheckPermission authorizes when the owner's role grants action.

Parameters:
  - context: context.Context
  - token: string (raw bearer token, may be empty)
  - action: permission.Permission

Returns:
  - Decision: Outcome, including denials
  - error: PERSISTENCE_ERROR only
*/
func (gate *Gate) CheckPermission(context context.Context, token string, action permission.Permission) (Decision, error) {
	return gate.evaluate(context, CheckPermission, token, func(owner *account.Account) (bool, Reason, string) {
		if owner.Can(action) {
			return true, "", ""
		}
		return false, ReasonPermissionDenied, "Access denied. Required permission: " + action.String()
	})
}

// CheckAnyPermission authorizes when the owner's role grants at least one of
// actions. An empty list authorizes.
func (gate *Gate) CheckAnyPermission(context context.Context, token string, actions []permission.Permission) (Decision, error) {
	if len(actions) == 0 {
		gate.logger.WarnContext(context, "authz_empty_allow_list", slog.String("check", CheckAnyPermission))
	}

	return gate.evaluate(context, CheckAnyPermission, token, func(owner *account.Account) (bool, Reason, string) {
		if owner.Profile.HasAnyPermission(actions) {
			return true, "", ""
		}
		return false, ReasonPermissionDenied, "Access denied. Requires any of: " + joinPermissions(actions)
	})
}

// CheckAllPermissions authorizes when the owner's role grants every action.
func (gate *Gate) CheckAllPermissions(context context.Context, token string, actions []permission.Permission) (Decision, error) {
	return gate.evaluate(context, CheckAllPermissions, token, func(owner *account.Account) (bool, Reason, string) {
		if owner.Profile.HasAllPermissions(actions) {
			return true, "", ""
		}
		return false, ReasonPermissionDenied, "Access denied. Requires all of: " + joinPermissions(actions)
	})
}

// VerifyOwnership authorizes only the owner of the resource.
func (gate *Gate) VerifyOwnership(context context.Context, token string, ownerID int64) (Decision, error) {
	return gate.evaluate(context, CheckOwnership, token, func(owner *account.Account) (bool, Reason, string) {
		if owner.Owns(ownerID) {
			return true, "", ""
		}
		return false, ReasonNotOwner, MessageNotOwner
	})
}

// VerifyOwnershipOrPermission authorizes the owner of the resource, or anyone
// whose role grants action.
func (gate *Gate) VerifyOwnershipOrPermission(context context.Context, token string, ownerID int64, action permission.Permission) (Decision, error) {
	return gate.evaluate(context, CheckOwnershipOrPermission, token, func(owner *account.Account) (bool, Reason, string) {
		if owner.Owns(ownerID) || owner.Can(action) {
			return true, "", ""
		}
		return false, ReasonPermissionDenied, MessageNotOwnerNorPermitted
	})
}

// # Pipeline

func (gate *Gate) evaluate(context context.Context, check string, token string, allow predicate) (Decision, error) {
	decision, err := gate.resolve(context, check, token, allow)
	if err != nil {
		gate.logger.ErrorContext(context, "authz_check_failed",
			slog.String("check", check),
			slog.Any("error", err),
		)
		return Decision{}, err
	}

	gate.metrics.RecordDecision(context, check, string(decision.Reason))
	if !decision.Authorized {
		attrs := []any{slog.String("check", check), slog.String("reason", string(decision.Reason))}
		if decision.Account != nil {
			attrs = append(attrs, slog.Int64("account_id", decision.Account.ID))
		}
		gate.logger.InfoContext(context, "authz_denied", attrs...)
	}
	return decision, nil
}

func (gate *Gate) resolve(context context.Context, check string, token string, allow predicate) (Decision, error) {
	if token == "" {
		return deny(ReasonAuthenticationRequired, MessageAuthenticationRequired), nil
	}

	current, err := gate.sessions.FindByToken(context, token)
	if err != nil {
		if session.IsNotFound(err) {
			return deny(ReasonInvalidSession, MessageInvalidSession), nil
		}
		return Decision{}, fmt.Errorf("authz_%s_lookup_failed: %w", check, err)
	}

	if !gate.sessions.IsValid(current) {
		if err := gate.sessions.End(context, current); err != nil {
			return Decision{}, fmt.Errorf("authz_%s_end_expired_failed: %w", check, err)
		}
		return deny(ReasonSessionTimedOut, MessageSessionTimedOut), nil
	}

	if err := gate.sessions.UpdateActivity(context, current); err != nil {
		return Decision{}, fmt.Errorf("authz_%s_touch_failed: %w", check, err)
	}

	owner := current.Owner
	decision := Decision{Account: owner, Session: current}

	if allow != nil {
		if ok, reason, message := allow(owner); !ok {
			decision.Reason = reason
			decision.Message = message
			return decision, nil
		}
	}

	decision.Authorized = true
	decision.Reason = ReasonGranted
	decision.Message = MessageGranted
	return decision, nil
}

func joinPermissions(actions []permission.Permission) string {
	names := make([]string, len(actions))
	for i, action := range actions {
		names[i] = action.String()
	}
	return strings.Join(names, ", ")
}
