// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz

import (
	"github.com/taibuivan/helphub/internal/platform/apperr"
	"github.com/taibuivan/helphub/internal/users/account"
	"github.com/taibuivan/helphub/internal/users/session"
)

// Reason classifies a [Decision].
type Reason string

const (
	ReasonGranted                Reason = "granted"
	ReasonAuthenticationRequired Reason = "authentication_required"
	ReasonInvalidSession         Reason = "invalid_session"
	ReasonSessionTimedOut        Reason = "session_timed_out"
	ReasonPermissionDenied       Reason = "permission_denied"
	ReasonNotOwner               Reason = "not_owner"
)

// Messages returned on the shared resolution path.
const (
	MessageGranted                = "access granted"
	MessageAuthenticationRequired = "authentication required"
	MessageInvalidSession         = "invalid or expired session"
	MessageSessionTimedOut        = "session timed out"
	MessageNotOwner               = "Access denied. You can only access your own resources"
	MessageNotOwnerNorPermitted   = "Access denied. Must be owner or have required permission"
)

// Decision is the outcome of one gate check. Denials are decisions, not errors.
type Decision struct {
	Authorized bool             `json:"authorized"`
	Account    *account.Account `json:"account,omitempty"`
	Message    string           `json:"message"`
	Reason     Reason           `json:"reason"`

	// Session is the resolved session. It is nil when resolution failed.
	Session *session.Session `json:"-"`
}

// Authenticated reports whether the token resolved to a live session, whatever
// the predicate said.
func (decision Decision) Authenticated() bool {
	switch decision.Reason {
	case ReasonAuthenticationRequired, ReasonInvalidSession, ReasonSessionTimedOut:
		return false
	}
	return decision.Account != nil
}

/*
Err maps a denial to the HTTP-facing error taxonomy.

Returns:
  - nil when authorized
  - UNAUTHORIZED (401) when no usable session was presented
  - FORBIDDEN (403) when the predicate failed
*/
func (decision Decision) Err() error {
	if decision.Authorized {
		return nil
	}
	switch decision.Reason {
	case ReasonAuthenticationRequired, ReasonInvalidSession, ReasonSessionTimedOut:
		return apperr.Unauthorized(decision.Message)
	default:
		return apperr.Forbidden(decision.Message)
	}
}

func deny(reason Reason, message string) Decision {
	return Decision{Authorized: false, Message: message, Reason: reason}
}
