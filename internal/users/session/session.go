// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session issues, validates and ends login sessions.

# Lifecycle

	ACTIVE ──(idle for the timeout)──▶ EXPIRED ──(end / cleanup)──▶ ENDED
	ACTIVE ──(logout / login elsewhere / credential rotation)──▶ ENDED

ENDED is terminal. Sessions are soft-ended everywhere; the rows are only
removed when the owning account is deleted.

# Tokens

A token is 32 random bytes, hex-encoded. The store keeps only its SHA-256
digest, so the raw token exists solely in the login response and in the
client.
*/
package session

import (
	"time"

	"github.com/taibuivan/helphub/internal/users/account"
)

// State is the lifecycle state of a session at a given instant.
type State string

const (
	StateActive  State = "ACTIVE"
	StateExpired State = "EXPIRED"
	StateEnded   State = "ENDED"
)

// Session is an authenticated login of one account.
type Session struct {
	ID int64 `json:"-"`

	// Token is the raw bearer token. It is only set on a freshly created session.
	Token     string `json:"-"`
	TokenHash string `json:"-"`

	AccountID    int64      `json:"account_id"`
	LoginTime    time.Time  `json:"login_time"`
	LastActivity time.Time  `json:"last_activity"`
	Active       bool       `json:"active"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`

	// Owner is the hydrated account the session belongs to.
	Owner *account.Account `json:"-"`
}

// IsValidAt reports whether the session is active and was used less than
// timeout before now. The boundary itself is already expired.
func (session *Session) IsValidAt(now time.Time, timeout time.Duration) bool {
	if !session.Active {
		return false
	}
	return now.Sub(session.LastActivity) < timeout
}

// State reports the lifecycle state at now.
func (session *Session) State(now time.Time, timeout time.Duration) State {
	switch {
	case !session.Active:
		return StateEnded
	case !session.IsValidAt(now, timeout):
		return StateExpired
	default:
		return StateActive
	}
}
