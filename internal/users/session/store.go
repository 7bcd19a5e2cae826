// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"time"
)

// # Session Data Access

// Repository defines the persistence contract for sessions.
//
// Every method is a single round trip. Failures are PERSISTENCE_ERROR.
type Repository interface {

	// Create persists a new session and sets its ID.
	Create(context context.Context, session *Session) error

	/*
		FindActiveByTokenHash returns the active session with the given digest.

		Returns:
		  - *Session: Session without Owner
		  - error: NOT_FOUND when no active row matches
	*/
	FindActiveByTokenHash(context context.Context, tokenHash string) (*Session, error)

	// TouchActivity sets lastactivity of an active session.
	TouchActivity(context context.Context, id int64, at time.Time) error

	// Deactivate soft-ends one session. Ending an ended session is a no-op.
	Deactivate(context context.Context, id int64, at time.Time) error

	// DeactivateAllForAccount soft-ends every active session of an account.
	DeactivateAllForAccount(context context.Context, accountID int64, at time.Time) (int64, error)

	// DeactivateIdleSince soft-ends every active session last used before cutoff.
	DeactivateIdleSince(context context.Context, cutoff time.Time, at time.Time) (int64, error)
}
