// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/helphub/internal/platform/apperr"
	"github.com/taibuivan/helphub/internal/platform/constants"
	"github.com/taibuivan/helphub/internal/platform/sec"
	"github.com/taibuivan/helphub/internal/users/account"
)

// ErrNotFound is returned when a token does not resolve to a usable session.
var ErrNotFound = apperr.NotFound("Session")

// OwnerResolver loads the account a session belongs to.
type OwnerResolver interface {
	FindByID(context context.Context, id int64) (*account.Account, error)
}

// Options tunes a [Manager]. Zero values fall back to defaults.
type Options struct {
	IdleTimeout  time.Duration
	StoreTimeout time.Duration

	// Now is the clock. Tests inject a fixed one.
	Now func() time.Time
}

// Manager implements the session store operations on top of a [Repository].
type Manager struct {
	repository   Repository
	owners       OwnerResolver
	idleTimeout  time.Duration
	storeTimeout time.Duration
	now          func() time.Time
	logger       *slog.Logger
}

// NewManager constructs a new [Manager].
func NewManager(repository Repository, owners OwnerResolver, options Options, logger *slog.Logger) *Manager {
	if options.IdleTimeout <= 0 {
		options.IdleTimeout = constants.DefaultSessionTimeout
	}
	if options.StoreTimeout <= 0 {
		options.StoreTimeout = constants.DefaultStoreTimeout
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	return &Manager{
		repository:   repository,
		owners:       owners,
		idleTimeout:  options.IdleTimeout,
		storeTimeout: options.StoreTimeout,
		now:          options.Now,
		logger:       logger,
	}
}

// Timeout returns the configured idle timeout.
func (manager *Manager) Timeout() time.Duration {
	return manager.idleTimeout
}

// # Lifecycle

/*
Create opens a new session for owner.

The returned session carries the raw token; only its digest is stored.

Parameters:
  - context: context.Context
  - owner: *account.Account

Returns:
  - *Session: Active session with Token set
  - error: PERSISTENCE_ERROR
*/
func (manager *Manager) Create(context context.Context, owner *account.Account) (*Session, error) {
	token, err := sec.GenerateSecureToken(constants.SessionTokenBytes)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("session_token_generation_failed: %w", err))
	}

	now := manager.now()
	session := &Session{
		Token:        token,
		TokenHash:    sec.HashToken(token),
		AccountID:    owner.ID,
		LoginTime:    now,
		LastActivity: now,
		Active:       true,
		Owner:        owner,
	}

	storeCtx, cancel := manager.bounded(context)
	defer cancel()

	if err := manager.repository.Create(storeCtx, session); err != nil {
		return nil, fmt.Errorf("session_create_failed: %w", err)
	}
	return session, nil
}

/*
FindByToken resolves a raw token to its active session with the owner hydrated.

A session whose owner was removed or deactivated is treated as absent.

Returns:
  - *Session: Active session
  - error: [ErrNotFound] or PERSISTENCE_ERROR
*/
func (manager *Manager) FindByToken(context context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	storeCtx, cancel := manager.bounded(context)
	session, err := manager.repository.FindActiveByTokenHash(storeCtx, sec.HashToken(token))
	cancel()

	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session_find_failed: %w", err)
	}

	owner, err := manager.owners.FindByID(context, session.AccountID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("session_owner_lookup_failed: %w", err)
	}

	if !owner.Active {
		manager.logger.InfoContext(context, "session_owner_inactive",
			slog.Int64("session_id", session.ID),
			slog.Int64("account_id", owner.ID),
		)
		return nil, ErrNotFound
	}

	session.Owner = owner
	return session, nil
}

// IsValid reports whether session is active and within the idle timeout.
func (manager *Manager) IsValid(session *Session) bool {
	return session.IsValidAt(manager.now(), manager.idleTimeout)
}

// UpdateActivity stamps the session as used now.
func (manager *Manager) UpdateActivity(context context.Context, session *Session) error {
	now := manager.now()

	storeCtx, cancel := manager.bounded(context)
	defer cancel()

	if err := manager.repository.TouchActivity(storeCtx, session.ID, now); err != nil {
		return fmt.Errorf("session_update_activity_failed: %w", err)
	}
	session.LastActivity = now
	return nil
}

// End soft-ends the session. Ending an ended session is a no-op.
func (manager *Manager) End(context context.Context, session *Session) error {
	if !session.Active {
		return nil
	}
	now := manager.now()

	storeCtx, cancel := manager.bounded(context)
	defer cancel()

	if err := manager.repository.Deactivate(storeCtx, session.ID, now); err != nil {
		return fmt.Errorf("session_end_failed: %w", err)
	}
	session.Active = false
	session.EndedAt = &now
	return nil
}

// EndAllForAccount soft-ends every active session of an account and returns the count.
func (manager *Manager) EndAllForAccount(context context.Context, accountID int64) (int64, error) {
	storeCtx, cancel := manager.bounded(context)
	defer cancel()

	ended, err := manager.repository.DeactivateAllForAccount(storeCtx, accountID, manager.now())
	if err != nil {
		return 0, fmt.Errorf("session_end_all_failed: %w", err)
	}
	return ended, nil
}

/*
CleanupExpired soft-ends every active session idle for at least timeout.

Parameters:
  - context: context.Context
  - timeout: time.Duration (non-positive uses the configured timeout)

Returns:
  - int64: Number of sessions ended
  - error: PERSISTENCE_ERROR
*/
func (manager *Manager) CleanupExpired(context context.Context, timeout time.Duration) (int64, error) {
	if timeout <= 0 {
		timeout = manager.idleTimeout
	}
	now := manager.now()

	storeCtx, cancel := manager.bounded(context)
	defer cancel()

	ended, err := manager.repository.DeactivateIdleSince(storeCtx, now.Add(-timeout), now)
	if err != nil {
		return 0, fmt.Errorf("session_cleanup_failed: %w", err)
	}
	return ended, nil
}

// IsNotFound reports whether err means the token resolved to nothing usable.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || apperr.IsNotFound(err)
}

func (manager *Manager) bounded(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, manager.storeTimeout)
}
