// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package usertest

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/helphub/internal/users/account"
	"github.com/taibuivan/helphub/internal/users/role"
	"github.com/taibuivan/helphub/internal/users/session"
)

// IdleTimeout is the session timeout every fixture uses.
const IdleTimeout = 30 * time.Minute

// Clock is a manually advanced time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at a fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)}
}

// Now returns the current fixture time.
func (clock *Clock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

// Advance moves the clock forward.
func (clock *Clock) Advance(d time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(d)
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Fixture wires the users services on one in-memory [Store].
type Fixture struct {
	Store    *Store
	Clock    *Clock
	Roles    *role.Service
	Accounts *account.Service
	Sessions *session.Manager
}

// NewFixture seeds the default role profiles and returns the wired services.
func NewFixture(t testing.TB) *Fixture {
	t.Helper()

	store := NewStore()
	clock := NewClock()
	logger := Logger()

	roles := role.NewService(store.Profiles(), nil, time.Second, logger)
	_, err := roles.SeedDefaults(context.Background())
	require.NoError(t, err)

	accounts := account.NewService(store.Accounts(), roles, account.Options{
		BcryptCost:   bcrypt.MinCost,
		StoreTimeout: time.Second,
	}, logger)

	sessions := session.NewManager(store.Sessions(), accounts, session.Options{
		IdleTimeout:  IdleTimeout,
		StoreTimeout: time.Second,
		Now:          clock.Now,
	}, logger)

	return &Fixture{Store: store, Clock: clock, Roles: roles, Accounts: accounts, Sessions: sessions}
}

// CreateAccount enrols an active account with the given role.
func (fixture *Fixture) CreateAccount(t testing.TB, username, secret, roleName string) *account.Account {
	t.Helper()

	created, err := fixture.Accounts.Create(context.Background(), account.CreateInput{
		Username: username,
		Secret:   secret,
		RoleName: roleName,
	})
	require.NoError(t, err)
	return created
}

// Login opens a session for acc and returns its raw token.
func (fixture *Fixture) Login(t testing.TB, acc *account.Account) string {
	t.Helper()

	created, err := fixture.Sessions.Create(context.Background(), acc)
	require.NoError(t, err)
	return created.Token
}
