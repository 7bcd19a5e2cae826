// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/helphub/internal/platform/apperr"
	"github.com/taibuivan/helphub/internal/users/account"
	"github.com/taibuivan/helphub/internal/users/auth"
	"github.com/taibuivan/helphub/internal/users/authz"
	"github.com/taibuivan/helphub/internal/users/permission"
	"github.com/taibuivan/helphub/internal/users/usertest"
)

type harness struct {
	*usertest.Fixture
	gate    *authz.Gate
	service *auth.Service
}

func newHarness(t *testing.T, single bool) *harness {
	fixture := usertest.NewFixture(t)
	gate := authz.NewGate(fixture.Sessions, nil, usertest.Logger())
	service := auth.NewService(fixture.Accounts, fixture.Sessions, gate,
		auth.Options{SingleSessionPerAccount: single}, nil, usertest.Logger())
	return &harness{Fixture: fixture, gate: gate, service: service}
}

func TestLogin_PINEndToEnd(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.CreateAccount(t, "pin.alice", "correct horse", permission.RolePIN)

	result, err := h.service.Login(ctx, "pin.alice", "correct horse")
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Len(t, result.Token, 64)
	assert.Equal(t, "pin.alice", result.Account.Username)

	allowed, err := h.gate.CheckPermission(ctx, result.Token, permission.ViewOwnRequests)
	require.NoError(t, err)
	assert.True(t, allowed.Authorized)

	denied, err := h.gate.CheckPermission(ctx, result.Token, permission.DeleteAnyRequest)
	require.NoError(t, err)
	assert.False(t, denied.Authorized)
	assert.Equal(t, authz.ReasonPermissionDenied, denied.Reason)
	assert.Contains(t, denied.Message, "DELETE_ANY_REQUEST")
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.CreateAccount(t, "pin.alice", "correct horse", permission.RolePIN)
	inactive := h.CreateAccount(t, "pin.bob", "correct horse", permission.RolePIN)

	off := false
	_, err := h.Accounts.Update(ctx, inactive.ID, account.UpdateInput{Active: &off})
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		secret   string
	}{
		{"unknown username", "nobody", "correct horse"},
		{"wrong secret", "pin.alice", "battery staple"},
		{"inactive account", "pin.bob", "correct horse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := h.service.Login(ctx, tt.username, tt.secret)
			require.NoError(t, err)
			assert.False(t, result.Success)
			assert.Empty(t, result.Token)
			assert.Nil(t, result.Account)
			assert.Equal(t, auth.MessageInvalidCredentials, result.Message)
		})
	}
}

func TestLogin_UsernameIsCanonicalised(t *testing.T) {
	h := newHarness(t, true)
	h.CreateAccount(t, "pin.alice", "correct horse", permission.RolePIN)

	result, err := h.service.Login(context.Background(), "  PIN.Alice ", "correct horse")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestLogin_MissingInput(t *testing.T) {
	h := newHarness(t, true)

	result, err := h.service.Login(context.Background(), " ", "secret")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	assert.Equal(t, auth.MessageMissingCredentials, result.Message)

	_, err = h.service.Login(context.Background(), "pin.alice", "")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestLogin_SingleSessionPerAccount(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.CreateAccount(t, "pin.alice", "correct horse", permission.RolePIN)

	first, err := h.service.Login(ctx, "pin.alice", "correct horse")
	require.NoError(t, err)
	second, err := h.service.Login(ctx, "pin.alice", "correct horse")
	require.NoError(t, err)

	stale, err := h.gate.Authenticate(ctx, first.Token)
	require.NoError(t, err)
	assert.Equal(t, authz.ReasonInvalidSession, stale.Reason)

	live, err := h.gate.Authenticate(ctx, second.Token)
	require.NoError(t, err)
	assert.True(t, live.Authorized)
}

func TestLogin_ConcurrentSessionsWhenAllowed(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	h.CreateAccount(t, "pin.alice", "correct horse", permission.RolePIN)

	first, err := h.service.Login(ctx, "pin.alice", "correct horse")
	require.NoError(t, err)
	_, err = h.service.Login(ctx, "pin.alice", "correct horse")
	require.NoError(t, err)

	still, err := h.gate.Authenticate(ctx, first.Token)
	require.NoError(t, err)
	assert.True(t, still.Authorized)
}

func TestLogin_PersistenceFailure(t *testing.T) {
	h := newHarness(t, true)
	h.CreateAccount(t, "pin.alice", "correct horse", permission.RolePIN)
	h.Store.FailWith(apperr.Persistence(errors.New("timeout")))

	result, err := h.service.Login(context.Background(), "pin.alice", "correct horse")
	assert.True(t, apperr.IsPersistence(err))
	assert.False(t, result.Success)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.CreateAccount(t, "pin.alice", "correct horse", permission.RolePIN)

	login, err := h.service.Login(ctx, "pin.alice", "correct horse")
	require.NoError(t, err)

	result, err := h.service.Logout(ctx, login.Token)
	require.NoError(t, err)
	assert.True(t, result.Success)

	again, err := h.service.Logout(ctx, login.Token)
	require.NoError(t, err)
	assert.False(t, again.Success)
	assert.Equal(t, "invalid or expired session", again.Message)

	_, err = h.service.Logout(ctx, "")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestValidateSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	alice := h.CreateAccount(t, "pin.alice", "correct horse", permission.RolePIN)

	login, err := h.service.Login(ctx, "pin.alice", "correct horse")
	require.NoError(t, err)

	valid, err := h.service.ValidateSession(ctx, login.Token)
	require.NoError(t, err)
	assert.True(t, valid.Valid)
	assert.Equal(t, alice.ID, valid.Account.ID)

	_, err = h.Sessions.EndAllForAccount(ctx, alice.ID)
	require.NoError(t, err)

	invalid, err := h.service.ValidateSession(ctx, login.Token)
	require.NoError(t, err)
	assert.False(t, invalid.Valid)
	assert.Equal(t, "invalid or expired session", invalid.Message)

	anonymous, err := h.service.ValidateSession(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "authentication required", anonymous.Message)
}

func TestCredentialRotationEndsSessions(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	alice := h.CreateAccount(t, "pin.alice", "correct horse", permission.RolePIN)

	login, err := h.service.Login(ctx, "pin.alice", "correct horse")
	require.NoError(t, err)

	secret := "battery staple"
	_, err = h.Accounts.Update(ctx, alice.ID, account.UpdateInput{Secret: &secret})
	require.NoError(t, err)

	decision, err := h.gate.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, authz.ReasonInvalidSession, decision.Reason)

	old, err := h.service.Login(ctx, "pin.alice", "correct horse")
	require.NoError(t, err)
	assert.False(t, old.Success)

	fresh, err := h.service.Login(ctx, "pin.alice", "battery staple")
	require.NoError(t, err)
	assert.True(t, fresh.Success)
}
