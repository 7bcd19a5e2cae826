// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/helphub/internal/platform/apperr"
	"github.com/taibuivan/helphub/internal/users/account"
	"github.com/taibuivan/helphub/internal/users/permission"
	"github.com/taibuivan/helphub/internal/users/role"
	"github.com/taibuivan/helphub/internal/users/session"
	"github.com/taibuivan/helphub/internal/users/usertest"
)

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	fixture := usertest.NewFixture(t)

	created, err := fixture.Accounts.Create(ctx, account.CreateInput{
		Username:    "  Pin.Alice ",
		DisplayName: "Alice",
		Email:       "alice@example.com",
		Secret:      "correct horse",
		RoleName:    permission.RolePIN,
	})
	require.NoError(t, err)

	assert.Equal(t, "pin.alice", created.Username)
	assert.True(t, created.Active)
	assert.NotZero(t, created.ID)
	assert.True(t, created.Credential.Verify("correct horse"))
	assert.True(t, created.Can(permission.CreateOwnRequest))
}

func TestService_CreateRejections(t *testing.T) {
	ctx := context.Background()
	fixture := usertest.NewFixture(t)
	fixture.CreateAccount(t, "pin.alice", "s3cret", permission.RolePIN)

	tests := []struct {
		name  string
		input account.CreateInput
		code  string
	}{
		{"missing username", account.CreateInput{Secret: "x", RoleName: permission.RolePIN}, apperr.CodeValidation},
		{"invalid username", account.CreateInput{Username: "a b", Secret: "x", RoleName: permission.RolePIN}, apperr.CodeValidation},
		{"missing secret", account.CreateInput{Username: "pin.bob", RoleName: permission.RolePIN}, apperr.CodeValidation},
		{"bad email", account.CreateInput{Username: "pin.bob", Secret: "x", Email: "nope", RoleName: permission.RolePIN}, apperr.CodeValidation},
		{"unknown role", account.CreateInput{Username: "pin.bob", Secret: "x", RoleName: "Wizard"}, apperr.CodeValidation},
		{"taken username", account.CreateInput{Username: "PIN.ALICE", Secret: "x", RoleName: permission.RolePIN}, apperr.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fixture.Accounts.Create(ctx, tt.input)
			assert.True(t, apperr.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	fixture := usertest.NewFixture(t)
	alice := fixture.CreateAccount(t, "pin.alice", "s3cret", permission.RolePIN)

	name := "Alice Liddell"
	roleName := permission.RoleCSRRep
	updated, err := fixture.Accounts.Update(ctx, alice.ID, account.UpdateInput{DisplayName: &name, RoleName: &roleName})
	require.NoError(t, err)
	assert.Equal(t, name, updated.DisplayName)
	assert.True(t, updated.Can(permission.SaveRequest))
	assert.False(t, updated.Can(permission.CreateOwnRequest))

	unknown := "Wizard"
	_, err = fixture.Accounts.Update(ctx, alice.ID, account.UpdateInput{RoleName: &unknown})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = fixture.Accounts.Update(ctx, 9999, account.UpdateInput{DisplayName: &name})
	assert.True(t, apperr.IsNotFound(err))
}

func TestService_UpdateWithRejectedSecretWritesNothing(t *testing.T) {
	ctx := context.Background()
	fixture := usertest.NewFixture(t)
	alice := fixture.CreateAccount(t, "pin.alice", "s3cret", permission.RolePIN)
	token := fixture.Login(t, alice)

	inactive := false
	admin := permission.RoleUserAdmin
	tooLong := strings.Repeat("x", 80)
	_, err := fixture.Accounts.Update(ctx, alice.ID, account.UpdateInput{
		Active:   &inactive,
		RoleName: &admin,
		Secret:   &tooLong,
	})
	require.True(t, apperr.HasCode(err, apperr.CodeValidation), "got %v", err)

	reloaded, err := fixture.Accounts.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Active)
	assert.Equal(t, permission.RolePIN, reloaded.RoleName)
	assert.True(t, reloaded.Credential.Verify("s3cret"))

	_, err = fixture.Sessions.FindByToken(ctx, token)
	assert.NoError(t, err, "sessions survive a rejected rotation")
}

func TestService_UpdateRotatesSecretAndEndsSessions(t *testing.T) {
	ctx := context.Background()
	fixture := usertest.NewFixture(t)
	alice := fixture.CreateAccount(t, "pin.alice", "s3cret", permission.RolePIN)
	token := fixture.Login(t, alice)

	name := "Alice"
	secret := "n3w-s3cret"
	updated, err := fixture.Accounts.Update(ctx, alice.ID, account.UpdateInput{DisplayName: &name, Secret: &secret})
	require.NoError(t, err)
	assert.True(t, updated.Credential.Verify(secret))

	reloaded, err := fixture.Accounts.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, name, reloaded.DisplayName)
	assert.True(t, reloaded.Credential.Verify(secret))

	_, err = fixture.Sessions.FindByToken(ctx, token)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

// missingProfiles resolves no role at all.
type missingProfiles struct{}

func (missingProfiles) Resolve(context.Context, string) (*role.Profile, error) {
	return nil, apperr.NotFound("Role profile")
}

func TestService_FindToleratesMissingProfile(t *testing.T) {
	ctx := context.Background()
	fixture := usertest.NewFixture(t)
	dave := fixture.CreateAccount(t, "mgr.dave", "s3cret", permission.RolePlatformManager)

	service := account.NewService(fixture.Store.Accounts(), missingProfiles{}, account.Options{}, usertest.Logger())

	found, err := service.FindByID(ctx, dave.ID)
	require.NoError(t, err)
	assert.Nil(t, found.Profile)
	assert.False(t, found.Can(permission.CreateCategory), "a missing profile grants nothing")
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	fixture := usertest.NewFixture(t)
	for _, name := range []string{"pin.a", "pin.b", "pin.c"} {
		fixture.CreateAccount(t, name, "s3cret", permission.RolePIN)
	}

	page, total, err := fixture.Accounts.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 2)

	rest, _, err := fixture.Accounts.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestService_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	fixture := usertest.NewFixture(t)
	pin := fixture.CreateAccount(t, "pin.alice", "s3cret", permission.RolePIN)
	csr := fixture.CreateAccount(t, "csr.dave", "s3cret", permission.RoleCSRRep)
	other := fixture.CreateAccount(t, "pin.bob", "s3cret", permission.RolePIN)

	token := fixture.Login(t, pin)
	fixture.Login(t, pin)
	otherToken := fixture.Login(t, other)

	ownRequest := fixture.Store.AddServiceRequest(pin.ID)
	otherRequest := fixture.Store.AddServiceRequest(other.ID)
	fixture.Store.AddSavedList(csr.ID, ownRequest, otherRequest)
	fixture.Store.AddShortlist(csr.ID, ownRequest)

	report, err := fixture.Accounts.Delete(ctx, pin.ID)
	require.NoError(t, err)

	assert.Equal(t, &account.DeletionReport{
		Sessions:  2,
		ListItems: 2,
		Requests:  1,
	}, report)

	counts := fixture.Store.Counts()
	assert.Equal(t, 2, counts.Accounts)
	assert.Equal(t, 1, counts.Sessions)
	assert.Equal(t, 1, counts.Requests)
	assert.Equal(t, 1, counts.ListItems, "only the other PIN's request stays listed")

	_, err = fixture.Sessions.FindByToken(ctx, token)
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = fixture.Sessions.FindByToken(ctx, otherToken)
	assert.NoError(t, err)

	_, err = fixture.Accounts.FindByID(ctx, pin.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestService_DeleteCSRRemovesTheirLists(t *testing.T) {
	ctx := context.Background()
	fixture := usertest.NewFixture(t)
	pin := fixture.CreateAccount(t, "pin.alice", "s3cret", permission.RolePIN)
	csr := fixture.CreateAccount(t, "csr.dave", "s3cret", permission.RoleCSRRep)

	request := fixture.Store.AddServiceRequest(pin.ID)
	fixture.Store.AddSavedList(csr.ID, request)
	fixture.Store.AddShortlist(csr.ID, request)

	report, err := fixture.Accounts.Delete(ctx, csr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.SavedLists)
	assert.Equal(t, int64(1), report.Shortlists)
	assert.Equal(t, int64(2), report.ListItems)

	counts := fixture.Store.Counts()
	assert.Zero(t, counts.SavedLists)
	assert.Zero(t, counts.Shortlists)
	assert.Equal(t, 1, counts.Requests)
}

func TestService_DeleteFailureRemovesNothing(t *testing.T) {
	ctx := context.Background()
	fixture := usertest.NewFixture(t)
	pin := fixture.CreateAccount(t, "pin.alice", "s3cret", permission.RolePIN)
	fixture.Login(t, pin)

	fixture.Store.FailWith(apperr.Persistence(errors.New("deadlock")))
	_, err := fixture.Accounts.Delete(ctx, pin.ID)
	assert.True(t, apperr.IsPersistence(err))

	fixture.Store.FailWith(nil)
	counts := fixture.Store.Counts()
	assert.Equal(t, 1, counts.Accounts)
	assert.Equal(t, 1, counts.Sessions)
}
