// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/helphub/internal/platform/apperr"
	"github.com/taibuivan/helphub/internal/users/permission"
	"github.com/taibuivan/helphub/internal/users/role"
	"github.com/taibuivan/helphub/internal/users/usertest"
)

func newRedisCache(t *testing.T) (*role.RedisCache, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return role.NewRedisCache(client, time.Minute), server
}

func newService(t *testing.T, cache role.Cache) (*role.Service, *usertest.Store) {
	t.Helper()

	store := usertest.NewStore()
	service := role.NewService(store.Profiles(), cache, time.Second, usertest.Logger())
	_, err := service.SeedDefaults(context.Background())
	require.NoError(t, err)
	return service, store
}

func TestService_SeedDefaultsIsIdempotent(t *testing.T) {
	service, _ := newService(t, nil)

	created, err := service.SeedDefaults(context.Background())
	require.NoError(t, err)
	assert.Zero(t, created)

	profiles, err := service.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, profiles, len(permission.DefaultRoleNames()))
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	service, _ := newService(t, nil)

	profile, err := service.Create(ctx, role.CreateInput{
		RoleName:    "Auditor",
		Description: "Read-only statistics",
		Permissions: []string{"VIEW_STATISTICS"},
	})
	require.NoError(t, err)
	assert.True(t, profile.HasPermission(permission.ViewStatistics))

	_, err = service.Create(ctx, role.CreateInput{RoleName: "Auditor"})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))

	_, err = service.Create(ctx, role.CreateInput{RoleName: "Bad", Permissions: []string{"view_statistics"}})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation), "permissions are case-sensitive")

	_, err = service.Create(ctx, role.CreateInput{RoleName: " "})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestService_ResolveUsesAndRefreshesTheCache(t *testing.T) {
	ctx := context.Background()
	cache, server := newRedisCache(t)
	service, _ := newService(t, cache)

	first, err := service.Resolve(ctx, permission.RolePIN)
	require.NoError(t, err)
	assert.True(t, first.HasPermission(permission.ViewOwnRequests))
	assert.True(t, server.Exists("authz:profile:PIN"))

	perms := []string{"VIEW_STATISTICS"}
	_, err = service.Update(ctx, permission.RolePIN, role.UpdateInput{Permissions: &perms})
	require.NoError(t, err)
	assert.False(t, server.Exists("authz:profile:PIN"), "writes invalidate")

	second, err := service.Resolve(ctx, permission.RolePIN)
	require.NoError(t, err)
	assert.False(t, second.HasPermission(permission.ViewOwnRequests))
	assert.True(t, second.HasPermission(permission.ViewStatistics))
}

// interleavedProfiles runs onRead once, after the repository answered but
// before the caller sees the answer.
type interleavedProfiles struct {
	role.Repository
	onRead func()
}

func (profiles *interleavedProfiles) FindByName(ctx context.Context, roleName string) (*role.Profile, error) {
	profile, err := profiles.Repository.FindByName(ctx, roleName)
	if hook := profiles.onRead; hook != nil {
		profiles.onRead = nil
		hook()
	}
	return profile, err
}

func TestService_ResolveNeverCachesAProfileOlderThanAWrite(t *testing.T) {
	ctx := context.Background()
	cache, server := newRedisCache(t)

	store := usertest.NewStore()
	repository := &interleavedProfiles{Repository: store.Profiles()}
	service := role.NewService(repository, cache, time.Second, usertest.Logger())

	_, err := service.SeedDefaults(ctx)
	require.NoError(t, err)

	repository.onRead = func() {
		revoked := []string{}
		_, err := service.Update(ctx, permission.RolePIN, role.UpdateInput{Permissions: &revoked})
		require.NoError(t, err)
	}

	stale, err := service.Resolve(ctx, permission.RolePIN)
	require.NoError(t, err)
	assert.True(t, stale.HasPermission(permission.CreateOwnRequest), "the in-flight read predates the update")
	assert.False(t, server.Exists("authz:profile:PIN"), "the stale read is not cached")

	current, err := service.Resolve(ctx, permission.RolePIN)
	require.NoError(t, err)
	assert.Empty(t, current.Permissions())
	assert.True(t, server.Exists("authz:profile:PIN"))
}

func TestService_ResolveBypassesABrokenCache(t *testing.T) {
	cache, server := newRedisCache(t)
	service, _ := newService(t, cache)
	server.Close()

	profile, err := service.Resolve(context.Background(), permission.RolePIN)
	require.NoError(t, err)
	assert.Equal(t, permission.RolePIN, profile.Name())
}

func TestService_ResolveUnknown(t *testing.T) {
	service, _ := newService(t, nil)

	_, err := service.Resolve(context.Background(), "Ghost")
	assert.True(t, apperr.IsNotFound(err))
}

func TestService_RenameCascadesToHolders(t *testing.T) {
	ctx := context.Background()
	fixture := usertest.NewFixture(t)
	holder := fixture.CreateAccount(t, "csr.dave", "s3cret", permission.RoleCSRRep)

	newName := "Customer Rep"
	_, err := fixture.Roles.Update(ctx, permission.RoleCSRRep, role.UpdateInput{RoleName: &newName})
	require.NoError(t, err)

	reloaded, err := fixture.Accounts.FindByID(ctx, holder.ID)
	require.NoError(t, err)
	assert.Equal(t, newName, reloaded.RoleName)
	assert.True(t, reloaded.Can(permission.SaveRequest))

	taken := permission.RolePIN
	_, err = fixture.Roles.Update(ctx, newName, role.UpdateInput{RoleName: &taken})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}

func TestService_DeleteHeldProfileIsConflict(t *testing.T) {
	ctx := context.Background()
	fixture := usertest.NewFixture(t)
	fixture.CreateAccount(t, "pin.alice", "s3cret", permission.RolePIN)

	err := fixture.Roles.Delete(ctx, permission.RolePIN)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))

	require.NoError(t, fixture.Roles.Delete(ctx, permission.RolePlatformManager))
	_, err = fixture.Roles.Get(ctx, permission.RolePlatformManager)
	assert.True(t, apperr.IsNotFound(err))
}

func TestService_PersistenceFailurePropagates(t *testing.T) {
	service, store := newService(t, nil)
	store.FailWith(apperr.Persistence(errors.New("down")))

	_, err := service.Resolve(context.Background(), permission.RolePIN)
	assert.True(t, apperr.IsPersistence(err))
}
