// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/helphub/internal/platform/constants"
	"github.com/taibuivan/helphub/internal/users/permission"
)

// Service manages role profiles and resolves them for authorization checks.
//
// Profile resolution reads the cache first, then the repository. Every write
// invalidates the cache, so a permission change is visible to all holders on
// their next check.
type Service struct {
	repository   Repository
	cache        Cache
	storeTimeout time.Duration
	logger       *slog.Logger
}

// NewService constructs a [Service]. cache may be nil.
func NewService(repository Repository, cache Cache, storeTimeout time.Duration, logger *slog.Logger) *Service {
	if storeTimeout <= 0 {
		storeTimeout = constants.DefaultStoreTimeout
	}
	return &Service{
		repository:   repository,
		cache:        cache,
		storeTimeout: storeTimeout,
		logger:       logger,
	}
}

// # Resolution

/*
Resolve returns the current profile for roleName.

Cache failures are logged and bypassed. Repository failures propagate. A
profile read from the repository is cached only under the generation seen
before the read, so a write that lands in between is never shadowed.

Parameters:
  - context: context.Context
  - roleName: string

Returns:
  - *Profile: The current profile
  - error: NOT_FOUND or PERSISTENCE_ERROR
*/
func (service *Service) Resolve(context context.Context, roleName string) (*Profile, error) {
	cacheable := false
	var generation int64

	if service.cache != nil {
		cacheCtx, cancel := service.bounded(context)
		cached, seen, err := service.cache.Get(cacheCtx, roleName)
		cancel()

		switch {
		case err != nil:
			service.logger.WarnContext(context, "profile_cache_read_failed",
				slog.String("role_name", roleName), slog.Any("error", err))
		case cached != nil:
			return cached, nil
		default:
			cacheable, generation = true, seen
		}
	}

	profile, err := service.Get(context, roleName)
	if err != nil {
		return nil, err
	}

	if cacheable {
		cacheCtx, cancel := service.bounded(context)
		stored, err := service.cache.Set(cacheCtx, profile, generation)
		cancel()

		if err != nil {
			service.logger.WarnContext(context, "profile_cache_write_failed",
				slog.String("role_name", roleName), slog.Any("error", err))
		} else if !stored {
			service.logger.DebugContext(context, "profile_cache_write_superseded",
				slog.String("role_name", roleName), slog.Int64("generation", generation))
		}
	}

	return profile, nil
}

// # Administration

// Get reads a profile straight from the repository.
func (service *Service) Get(context context.Context, roleName string) (*Profile, error) {
	storeCtx, cancel := service.bounded(context)
	defer cancel()

	profile, err := service.repository.FindByName(storeCtx, roleName)
	if err != nil {
		return nil, fmt.Errorf("role_service_get_failed: %w", err)
	}
	return profile, nil
}

// List returns every profile.
func (service *Service) List(context context.Context) ([]*Profile, error) {
	storeCtx, cancel := service.bounded(context)
	defer cancel()

	profiles, err := service.repository.List(storeCtx)
	if err != nil {
		return nil, fmt.Errorf("role_service_list_failed: %w", err)
	}
	return profiles, nil
}

// CreateInput holds the data for a new profile.
type CreateInput struct {
	RoleName    string
	Description string
	Permissions []string
}

// Create validates and persists a new profile.
func (service *Service) Create(context context.Context, input CreateInput) (*Profile, error) {
	perms, err := permission.ParseList(input.Permissions)
	if err != nil {
		return nil, err
	}

	profile, err := NewProfile(input.RoleName, input.Description, perms...)
	if err != nil {
		return nil, err
	}

	storeCtx, cancel := service.bounded(context)
	defer cancel()

	if err := service.repository.Create(storeCtx, profile); err != nil {
		return nil, fmt.Errorf("role_service_create_failed: %w", err)
	}

	service.logger.InfoContext(context, "profile_created",
		slog.String("role_name", profile.Name()),
		slog.Int("permissions", len(perms)),
	)
	return profile, nil
}

// UpdateInput lists the fields to change. A nil field is left untouched; a
// non-nil empty Permissions clears the set.
type UpdateInput struct {
	RoleName    *string
	Description *string
	Permissions *[]string
}

/*
Update renames, re-describes, or replaces the permissions of a profile.

Parameters:
  - context: context.Context
  - roleName: string (current name)
  - input: UpdateInput

Returns:
  - *Profile: The updated profile
  - error: VALIDATION_ERROR, NOT_FOUND, CONFLICT or PERSISTENCE_ERROR
*/
func (service *Service) Update(context context.Context, roleName string, input UpdateInput) (*Profile, error) {
	profile, err := service.Get(context, roleName)
	if err != nil {
		return nil, err
	}

	// Validate everything before touching the loaded profile.
	var perms []permission.Permission
	if input.Permissions != nil {
		if perms, err = permission.ParseList(*input.Permissions); err != nil {
			return nil, err
		}
	}
	if input.RoleName != nil {
		if err := profile.Rename(*input.RoleName); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		profile.SetDescription(*input.Description)
	}
	if input.Permissions != nil {
		profile.ReplacePermissions(perms...)
	}

	storeCtx, cancel := service.bounded(context)
	defer cancel()

	if err := service.repository.Update(storeCtx, roleName, profile); err != nil {
		return nil, fmt.Errorf("role_service_update_failed: %w", err)
	}

	service.invalidate(context, roleName, profile.Name())
	service.logger.InfoContext(context, "profile_updated",
		slog.String("role_name", roleName),
		slog.String("new_role_name", profile.Name()),
	)
	return profile, nil
}

// Delete removes a profile that no account holds.
func (service *Service) Delete(context context.Context, roleName string) error {
	storeCtx, cancel := service.bounded(context)
	defer cancel()

	if err := service.repository.Delete(storeCtx, roleName); err != nil {
		return fmt.Errorf("role_service_delete_failed: %w", err)
	}

	service.invalidate(context, roleName)
	service.logger.InfoContext(context, "profile_deleted", slog.String("role_name", roleName))
	return nil
}

// SeedDefaults inserts the default role profiles that do not exist yet and
// returns how many were written. Existing profiles are never modified.
func (service *Service) SeedDefaults(context context.Context) (int, error) {
	created := 0

	for _, name := range permission.DefaultRoleNames() {
		profile, err := NewProfile(name, permission.DefaultDescription(name), permission.DefaultPermissions(name)...)
		if err != nil {
			return created, err
		}

		storeCtx, cancel := service.bounded(context)
		inserted, err := service.repository.CreateIfMissing(storeCtx, profile)
		cancel()

		if err != nil {
			return created, fmt.Errorf("role_service_seed_failed: %w", err)
		}
		if inserted {
			created++
		}
	}

	service.logger.InfoContext(context, "profiles_seeded", slog.Int("created", created))
	return created, nil
}

// # Helpers

func (service *Service) bounded(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, service.storeTimeout)
}

// invalidate drops cache entries after a write. A failure leaves a stale entry
// until its TTL runs out, so it is logged at error level.
func (service *Service) invalidate(context context.Context, roleNames ...string) {
	if service.cache == nil {
		return
	}

	cacheCtx, cancel := service.bounded(context)
	defer cancel()

	if err := service.cache.Invalidate(cacheCtx, roleNames...); err != nil {
		service.logger.ErrorContext(context, "profile_cache_invalidate_failed",
			slog.Any("role_names", roleNames), slog.Any("error", err))
	}
}
