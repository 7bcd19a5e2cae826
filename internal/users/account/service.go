// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/helphub/internal/platform/apperr"
	"github.com/taibuivan/helphub/internal/platform/constants"
	"github.com/taibuivan/helphub/internal/platform/sec"
	"github.com/taibuivan/helphub/internal/platform/validate"
	"github.com/taibuivan/helphub/internal/users/role"
	"github.com/taibuivan/helphub/pkg/username"
)

// # Contracts

// ProfileResolver returns the current role profile for a role name.
type ProfileResolver interface {
	Resolve(context context.Context, roleName string) (*role.Profile, error)
}

// Service implements account use cases.
type Service struct {
	repository   Repository
	profiles     ProfileResolver
	bcryptCost   int
	storeTimeout time.Duration
	logger       *slog.Logger
}

// Options tunes a [Service]. Zero values fall back to defaults.
type Options struct {
	BcryptCost   int
	StoreTimeout time.Duration
}

// NewService constructs a new [Service].
func NewService(repository Repository, profiles ProfileResolver, options Options, logger *slog.Logger) *Service {
	if options.BcryptCost == 0 {
		options.BcryptCost = sec.DefaultCost
	}
	if options.StoreTimeout <= 0 {
		options.StoreTimeout = constants.DefaultStoreTimeout
	}
	return &Service{
		repository:   repository,
		profiles:     profiles,
		bcryptCost:   options.BcryptCost,
		storeTimeout: options.StoreTimeout,
		logger:       logger,
	}
}

// # Lookup

/*
FindByID loads an account and hydrates its role profile.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *Account: Hydrated account
  - error: NOT_FOUND or PERSISTENCE_ERROR
*/
func (service *Service) FindByID(context context.Context, id int64) (*Account, error) {
	storeCtx, cancel := service.bounded(context)
	account, err := service.repository.FindByID(storeCtx, id)
	cancel()

	if err != nil {
		return nil, fmt.Errorf("account_service_find_failed: %w", err)
	}
	return service.hydrate(context, account)
}

// FindByUsername loads an account by username (canonicalised first).
func (service *Service) FindByUsername(context context.Context, rawUsername string) (*Account, error) {
	storeCtx, cancel := service.bounded(context)
	account, err := service.repository.FindByUsername(storeCtx, username.Canonical(rawUsername))
	cancel()

	if err != nil {
		return nil, fmt.Errorf("account_service_find_by_username_failed: %w", err)
	}
	return service.hydrate(context, account)
}

// List returns one page of accounts and the total count. Profiles are not hydrated.
func (service *Service) List(context context.Context, limit, offset int) ([]*Account, int, error) {
	storeCtx, cancel := service.bounded(context)
	defer cancel()

	accounts, total, err := service.repository.List(storeCtx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_list_failed: %w", err)
	}
	return accounts, total, nil
}

// # Lifecycle

// CreateInput holds the data needed to enrol an account.
type CreateInput struct {
	Username    string
	DisplayName string
	Email       string
	Secret      string
	RoleName    string
}

/*
Create validates, hashes and persists a new account.

Parameters:
  - context: context.Context
  - input: CreateInput

Returns:
  - *Account: Created account with its profile
  - error: VALIDATION_ERROR, CONFLICT or PERSISTENCE_ERROR
*/
func (service *Service) Create(context context.Context, input CreateInput) (*Account, error) {
	canonical := username.Canonical(input.Username)

	validator := &validate.Validator{}
	validator.Username("username", canonical).
		Secret("password", input.Secret).
		RoleName("role_name", input.RoleName).
		MaxLen("display_name", input.DisplayName, validate.MaxDisplayNameLength).
		Email("email", input.Email)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	profile, err := service.requireProfile(context, input.RoleName)
	if err != nil {
		return nil, err
	}

	// Uniqueness is enforced by the index too; this gives a friendlier message.
	storeCtx, cancel := service.bounded(context)
	_, err = service.repository.FindByUsername(storeCtx, canonical)
	cancel()
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}
	if !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("account_service_uniqueness_check_failed: %w", err)
	}

	credential, err := sec.NewCredentialWithCost(input.Secret, service.bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &Account{
		Username:    canonical,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Email:       strings.TrimSpace(input.Email),
		Credential:  credential,
		RoleName:    profile.Name(),
		Active:      true,
		Profile:     profile,
	}

	storeCtx, cancel = service.bounded(context)
	defer cancel()
	if err := service.repository.Create(storeCtx, account); err != nil {
		return nil, fmt.Errorf("account_service_create_failed: %w", err)
	}

	service.logger.InfoContext(context, "account_created",
		slog.Int64("account_id", account.ID),
		slog.String("role_name", account.RoleName),
	)
	return account, nil
}

// UpdateInput lists the fields to change. Nil fields are left untouched.
type UpdateInput struct {
	DisplayName *string
	Email       *string
	RoleName    *string
	Active      *bool
	Secret      *string
}

/*
Update changes mutable account fields. Rotating the secret ends every active
session of the account. A rejected update writes nothing.

Parameters:
  - context: context.Context
  - id: int64
  - input: UpdateInput

Returns:
  - *Account: Updated, hydrated account
  - error: VALIDATION_ERROR, NOT_FOUND or PERSISTENCE_ERROR
*/
func (service *Service) Update(context context.Context, id int64, input UpdateInput) (*Account, error) {
	account, err := service.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	if input.DisplayName != nil {
		validator.MaxLen("display_name", *input.DisplayName, validate.MaxDisplayNameLength)
		account.DisplayName = strings.TrimSpace(*input.DisplayName)
	}
	if input.Email != nil {
		validator.Email("email", *input.Email)
		account.Email = strings.TrimSpace(*input.Email)
	}
	if input.RoleName != nil {
		validator.RoleName("role_name", *input.RoleName)
	}
	if input.Secret != nil {
		validator.Secret("password", *input.Secret)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if input.RoleName != nil {
		profile, err := service.requireProfile(context, *input.RoleName)
		if err != nil {
			return nil, err
		}
		account.RoleName = profile.Name()
		account.Profile = profile
	}
	if input.Active != nil {
		account.Active = *input.Active
	}

	// Hash before writing so a rejected secret leaves the account untouched.
	var rotated *sec.Credential
	if input.Secret != nil {
		credential, err := sec.NewCredentialWithCost(*input.Secret, service.bcryptCost)
		if err != nil {
			return nil, err
		}
		rotated = &credential
	}

	storeCtx, cancel := service.bounded(context)
	ended, err := service.repository.Update(storeCtx, account, rotated)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	if rotated != nil {
		account.Credential = *rotated
		service.logger.InfoContext(context, "account_credential_rotated",
			slog.Int64("account_id", account.ID),
			slog.Int64("sessions_ended", ended),
		)
	}

	return account, nil
}

/*
Delete removes the account and everything it owns in a single transaction.

Returns:
  - *DeletionReport: Rows removed per kind
  - error: NOT_FOUND or PERSISTENCE_ERROR (nothing is removed)
*/
func (service *Service) Delete(context context.Context, id int64) (*DeletionReport, error) {
	storeCtx, cancel := service.bounded(context)
	defer cancel()

	report, err := service.repository.Delete(storeCtx, id)
	if err != nil {
		return nil, fmt.Errorf("account_service_delete_failed: %w", err)
	}

	service.logger.InfoContext(context, "account_deleted",
		slog.Int64("account_id", id),
		slog.Int64("sessions", report.Sessions),
		slog.Int64("service_requests", report.Requests),
		slog.Int64("list_items", report.ListItems),
	)
	return report, nil
}

// # Helpers

func (service *Service) bounded(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, service.storeTimeout)
}

// hydrate attaches the account's current role profile. A profile that no
// longer exists leaves Profile nil, which grants nothing.
func (service *Service) hydrate(context context.Context, account *Account) (*Account, error) {
	profile, err := service.profiles.Resolve(context, account.RoleName)
	if err != nil {
		if apperr.IsNotFound(err) {
			service.logger.WarnContext(context, "account_profile_missing",
				slog.Int64("account_id", account.ID),
				slog.String("role_name", account.RoleName),
			)
			return account, nil
		}
		return nil, fmt.Errorf("account_service_hydrate_failed: %w", err)
	}

	account.Profile = profile
	return account, nil
}

// requireProfile resolves a role name supplied by a caller.
func (service *Service) requireProfile(context context.Context, roleName string) (*role.Profile, error) {
	profile, err := service.profiles.Resolve(context, strings.TrimSpace(roleName))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, validate.RequiredError("role_name", "Unknown role profile")
		}
		return nil, fmt.Errorf("account_service_resolve_role_failed: %w", err)
	}
	return profile, nil
}
