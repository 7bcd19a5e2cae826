// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account manages HelpHub accounts: identity, credential and the role
profile an account holds.

# Architecture

  - Entity: [Account], hydrated with its current [role.Profile].
  - Repository: [Repository], implemented on PostgreSQL. Deleting an account is
    a single transaction that also removes everything the account owns.
  - Service: validation, username canonicalisation and profile hydration.
*/
package account

import (
	"time"

	"github.com/taibuivan/helphub/internal/platform/sec"
	"github.com/taibuivan/helphub/internal/users/permission"
	"github.com/taibuivan/helphub/internal/users/role"
)

// # Domain Entities

// Account is a principal that can log in and own resources.
type Account struct {
	ID          int64          `json:"id"`
	Username    string         `json:"username"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Credential  sec.Credential `json:"-"`
	RoleName    string         `json:"role_name"`
	Active      bool           `json:"active"`
	CreatedAt   time.Time      `json:"created_at"`

	// Profile is the shared role profile. It is nil when the account was
	// loaded without hydration.
	Profile *role.Profile `json:"-"`
}

// Can reports whether the account's role grants action.
func (account *Account) Can(action permission.Permission) bool {
	return account.Profile.HasPermission(action)
}

// Owns reports whether the account is the owner identified by ownerID.
func (account *Account) Owns(ownerID int64) bool {
	return account.ID == ownerID
}

// DeletionReport counts the rows removed by an account deletion.
type DeletionReport struct {
	Sessions   int64 `json:"sessions"`
	ListItems  int64 `json:"list_items"`
	SavedLists int64 `json:"saved_lists"`
	Shortlists int64 `json:"shortlists"`
	Requests   int64 `json:"service_requests"`
}
