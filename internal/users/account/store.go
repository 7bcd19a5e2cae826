// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"

	"github.com/taibuivan/helphub/internal/platform/sec"
)

// # Account Data Access

// Repository defines the persistence contract for accounts.
//
// Implementations return accounts without a hydrated Profile.
type Repository interface {

	/*
		FindByID retrieves an account by its id.

		Returns:
		  - *Account: Loaded account
		  - error: NOT_FOUND or PERSISTENCE_ERROR
	*/
	FindByID(context context.Context, id int64) (*Account, error)

	// FindByUsername retrieves an account by its canonical username.
	FindByUsername(context context.Context, username string) (*Account, error)

	// List returns one page of accounts ordered by id, plus the total count.
	List(context context.Context, limit, offset int) ([]*Account, int, error)

	// Create persists a new account and sets its ID and CreatedAt.
	Create(context context.Context, account *Account) error

	/*
		Update persists display name, email, role name and active flag. A
		non-nil credential also replaces the stored hash and soft-ends every
		active session of the account. Everything is written in one
		transaction or not at all.

		Returns:
		  - int64: Number of sessions ended
		  - error: NOT_FOUND or PERSISTENCE_ERROR
	*/
	Update(context context.Context, account *Account, credential *sec.Credential) (int64, error)

	/*
		Delete removes the account and, atomically, its sessions, saved lists,
		shortlists, authored service requests and every list item pointing at
		those requests.

		Returns:
		  - *DeletionReport: Rows removed per kind
		  - error: NOT_FOUND or PERSISTENCE_ERROR (nothing is removed)
	*/
	Delete(context context.Context, id int64) (*DeletionReport, error)
}
