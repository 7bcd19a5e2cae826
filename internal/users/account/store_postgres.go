// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/helphub/internal/platform/apperr"
	"github.com/taibuivan/helphub/internal/platform/database/schema"
	"github.com/taibuivan/helphub/internal/platform/dberr"
	"github.com/taibuivan/helphub/internal/platform/postgres"
	"github.com/taibuivan/helphub/internal/platform/sec"
)

const resourceAccount = "Account"

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db postgres.DB
}

// NewRepository creates a new PostgreSQL implementation of [Repository].
// db is usually the process-wide *pgxpool.Pool.
func NewRepository(db postgres.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var accountColumns = strings.Join(schema.UserAccount.Columns(), ", ")

func scanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	var passwordHash string

	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.DisplayName,
		&account.Email,
		&passwordHash,
		&account.RoleName,
		&account.Active,
		&account.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	credential, err := sec.CredentialFromHash(passwordHash)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("account %d has no credential: %w", account.ID, err))
	}
	account.Credential = credential

	return account, nil
}

func (repository *PostgresRepository) findOne(context context.Context, column string, value any) (*Account, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", accountColumns, schema.UserAccount.Table, column)

	account, err := scanAccount(repository.db.QueryRow(context, query, value))
	if err != nil {
		return nil, dberr.Wrap(err, resourceAccount)
	}
	return account, nil
}

// FindByID implements [Repository].
func (repository *PostgresRepository) FindByID(context context.Context, id int64) (*Account, error) {
	account, err := repository.findOne(context, schema.UserAccount.ID, id)
	if err != nil {
		return nil, fmt.Errorf("postgres_account_repo_find_by_id_failed: %w", err)
	}
	return account, nil
}

// FindByUsername implements [Repository].
func (repository *PostgresRepository) FindByUsername(context context.Context, username string) (*Account, error) {
	account, err := repository.findOne(context, schema.UserAccount.Username, username)
	if err != nil {
		return nil, fmt.Errorf("postgres_account_repo_find_by_username_failed: %w", err)
	}
	return account, nil
}

// List implements [Repository].
func (repository *PostgresRepository) List(context context.Context, limit, offset int) ([]*Account, int, error) {
	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", schema.UserAccount.Table)
	if err := repository.db.QueryRow(context, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_count_failed: %w", dberr.Wrap(err, resourceAccount))
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s LIMIT $1 OFFSET $2",
		accountColumns, schema.UserAccount.Table, schema.UserAccount.ID)

	rows, err := repository.db.Query(context, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_list_failed: %w", dberr.Wrap(err, resourceAccount))
	}
	defer rows.Close()

	accounts := make([]*Account, 0, limit)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_account_repo_list_scan_failed: %w", dberr.Wrap(err, resourceAccount))
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_account_repo_list_failed: %w", dberr.Wrap(err, resourceAccount))
	}
	return accounts, total, nil
}

/*
Create persists a new account into the users.account table.

Parameters:
  - context: context.Context
  - account: *Account (ID and CreatedAt are filled in)

Returns:
  - error: CONFLICT on a duplicate username, PERSISTENCE_ERROR otherwise
*/
func (repository *PostgresRepository) Create(context context.Context, account *Account) error {
	table := schema.UserAccount
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s, %s`,
		table.Table,
		table.Username, table.DisplayName, table.Email, table.PasswordHash, table.RoleName, table.IsActive,
		table.ID, table.CreatedAt)

	err := repository.db.QueryRow(context, query,
		account.Username,
		account.DisplayName,
		account.Email,
		account.Credential.Hash(),
		account.RoleName,
		account.Active,
	).Scan(&account.ID, &account.CreatedAt)

	if err != nil {
		return fmt.Errorf("postgres_account_repo_create_failed: %w", dberr.Wrap(err, resourceAccount))
	}
	return nil
}

/*
Update implements [Repository].

Parameters:
  - context: context.Context
  - account: *Account (ID selects the row)
  - credential: *sec.Credential (nil keeps the current hash and sessions)

Returns:
  - int64: Number of sessions ended by the rotation
  - error: NOT_FOUND or PERSISTENCE_ERROR
*/
func (repository *PostgresRepository) Update(context context.Context, account *Account, credential *sec.Credential) (int64, error) {
	var ended int64

	err := postgres.WithTx(context, repository.db, func(tx pgx.Tx) error {
		table := schema.UserAccount
		updateQuery := fmt.Sprintf("UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5, %s = NOW() WHERE %s = $1",
			table.Table,
			table.DisplayName, table.Email, table.RoleName, table.IsActive, table.UpdatedAt,
			table.ID)

		tag, err := tx.Exec(context, updateQuery,
			account.ID,
			account.DisplayName,
			account.Email,
			account.RoleName,
			account.Active,
		)
		if err != nil {
			return dberr.Wrap(err, resourceAccount)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound(resourceAccount)
		}

		if credential == nil {
			return nil
		}

		hashQuery := fmt.Sprintf("UPDATE %s SET %s = $2 WHERE %s = $1",
			table.Table, table.PasswordHash, table.ID)
		if _, err := tx.Exec(context, hashQuery, account.ID, credential.Hash()); err != nil {
			return dberr.Wrap(err, resourceAccount)
		}

		endQuery := fmt.Sprintf("UPDATE %s SET %s = FALSE, %s = NOW() WHERE %s = $1 AND %s",
			schema.UserSession.Table, schema.UserSession.IsActive, schema.UserSession.EndedAt,
			schema.UserSession.AccountID, schema.UserSession.IsActive)

		tag, err = tx.Exec(context, endQuery, account.ID)
		if err != nil {
			return dberr.Wrap(err, "Session")
		}
		ended = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("postgres_account_repo_update_failed: %w", dberr.Wrap(err, resourceAccount))
	}
	return ended, nil
}

// cascadeStep is one DELETE of the account deletion transaction.
type cascadeStep struct {
	query   string
	counter func(report *DeletionReport, rows int64)
}

func itemsInListsOwnedBy(items schema.PlatformCSRListItemTable, lists schema.PlatformCSRListTable) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s IN (SELECT %s FROM %s WHERE %s = $1)",
		items.Table, items.ListID, lists.ID, lists.Table, lists.CSRID)
}

func itemsReferencingRequestsOf(items schema.PlatformCSRListItemTable) string {
	requests := schema.PlatformServiceRequest
	return fmt.Sprintf("DELETE FROM %s WHERE %s IN (SELECT %s FROM %s WHERE %s = $1)",
		items.Table, items.ServiceRequestID, requests.ID, requests.Table, requests.PinID)
}

func listsOwnedBy(lists schema.PlatformCSRListTable) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = $1", lists.Table, lists.CSRID)
}

// cascadeSteps lists the dependent deletes in foreign-key order.
var cascadeSteps = []cascadeStep{
	{itemsInListsOwnedBy(schema.PlatformSavedListItem, schema.PlatformSavedList), addListItems},
	{itemsInListsOwnedBy(schema.PlatformShortlistItem, schema.PlatformShortlist), addListItems},
	{itemsReferencingRequestsOf(schema.PlatformSavedListItem), addListItems},
	{itemsReferencingRequestsOf(schema.PlatformShortlistItem), addListItems},
	{listsOwnedBy(schema.PlatformSavedList), func(report *DeletionReport, rows int64) { report.SavedLists = rows }},
	{listsOwnedBy(schema.PlatformShortlist), func(report *DeletionReport, rows int64) { report.Shortlists = rows }},
	{
		fmt.Sprintf("DELETE FROM %s WHERE %s = $1", schema.PlatformServiceRequest.Table, schema.PlatformServiceRequest.PinID),
		func(report *DeletionReport, rows int64) { report.Requests = rows },
	},
	{
		fmt.Sprintf("DELETE FROM %s WHERE %s = $1", schema.UserSession.Table, schema.UserSession.AccountID),
		func(report *DeletionReport, rows int64) { report.Sessions = rows },
	},
}

func addListItems(report *DeletionReport, rows int64) { report.ListItems += rows }

/*
Delete removes the account and everything it owns in one transaction.

The account row is locked first, so a login racing the deletion cannot attach
a new session to it.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *DeletionReport: Rows removed per kind
  - error: NOT_FOUND or PERSISTENCE_ERROR
*/
func (repository *PostgresRepository) Delete(context context.Context, id int64) (*DeletionReport, error) {
	report := &DeletionReport{}

	err := postgres.WithTx(context, repository.db, func(tx pgx.Tx) error {
		lockQuery := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 FOR UPDATE",
			schema.UserAccount.ID, schema.UserAccount.Table, schema.UserAccount.ID)

		var lockedID int64
		if err := tx.QueryRow(context, lockQuery, id).Scan(&lockedID); err != nil {
			return dberr.Wrap(err, resourceAccount)
		}

		for _, step := range cascadeSteps {
			tag, err := tx.Exec(context, step.query, id)
			if err != nil {
				return dberr.Wrap(err, resourceAccount)
			}
			step.counter(report, tag.RowsAffected())
		}

		deleteQuery := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", schema.UserAccount.Table, schema.UserAccount.ID)
		if _, err := tx.Exec(context, deleteQuery, id); err != nil {
			return dberr.Wrap(err, resourceAccount)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("postgres_account_repo_delete_failed: %w", dberr.Wrap(err, resourceAccount))
	}
	return report, nil
}
