// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package usertest provides an in-memory store for the users packages' tests.

One [Store] holds profiles, accounts, sessions and the platform rows an
account owns, and exposes a typed view per repository contract. Rows are
copied on the way in and out, so tests observe persisted state only.
*/
package usertest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/helphub/internal/platform/apperr"
	"github.com/taibuivan/helphub/internal/platform/sec"
	"github.com/taibuivan/helphub/internal/users/account"
	"github.com/taibuivan/helphub/internal/users/role"
	"github.com/taibuivan/helphub/internal/users/session"
)

// Store is a goroutine-safe in-memory backend.
type Store struct {
	mu sync.Mutex

	profiles map[string]role.Snapshot
	accounts map[int64]account.Account
	sessions map[int64]session.Session

	requests   map[int64]int64 // request id -> PIN account id
	savedLists map[int64]*list
	shortlists map[int64]*list

	nextID int64
	fail   error
}

type list struct {
	ownerID  int64
	requests []int64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		profiles:   map[string]role.Snapshot{},
		accounts:   map[int64]account.Account{},
		sessions:   map[int64]session.Session{},
		requests:   map[int64]int64{},
		savedLists: map[int64]*list{},
		shortlists: map[int64]*list{},
	}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (store *Store) FailWith(err error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.fail = err
}

// Profiles returns the [role.Repository] view.
func (store *Store) Profiles() *Profiles { return &Profiles{store: store} }

// Accounts returns the [account.Repository] view.
func (store *Store) Accounts() *Accounts { return &Accounts{store: store} }

// Sessions returns the [session.Repository] view.
func (store *Store) Sessions() *Sessions { return &Sessions{store: store} }

// check returns the injected failure, if any. The caller holds the lock.
func (store *Store) check(ctx context.Context) error {
	if store.fail != nil {
		return store.fail
	}
	if err := ctx.Err(); err != nil {
		return apperr.Persistence(err)
	}
	return nil
}

func (store *Store) id() int64 {
	store.nextID++
	return store.nextID
}

// # Platform fixtures

// AddServiceRequest records a request authored by pinID and returns its id.
func (store *Store) AddServiceRequest(pinID int64) int64 {
	store.mu.Lock()
	defer store.mu.Unlock()
	id := store.id()
	store.requests[id] = pinID
	return id
}

// AddSavedList records a CSR saved list holding requestIDs.
func (store *Store) AddSavedList(ownerID int64, requestIDs ...int64) int64 {
	store.mu.Lock()
	defer store.mu.Unlock()
	id := store.id()
	store.savedLists[id] = &list{ownerID: ownerID, requests: append([]int64(nil), requestIDs...)}
	return id
}

// AddShortlist records a CSR shortlist holding requestIDs.
func (store *Store) AddShortlist(ownerID int64, requestIDs ...int64) int64 {
	store.mu.Lock()
	defer store.mu.Unlock()
	id := store.id()
	store.shortlists[id] = &list{ownerID: ownerID, requests: append([]int64(nil), requestIDs...)}
	return id
}

// Counts reports the number of stored rows per kind.
type Counts struct {
	Accounts, Sessions, Requests, SavedLists, Shortlists, ListItems int
}

// Counts returns the current row counts.
func (store *Store) Counts() Counts {
	store.mu.Lock()
	defer store.mu.Unlock()

	counts := Counts{
		Accounts:   len(store.accounts),
		Sessions:   len(store.sessions),
		Requests:   len(store.requests),
		SavedLists: len(store.savedLists),
		Shortlists: len(store.shortlists),
	}
	for _, l := range store.savedLists {
		counts.ListItems += len(l.requests)
	}
	for _, l := range store.shortlists {
		counts.ListItems += len(l.requests)
	}
	return counts
}

// SessionByID returns a copy of a stored session, including ended ones.
func (store *Store) SessionByID(id int64) (session.Session, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	stored, ok := store.sessions[id]
	return stored, ok
}

// # Profiles

// Profiles implements [role.Repository].
type Profiles struct{ store *Store }

var _ role.Repository = (*Profiles)(nil)

func (view *Profiles) FindByName(ctx context.Context, roleName string) (*role.Profile, error) {
	store := view.store
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(ctx); err != nil {
		return nil, err
	}

	snapshot, ok := store.profiles[roleName]
	if !ok {
		return nil, apperr.NotFound("Role profile")
	}
	return role.FromSnapshot(snapshot)
}

func (view *Profiles) List(ctx context.Context) ([]*role.Profile, error) {
	store := view.store
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(ctx); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(store.profiles))
	for name := range store.profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	profiles := make([]*role.Profile, 0, len(names))
	for _, name := range names {
		profile, err := role.FromSnapshot(store.profiles[name])
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func (view *Profiles) Create(ctx context.Context, profile *role.Profile) error {
	store := view.store
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(ctx); err != nil {
		return err
	}

	if _, ok := store.profiles[profile.Name()]; ok {
		return apperr.Conflict("Role profile already exists")
	}
	store.profiles[profile.Name()] = profile.Snapshot()
	return nil
}

func (view *Profiles) CreateIfMissing(ctx context.Context, profile *role.Profile) (bool, error) {
	store := view.store
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(ctx); err != nil {
		return false, err
	}

	if _, ok := store.profiles[profile.Name()]; ok {
		return false, nil
	}
	store.profiles[profile.Name()] = profile.Snapshot()
	return true, nil
}

func (view *Profiles) Update(ctx context.Context, currentName string, profile *role.Profile) error {
	store := view.store
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(ctx); err != nil {
		return err
	}

	if _, ok := store.profiles[currentName]; !ok {
		return apperr.NotFound("Role profile")
	}

	newName := profile.Name()
	if newName != currentName {
		if _, taken := store.profiles[newName]; taken {
			return apperr.Conflict("Role profile already exists")
		}
		delete(store.profiles, currentName)

		// ON UPDATE CASCADE
		for id, stored := range store.accounts {
			if stored.RoleName == currentName {
				stored.RoleName = newName
				store.accounts[id] = stored
			}
		}
	}
	store.profiles[newName] = profile.Snapshot()
	return nil
}

func (view *Profiles) Delete(ctx context.Context, roleName string) error {
	store := view.store
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(ctx); err != nil {
		return err
	}

	if _, ok := store.profiles[roleName]; !ok {
		return apperr.NotFound("Role profile")
	}
	for _, stored := range store.accounts {
		if stored.RoleName == roleName {
			return apperr.Conflict("Role profile is still referenced")
		}
	}
	delete(store.profiles, roleName)
	return nil
}

// # Accounts

// Accounts implements [account.Repository].
type Accounts struct{ store *Store }

var _ account.Repository = (*Accounts)(nil)

// detach returns a copy without the hydrated profile.
func detach(stored account.Account) *account.Account {
	stored.Profile = nil
	return &stored
}

func (view *Accounts) FindByID(ctx context.Context, id int64) (*account.Account, error) {
	store := view.store
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(ctx); err != nil {
		return nil, err
	}

	stored, ok := store.accounts[id]
	if !ok {
		return nil, apperr.NotFound("Account")
	}
	return detach(stored), nil
}

func (view *Accounts) FindByUsername(ctx context.Context, username string) (*account.Account, error) {
	store := view.store
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(ctx); err != nil {
		return nil, err
	}

	for _, stored := range store.accounts {
		if stored.Username == username {
			return detach(stored), nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (view *Accounts) List(ctx context.Context, limit, offset int) ([]*account.Account, int, error) {
	store := view.store
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(ctx); err != nil {
		return nil, 0, err
	}

	ids := make([]int64, 0, len(store.accounts))
	for id := range store.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	total := len(ids)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}

	page := make([]*account.Account, 0, end-offset)
	for _, id := range ids[offset:end] {
		page = append(page, detach(store.accounts[id]))
	}
	return page, total, nil
}

func (view *Accounts) Create(ctx context.Context, acc *account.Account) error {
	store := view.store
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(ctx); err != nil {
		return err
	}

	for _, stored := range store.accounts {
		if stored.Username == acc.Username {
			return apperr.Conflict("Account already exists")
		}
	}
	if _, ok := store.profiles[acc.RoleName]; !ok {
		return apperr.Conflict("Account is still referenced")
	}

	acc.ID = store.id()
	acc.CreatedAt = time.Now().UTC()
	store.accounts[acc.ID] = *detach(*acc)
	return nil
}

func (view *Accounts) Update(ctx context.Context, acc *account.Account, credential *sec.Credential) (int64, error) {
	store := view.store
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(ctx); err != nil {
		return 0, err
	}

	stored, ok := store.accounts[acc.ID]
	if !ok {
		return 0, apperr.NotFound("Account")
	}
	stored.DisplayName = acc.DisplayName
	stored.Email = acc.Email
	stored.RoleName = acc.RoleName
	stored.Active = acc.Active

	if credential == nil {
		store.accounts[acc.ID] = stored
		return 0, nil
	}

	stored.Credential = *credential
	store.accounts[acc.ID] = stored
	return store.deactivateWhere(time.Now().UTC(), func(s session.Session) bool { return s.AccountID == acc.ID }), nil
}

func (view *Accounts) Delete(ctx context.Context, id int64) (*account.DeletionReport, error) {
	store := view.store
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(ctx); err != nil {
		return nil, err
	}

	if _, ok := store.accounts[id]; !ok {
		return nil, apperr.NotFound("Account")
	}

	report := &account.DeletionReport{}
	authored := map[int64]bool{}
	for requestID, pinID := range store.requests {
		if pinID == id {
			authored[requestID] = true
		}
	}

	prune := func(lists map[int64]*list) int64 {
		var removed int64
		for listID, l := range lists {
			if l.ownerID == id {
				report.ListItems += int64(len(l.requests))
				delete(lists, listID)
				removed++
				continue
			}
			kept := l.requests[:0]
			for _, requestID := range l.requests {
				if authored[requestID] {
					report.ListItems++
					continue
				}
				kept = append(kept, requestID)
			}
			l.requests = kept
		}
		return removed
	}
	report.SavedLists = prune(store.savedLists)
	report.Shortlists = prune(store.shortlists)

	for requestID := range authored {
		delete(store.requests, requestID)
		report.Requests++
	}
	for sessionID, stored := range store.sessions {
		if stored.AccountID == id {
			delete(store.sessions, sessionID)
			report.Sessions++
		}
	}

	delete(store.accounts, id)
	return report, nil
}

// # Sessions

// Sessions implements [session.Repository].
type Sessions struct{ store *Store }

var _ session.Repository = (*Sessions)(nil)

func (view *Sessions) Create(ctx context.Context, s *session.Session) error {
	store := view.store
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(ctx); err != nil {
		return err
	}

	s.ID = store.id()
	stored := *s
	stored.Token = ""
	stored.Owner = nil
	store.sessions[s.ID] = stored
	return nil
}

func (view *Sessions) FindActiveByTokenHash(ctx context.Context, tokenHash string) (*session.Session, error) {
	store := view.store
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(ctx); err != nil {
		return nil, err
	}

	for _, stored := range store.sessions {
		if stored.Active && stored.TokenHash == tokenHash {
			found := stored
			return &found, nil
		}
	}
	return nil, apperr.NotFound("Session")
}

func (view *Sessions) TouchActivity(ctx context.Context, id int64, at time.Time) error {
	store := view.store
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(ctx); err != nil {
		return err
	}

	if stored, ok := store.sessions[id]; ok && stored.Active {
		stored.LastActivity = at
		store.sessions[id] = stored
	}
	return nil
}

func (view *Sessions) Deactivate(ctx context.Context, id int64, at time.Time) error {
	store := view.store
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(ctx); err != nil {
		return err
	}

	store.deactivateWhere(at, func(s session.Session) bool { return s.ID == id })
	return nil
}

func (view *Sessions) DeactivateAllForAccount(ctx context.Context, accountID int64, at time.Time) (int64, error) {
	store := view.store
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(ctx); err != nil {
		return 0, err
	}

	return store.deactivateWhere(at, func(s session.Session) bool { return s.AccountID == accountID }), nil
}

func (view *Sessions) DeactivateIdleSince(ctx context.Context, cutoff time.Time, at time.Time) (int64, error) {
	store := view.store
	store.mu.Lock()
	defer store.mu.Unlock()
	if err := store.check(ctx); err != nil {
		return 0, err
	}

	return store.deactivateWhere(at, func(s session.Session) bool { return !s.LastActivity.After(cutoff) }), nil
}

// deactivateWhere soft-ends matching active sessions. The caller holds the lock.
func (store *Store) deactivateWhere(at time.Time, match func(session.Session) bool) int64 {
	var ended int64
	for id, stored := range store.sessions {
		if !stored.Active || !match(stored) {
			continue
		}
		endedAt := at
		stored.Active = false
		stored.EndedAt = &endedAt
		store.sessions[id] = stored
		ended++
	}
	return ended
}
