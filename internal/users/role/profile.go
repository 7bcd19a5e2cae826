// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package role implements role profiles: a named, described set of permissions
that accounts hold.

A [Profile] is shared by reference. Every account hydrated with the same
*Profile observes a mutation immediately, and the [Service] invalidates the
profile cache on every write so other processes re-read the store on their
next check.
*/
package role

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/taibuivan/helphub/internal/platform/apperr"
	"github.com/taibuivan/helphub/internal/users/permission"
)

// Profile is a role and the permissions it grants.
//
// All methods are safe for concurrent use. A nil *Profile grants nothing
// beyond the vacuous cases of [Profile.HasAnyPermission] and
// [Profile.HasAllPermissions].
type Profile struct {
	mu          sync.RWMutex
	roleName    string
	description string
	permissions permission.Set
}

// Snapshot is the serialisable view of a [Profile].
type Snapshot struct {
	RoleName    string   `json:"role_name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// NewProfile builds a profile. The role name is trimmed and must not be blank.
func NewProfile(roleName, description string, perms ...permission.Permission) (*Profile, error) {
	name, err := normalizeName(roleName)
	if err != nil {
		return nil, err
	}

	return &Profile{
		roleName:    name,
		description: description,
		permissions: permission.NewSet(perms...),
	}, nil
}

// FromSnapshot rebuilds a profile from its serialised form, rejecting unknown
// permissions.
func FromSnapshot(snapshot Snapshot) (*Profile, error) {
	perms, err := permission.ParseList(snapshot.Permissions)
	if err != nil {
		return nil, err
	}
	return NewProfile(snapshot.RoleName, snapshot.Description, perms...)
}

func normalizeName(roleName string) (string, error) {
	name := strings.TrimSpace(roleName)
	if name == "" {
		return "", apperr.ValidationError("Role name is required",
			apperr.FieldError{Field: "role_name", Message: "This field is required"})
	}
	return name, nil
}

// # Accessors

// Name returns the role name.
func (profile *Profile) Name() string {
	if profile == nil {
		return ""
	}
	profile.mu.RLock()
	defer profile.mu.RUnlock()
	return profile.roleName
}

// Description returns the human-readable description.
func (profile *Profile) Description() string {
	if profile == nil {
		return ""
	}
	profile.mu.RLock()
	defer profile.mu.RUnlock()
	return profile.description
}

// Permissions returns the granted permissions sorted by name.
func (profile *Profile) Permissions() []permission.Permission {
	if profile == nil {
		return nil
	}
	profile.mu.RLock()
	defer profile.mu.RUnlock()
	return profile.permissions.Slice()
}

// Snapshot returns a consistent copy of the profile.
func (profile *Profile) Snapshot() Snapshot {
	if profile == nil {
		return Snapshot{Permissions: []string{}}
	}
	profile.mu.RLock()
	defer profile.mu.RUnlock()
	return Snapshot{
		RoleName:    profile.roleName,
		Description: profile.description,
		Permissions: profile.permissions.Strings(),
	}
}

// MarshalJSON renders the snapshot.
func (profile *Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(profile.Snapshot())
}

// # Predicates

// HasPermission reports whether action is granted.
func (profile *Profile) HasPermission(action permission.Permission) bool {
	if profile == nil {
		return false
	}
	profile.mu.RLock()
	defer profile.mu.RUnlock()
	return profile.permissions.Has(action)
}

// HasAnyPermission reports whether at least one of actions is granted.
//
// An empty list is granted. Callers that build allow-lists dynamically must
// not pass an empty one by accident.
func (profile *Profile) HasAnyPermission(actions []permission.Permission) bool {
	if len(actions) == 0 {
		return true
	}
	if profile == nil {
		return false
	}

	profile.mu.RLock()
	defer profile.mu.RUnlock()
	for _, action := range actions {
		if profile.permissions.Has(action) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every one of actions is granted.
// An empty list is vacuously granted.
func (profile *Profile) HasAllPermissions(actions []permission.Permission) bool {
	if len(actions) == 0 {
		return true
	}
	if profile == nil {
		return false
	}

	profile.mu.RLock()
	defer profile.mu.RUnlock()
	for _, action := range actions {
		if !profile.permissions.Has(action) {
			return false
		}
	}
	return true
}

// # Mutators

// Rename changes the role name in place.
func (profile *Profile) Rename(roleName string) error {
	name, err := normalizeName(roleName)
	if err != nil {
		return err
	}
	profile.mu.Lock()
	defer profile.mu.Unlock()
	profile.roleName = name
	return nil
}

// SetDescription replaces the description in place.
func (profile *Profile) SetDescription(description string) {
	profile.mu.Lock()
	defer profile.mu.Unlock()
	profile.description = description
}

// ReplacePermissions swaps the whole permission set in place.
func (profile *Profile) ReplacePermissions(perms ...permission.Permission) {
	replacement := permission.NewSet(perms...)
	profile.mu.Lock()
	defer profile.mu.Unlock()
	profile.permissions = replacement
}

// Grant adds permissions in place. It is safe on a zero Profile.
func (profile *Profile) Grant(perms ...permission.Permission) {
	profile.mu.Lock()
	defer profile.mu.Unlock()
	if profile.permissions == nil {
		profile.permissions = permission.NewSet()
	}
	for _, p := range perms {
		profile.permissions[p] = struct{}{}
	}
}

// Revoke removes permissions in place.
func (profile *Profile) Revoke(perms ...permission.Permission) {
	profile.mu.Lock()
	defer profile.mu.Unlock()
	for _, p := range perms {
		delete(profile.permissions, p)
	}
}
