// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package permission defines the closed catalog of actions HelpHub can authorize.

Permissions are case-sensitive identifiers. Anything outside the catalog is
rejected at the boundary by [Parse], so the rest of the system only ever
handles known values.
*/
package permission

import (
	"slices"
	"sort"
	"strings"

	"github.com/taibuivan/helphub/internal/platform/apperr"
)

// Permission is a single authorizable action.
type Permission string

// # Catalog

const (
	// Account management
	CreateUser   Permission = "CREATE_USER"
	UpdateUser   Permission = "UPDATE_USER"
	DeleteUser   Permission = "DELETE_USER"
	ViewAllUsers Permission = "VIEW_ALL_USERS"
	ViewUser     Permission = "VIEW_USER"

	// Role profile management
	CreateProfile   Permission = "CREATE_PROFILE"
	UpdateProfile   Permission = "UPDATE_PROFILE"
	DeleteProfile   Permission = "DELETE_PROFILE"
	ViewAllProfiles Permission = "VIEW_ALL_PROFILES"
	ViewProfile     Permission = "VIEW_PROFILE"

	// Category management
	CreateCategory    Permission = "CREATE_CATEGORY"
	UpdateCategory    Permission = "UPDATE_CATEGORY"
	DeleteCategory    Permission = "DELETE_CATEGORY"
	ViewAllCategories Permission = "VIEW_ALL_CATEGORIES"
	ViewCategory      Permission = "VIEW_CATEGORY"

	// Service requests authored by a PIN
	CreateOwnRequest Permission = "CREATE_OWN_REQUEST"
	UpdateOwnRequest Permission = "UPDATE_OWN_REQUEST"
	DeleteOwnRequest Permission = "DELETE_OWN_REQUEST"
	ViewOwnRequests  Permission = "VIEW_OWN_REQUESTS"

	// Service requests across the platform
	ViewAllRequests     Permission = "VIEW_ALL_REQUESTS"
	DeleteAnyRequest    Permission = "DELETE_ANY_REQUEST"
	UpdateRequestStatus Permission = "UPDATE_REQUEST_STATUS"

	// CSR saved lists and shortlists
	SaveRequest             Permission = "SAVE_REQUEST"
	UnsaveRequest           Permission = "UNSAVE_REQUEST"
	ShortlistRequest        Permission = "SHORTLIST_REQUEST"
	UnshortlistRequest      Permission = "UNSHORTLIST_REQUEST"
	ViewSavedRequests       Permission = "VIEW_SAVED_REQUESTS"
	ViewShortlistedRequests Permission = "VIEW_SHORTLISTED_REQUESTS"

	// Reporting
	ViewStatistics Permission = "VIEW_STATISTICS"
)

var catalog = []Permission{
	CreateUser, UpdateUser, DeleteUser, ViewAllUsers, ViewUser,
	CreateProfile, UpdateProfile, DeleteProfile, ViewAllProfiles, ViewProfile,
	CreateCategory, UpdateCategory, DeleteCategory, ViewAllCategories, ViewCategory,
	CreateOwnRequest, UpdateOwnRequest, DeleteOwnRequest, ViewOwnRequests,
	ViewAllRequests, DeleteAnyRequest, UpdateRequestStatus,
	SaveRequest, UnsaveRequest, ShortlistRequest, UnshortlistRequest,
	ViewSavedRequests, ViewShortlistedRequests,
	ViewStatistics,
}

var known = func() map[Permission]struct{} {
	index := make(map[Permission]struct{}, len(catalog))
	for _, p := range catalog {
		index[p] = struct{}{}
	}
	return index
}()

// All returns a copy of the catalog in declaration order.
func All() []Permission {
	return slices.Clone(catalog)
}

// Valid reports whether p belongs to the catalog.
func (p Permission) Valid() bool {
	_, ok := known[p]
	return ok
}

func (p Permission) String() string { return string(p) }

// # Parsing

// Parse converts a raw string into a catalog [Permission]. Matching is exact.
func Parse(raw string) (Permission, error) {
	p := Permission(raw)
	if !p.Valid() {
		return "", apperr.ValidationError("Unknown permission",
			apperr.FieldError{Field: "permissions", Message: "unknown permission: " + raw})
	}
	return p, nil
}

// ParseList parses raw strings in order, collecting every unknown value into a
// single validation error.
func ParseList(raw []string) ([]Permission, error) {
	parsed := make([]Permission, 0, len(raw))
	var unknown []string

	for _, value := range raw {
		p := Permission(value)
		if !p.Valid() {
			unknown = append(unknown, value)
			continue
		}
		parsed = append(parsed, p)
	}

	if len(unknown) > 0 {
		return nil, apperr.ValidationError("Unknown permission",
			apperr.FieldError{Field: "permissions", Message: "unknown permissions: " + strings.Join(unknown, ", ")})
	}
	return parsed, nil
}

// # Sets

// Set is an unordered collection of permissions.
type Set map[Permission]struct{}

// NewSet builds a set from the given permissions. Duplicates collapse.
func NewSet(perms ...Permission) Set {
	set := make(Set, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// ParseSet parses raw strings into a [Set].
func ParseSet(raw []string) (Set, error) {
	perms, err := ParseList(raw)
	if err != nil {
		return nil, err
	}
	return NewSet(perms...), nil
}

// Has reports membership.
func (set Set) Has(p Permission) bool {
	_, ok := set[p]
	return ok
}

// Slice returns the members sorted by name.
func (set Set) Slice() []Permission {
	perms := make([]Permission, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms
}

// Strings returns the sorted member names, as stored in the database.
func (set Set) Strings() []string {
	names := make([]string, 0, len(set))
	for _, p := range set.Slice() {
		names = append(names, string(p))
	}
	return names
}

// Clone returns an independent copy.
func (set Set) Clone() Set {
	clone := make(Set, len(set))
	for p := range set {
		clone[p] = struct{}{}
	}
	return clone
}
