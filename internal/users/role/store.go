// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package role

import "context"

// # Profile Data Access

// Repository defines the authoritative storage contract for role profiles.
type Repository interface {

	/*
		FindByName returns the profile with the given role name.

		Returns:
		  - *Profile: Hydrated profile
		  - error: NOT_FOUND or PERSISTENCE_ERROR
	*/
	FindByName(context context.Context, roleName string) (*Profile, error)

	// List returns every profile ordered by role name.
	List(context context.Context) ([]*Profile, error)

	// Create persists a new profile. A duplicate name is a CONFLICT.
	Create(context context.Context, profile *Profile) error

	// CreateIfMissing inserts the profile unless one with the same name exists.
	// It reports whether a row was written.
	CreateIfMissing(context context.Context, profile *Profile) (bool, error)

	/*
		Update persists the profile's current state under currentName.

		Renames cascade to holding accounts through the foreign key.

		Parameters:
		  - context: context.Context
		  - currentName: string (name before the update)
		  - profile: *Profile (desired state)

		Returns:
		  - error: NOT_FOUND, CONFLICT or PERSISTENCE_ERROR
	*/
	Update(context context.Context, currentName string, profile *Profile) error

	// Delete removes a profile. Profiles still held by accounts are a CONFLICT.
	Delete(context context.Context, roleName string) error
}

// # Profile Cache

// Cache is a best-effort, non-authoritative lookaside cache of profiles.
//
// Every entry is guarded by a per-role generation that [Cache.Invalidate]
// advances. A reader passes the generation it saw to [Cache.Set], so a profile
// loaded before a write can never be stored after that write invalidated it.
type Cache interface {

	// Get returns the cached profile, or nil on a miss, together with the
	// current generation of roleName.
	Get(context context.Context, roleName string) (*Profile, int64, error)

	// Set stores the profile unless its role name was invalidated after
	// generation was read. It reports whether the entry was written.
	Set(context context.Context, profile *Profile, generation int64) (bool, error)

	// Invalidate drops the given role names and advances their generations.
	Invalidate(context context.Context, roleNames ...string) error
}
