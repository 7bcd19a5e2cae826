// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package permission

import "slices"

// # Default Roles

// Names of the role profiles seeded on a fresh installation.
const (
	RoleUserAdmin       = "User Admin"
	RolePlatformManager = "Platform Manager"
	RoleCSRRep          = "CSR Rep"
	RolePIN             = "PIN"
)

var defaultRoleNames = []string{RoleUserAdmin, RolePlatformManager, RoleCSRRep, RolePIN}

var defaultPermissions = map[string][]Permission{
	RoleUserAdmin: {
		CreateUser, UpdateUser, DeleteUser, ViewAllUsers, ViewUser,
		CreateProfile, UpdateProfile, DeleteProfile, ViewAllProfiles, ViewProfile,
	},
	RolePlatformManager: {
		CreateCategory, UpdateCategory, DeleteCategory, ViewAllCategories, ViewCategory,
	},
	RoleCSRRep: {
		ViewAllRequests,
		SaveRequest, UnsaveRequest, ShortlistRequest, UnshortlistRequest,
		ViewSavedRequests, ViewShortlistedRequests,
		UpdateRequestStatus,
	},
	RolePIN: {
		CreateOwnRequest, UpdateOwnRequest, DeleteOwnRequest, ViewOwnRequests,
		ViewStatistics,
	},
}

var defaultDescriptions = map[string]string{
	RoleUserAdmin:       "Manages user accounts and role profiles",
	RolePlatformManager: "Manages service categories",
	RoleCSRRep:          "Corporate representative browsing and shortlisting requests",
	RolePIN:             "Person in need who creates service requests",
}

// DefaultRoleNames returns the seeded role names in a stable order.
func DefaultRoleNames() []string {
	return slices.Clone(defaultRoleNames)
}

// IsDefaultRole reports whether name is one of the seeded roles.
func IsDefaultRole(name string) bool {
	return slices.Contains(defaultRoleNames, name)
}

// DefaultPermissions returns the seed permission set for a role, or nil when
// the role is not a default one.
func DefaultPermissions(roleName string) []Permission {
	perms, ok := defaultPermissions[roleName]
	if !ok {
		return nil
	}
	return slices.Clone(perms)
}

// DefaultDescription returns the seed description for a role.
func DefaultDescription(roleName string) string {
	return defaultDescriptions[roleName]
}
