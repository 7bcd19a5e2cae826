package schema

// UserProfileTable represents the 'users.profile' table
type UserProfileTable struct {
	Table       string
	RoleName    string
	Description string
	Permissions string
	CreatedAt   string
	UpdatedAt   string
}

// UserProfile is the schema definition for users.profile
var UserProfile = UserProfileTable{
	Table:       "users.profile",
	RoleName:    "rolename",
	Description: "description",
	Permissions: "permissions",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// Columns returns all standard column names
func (t UserProfileTable) Columns() []string {
	return []string{
		t.RoleName, t.Description, t.Permissions,
	}
}
