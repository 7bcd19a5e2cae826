package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table        string
	ID           string
	Username     string
	DisplayName  string
	Email        string
	PasswordHash string
	RoleName     string
	IsActive     string
	CreatedAt    string
	UpdatedAt    string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:        "users.account",
	ID:           "id",
	Username:     "username",
	DisplayName:  "displayname",
	Email:        "email",
	PasswordHash: "passwordhash",
	RoleName:     "rolename",
	IsActive:     "isactive",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.DisplayName, t.Email, t.PasswordHash, t.RoleName, t.IsActive, t.CreatedAt,
	}
}
