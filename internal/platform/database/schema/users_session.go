package schema

// UserSessionTable represents the 'users.session' table
type UserSessionTable struct {
	Table        string
	ID           string
	TokenHash    string
	AccountID    string
	LoginTime    string
	LastActivity string
	IsActive     string
	EndedAt      string
}

// UserSession is the schema definition for users.session
var UserSession = UserSessionTable{
	Table:        "users.session",
	ID:           "id",
	TokenHash:    "tokenhash",
	AccountID:    "accountid",
	LoginTime:    "logintime",
	LastActivity: "lastactivity",
	IsActive:     "isactive",
	EndedAt:      "endedat",
}

// Columns returns all standard column names
func (t UserSessionTable) Columns() []string {
	return []string{
		t.ID, t.TokenHash, t.AccountID, t.LoginTime, t.LastActivity, t.IsActive, t.EndedAt,
	}
}
