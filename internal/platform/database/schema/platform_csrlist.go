package schema

// PlatformCSRListTable represents a CSR list table ('platform.csrsavedrequest'
// or 'platform.csrshortlist')
type PlatformCSRListTable struct {
	Table       string
	ID          string
	CSRID       string
	DateCreated string
}

// PlatformCSRListItemTable represents the item table of a CSR list
type PlatformCSRListItemTable struct {
	Table            string
	ID               string
	ListID           string
	ServiceRequestID string
	DateAdded        string
}

// PlatformSavedList is the schema definition for platform.csrsavedrequest
var PlatformSavedList = PlatformCSRListTable{
	Table:       "platform.csrsavedrequest",
	ID:          "id",
	CSRID:       "csrid",
	DateCreated: "datecreated",
}

// PlatformSavedListItem is the schema definition for platform.csrsavedrequestitem
var PlatformSavedListItem = PlatformCSRListItemTable{
	Table:            "platform.csrsavedrequestitem",
	ID:               "id",
	ListID:           "savedlistid",
	ServiceRequestID: "servicerequestid",
	DateAdded:        "datesaved",
}

// PlatformShortlist is the schema definition for platform.csrshortlist
var PlatformShortlist = PlatformCSRListTable{
	Table:       "platform.csrshortlist",
	ID:          "id",
	CSRID:       "csrid",
	DateCreated: "datecreated",
}

// PlatformShortlistItem is the schema definition for platform.csrshortlistitem
var PlatformShortlistItem = PlatformCSRListItemTable{
	Table:            "platform.csrshortlistitem",
	ID:               "id",
	ListID:           "shortlistid",
	ServiceRequestID: "servicerequestid",
	DateAdded:        "dateshortlisted",
}
