package schema

// PlatformServiceRequestTable represents the 'platform.servicerequest' table
type PlatformServiceRequestTable struct {
	Table       string
	ID          string
	PinID       string
	CategoryID  string
	Title       string
	Description string
	Status      string
	CreatedAt   string
}

// PlatformServiceRequest is the schema definition for platform.servicerequest
var PlatformServiceRequest = PlatformServiceRequestTable{
	Table:       "platform.servicerequest",
	ID:          "id",
	PinID:       "pinid",
	CategoryID:  "categoryid",
	Title:       "title",
	Description: "description",
	Status:      "status",
	CreatedAt:   "createdat",
}
