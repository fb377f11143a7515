package model

import "time"

// Activity actions recorded by the service.
const (
	ActionViewedProperty  = "Viewed Property"
	ActionExportedData    = "Exported Data"
	ActionCreatedSearch   = "Created Search"
	ActionDeletedSearch   = "Deleted Search"
	ActionAddedUser       = "Added User"
	ActionGeneratedReport = "Generated Report"
)

// ActivityEntry is one audit trail record of a user action.
type ActivityEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	UserRole  string    `json:"userRole"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip,omitempty"`
}

// Role is a user's permission level.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleAnalyst Role = "Analyst"
	RoleViewer  Role = "Viewer"
)

// User is an account that performs searches.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

// SourceStatus is the sync state of an upstream data source.
type SourceStatus string

const (
	SourceActive   SourceStatus = "Active"
	SourceInactive SourceStatus = "Inactive"
	SourceError    SourceStatus = "Error"
)

// DataSource describes an upstream feed contributing records.
type DataSource struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	LastSync    time.Time    `json:"lastSync"`
	RecordCount int          `json:"recordCount"`
	Status      SourceStatus `json:"status"`
	Confidence  float64      `json:"confidenceScore"`
}
