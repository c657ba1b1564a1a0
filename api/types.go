package api

// Error is the standard error response body
type Error struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// UserSummary is the denormalized identity snapshot carried by presence
// broadcasts. It is captured once at identify time and never re-fetched.
type UserSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// ProcessRequest is the payload for creating or updating a process
type ProcessRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	CategoryID  *string `json:"category_id"`
	CompanyID   *string `json:"company_id"`
	AssigneeID  *string `json:"assignee_id"`
	Priority    string  `json:"priority"`
	DueAt       *string `json:"due_at"`
	Status      string  `json:"status"`
}

// UserRequest is the payload for creating or updating a user
type UserRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

// CategoryRequest is the payload for creating or updating a category
type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// CompanyRequest is the payload for creating or updating a company
type CompanyRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}

// SettingsRequest is the payload for updating application settings
type SettingsRequest struct {
	AppName           string `json:"app_name" binding:"required"`
	AllowRegistration bool   `json:"allow_registration"`
	RetentionDays     int    `json:"retention_days"`
}

// Valid process priorities and statuses
var (
	validPriorities = map[string]bool{"low": true, "normal": true, "high": true, "urgent": true}
	validStatuses   = map[string]bool{"open": true, "in_progress": true, "done": true, "archived": true}
)
