package constants

// Session
const (
	SessionName = "highcommand_session"

	// ContextKeyUserID is the key under which the authenticated user ID is
	// stored in both the session and the gin context.
	ContextKeyUserID = "user_id"
)

// Validation limits
const (
	MinUsernameLength    = 3
	MinPasswordLength    = 6
	MinProjectNameLength = 3
	MinTaskTitleLength   = 3
)

// DueDateLayout is the calendar-date format used for task due dates.
// Dates in this format order correctly as plain strings.
const DueDateLayout = "2006-01-02"
