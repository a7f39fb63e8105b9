package constants

const (
	// ContextKeyUserID is the session and gin context key holding the authenticated user ID.
	ContextKeyUserID = "user_id"
	// ContextKeyUser holds the loaded *models.User for the request.
	ContextKeyUser = "current_user"
	// ContextKeyRequestID holds the per-request correlation ID.
	ContextKeyRequestID = "request_id"

	SessionCookieName = "timetracker_session"
	RequestIDHeader   = "X-Request-ID"
)

const (
	MinPasswordLength      = 8
	GeneratedPasswordBytes = 12

	MinPageSize     = 1
	DefaultPageSize = 100
	MaxPageSize     = 500
)

const (
	DefaultWorkingDays = 22
	DefaultDailyHours  = 8.0
)
