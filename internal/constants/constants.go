package constants

const (
	// Session
	ContextKeyUserID = "user_id"
	SessionName      = "flowboard_session"

	// Request tracing
	ContextKeyRequestID = "request_id"

	// Auth
	MinPasswordLength = 8

	// Pagination
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Activity feed
	DefaultActivityLimit = 50
)
