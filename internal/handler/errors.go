package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Query parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidPlayerID   = "Player must be a UUID"

	// Variable error messages
	ErrMsgGetValueFailed = "Failed to get variable value"
	ErrMsgSetValueFailed = "Failed to set variable value"

	// Admin error messages
	ErrMsgReloadDefinitionsFailed = "Failed to reload variable definitions"
	ErrMsgGetProgressFailed       = "Failed to read cycle progress"
)

// Success messages for API responses
const (
	MsgDefinitionsReloaded = "Variable definitions reloaded"
	MsgPlayerJoined        = "Player is online"
	MsgPlayerLeft          = "Player is offline"
	MsgPlayerNotOnline     = "Player was not online"
)

// Log messages
const (
	LogMsgDecodeFailed       = "Failed to decode request"
	LogMsgServiceError       = "Service error"
	LogMsgManualRunTriggered = "Manual cycle run triggered"
	LogMsgManualRunCompleted = "Manual cycle run completed"
	LogMsgReadinessFailed    = "Readiness check failed"
	LogMsgEncodeFailed       = "Failed to encode JSON response"
	LogMsgWriteFailed        = "Failed to write response buffer"
)
