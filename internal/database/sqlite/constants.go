package sqlite

// Error messages
const (
	ErrMsgGetValueFailed       = "failed to get variable value"
	ErrMsgSetValueFailed       = "failed to set variable value"
	ErrMsgDeleteValuesFailed   = "failed to delete variable values"
	ErrMsgEarliestWriteFailed  = "failed to query earliest write"
	ErrMsgGetProgressFailed    = "failed to get cycle progress"
	ErrMsgSetProgressFailed    = "failed to set cycle progress"
	ErrMsgDeleteProgressFailed = "failed to delete cycle progress"
	ErrMsgListProgressFailed   = "failed to list cycle progress"
)
