package deletion

// Defaults used when the executor is built with zero values
const (
	DefaultBatchSize = 1000
	DefaultTimeout   = 5000 // milliseconds
)

// Error messages
const (
	ErrMsgGlobalDeleteFailed = "global delete failed"
	ErrMsgPlayerBatchFailed  = "player batch delete failed"
	ErrMsgUnknownScope       = "unknown scope"
)

// Log messages
const (
	LogMsgGlobalDeleted  = "Deleted global variable data"
	LogMsgPlayerDeleted  = "Deleted player variable data"
	LogMsgBatchCompleted = "Player delete batch completed"
)
