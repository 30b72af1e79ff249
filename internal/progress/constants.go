package progress

// Persisted key layout of the progress file
const (
	FileKeyGlobalPrefix   = "cycle.last-"
	FileKeyGlobalSuffix   = "-reset"
	FileKeyVariablePrefix = "cycle.variable."
	FileKeyVariableSuffix = ".last-reset-time"
)

const (
	filePermission = 0644
	dirPermission  = 0755
)

// Error messages
const (
	ErrMsgInvalidKey       = "invalid progress key"
	ErrMsgRewindIntoFuture = "cannot rewind progress past the current time"
	ErrMsgReadFile         = "failed to read progress file"
	ErrMsgParseFile        = "failed to parse progress file"
	ErrMsgWriteFile        = "failed to write progress file"
)

// Log messages
const (
	LogMsgProgressAdvanced = "Cycle progress advanced"
	LogMsgProgressRewound  = "Cycle progress rewound"
	LogMsgProgressDeleted  = "Cycle progress deleted"
	LogMsgUnknownFileKey   = "Ignoring unknown key in progress file"
)
