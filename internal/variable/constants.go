package variable

// Validation limits for definitions and values
const (
	MaxKeyLength   = 64
	MaxValueLength = 4096
)

// Error messages
const (
	ErrMsgReadDefinitions  = "failed to read definitions file"
	ErrMsgParseDefinitions = "failed to parse definitions file"
	ErrMsgInvalidEntry     = "invalid definition"
	ErrMsgScopeMismatch    = "player id does not match variable scope"
	ErrMsgValueTooLong     = "value too long"
)

// Log messages
const (
	LogMsgDefinitionsLoaded  = "Variable definitions loaded"
	LogMsgDefinitionSkipped  = "Skipping invalid variable definition"
	LogMsgDefinitionsMissing = "Variable definitions file not found, starting empty"
	LogMsgValueLoadFailed    = "Failed to load variable value"
)
