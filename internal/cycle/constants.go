package cycle

import "time"

const (
	// DefaultMaxCatchUp bounds how many boundaries one variable processes per tick
	DefaultMaxCatchUp = 1000
	// GlobalCommitTimeout bounds the deferred global progress write of a tick
	GlobalCommitTimeout = 5 * time.Second
)

// State is the per-variable position in the reset state machine
type State string

const (
	StateIdle       State = "idle"
	StateCatchingUp State = "catching_up"
	StateDeleting   State = "deleting"
	StateCommitting State = "committing"
	StateNotifying  State = "notifying"
	StateCommitted  State = "committed"
	StateFailed     State = "failed"
)

// Progress sources reported by the engine
const (
	SourceVariable = "variable"
	SourceGlobal   = "global"
	SourceSeeded   = "seeded"
)

// Error messages
const (
	ErrMsgCommitFailed = "failed to commit progress"
	ErrMsgSeedFailed   = "failed to seed progress"
)

// Log messages
const (
	LogMsgTickStarted        = "Cycle tick started"
	LogMsgTickDispatched     = "Cycle tick dispatched"
	LogMsgVariableInFlight   = "Variable still processing, skipping"
	LogMsgQueueFull          = "Worker queue full, variable retried next tick"
	LogMsgProgressSeeded     = "Cycle progress seeded"
	LogMsgSkewCorrected      = "Future cycle progress corrected"
	LogMsgBoundaryCommitted  = "Cycle boundary committed"
	LogMsgCatchUpCapped      = "Catch-up capped, remaining boundaries continue next tick"
	LogMsgVariableFailed     = "Cycle reset failed, progress unchanged"
	LogMsgConfigurationError = "Cycle configuration error, variable skipped"
	LogMsgGlobalCommitFailed = "Failed to advance global cycle progress"
	LogMsgVariableCaughtUp   = "Variable caught up"
)
