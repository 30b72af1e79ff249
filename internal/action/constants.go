package action

import "time"

// Step kinds, written as "[kind] argument" in a definition's reset_actions
const (
	KindConsole = "console"
	KindOp      = "op"
	KindPlayer  = "player"
	KindMessage = "message"
	KindDelay   = "delay"
)

// Placeholders substituted into step arguments
const (
	PlaceholderPlayer   = "{player}"
	PlaceholderPlayerID = "{player_id}"
	PlaceholderVariable = "{variable}"
)

// MaxDelay bounds a single [delay] step
const MaxDelay = 24 * time.Hour

// DefaultWebhookTimeout bounds a single webhook delivery
const DefaultWebhookTimeout = 5 * time.Second

// Error messages
const (
	ErrMsgMissingTag     = "action must start with a [tag]"
	ErrMsgUnknownTag     = "unknown action tag"
	ErrMsgEmptyArgument  = "action argument is empty"
	ErrMsgInvalidDelay   = "invalid delay"
	ErrMsgWebhookStatus  = "webhook returned unexpected status"
	ErrMsgWebhookRequest = "webhook request failed"
	ErrMsgRunnerStopped  = "action runner is shut down"
)

// Log messages
const (
	LogMsgActionDispatched = "Post-reset action dispatched"
	LogMsgActionFailed     = "Post-reset action failed"
	LogMsgActionPanicked   = "Post-reset action panicked"
	LogMsgActionsCancelled = "Post-reset actions cancelled"
	LogMsgRunnerShutdown   = "Action runner shut down"
	LogMsgRunnerTimeout    = "Action runner shutdown timed out"
)
