package notifier

// Log messages
const (
	LogMsgCacheInvalidated = "Variable cache invalidated"
	LogMsgActionsFailed    = "Post-reset actions failed"
	LogMsgListenerPanicked = "Reset listener panicked"
	LogMsgNoPlayersOnline  = "No players online for player-scope reset actions"
	LogMsgResetNotified    = "Reset notified"
)
