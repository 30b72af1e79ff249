package bootstrap

// File system permissions
const (
	DirPermission     = 0755
	LogFilePermission = 0644
)

// Logger configuration
const (
	// LogFileTimestampFormat sorts lexically in time order
	LogFileTimestampFormat = "2006-01-02_15-04-05"
	LogFileNamePattern     = "session_%s.log"
	LogFileExtension       = ".log"
	// LogFileRetentionCount is the number of session files kept, the current one included
	LogFileRetentionCount = 9
)

// Log messages for startup
const (
	LogMsgLoggingInitialized  = "Logging initialized"
	LogMsgStartingService     = "Starting cycle variables service"
	LogMsgConfigurationLoaded = "Configuration loaded"
	LogMsgFailedCreateLogsDir = "failed to create logs directory"
	LogMsgFailedOpenLogFile   = "failed to open log file"
	LogMsgFailedDeleteOldLog  = "Failed to delete old log file"
	LogMsgStorageReady        = "Storage initialized"
)

// Error messages
const (
	ErrMsgFailedOpenProgressFile = "failed to open progress file"
)

// Shutdown messages
const (
	LogMsgShuttingDown         = "Shutting down..."
	LogMsgServerStopped        = "Server stopped"
	LogMsgServerForcedShutdown = "Server forced to shutdown"
	LogMsgSchedulerStopped     = "Cycle scheduler stopped"
	LogMsgWorkerPoolStopped    = "Cycle worker pool stopped"
	LogMsgActionRunnerFailed   = "Action runner shutdown failed"
	LogMsgStorageClosed        = "Storage closed"
)
