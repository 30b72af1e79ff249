package config

// Default values for environment variables
const (
	DefaultPort            = 8080
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultLogDir          = "logs"
	DefaultEnvironment     = "dev"
	DefaultServiceName     = "cycle-vars"
	DefaultDBDriver        = DriverPostgres
	DefaultDBMaxConns      = 10
	DefaultSQLitePath      = "data/cyclevars.db"
	DefaultProgressBackend = ProgressBackendDatabase
	DefaultProgressFile    = "data/progress.yml"
	DefaultVariablesFile   = "configs/variables.json"
	DefaultCacheSize       = 10000
	DefaultCacheTTLSeconds = 300

	DefaultCheckIntervalSeconds  = 60
	DefaultInitialDelaySeconds   = 10
	DefaultTimezone              = "UTC"
	DefaultDBMaxConcurrency      = 2
	DefaultDBTimeoutMillis       = 5000
	DefaultPlayerDeleteBatchSize = 1000
	DefaultMaxCatchUp            = 1000
)

// Storage choices
const (
	DriverPostgres          = "postgres"
	DriverSQLite            = "sqlite"
	ProgressBackendDatabase = "database"
	ProgressBackendFile     = "file"
)

// Error messages
const (
	ErrMsgInvalidPort     = "invalid PORT value"
	ErrMsgInvalidConfig   = "invalid configuration"
	ErrMsgAPIKeyRequired  = "API_KEY environment variable must be set"
	ErrMsgSchemaNotSet    = "ENV_SCHEMA_VERSION is not set - please update your .env file to include this field (expected: %s)"
	ErrMsgSchemaMismatch  = "ENV_SCHEMA_VERSION mismatch: expected %s, got %s - your .env file may be outdated"
	ErrMsgMissingRequired = "missing required environment variables: %s"
)
