package database

import "time"

// Connection pool
const (
	DefaultMinConnections = 2
	// DefaultMaxConnections applies when PoolConfig.MaxConns is unset
	DefaultMaxConnections = 10

	// ConnectTimeout bounds the initial connect and ping
	ConnectTimeout = 10 * time.Second
)

// Driver names
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// SQLite settings
const (
	MemoryPath       = ":memory:"
	SQLiteDSNPattern = "file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=busy_timeout(5000)"
	DirPermission    = 0755
)

// Embedded migration directories
const (
	MigrationsDirPostgres = "migrations/postgres"
	MigrationsDirSQLite   = "migrations/sqlite"
)

// Error Messages - Database Operations
const (
	ErrMsgFailedToParseConnString = "failed to parse connection string"
	ErrMsgFailedToCreatePool      = "failed to create connection pool"
	ErrMsgFailedToPingDatabase    = "failed to ping database"
	ErrMsgFailedToOpenSQLite      = "failed to open sqlite database"
	ErrMsgFailedToCreateDataDir   = "failed to create data directory"
	ErrMsgFailedToLoadMigrations  = "failed to load migrations"
	ErrMsgFailedToCreateMigrator  = "failed to create migration provider"
	ErrMsgFailedToApplyMigrations = "failed to apply migrations"
)

// Log Messages
const (
	LogMsgSuccessfullyConnectedToDatabase = "Successfully connected to the database"
	LogMsgAppliedMigration                = "Applied migration"
)
