package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CycleConfig holds the reset engine settings
type CycleConfig struct {
	Enabled               bool
	CheckIntervalSeconds  int    `validate:"min=1"`
	InitialDelaySeconds   int    `validate:"min=0"`
	Timezone              string `validate:"cycle_timezone"`
	DBMaxConcurrency      int    `validate:"min=1,max=64"`
	DBTimeoutMillis       int    `validate:"min=1"`
	PlayerDeleteBatchSize int    `validate:"min=1,max=100000"`
	MaxCatchUp            int    `validate:"min=1"`
}

// CheckInterval is the time between ticks
func (c CycleConfig) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}

// InitialDelay is the wait before the first tick
func (c CycleConfig) InitialDelay() time.Duration {
	return time.Duration(c.InitialDelaySeconds) * time.Second
}

// DBTimeout bounds each deletion statement
func (c CycleConfig) DBTimeout() time.Duration {
	return time.Duration(c.DBTimeoutMillis) * time.Millisecond
}

// Location resolves the configured zone. Call Validate first.
func (c CycleConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Config holds the application configuration
type Config struct {
	Environment    string `validate:"required"`
	ServiceName    string `validate:"required"`
	Version        string
	LogLevel       string `validate:"oneof=debug info warn error"`
	LogFormat      string `validate:"oneof=text json"`
	LogDir         string `validate:"required"`
	Port           int    `validate:"min=1,max=65535"`
	APIKey         string `validate:"required"`
	TrustedProxies []string

	DBDriver          string `validate:"oneof=postgres sqlite"`
	DBUser            string
	DBPassword        string
	DBHost            string
	DBPort            string
	DBName            string
	DBMaxConns        int `validate:"min=1"`
	DBMaxConnIdleTime time.Duration
	DBMaxConnLifetime time.Duration
	SQLitePath        string `validate:"required_if=DBDriver sqlite"`

	ProgressBackend string `validate:"oneof=database file"`
	ProgressFile    string `validate:"required_if=ProgressBackend file"`
	VariablesFile   string `validate:"required"`

	CacheSize       int `validate:"min=1"`
	CacheTTLSeconds int `validate:"min=1"`

	ActionWebhookURL string `validate:"omitempty,url"`

	Cycle CycleConfig
}

// Load loads the configuration from environment variables.
// A .env file is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:       getEnv("ENVIRONMENT", DefaultEnvironment),
		ServiceName:       getEnv("SERVICE_NAME", DefaultServiceName),
		Version:           getEnv("VERSION", "dev"),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", DefaultLogLevel)),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", DefaultLogFormat)),
		LogDir:            getEnv("LOG_DIR", DefaultLogDir),
		APIKey:            getEnv("API_KEY", ""),
		TrustedProxies:    getEnvAsList("TRUSTED_PROXIES"),
		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", DefaultDBDriver)),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", "cyclevars"),
		DBMaxConns:        getEnvAsInt("DB_MAX_CONNS", DefaultDBMaxConns),
		DBMaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
		DBMaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
		SQLitePath:        getEnv("SQLITE_PATH", DefaultSQLitePath),
		ProgressBackend:   strings.ToLower(getEnv("PROGRESS_BACKEND", DefaultProgressBackend)),
		ProgressFile:      getEnv("PROGRESS_FILE", DefaultProgressFile),
		VariablesFile:     getEnv("VARIABLES_FILE", DefaultVariablesFile),
		CacheSize:         getEnvAsInt("CACHE_SIZE", DefaultCacheSize),
		CacheTTLSeconds:   getEnvAsInt("CACHE_TTL_SECONDS", DefaultCacheTTLSeconds),
		ActionWebhookURL:  getEnv("ACTION_WEBHOOK_URL", ""),
		Cycle: CycleConfig{
			Enabled:               getEnvAsBool("CYCLE_ENABLED", true),
			CheckIntervalSeconds:  getEnvAsInt("CYCLE_CHECK_INTERVAL_SECONDS", DefaultCheckIntervalSeconds),
			InitialDelaySeconds:   getEnvAsInt("CYCLE_INITIAL_DELAY_SECONDS", DefaultInitialDelaySeconds),
			Timezone:              getEnv("CYCLE_TIMEZONE", DefaultTimezone),
			DBMaxConcurrency:      getEnvAsInt("CYCLE_DB_MAX_CONCURRENCY", DefaultDBMaxConcurrency),
			DBTimeoutMillis:       getEnvAsInt("CYCLE_DB_TIMEOUT_MILLIS", DefaultDBTimeoutMillis),
			PlayerDeleteBatchSize: getEnvAsInt("CYCLE_DB_PLAYER_DELETE_BATCH_SIZE", DefaultPlayerDeleteBatchSize),
			MaxCatchUp:            getEnvAsInt("CYCLE_MAX_CATCH_UP", DefaultMaxCatchUp),
		},
	}

	port, err := strconv.Atoi(getEnv("PORT", strconv.Itoa(DefaultPort)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgInvalidPort, err)
	}
	cfg.Port = port

	if cfg.APIKey == "" {
		return nil, errors.New(ErrMsgAPIKeyRequired)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}

// CacheTTL is how long a cached value may be served
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt returns defaultValue when the variable is unset or not an integer
func getEnvAsInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvAsBool returns defaultValue when the variable is unset or not a boolean
func getEnvAsBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvAsDuration returns defaultValue when the variable is unset or not a duration
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

// getEnvAsList splits a comma separated variable, dropping empty items
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
