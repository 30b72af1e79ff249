package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/osse101/CycleVars_Go/internal/config"
	"github.com/osse101/CycleVars_Go/internal/logger"
)

// SetupLogger installs the default logger writing to stdout and a timestamped
// session file in cfg.LogDir. Old session files beyond the retention count are removed.
// The caller must close the returned file.
func SetupLogger(cfg *config.Config) (*os.File, error) {
	if err := os.MkdirAll(cfg.LogDir, DirPermission); err != nil {
		return nil, fmt.Errorf("%s: %w", LogMsgFailedCreateLogsDir, err)
	}

	// Make room for the new session file
	cleanupLogs(cfg.LogDir, LogFileRetentionCount-1)

	name := filepath.Join(cfg.LogDir, fmt.Sprintf(LogFileNamePattern, time.Now().Format(LogFileTimestampFormat)))
	logFile, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermission)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", LogMsgFailedOpenLogFile, err)
	}

	addSource := cfg.Environment == logger.EnvironmentDev
	logCfg := logger.NewConfig(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName, cfg.Version, cfg.Environment, addSource)
	logger.InitLoggerWithWriter(logCfg, io.MultiWriter(os.Stdout, logFile))

	slog.Info(LogMsgLoggingInitialized, "level", logCfg.LogLevel(), "file", name)
	slog.Info(LogMsgStartingService,
		"environment", cfg.Environment,
		"version", cfg.Version,
		"db_driver", cfg.DBDriver,
		"progress_backend", cfg.ProgressBackend)
	slog.Debug(LogMsgConfigurationLoaded,
		"port", cfg.Port,
		"variables_file", cfg.VariablesFile,
		"cycle_enabled", cfg.Cycle.Enabled,
		"check_interval", cfg.Cycle.CheckInterval(),
		"timezone", cfg.Cycle.Timezone)

	return logFile, nil
}

// cleanupLogs removes the oldest session files until at most keep remain.
// Names embed a sortable timestamp.
func cleanupLogs(logDir string, keep int) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), LogFileExtension) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for len(names) > keep {
		if err := os.Remove(filepath.Join(logDir, names[0])); err != nil {
			slog.Warn(LogMsgFailedDeleteOldLog, "file", names[0], "error", err)
		}
		names = names[1:]
	}
}
