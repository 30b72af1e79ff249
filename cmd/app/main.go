package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/osse101/CycleVars_Go/internal/action"
	"github.com/osse101/CycleVars_Go/internal/bootstrap"
	"github.com/osse101/CycleVars_Go/internal/cache"
	"github.com/osse101/CycleVars_Go/internal/calendar"
	"github.com/osse101/CycleVars_Go/internal/clock"
	"github.com/osse101/CycleVars_Go/internal/config"
	"github.com/osse101/CycleVars_Go/internal/cycle"
	"github.com/osse101/CycleVars_Go/internal/deletion"
	"github.com/osse101/CycleVars_Go/internal/presence"
	"github.com/osse101/CycleVars_Go/internal/progress"
	"github.com/osse101/CycleVars_Go/internal/scheduler"
	"github.com/osse101/CycleVars_Go/internal/server"
	"github.com/osse101/CycleVars_Go/internal/variable"
	"github.com/osse101/CycleVars_Go/internal/worker"
)

const (
	shutdownTimeout = 30 * time.Second
	// jobQueueFactor sizes the worker queue relative to the worker count
	jobQueueFactor = 16
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	warnings, err := config.ValidateEnvWithWarnings()
	if err != nil {
		slog.Error("Environment validation failed", "error", err)
		os.Exit(1)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		slog.Error("Failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	for _, w := range warnings {
		slog.Warn("Configuration warning", "warning", w)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repos, err := bootstrap.InitializeRepositories(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	cal := calendar.New()
	registry := variable.NewRegistry(cfg.VariablesFile, cal)
	result, err := registry.Load(ctx)
	if err != nil {
		slog.Error("Failed to load variable definitions", "path", cfg.VariablesFile, "error", err)
		repos.Close()
		os.Exit(1)
	}
	slog.Info("Variable definitions loaded", "loaded", result.Loaded, "cycled", result.Cycled, "skipped", len(result.Skipped))

	clk := clock.NewSystem(cfg.Cycle.Location())
	valueCache := cache.New(cfg.CacheSize, cfg.CacheTTL())
	tracker := presence.NewTracker()

	var dispatcher action.Dispatcher
	if cfg.ActionWebhookURL != "" {
		dispatcher = action.NewWebhookDispatcher(cfg.ActionWebhookURL, nil)
	}
	runner := action.NewRunner(dispatcher)
	resetNotifier := notifierFor(valueCache, runner, tracker)

	store := progress.NewStore(repos.Progress, repos.Variable, clk)
	executor := deletion.NewExecutor(repos.Variable, cfg.Cycle.PlayerDeleteBatchSize, cfg.Cycle.DBTimeout())

	pool := worker.NewPool(cfg.Cycle.DBMaxConcurrency, cfg.Cycle.DBMaxConcurrency*jobQueueFactor)
	pool.Start(ctx)

	engine := cycle.NewEngine(registry, cal, store, executor, resetNotifier, clk, pool,
		cycle.Config{MaxCatchUp: cfg.Cycle.MaxCatchUp})

	sched := scheduler.New()
	if cfg.Cycle.Enabled {
		sched.Schedule(ctx, cfg.Cycle.InitialDelay(), cfg.Cycle.CheckInterval(), engine.TickJob())
		slog.Info("Cycle checks scheduled",
			"initial_delay", cfg.Cycle.InitialDelay(),
			"interval", cfg.Cycle.CheckInterval(),
			"timezone", cfg.Cycle.Timezone)
	} else {
		slog.Warn("Cycle checks disabled; resets only run on demand")
	}

	srv := server.NewServer(
		server.Config{Port: cfg.Port, APIKey: cfg.APIKey, TrustedProxies: cfg.TrustedProxies},
		server.Deps{
			Store:    repos.Store,
			Values:   variable.NewService(registry, repos.Variable, valueCache, clk),
			Registry: registry,
			Cycled:   registry,
			Engine:   engine,
			Progress: store,
			Presence: tracker,
		},
	)

	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("Received shutdown signal", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:       srv,
		Scheduler:    sched,
		WorkerPool:   pool,
		ActionRunner: runner,
		Repositories: repos,
	})
}
