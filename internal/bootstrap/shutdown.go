package bootstrap

import (
	"context"
	"log/slog"
)

type stoppable interface {
	Stop()
}

type httpServer interface {
	Stop(ctx context.Context) error
}

type actionRunner interface {
	Shutdown(ctx context.Context) error
}

// ShutdownComponents holds everything that needs a graceful stop. Nil members are skipped.
type ShutdownComponents struct {
	Server       httpServer
	Scheduler    stoppable
	WorkerPool   stoppable
	ActionRunner actionRunner
	Repositories *Repositories
}

// GracefulShutdown stops components in dependency order:
//  1. HTTP server (no new admin runs or value writes)
//  2. Scheduler (no new ticks)
//  3. Worker pool (running variable jobs stop after their current boundary; queued ones are discarded)
//  4. Action runner (wait for post-reset actions up to ctx)
//  5. Storage
//
// Errors are logged and do not stop the sequence.
func GracefulShutdown(ctx context.Context, c ShutdownComponents) {
	slog.Info(LogMsgShuttingDown)

	if c.Server != nil {
		if err := c.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if c.Scheduler != nil {
		c.Scheduler.Stop()
		slog.Info(LogMsgSchedulerStopped)
	}

	if c.WorkerPool != nil {
		c.WorkerPool.Stop()
		slog.Info(LogMsgWorkerPoolStopped)
	}

	if c.ActionRunner != nil {
		if err := c.ActionRunner.Shutdown(ctx); err != nil {
			slog.Error(LogMsgActionRunnerFailed, "error", err)
		}
	}

	if c.Repositories != nil {
		c.Repositories.Close()
		slog.Info(LogMsgStorageClosed)
	}

	slog.Info(LogMsgServerStopped)
}
