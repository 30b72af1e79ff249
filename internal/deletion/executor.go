package deletion

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/logger"
	"github.com/osse101/CycleVars_Go/internal/repository"
)

// Result describes the physical work done for one boundary
type Result struct {
	Rows    int64
	Batches int
}

// Executor removes the stored values of a variable at a boundary.
// Global variables take one timed statement, player variables a loop of timed batches.
// From the caller's point of view a boundary either fully succeeds or fails.
type Executor struct {
	repo      repository.Variable
	batchSize int
	timeout   time.Duration
}

// NewExecutor creates an Executor. Non-positive values fall back to the defaults.
func NewExecutor(repo repository.Variable, batchSize int, timeout time.Duration) *Executor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if timeout <= 0 {
		timeout = DefaultTimeout * time.Millisecond
	}
	return &Executor{repo: repo, batchSize: batchSize, timeout: timeout}
}

// BatchSize returns the configured player batch size
func (e *Executor) BatchSize() int {
	return e.batchSize
}

// DeleteScopedData deletes every value of variableKey written before boundary.
// Zero affected rows is a success.
func (e *Executor) DeleteScopedData(ctx context.Context, scope domain.Scope, variableKey string, boundary time.Time) (Result, error) {
	switch scope {
	case domain.ScopeGlobal:
		return e.deleteGlobal(ctx, variableKey, boundary)
	case domain.ScopePlayer:
		return e.deletePlayers(ctx, variableKey, boundary)
	}
	return Result{}, fmt.Errorf("%w: %s %q", domain.ErrInvalidScope, ErrMsgUnknownScope, scope)
}

func (e *Executor) deleteGlobal(ctx context.Context, variableKey string, boundary time.Time) (Result, error) {
	stmtCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	rows, err := e.repo.DeleteGlobal(stmtCtx, variableKey, boundary)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s for %s: %w", domain.ErrTransientStore, ErrMsgGlobalDeleteFailed, variableKey, err)
	}

	logger.FromContext(ctx).Debug(LogMsgGlobalDeleted, "variable", variableKey, "boundary", boundary.UTC(), "rows", rows)
	return Result{Rows: rows, Batches: 1}, nil
}

func (e *Executor) deletePlayers(ctx context.Context, variableKey string, boundary time.Time) (Result, error) {
	log := logger.FromContext(ctx)
	var result Result

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("%w: %s for %s: %w", domain.ErrTransientStore, ErrMsgPlayerBatchFailed, variableKey, err)
		}

		rows, err := e.deleteBatch(ctx, variableKey, boundary)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %s for %s after %d batches: %w",
				domain.ErrTransientStore, ErrMsgPlayerBatchFailed, variableKey, result.Batches, err)
		}

		result.Batches++
		result.Rows += rows
		log.Debug(LogMsgBatchCompleted, "variable", variableKey, "batch", result.Batches, "rows", rows)

		if rows < int64(e.batchSize) {
			break
		}
	}

	log.Debug(LogMsgPlayerDeleted, "variable", variableKey, "boundary", boundary.UTC(),
		"rows", result.Rows, "batches", result.Batches)
	return result, nil
}

func (e *Executor) deleteBatch(ctx context.Context, variableKey string, boundary time.Time) (int64, error) {
	stmtCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.repo.DeletePlayerBatch(stmtCtx, variableKey, boundary, e.batchSize)
}
