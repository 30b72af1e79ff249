package action

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/logger"
	"github.com/osse101/CycleVars_Go/internal/metrics"
)

// ErrRunnerStopped is returned by Run after Shutdown
var ErrRunnerStopped = errors.New(ErrMsgRunnerStopped)

// Runner executes a definition's post-reset actions off the caller's goroutine.
// Steps of one run execute strictly in order; [delay] steps pause the run.
// A failing or panicking step is logged and the run continues with the next step.
type Runner struct {
	dispatcher Dispatcher

	mu       sync.Mutex
	stopped  bool
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewRunner creates a runner delivering commands to dispatcher
func NewRunner(dispatcher Dispatcher) *Runner {
	if dispatcher == nil {
		dispatcher = LogDispatcher{}
	}
	return &Runner{
		dispatcher: dispatcher,
		shutdown:   make(chan struct{}),
	}
}

// Run starts the actions of def for player (nil for none) in a tracked goroutine.
// It only fails when the actions cannot be parsed or the runner is shut down.
func (r *Runner) Run(ctx context.Context, def domain.VariableDefinition, player *domain.Player) error {
	steps, err := ParseSteps(def.ResetActions)
	if err != nil {
		return err
	}
	steps = applicable(steps, player)
	if !hasCommand(steps) {
		return nil
	}

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return ErrRunnerStopped
	}
	r.wg.Add(1)
	r.mu.Unlock()

	// Keep the caller's values (request_id) but not its deadline
	runCtx := context.WithoutCancel(ctx)
	go func() {
		defer r.wg.Done()
		r.execute(runCtx, def.Key, steps, player)
	}()
	return nil
}

func (r *Runner) execute(ctx context.Context, variableKey string, steps []Step, player *domain.Player) {
	log := logger.FromContext(ctx)

	for i, step := range steps {
		if step.Kind == KindDelay {
			timer := time.NewTimer(step.Delay)
			select {
			case <-timer.C:
				continue
			case <-r.shutdown:
				timer.Stop()
				log.Warn(LogMsgActionsCancelled, "variable", variableKey, "remaining", len(steps)-i)
				return
			}
		}

		cmd := Command{
			Kind:     step.Kind,
			Text:     Render(step.Arg, variableKey, player),
			Variable: variableKey,
			Player:   player,
		}
		if err := r.dispatch(ctx, cmd); err != nil {
			metrics.ActionFailuresTotal.WithLabelValues(variableKey).Inc()
			log.Error(LogMsgActionFailed, "variable", variableKey, "step", i+1, "kind", step.Kind, "error", err)
		}
	}
}

// dispatch delivers one command, turning a panic into an error
func (r *Runner) dispatch(ctx context.Context, cmd Command) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.FromContext(ctx).Error(LogMsgActionPanicked, "variable", cmd.Variable, "panic", rec)
			err = fmt.Errorf("%w: panic: %v", domain.ErrActionExecution, rec)
		}
	}()

	if err := r.dispatcher.Dispatch(ctx, cmd); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrActionExecution, err)
	}
	return nil
}

// Shutdown cancels pending delays and waits for dispatches in flight
func (r *Runner) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)

	r.mu.Lock()
	if !r.stopped {
		r.stopped = true
		close(r.shutdown)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info(LogMsgRunnerShutdown)
		return nil
	case <-ctx.Done():
		log.Warn(LogMsgRunnerTimeout)
		return ctx.Err()
	}
}

// applicable drops player-only steps when there is no player
func applicable(steps []Step, player *domain.Player) []Step {
	if player != nil {
		return steps
	}
	out := steps[:0:0]
	for _, s := range steps {
		if !s.NeedsPlayer() {
			out = append(out, s)
		}
	}
	return out
}

func hasCommand(steps []Step) bool {
	for _, s := range steps {
		if s.Kind != KindDelay {
			return true
		}
	}
	return false
}
