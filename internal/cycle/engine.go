package cycle

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/CycleVars_Go/internal/calendar"
	"github.com/osse101/CycleVars_Go/internal/clock"
	"github.com/osse101/CycleVars_Go/internal/concurrency"
	"github.com/osse101/CycleVars_Go/internal/deletion"
	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/logger"
	"github.com/osse101/CycleVars_Go/internal/metrics"
	"github.com/osse101/CycleVars_Go/internal/worker"
)

// Definitions lists the variables that take part in cycle resets
type Definitions interface {
	Cycled() []domain.VariableDefinition
}

// ProgressStore is the durable record of processed boundaries
type ProgressStore interface {
	Get(ctx context.Context, key string) (*time.Time, error)
	Set(ctx context.Context, key string, boundary time.Time) (bool, error)
	Rewind(ctx context.Context, key string, boundary time.Time) error
	EarliestDataTimestamp(ctx context.Context, scope domain.Scope, variableKey string) (*time.Time, error)
}

// Deleter removes a variable's stored values at a boundary
type Deleter interface {
	DeleteScopedData(ctx context.Context, scope domain.Scope, variableKey string, boundary time.Time) (deletion.Result, error)
}

// Notifier invalidates caches and fires post-reset actions
type Notifier interface {
	Invalidate(ctx context.Context, variableKey string)
	NotifyReset(ctx context.Context, def domain.VariableDefinition) int
}

// Dispatcher runs per-variable jobs off the timer goroutine
type Dispatcher interface {
	TryEnqueue(job worker.Job) bool
}

// Config tunes the engine
type Config struct {
	// MaxCatchUp caps the boundaries processed for one variable in one run.
	// Remaining boundaries are picked up by the next tick, never skipped.
	MaxCatchUp int
}

// Outcome describes one ProcessVariable run
type Outcome struct {
	Variable      string    `json:"variable"`
	Source        string    `json:"source,omitempty"`
	Processed     int       `json:"processed"`
	LastBoundary  time.Time `json:"last_boundary"`
	Rows          int64     `json:"rows"`
	Batches       int       `json:"batches"`
	SkewCorrected bool      `json:"skew_corrected,omitempty"`
	More          bool      `json:"more,omitempty"`
	Skipped       bool      `json:"skipped,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// Engine detects crossed cycle boundaries and resets variables, committing
// progress one boundary at a time so a crash loses at most the boundary in flight.
type Engine struct {
	defs       Definitions
	calendar   *calendar.Calendar
	store      ProgressStore
	deleter    Deleter
	notifier   Notifier
	clock      clock.Source
	dispatcher Dispatcher
	maxCatchUp int

	inFlight *concurrency.LockManager
	status   *statusBoard
}

// NewEngine creates an Engine. dispatcher may be nil when only RunOnce is used.
func NewEngine(
	defs Definitions,
	cal *calendar.Calendar,
	store ProgressStore,
	deleter Deleter,
	notifier Notifier,
	clk clock.Source,
	dispatcher Dispatcher,
	cfg Config,
) *Engine {
	if cfg.MaxCatchUp <= 0 {
		cfg.MaxCatchUp = DefaultMaxCatchUp
	}
	return &Engine{
		defs:       defs,
		calendar:   cal,
		store:      store,
		deleter:    deleter,
		notifier:   notifier,
		clock:      clk,
		dispatcher: dispatcher,
		maxCatchUp: cfg.MaxCatchUp,
		inFlight:   concurrency.NewLockManager(),
		status:     newStatusBoard(),
	}
}

// Tick resolves the current time once and hands every cycled variable that is
// not already being processed to the dispatcher. It never blocks on I/O.
func (e *Engine) Tick(ctx context.Context) int {
	ctx = logger.WithRequestID(ctx, logger.GenerateRequestID())
	log := logger.FromContext(ctx)
	metrics.CycleTicks.Inc()

	now := e.clock.Now()
	defs := e.defs.Cycled()
	log.Debug(LogMsgTickStarted, "now", now, "variables", len(defs))

	// The tick holds every cycle's global entry until all its jobs are dispatched
	run := newTickRun(e)
	run.guard(defs)
	defer run.releaseAll(ctx)

	dispatched := 0
	for _, def := range defs {
		release, ok := e.inFlight.TryLock(def.Key)
		if !ok {
			metrics.CycleInFlightSkips.Inc()
			log.Debug(LogMsgVariableInFlight, "variable", def.Key)
			continue
		}

		run.hold(def.Cycle)
		job := &variableJob{engine: e, def: def, now: now, requestCtx: ctx, run: run, release: release}
		if e.dispatcher == nil || !e.dispatcher.TryEnqueue(job) {
			job.Discard()
			log.Warn(LogMsgQueueFull, "variable", def.Key)
			continue
		}
		dispatched++
	}

	log.Debug(LogMsgTickDispatched, "dispatched", dispatched)
	return dispatched
}

// RunOnce processes every cycled variable synchronously, one after another.
// Variables already in flight are reported as skipped.
func (e *Engine) RunOnce(ctx context.Context) []Outcome {
	if _, ok := logger.RequestIDFromContext(ctx); !ok {
		ctx = logger.WithRequestID(ctx, logger.GenerateRequestID())
	}
	now := e.clock.Now()

	defs := e.defs.Cycled()
	run := newTickRun(e)
	run.guard(defs)
	defer run.releaseAll(ctx)

	outcomes := make([]Outcome, 0, len(defs))
	for _, def := range defs {
		release, ok := e.inFlight.TryLock(def.Key)
		if !ok {
			metrics.CycleInFlightSkips.Inc()
			outcomes = append(outcomes, Outcome{Variable: def.Key, Skipped: true})
			continue
		}

		out, err := e.processVariable(ctx, def, now, run)
		release()
		if err != nil {
			out.Error = err.Error()
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// ProcessVariable runs the catch-up sequence of one variable up to the boundary
// containing now. Boundaries are processed oldest first; each one is deleted,
// the cache invalidated, progress committed and only then actions fired.
// Any failure stops the run and leaves progress at the last committed boundary.
//
// Callers must hold the variable's in-flight flag; Tick and RunOnce do.
func (e *Engine) ProcessVariable(ctx context.Context, def domain.VariableDefinition, now time.Time) (Outcome, error) {
	return e.processVariable(ctx, def, now, nil)
}

// processVariable commits the global entry per boundary when run is nil,
// otherwise it leaves the global commit to run.
func (e *Engine) processVariable(ctx context.Context, def domain.VariableDefinition, now time.Time, run *tickRun) (Outcome, error) {
	out := Outcome{Variable: def.Key}
	log := logger.FromContext(ctx).With("variable", def.Key, "cycle", def.Cycle.String())
	loc := e.clock.Location()

	e.status.begin(def, now)

	current, err := e.calendar.BoundaryContaining(def.Cycle, now, loc)
	if err != nil {
		return out, e.fail(ctx, def, err)
	}

	last, source, err := e.resolveLastProcessed(ctx, def, now, current)
	if err != nil {
		return out, e.fail(ctx, def, err)
	}
	out.Source = source

	// Progress ahead of the current boundary means the clock moved backwards.
	// Treat it as exactly one pending boundary instead of an error.
	skewed := last.After(current)
	if skewed {
		corrected, err := e.calendar.PreviousBoundary(def.Cycle, now, loc)
		if err != nil {
			return out, e.fail(ctx, def, err)
		}
		log.Warn(LogMsgSkewCorrected, "stored", last.UTC(), "corrected", corrected.UTC(), "now", now.UTC())
		metrics.CycleSkewCorrections.WithLabelValues(def.Key).Inc()
		last = corrected
		out.SkewCorrected = true
	}

	boundaries, more, err := e.calendar.Sequence(def.Cycle, last, current, loc, e.maxCatchUp)
	if err != nil {
		return out, e.fail(ctx, def, err)
	}
	if len(boundaries) > 0 {
		e.status.set(def.Key, StateCatchingUp)
	}

	for _, b := range boundaries {
		// Shutdown stops the sequence between boundaries
		if err := ctx.Err(); err != nil {
			return out, e.fail(ctx, def, fmt.Errorf("%w: %w", domain.ErrTransientStore, err))
		}
		res, err := e.processBoundary(ctx, def, b, skewed, run)
		if err != nil {
			return out, e.fail(ctx, def, err)
		}
		out.Processed++
		out.LastBoundary = b
		out.Rows += res.Rows
		out.Batches += res.Batches
	}

	out.More = more
	if more {
		metrics.CycleCatchUpCapped.WithLabelValues(def.Key).Set(1)
		log.Warn(LogMsgCatchUpCapped, "processed", out.Processed, "last_boundary", out.LastBoundary.UTC())
	} else {
		metrics.CycleCatchUpCapped.WithLabelValues(def.Key).Set(0)
	}
	if out.Processed > 0 {
		log.Info(LogMsgVariableCaughtUp, "processed", out.Processed, "rows", out.Rows, "batches", out.Batches)
	}

	e.status.finish(def.Key, out)
	return out, nil
}

// resolveLastProcessed returns the variable entry, else the global entry for the
// cycle, else a seed from the oldest stored data (or now). A seed is persisted.
func (e *Engine) resolveLastProcessed(ctx context.Context, def domain.VariableDefinition, now, current time.Time) (time.Time, string, error) {
	varKey := domain.VariableProgressKey(def.Key)

	if t, err := e.store.Get(ctx, varKey); err != nil {
		return time.Time{}, "", err
	} else if t != nil {
		return *t, SourceVariable, nil
	}

	if t, err := e.store.Get(ctx, domain.GlobalProgressKey(def.Cycle)); err != nil {
		return time.Time{}, "", err
	} else if t != nil {
		return *t, SourceGlobal, nil
	}

	seedFrom := now
	earliest, err := e.store.EarliestDataTimestamp(ctx, def.Scope, def.Key)
	if err != nil {
		return time.Time{}, "", err
	}
	if earliest != nil && earliest.Before(now) {
		seedFrom = *earliest
	}

	seed, err := e.calendar.BoundaryContaining(def.Cycle, seedFrom, e.clock.Location())
	if err != nil {
		return time.Time{}, "", err
	}
	if seed.After(current) {
		seed = current
	}

	if _, err := e.store.Set(ctx, varKey, seed); err != nil {
		return time.Time{}, "", fmt.Errorf("%s: %w", ErrMsgSeedFailed, err)
	}
	logger.FromContext(ctx).Info(LogMsgProgressSeeded, "variable", def.Key, "seed", seed.UTC(), "from_data", earliest != nil)
	return seed, SourceSeeded, nil
}

// processBoundary is Deleting -> Committing -> Notifying for one boundary
func (e *Engine) processBoundary(ctx context.Context, def domain.VariableDefinition, b time.Time, skewed bool, run *tickRun) (deletion.Result, error) {
	e.status.set(def.Key, StateDeleting)
	start := time.Now()
	res, err := e.deleter.DeleteScopedData(ctx, def.Scope, def.Key, b)
	metrics.CycleDeleteDuration.WithLabelValues(string(def.Scope)).Observe(time.Since(start).Seconds())
	if err != nil {
		return res, err
	}
	metrics.CycleRowsDeleted.WithLabelValues(def.Key, string(def.Scope)).Add(float64(res.Rows))
	metrics.CycleDeleteBatches.WithLabelValues(def.Key).Add(float64(res.Batches))

	e.status.set(def.Key, StateCommitting)
	e.notifier.Invalidate(ctx, def.Key)

	if err := e.commit(ctx, def, b, skewed, run); err != nil {
		return res, err
	}
	e.status.committed(def.Key, b)
	metrics.CycleBoundariesProcessed.WithLabelValues(def.Key, def.Cycle.Name()).Inc()
	logger.FromContext(ctx).Info(LogMsgBoundaryCommitted,
		"variable", def.Key, "boundary", b.UTC(), "rows", res.Rows, "batches", res.Batches)

	// Actions run after the commit so a retried boundary never fires them twice
	e.status.set(def.Key, StateNotifying)
	e.notifier.NotifyReset(ctx, def)
	return res, nil
}

// commit advances the variable entry, then the global entry for the cycle.
// After skew correction the stored values are ahead of b and are overwritten.
func (e *Engine) commit(ctx context.Context, def domain.VariableDefinition, b time.Time, skewed bool, run *tickRun) error {
	varKey := domain.VariableProgressKey(def.Key)
	globalKey := domain.GlobalProgressKey(def.Cycle)

	if err := e.advance(ctx, varKey, b, skewed); err != nil {
		return fmt.Errorf("%s %s: %w", ErrMsgCommitFailed, varKey, err)
	}

	if run != nil {
		run.record(def.Cycle, b, skewed)
		return nil
	}

	// The variable entry is authoritative once it exists; a failed global
	// write only affects seeding of variables added later.
	if err := e.advance(ctx, globalKey, b, skewed); err != nil {
		logger.FromContext(ctx).Warn(LogMsgGlobalCommitFailed, "key", globalKey, "error", err)
	}
	return nil
}

func (e *Engine) advance(ctx context.Context, key string, b time.Time, skewed bool) error {
	if skewed {
		stored, err := e.store.Get(ctx, key)
		if err != nil {
			return err
		}
		if stored != nil && stored.After(b) {
			return e.store.Rewind(ctx, key, b)
		}
	}
	_, err := e.store.Set(ctx, key, b)
	return err
}

// fail classifies err, records it and returns it
func (e *Engine) fail(ctx context.Context, def domain.VariableDefinition, err error) error {
	log := logger.FromContext(ctx)

	reason := metrics.ReasonOther
	switch {
	case domain.IsConfiguration(err):
		reason = metrics.ReasonConfiguration
		log.Error(LogMsgConfigurationError, "variable", def.Key, "cycle", def.Cycle.String(), "error", err)
	case domain.IsTransient(err):
		reason = metrics.ReasonTransient
		log.Warn(LogMsgVariableFailed, "variable", def.Key, "error", err)
	default:
		log.Error(LogMsgVariableFailed, "variable", def.Key, "error", err)
	}

	metrics.CycleFailures.WithLabelValues(def.Key, reason).Inc()
	e.status.failed(def.Key, err)
	return err
}

// Status returns a snapshot of every variable the engine has seen
func (e *Engine) Status() []VariableStatus {
	return e.status.snapshot()
}

// NextBoundary returns the next boundary of def after now
func (e *Engine) NextBoundary(def domain.VariableDefinition) (time.Time, error) {
	return e.calendar.NextBoundary(def.Cycle, e.clock.Now(), e.clock.Location())
}

// IsInFlight reports whether a variable is being processed
func (e *Engine) IsInFlight(variableKey string) bool {
	return e.inFlight.Held(variableKey)
}

// variableJob processes one variable on a pool worker
type variableJob struct {
	engine     *Engine
	def        domain.VariableDefinition
	now        time.Time
	requestCtx context.Context
	run        *tickRun
	release    func()
}

func (j *variableJob) Process(ctx context.Context) error {
	if id, ok := logger.RequestIDFromContext(j.requestCtx); ok {
		ctx = logger.WithRequestID(ctx, id)
	}
	defer j.releaseRun(ctx)
	defer j.release()

	// Failures are logged, counted and recorded in status by the engine
	_, _ = j.engine.processVariable(ctx, j.def, j.now, j.run)
	return nil
}

// releaseRun drops the job's hold on the tick. The global commit it may trigger
// records boundaries already committed, so it survives pool shutdown.
func (j *variableJob) releaseRun(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), GlobalCommitTimeout)
	defer cancel()
	j.run.release(ctx, j.def.Cycle)
}

// Discard releases a job that never ran
func (j *variableJob) Discard() {
	j.release()
	j.run.release(j.requestCtx, j.def.Cycle)
}

// TickJob adapts Tick to the scheduler
func (e *Engine) TickJob() worker.Job {
	return tickJob{engine: e}
}

type tickJob struct {
	engine *Engine
}

func (j tickJob) Process(ctx context.Context) error {
	j.engine.Tick(ctx)
	return nil
}
