package cycle

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/osse101/CycleVars_Go/internal/calendar"
	"github.com/osse101/CycleVars_Go/internal/clock"
	"github.com/osse101/CycleVars_Go/internal/deletion"
	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/progress"
	"github.com/osse101/CycleVars_Go/internal/variable"
)

// now is 15:00 on a Wednesday; the daily boundary containing it is midnight
var (
	now     = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)
	today   = time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	errDown = errors.New("connection refused")
)

func day(offset int) time.Time {
	return today.AddDate(0, 0, offset)
}

var (
	dailyPlayer = domain.VariableDefinition{
		Key: "daily_kills", Scope: domain.ScopePlayer,
		Cycle: domain.Cycle{Kind: domain.CycleDaily}, ResetActions: []string{"[message] reset"},
	}
	dailyGlobal = domain.VariableDefinition{
		Key: "event_total", Scope: domain.ScopeGlobal,
		Cycle: domain.Cycle{Kind: domain.CycleDaily}, ResetActions: []string{"[console] say reset"},
	}
)

// fakeDeleter records every boundary it is asked to delete and fails the
// calls whose 1-based index is in failOn
type fakeDeleter struct {
	mu        sync.Mutex
	calls     []time.Time
	failOn    map[int]bool
	failAll   bool
	rows      int64
	blockOnce chan struct{}
}

func (d *fakeDeleter) DeleteScopedData(ctx context.Context, scope domain.Scope, key string, boundary time.Time) (deletion.Result, error) {
	d.mu.Lock()
	d.calls = append(d.calls, boundary)
	n := len(d.calls)
	block := d.blockOnce
	d.blockOnce = nil
	d.mu.Unlock()

	if block != nil {
		<-block
	}
	if d.failAll || d.failOn[n] {
		return deletion.Result{}, errDown
	}
	return deletion.Result{Rows: d.rows, Batches: 1}, nil
}

func (d *fakeDeleter) boundaries() []time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]time.Time(nil), d.calls...)
}

// stallingDeleter succeeds until call stallOn, which blocks until its context
// is cancelled and fails the way a statement interrupted by shutdown does
type stallingDeleter struct {
	mu      sync.Mutex
	calls   int
	stallOn int
	stalled chan struct{}
}

func (d *stallingDeleter) DeleteScopedData(ctx context.Context, scope domain.Scope, key string, boundary time.Time) (deletion.Result, error) {
	d.mu.Lock()
	d.calls++
	n := d.calls
	d.mu.Unlock()

	if n != d.stallOn {
		return deletion.Result{Batches: 1}, nil
	}
	close(d.stalled)
	<-ctx.Done()
	return deletion.Result{}, fmt.Errorf("%w: %w", domain.ErrTransientStore, ctx.Err())
}

func (d *stallingDeleter) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// fakeNotifier counts invalidations and reset notifications
type fakeNotifier struct {
	mu          sync.Mutex
	invalidated []string
	notified    []string
	onNotify    func(def domain.VariableDefinition)
}

func (n *fakeNotifier) Invalidate(ctx context.Context, key string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invalidated = append(n.invalidated, key)
}

func (n *fakeNotifier) NotifyReset(ctx context.Context, def domain.VariableDefinition) int {
	if n.onNotify != nil {
		n.onNotify(def)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, def.Key)
	return 1
}

func (n *fakeNotifier) counts() (invalidated, notified int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.invalidated), len(n.notified)
}

// fakeVariableRepo backs a real deletion.Executor
type fakeVariableRepo struct {
	mu           sync.Mutex
	batchResults []int64
	batchCalls   int
	globalCalls  int
	earliest     *time.Time
}

func (r *fakeVariableRepo) GetGlobalValue(ctx context.Context, key string) (*domain.VariableValue, error) {
	return nil, domain.ErrValueNotFound
}

func (r *fakeVariableRepo) SetGlobalValue(ctx context.Context, key, value string, at time.Time) error {
	return nil
}

func (r *fakeVariableRepo) GetPlayerValue(ctx context.Context, playerID, key string) (*domain.VariableValue, error) {
	return nil, domain.ErrValueNotFound
}

func (r *fakeVariableRepo) SetPlayerValue(ctx context.Context, playerID, key, value string, at time.Time) error {
	return nil
}

func (r *fakeVariableRepo) DeleteGlobal(ctx context.Context, key string, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.globalCalls++
	return 1, nil
}

func (r *fakeVariableRepo) DeletePlayerBatch(ctx context.Context, key string, before time.Time, limit int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batchCalls++
	if len(r.batchResults) == 0 {
		return 0, nil
	}
	n := r.batchResults[0]
	r.batchResults = r.batchResults[1:]
	return n, nil
}

func (r *fakeVariableRepo) EarliestModifiedAt(ctx context.Context, scope domain.Scope, key string) (*time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.earliest, nil
}

type fixture struct {
	engine   *Engine
	registry *variable.Registry
	store    *progress.Store
	clock    *clock.Manual
	deleter  Deleter
	notifier *fakeNotifier
	vars     *fakeVariableRepo
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	deleter    Deleter
	dispatcher Dispatcher
	maxCatchUp int
}

func withDeleter(d Deleter) fixtureOption {
	return func(c *fixtureConfig) { c.deleter = d }
}

func withDispatcher(d Dispatcher) fixtureOption {
	return func(c *fixtureConfig) { c.dispatcher = d }
}

func withMaxCatchUp(n int) fixtureOption {
	return func(c *fixtureConfig) { c.maxCatchUp = n }
}

func newFixture(t *testing.T, defs []domain.VariableDefinition, opts ...fixtureOption) *fixture {
	t.Helper()

	cfg := fixtureConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	cal := calendar.New()
	registry := variable.NewRegistry("", cal)
	for _, def := range defs {
		require.NoError(t, registry.Register(def))
	}

	clk := clock.NewManual(now, time.UTC)
	vars := &fakeVariableRepo{}
	repo, err := progress.NewFileRepository(filepath.Join(t.TempDir(), "progress.yml"))
	require.NoError(t, err)
	store := progress.NewStore(repo, vars, clk)

	deleter := cfg.deleter
	if deleter == nil {
		deleter = deletion.NewExecutor(vars, 10, time.Second)
	}
	notifier := &fakeNotifier{}

	engine := NewEngine(registry, cal, store, deleter, notifier, clk, cfg.dispatcher, Config{MaxCatchUp: cfg.maxCatchUp})
	return &fixture{
		engine:   engine,
		registry: registry,
		store:    store,
		clock:    clk,
		deleter:  deleter,
		notifier: notifier,
		vars:     vars,
	}
}

func (f *fixture) setProgress(t *testing.T, key string, at time.Time) {
	t.Helper()
	_, err := f.store.Set(context.Background(), key, at)
	require.NoError(t, err)
}

func (f *fixture) progress(t *testing.T, key string) *time.Time {
	t.Helper()
	got, err := f.store.Get(context.Background(), key)
	require.NoError(t, err)
	return got
}

func (f *fixture) process(t *testing.T, def domain.VariableDefinition) (Outcome, error) {
	t.Helper()
	release, ok := f.engine.inFlight.TryLock(def.Key)
	require.True(t, ok)
	defer release()
	return f.engine.ProcessVariable(context.Background(), def, f.clock.Now())
}
