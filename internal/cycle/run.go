package cycle

import (
	"context"
	"sync"
	"time"

	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/logger"
)

// tickRun defers the global progress commit of each cycle until every variable of
// that cycle dispatched in the tick has finished. Variables that still fall back
// to the global entry then all read the same value during the tick.
type tickRun struct {
	engine *Engine

	mu        sync.Mutex
	remaining map[string]int
	newest    map[string]time.Time
	skewed    map[string]bool
	cycles    map[string]domain.Cycle
}

func newTickRun(e *Engine) *tickRun {
	return &tickRun{
		engine:    e,
		remaining: make(map[string]int),
		newest:    make(map[string]time.Time),
		skewed:    make(map[string]bool),
		cycles:    make(map[string]domain.Cycle),
	}
}

// guard takes the tick's own hold on every distinct cycle in defs. releaseAll
// drops exactly these holds.
func (r *tickRun) guard(defs []domain.VariableDefinition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, def := range defs {
		name := def.Cycle.Name()
		if _, seen := r.cycles[name]; seen {
			continue
		}
		r.cycles[name] = def.Cycle
		r.remaining[name]++
	}
}

// hold registers one pending user of the cycle's global entry
func (r *tickRun) hold(c domain.Cycle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.remaining[c.Name()]++
}

// record notes a committed boundary for the cycle
func (r *tickRun) record(c domain.Cycle, b time.Time, skewed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if b.After(r.newest[name]) {
		r.newest[name] = b
	}
	if skewed {
		r.skewed[name] = true
	}
}

// release drops one user; the last one commits the newest boundary seen
func (r *tickRun) release(ctx context.Context, c domain.Cycle) {
	name := c.Name()

	r.mu.Lock()
	r.remaining[name]--
	if r.remaining[name] > 0 {
		r.mu.Unlock()
		return
	}
	newest, ok := r.newest[name]
	skewed := r.skewed[name]
	delete(r.remaining, name)
	delete(r.newest, name)
	delete(r.skewed, name)
	r.mu.Unlock()

	if !ok {
		return
	}
	key := domain.GlobalProgressKey(c)
	if err := r.engine.advance(ctx, key, newest, skewed); err != nil {
		logger.FromContext(ctx).Warn(LogMsgGlobalCommitFailed, "key", key, "error", err)
	}
}

// releaseAll drops the guard taken for every cycle seen by the tick
func (r *tickRun) releaseAll(ctx context.Context) {
	r.mu.Lock()
	cycles := make([]domain.Cycle, 0, len(r.cycles))
	for _, c := range r.cycles {
		cycles = append(cycles, c)
	}
	r.mu.Unlock()

	for _, c := range cycles {
		r.release(ctx, c)
	}
}
