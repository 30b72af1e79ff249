package cycle

import (
	"sort"
	"sync"
	"time"

	"github.com/osse101/CycleVars_Go/internal/domain"
)

// VariableStatus is what the engine last observed for a variable
type VariableStatus struct {
	Variable     string     `json:"variable"`
	Scope        string     `json:"scope"`
	Cycle        string     `json:"cycle"`
	State        State      `json:"state"`
	LastBoundary *time.Time `json:"last_boundary,omitempty"`
	LastRunAt    time.Time  `json:"last_run_at"`
	LastError    string     `json:"last_error,omitempty"`
	Processed    int        `json:"processed_total"`
	Failures     int        `json:"failures_total"`
	Pending      bool       `json:"pending"`
}

type statusBoard struct {
	mu        sync.Mutex
	variables map[string]*VariableStatus
}

func newStatusBoard() *statusBoard {
	return &statusBoard{variables: make(map[string]*VariableStatus)}
}

func (b *statusBoard) entry(key string) *VariableStatus {
	s, ok := b.variables[key]
	if !ok {
		s = &VariableStatus{Variable: key, State: StateIdle}
		b.variables[key] = s
	}
	return s
}

func (b *statusBoard) begin(def domain.VariableDefinition, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.entry(def.Key)
	s.Scope = string(def.Scope)
	s.Cycle = def.Cycle.String()
	s.LastRunAt = now
}

func (b *statusBoard) set(key string, state State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entry(key).State = state
}

func (b *statusBoard) committed(key string, boundary time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.entry(key)
	s.State = StateCommitted
	bt := boundary.UTC()
	s.LastBoundary = &bt
	s.Processed++
}

func (b *statusBoard) finish(key string, out Outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.entry(key)
	s.State = StateIdle
	s.LastError = ""
	s.Pending = out.More
}

func (b *statusBoard) failed(key string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.entry(key)
	s.State = StateFailed
	s.LastError = err.Error()
	s.Failures++
}

func (b *statusBoard) snapshot() []VariableStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]VariableStatus, 0, len(b.variables))
	for _, s := range b.variables {
		cp := *s
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Variable < out[j].Variable })
	return out
}
