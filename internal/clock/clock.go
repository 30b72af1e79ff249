package clock

import (
	"sync"
	"time"
)

// Source supplies the current time in the configured zone
type Source interface {
	Now() time.Time
	Location() *time.Location
}

// System reads the wall clock
type System struct {
	loc *time.Location
}

// NewSystem creates a system clock for loc. A nil loc means UTC.
func NewSystem(loc *time.Location) *System {
	if loc == nil {
		loc = time.UTC
	}
	return &System{loc: loc}
}

func (s *System) Now() time.Time {
	return time.Now().In(s.loc)
}

func (s *System) Location() *time.Location {
	return s.loc
}

// Manual is a settable clock for tests and replays.
// Safe for concurrent use.
type Manual struct {
	mu  sync.Mutex
	now time.Time
	loc *time.Location
}

// NewManual creates a manual clock frozen at now
func NewManual(now time.Time, loc *time.Location) *Manual {
	if loc == nil {
		loc = time.UTC
	}
	return &Manual{now: now.In(loc), loc: loc}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Location() *time.Location {
	return m.loc
}

// Set moves the clock to t
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t.In(m.loc)
}

// Advance moves the clock forward by d
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
