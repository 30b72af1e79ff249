// Package leaktest checks that components such as the worker pool, the
// scheduler and the action runner release their goroutines on shutdown.
package leaktest

import (
	"runtime"
	"testing"
	"time"
)

const (
	// DefaultSettleTimeout bounds how long Check waits for goroutines to exit
	DefaultSettleTimeout = time.Second
	pollInterval         = 5 * time.Millisecond
)

// GoroutineChecker compares the goroutine count against a baseline
type GoroutineChecker struct {
	t       testing.TB
	before  int
	timeout time.Duration
}

// NewGoroutineChecker records the current goroutine count as the baseline
func NewGoroutineChecker(t testing.TB) *GoroutineChecker {
	t.Helper()
	return &GoroutineChecker{
		t:       t,
		before:  settledCount(),
		timeout: DefaultSettleTimeout,
	}
}

// WithTimeout changes how long Check waits for stragglers
func (g *GoroutineChecker) WithTimeout(d time.Duration) *GoroutineChecker {
	g.timeout = d
	return g
}

// Check polls until at most tolerance goroutines above the baseline remain.
// Stopped components often exit a few milliseconds after Stop returns.
func (g *GoroutineChecker) Check(tolerance int) {
	g.t.Helper()

	deadline := time.Now().Add(g.timeout)
	for {
		after := runtime.NumGoroutine()
		if after-g.before <= tolerance {
			return
		}
		if time.Now().After(deadline) {
			g.t.Errorf("goroutine leak: before=%d after=%d leaked=%d tolerance=%d",
				g.before, after, after-g.before, tolerance)
			return
		}
		runtime.Gosched()
		time.Sleep(pollInterval)
	}
}

// VerifyNone runs fn and fails t if it leaves goroutines behind
func VerifyNone(t testing.TB, fn func()) {
	t.Helper()
	checker := NewGoroutineChecker(t)
	fn()
	checker.Check(0)
}

func settledCount() int {
	runtime.Gosched()
	return runtime.NumGoroutine()
}
