package concurrency

import (
	"sync"
)

// LockManager hands out one mutex per key. It serializes progress writes per
// progress key and doubles as the engine's per-variable in-flight flag.
// Keys come from a bounded set, so mutexes are never freed.
type LockManager struct {
	locks sync.Map // key -> *sync.Mutex
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

func (lm *LockManager) mutex(key string) *sync.Mutex {
	mu, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Lock blocks until key is held and returns its release func
func (lm *LockManager) Lock(key string) func() {
	mu := lm.mutex(key)
	mu.Lock()
	return mu.Unlock
}

// TryLock takes key only if it is free. false means another holder is still running.
func (lm *LockManager) TryLock(key string) (func(), bool) {
	mu := lm.mutex(key)
	if !mu.TryLock() {
		return nil, false
	}
	return mu.Unlock, true
}

// Held reports whether key is currently locked. The answer may be stale by the
// time the caller acts on it; use TryLock to claim.
func (lm *LockManager) Held(key string) bool {
	v, ok := lm.locks.Load(key)
	if !ok {
		return false
	}
	mu := v.(*sync.Mutex)
	if mu.TryLock() {
		mu.Unlock()
		return false
	}
	return true
}
