package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/osse101/CycleVars_Go/internal/domain"
)

// SchemaVersion is the current version of the cached entry layout.
// Increment this when the cached data structure changes to auto-invalidate old entries.
const SchemaVersion = "1.0"

// Invalidator drops every memoized value of a variable
type Invalidator interface {
	Invalidate(variableKey string)
}

type entryKey struct {
	variable string
	player   string
}

type cachedEntry struct {
	version  string
	value    *domain.VariableValue
	cachedAt time.Time
}

// ValueCache is a process-local LRU of variable values with time-based expiration.
// Global values are cached under an empty player ID.
type ValueCache struct {
	// mu orders Invalidate against Set so a value read before a reset
	// cannot be stored after the reset invalidated it
	mu  sync.RWMutex
	lru *expirable.LRU[entryKey, *cachedEntry]

	generation map[string]uint64
}

// New creates a cache holding at most size entries for ttl each
func New(size int, ttl time.Duration) *ValueCache {
	return &ValueCache{
		lru:        expirable.NewLRU[entryKey, *cachedEntry](size, nil, ttl),
		generation: make(map[string]uint64),
	}
}

// Get returns the cached value. A nil value with true means "known absent".
func (c *ValueCache) Get(variableKey, playerID string) (*domain.VariableValue, bool) {
	key := entryKey{variable: variableKey, player: playerID}
	entry, found := c.lru.Get(key)
	if !found {
		return nil, false
	}

	if entry.version != SchemaVersion {
		c.lru.Remove(key)
		return nil, false
	}

	return entry.value, true
}

// Generation returns a token that Set uses to refuse values loaded before an invalidation
func (c *ValueCache) Generation(variableKey string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation[variableKey]
}

// Set stores value if no invalidation of variableKey happened since gen was taken
func (c *ValueCache) Set(variableKey, playerID string, value *domain.VariableValue, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation[variableKey] != gen {
		return false
	}
	c.lru.Add(entryKey{variable: variableKey, player: playerID}, &cachedEntry{
		version:  SchemaVersion,
		value:    value,
		cachedAt: time.Now(),
	})
	return true
}

// Remove drops a single entry, used after a write
func (c *ValueCache) Remove(variableKey, playerID string) {
	c.lru.Remove(entryKey{variable: variableKey, player: playerID})
}

// Invalidate removes every entry of variableKey. Safe for concurrent use.
func (c *ValueCache) Invalidate(variableKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation[variableKey]++
	for _, key := range c.lru.Keys() {
		if key.variable == variableKey {
			c.lru.Remove(key)
		}
	}
}

// Len returns the number of cached entries
func (c *ValueCache) Len() int {
	return c.lru.Len()
}

// Clear removes all entries from the cache
func (c *ValueCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.generation {
		c.generation[key]++
	}
	c.lru.Purge()
}
