package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/CycleVars_Go/internal/domain"
)

func TestValueCache_GetSet(t *testing.T) {
	c := New(10, time.Minute)

	_, found := c.Get("daily_kills", "p1")
	assert.False(t, found)

	value := &domain.VariableValue{Key: "daily_kills", PlayerID: "p1", Value: "3"}
	require.True(t, c.Set("daily_kills", "p1", value, c.Generation("daily_kills")))

	got, found := c.Get("daily_kills", "p1")
	require.True(t, found)
	assert.Equal(t, "3", got.Value)

	require.True(t, c.Set("event_total", "", nil, c.Generation("event_total")))
	got, found = c.Get("event_total", "")
	assert.True(t, found, "absence is cached too")
	assert.Nil(t, got)
}

func TestValueCache_InvalidateRemovesAllPlayers(t *testing.T) {
	c := New(100, time.Minute)

	for i := 0; i < 5; i++ {
		player := fmt.Sprintf("p%d", i)
		c.Set("daily_kills", player, &domain.VariableValue{Value: "1"}, c.Generation("daily_kills"))
		c.Set("lifetime_kills", player, &domain.VariableValue{Value: "9"}, c.Generation("lifetime_kills"))
	}
	assert.Equal(t, 10, c.Len())

	c.Invalidate("daily_kills")

	assert.Equal(t, 5, c.Len())
	_, found := c.Get("daily_kills", "p0")
	assert.False(t, found)
	_, found = c.Get("lifetime_kills", "p0")
	assert.True(t, found)
}

func TestValueCache_StaleSetAfterInvalidate(t *testing.T) {
	c := New(10, time.Minute)

	gen := c.Generation("daily_kills")
	c.Invalidate("daily_kills")

	stored := c.Set("daily_kills", "p1", &domain.VariableValue{Value: "old"}, gen)
	assert.False(t, stored)
	_, found := c.Get("daily_kills", "p1")
	assert.False(t, found)
}

func TestValueCache_Expiry(t *testing.T) {
	c := New(10, 20*time.Millisecond)
	c.Set("daily_kills", "p1", &domain.VariableValue{Value: "1"}, 0)

	assert.Eventually(t, func() bool {
		_, found := c.Get("daily_kills", "p1")
		return !found
	}, time.Second, 10*time.Millisecond)
}

func TestValueCache_ConcurrentInvalidate(t *testing.T) {
	c := New(1000, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("var_%d", n%4)
			for j := 0; j < 100; j++ {
				c.Set(key, fmt.Sprintf("p%d", j), &domain.VariableValue{Value: "x"}, c.Generation(key))
				if j%10 == 0 {
					c.Invalidate(key)
				}
			}
		}(i)
	}
	wg.Wait()

	c.Clear()
	assert.Equal(t, 0, c.Len())
}
