package presence

import (
	"sort"
	"sync"
	"time"

	"github.com/osse101/CycleVars_Go/internal/domain"
)

// Tracker records which players are online. The game-server glue calls Join and Leave;
// player-scope resets read Online to decide who receives post-reset actions.
type Tracker struct {
	mu      sync.RWMutex
	players map[string]*onlineInfo
}

type onlineInfo struct {
	player   domain.Player
	joinedAt time.Time
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{players: make(map[string]*onlineInfo)}
}

// Join marks a player online, updating the name if it changed
func (t *Tracker) Join(id, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if info, ok := t.players[id]; ok {
		info.player.Name = name
		return
	}
	t.players[id] = &onlineInfo{
		player:   domain.Player{ID: id, Name: name},
		joinedAt: time.Now(),
	}
}

// Leave marks a player offline. Leaving twice is a no-op.
func (t *Tracker) Leave(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.players[id]; !ok {
		return false
	}
	delete(t.players, id)
	return true
}

// IsOnline reports whether a player is online
func (t *Tracker) IsOnline(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.players[id]
	return ok
}

// Online returns a snapshot of online players ordered by join time
func (t *Tracker) Online() []domain.Player {
	t.mu.RLock()
	infos := make([]*onlineInfo, 0, len(t.players))
	for _, info := range t.players {
		infos = append(infos, info)
	}
	t.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].joinedAt.Equal(infos[j].joinedAt) {
			return infos[i].player.ID < infos[j].player.ID
		}
		return infos[i].joinedAt.Before(infos[j].joinedAt)
	})

	players := make([]domain.Player, len(infos))
	for i, info := range infos {
		players[i] = info.player
	}
	return players
}

// Count returns the number of online players
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.players)
}
