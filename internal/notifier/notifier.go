package notifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/osse101/CycleVars_Go/internal/cache"
	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/logger"
	"github.com/osse101/CycleVars_Go/internal/metrics"
)

// ActionRunner starts a definition's post-reset actions
type ActionRunner interface {
	Run(ctx context.Context, def domain.VariableDefinition, player *domain.Player) error
}

// OnlinePlayers lists the players that receive player-scope actions
type OnlinePlayers interface {
	Online() []domain.Player
}

// Listener is called once per (variable, player) after a committed reset.
// player is nil for global variables.
type Listener func(ctx context.Context, def domain.VariableDefinition, player *domain.Player)

// Notifier tells the rest of the process that a variable was reset:
// it drops cached values and fires post-reset actions and listeners.
// Action failures never propagate to the caller.
type Notifier struct {
	cache    cache.Invalidator
	runner   ActionRunner
	presence OnlinePlayers

	mu        sync.RWMutex
	listeners []Listener
}

// New creates a Notifier. runner and presence may be nil.
func New(c cache.Invalidator, runner ActionRunner, presence OnlinePlayers) *Notifier {
	return &Notifier{cache: c, runner: runner, presence: presence}
}

// OnReset registers a listener
func (n *Notifier) OnReset(l Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

// Invalidate drops every cached value of variableKey
func (n *Notifier) Invalidate(ctx context.Context, variableKey string) {
	if n.cache == nil {
		return
	}
	n.cache.Invalidate(variableKey)
	logger.FromContext(ctx).Debug(LogMsgCacheInvalidated, "variable", variableKey)
}

// NotifyReset fires actions and listeners for one committed boundary: once without a
// player for a global variable, once per online player for a player variable.
// It returns the number of runs started.
func (n *Notifier) NotifyReset(ctx context.Context, def domain.VariableDefinition) int {
	log := logger.FromContext(ctx)

	if def.Scope == domain.ScopeGlobal {
		n.notifyOne(ctx, def, nil)
		return 1
	}

	var players []domain.Player
	if n.presence != nil {
		players = n.presence.Online()
	}
	if len(players) == 0 {
		log.Debug(LogMsgNoPlayersOnline, "variable", def.Key)
		return 0
	}

	for i := range players {
		n.notifyOne(ctx, def, &players[i])
	}
	log.Debug(LogMsgResetNotified, "variable", def.Key, "players", len(players))
	return len(players)
}

func (n *Notifier) notifyOne(ctx context.Context, def domain.VariableDefinition, player *domain.Player) {
	if err := n.RunPostResetActions(ctx, def, player); err != nil {
		attrs := []any{"variable", def.Key, "error", err}
		if player != nil {
			attrs = append(attrs, "player", player.ID)
		}
		logger.FromContext(ctx).Warn(LogMsgActionsFailed, attrs...)
	}

	n.mu.RLock()
	listeners := n.listeners
	n.mu.RUnlock()
	for _, l := range listeners {
		n.callListener(ctx, l, def, player)
	}
}

// RunPostResetActions starts def's actions for player (nil for none).
// Errors and panics come back wrapped in domain.ErrActionExecution.
func (n *Notifier) RunPostResetActions(ctx context.Context, def domain.VariableDefinition, player *domain.Player) (err error) {
	if n.runner == nil || len(def.ResetActions) == 0 {
		return nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: panic: %v", domain.ErrActionExecution, rec)
		}
		if err != nil {
			metrics.ActionFailuresTotal.WithLabelValues(def.Key).Inc()
		}
	}()

	if err := n.runner.Run(ctx, def, player); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrActionExecution, err)
	}
	return nil
}

func (n *Notifier) callListener(ctx context.Context, l Listener, def domain.VariableDefinition, player *domain.Player) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.FromContext(ctx).Error(LogMsgListenerPanicked, "variable", def.Key, "panic", rec)
		}
	}()
	l(ctx, def, player)
}
