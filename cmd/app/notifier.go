package main

import (
	"context"
	"log/slog"

	"github.com/osse101/CycleVars_Go/internal/action"
	"github.com/osse101/CycleVars_Go/internal/cache"
	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/notifier"
	"github.com/osse101/CycleVars_Go/internal/presence"
)

// notifierFor wires the reset notifier and logs every completed reset at debug level
func notifierFor(c *cache.ValueCache, runner *action.Runner, tracker *presence.Tracker) *notifier.Notifier {
	n := notifier.New(c, runner, tracker)
	n.OnReset(func(ctx context.Context, def domain.VariableDefinition, player *domain.Player) {
		if player == nil {
			slog.Debug("Variable reset", "variable", def.Key)
			return
		}
		slog.Debug("Variable reset for player", "variable", def.Key, "player", player.ID)
	})
	return n
}
