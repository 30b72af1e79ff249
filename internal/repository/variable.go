package repository

import (
	"context"
	"time"

	"github.com/osse101/CycleVars_Go/internal/domain"
)

// Variable defines the data access interface for stored variable values
type Variable interface {
	GetGlobalValue(ctx context.Context, key string) (*domain.VariableValue, error)
	SetGlobalValue(ctx context.Context, key, value string, at time.Time) error
	GetPlayerValue(ctx context.Context, playerID, key string) (*domain.VariableValue, error)
	SetPlayerValue(ctx context.Context, playerID, key, value string, at time.Time) error

	// DeleteGlobal removes the global value of key last written before boundary
	DeleteGlobal(ctx context.Context, key string, before time.Time) (int64, error)
	// DeletePlayerBatch removes at most limit player values of key last written before boundary
	DeletePlayerBatch(ctx context.Context, key string, before time.Time, limit int) (int64, error)
	// EarliestModifiedAt returns the oldest write time for key in scope, or nil when no rows exist
	EarliestModifiedAt(ctx context.Context, scope domain.Scope, key string) (*time.Time, error)
}
