package repository

import (
	"context"
	"time"

	"github.com/osse101/CycleVars_Go/internal/domain"
)

// Progress defines the persisted mapping of progress keys to processed boundaries
type Progress interface {
	// GetProgress returns nil when the key has never been committed
	GetProgress(ctx context.Context, key string) (*time.Time, error)
	// AdvanceProgress stores boundary only if it is after the stored value.
	// It reports whether the stored value changed.
	AdvanceProgress(ctx context.Context, key string, boundary time.Time) (bool, error)
	// OverwriteProgress stores boundary unconditionally
	OverwriteProgress(ctx context.Context, key string, boundary time.Time) error
	DeleteProgress(ctx context.Context, key string) error
	ListProgress(ctx context.Context) ([]domain.ProgressEntry, error)
}
