package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/osse101/CycleVars_Go/internal/clock"
	"github.com/osse101/CycleVars_Go/internal/concurrency"
	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/logger"
	"github.com/osse101/CycleVars_Go/internal/repository"
)

// EarliestLookup finds the oldest stored write of a variable, used to seed new progress
type EarliestLookup interface {
	EarliestModifiedAt(ctx context.Context, scope domain.Scope, key string) (*time.Time, error)
}

// Store is the durable record of the last fully processed boundary per progress key.
// Writes are serialized per key and only move forward, except Rewind.
type Store struct {
	repo   repository.Progress
	lookup EarliestLookup
	clock  clock.Source
	locks  *concurrency.LockManager
}

// NewStore creates a Store
func NewStore(repo repository.Progress, lookup EarliestLookup, clk clock.Source) *Store {
	return &Store{
		repo:   repo,
		lookup: lookup,
		clock:  clk,
		locks:  concurrency.NewLockManager(),
	}
}

// Get returns the committed boundary for key, or nil if none was committed yet
func (s *Store) Get(ctx context.Context, key string) (*time.Time, error) {
	t, err := s.repo.GetProgress(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransientStore, err)
	}
	return t, nil
}

// Set commits boundary for key. A boundary at or before the stored one is a no-op.
// It returns once the write is durable.
func (s *Store) Set(ctx context.Context, key string, boundary time.Time) (bool, error) {
	if !domain.IsValidProgressKey(key) {
		return false, fmt.Errorf("%w: %s %q", domain.ErrInvalidInput, ErrMsgInvalidKey, key)
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	changed, err := s.repo.AdvanceProgress(ctx, key, boundary)
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrTransientStore, err)
	}
	if changed {
		logger.FromContext(ctx).Debug(LogMsgProgressAdvanced, "key", key, "boundary", boundary.UTC())
	}
	return changed, nil
}

// Rewind overwrites key with an earlier boundary. Only clock-skew correction uses it,
// and the boundary may never be in the future.
func (s *Store) Rewind(ctx context.Context, key string, boundary time.Time) error {
	if !domain.IsValidProgressKey(key) {
		return fmt.Errorf("%w: %s %q", domain.ErrInvalidInput, ErrMsgInvalidKey, key)
	}
	if boundary.After(s.clock.Now()) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgRewindIntoFuture)
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	if err := s.repo.OverwriteProgress(ctx, key, boundary); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransientStore, err)
	}
	logger.FromContext(ctx).Info(LogMsgProgressRewound, "key", key, "boundary", boundary.UTC())
	return nil
}

// Delete forgets key so the next tick seeds it again
func (s *Store) Delete(ctx context.Context, key string) error {
	unlock := s.locks.Lock(key)
	defer unlock()

	if err := s.repo.DeleteProgress(ctx, key); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransientStore, err)
	}
	logger.FromContext(ctx).Info(LogMsgProgressDeleted, "key", key)
	return nil
}

// EarliestDataTimestamp returns the oldest stored write of a variable, or nil
func (s *Store) EarliestDataTimestamp(ctx context.Context, scope domain.Scope, variableKey string) (*time.Time, error) {
	if s.lookup == nil {
		return nil, nil
	}
	t, err := s.lookup.EarliestModifiedAt(ctx, scope, variableKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransientStore, err)
	}
	return t, nil
}

// Snapshot lists every committed entry
func (s *Store) Snapshot(ctx context.Context) ([]domain.ProgressEntry, error) {
	entries, err := s.repo.ListProgress(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransientStore, err)
	}
	return entries, nil
}
