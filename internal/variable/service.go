package variable

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/osse101/CycleVars_Go/internal/cache"
	"github.com/osse101/CycleVars_Go/internal/clock"
	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/logger"
	"github.com/osse101/CycleVars_Go/internal/repository"
)

// Definitions looks up variable definitions
type Definitions interface {
	Get(key string) (domain.VariableDefinition, error)
}

// Service reads and writes variable values through the process-local cache.
// Concurrent misses for the same value share one store read.
type Service struct {
	defs  Definitions
	repo  repository.Variable
	cache *cache.ValueCache
	clock clock.Source
	group singleflight.Group
}

// NewService creates a value service
func NewService(defs Definitions, repo repository.Variable, c *cache.ValueCache, clk clock.Source) *Service {
	return &Service{defs: defs, repo: repo, cache: c, clock: clk}
}

// Get returns the current value of key for playerID (empty for global variables).
// domain.ErrValueNotFound means the variable has no value in the current cycle.
func (s *Service) Get(ctx context.Context, key, playerID string) (*domain.VariableValue, error) {
	def, err := s.definition(key, playerID)
	if err != nil {
		return nil, err
	}

	if v, found := s.cache.Get(key, playerID); found {
		if v == nil {
			return nil, domain.ErrValueNotFound
		}
		return v, nil
	}

	res, err, _ := s.group.Do(key+"\x00"+playerID, func() (interface{}, error) {
		gen := s.cache.Generation(key)
		v, err := s.load(ctx, def, playerID)
		if err != nil && !errors.Is(err, domain.ErrValueNotFound) {
			return nil, err
		}
		s.cache.Set(key, playerID, v, gen)
		return v, nil
	})
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgValueLoadFailed, "variable", key, "error", err)
		return nil, err
	}

	v := res.(*domain.VariableValue)
	if v == nil {
		return nil, domain.ErrValueNotFound
	}
	return v, nil
}

// Set stores value for key and playerID, stamped with the current time
func (s *Service) Set(ctx context.Context, key, playerID, value string) (*domain.VariableValue, error) {
	def, err := s.definition(key, playerID)
	if err != nil {
		return nil, err
	}
	if len(value) > MaxValueLength {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgValueTooLong)
	}

	now := s.clock.Now().UTC()
	if def.Scope == domain.ScopeGlobal {
		err = s.repo.SetGlobalValue(ctx, key, value, now)
	} else {
		err = s.repo.SetPlayerValue(ctx, playerID, key, value, now)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransientStore, err)
	}

	s.cache.Remove(key, playerID)
	return &domain.VariableValue{Key: key, PlayerID: playerID, Value: value, UpdatedAt: now}, nil
}

func (s *Service) definition(key, playerID string) (domain.VariableDefinition, error) {
	def, err := s.defs.Get(key)
	if err != nil {
		return def, err
	}
	if (def.Scope == domain.ScopePlayer) != (playerID != "") {
		return def, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgScopeMismatch)
	}
	return def, nil
}

func (s *Service) load(ctx context.Context, def domain.VariableDefinition, playerID string) (*domain.VariableValue, error) {
	var (
		v   *domain.VariableValue
		err error
	)
	if def.Scope == domain.ScopeGlobal {
		v, err = s.repo.GetGlobalValue(ctx, def.Key)
	} else {
		v, err = s.repo.GetPlayerValue(ctx, playerID, def.Key)
	}
	if errors.Is(err, domain.ErrValueNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransientStore, err)
	}
	return v, nil
}
