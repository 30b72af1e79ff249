package deletion

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/CycleVars_Go/internal/domain"
)

// MockVariableRepository implements repository.Variable for testing
type MockVariableRepository struct {
	mock.Mock
}

func (m *MockVariableRepository) GetGlobalValue(ctx context.Context, key string) (*domain.VariableValue, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VariableValue), args.Error(1)
}

func (m *MockVariableRepository) SetGlobalValue(ctx context.Context, key, value string, at time.Time) error {
	args := m.Called(ctx, key, value, at)
	return args.Error(0)
}

func (m *MockVariableRepository) GetPlayerValue(ctx context.Context, playerID, key string) (*domain.VariableValue, error) {
	args := m.Called(ctx, playerID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VariableValue), args.Error(1)
}

func (m *MockVariableRepository) SetPlayerValue(ctx context.Context, playerID, key, value string, at time.Time) error {
	args := m.Called(ctx, playerID, key, value, at)
	return args.Error(0)
}

func (m *MockVariableRepository) DeleteGlobal(ctx context.Context, key string, before time.Time) (int64, error) {
	args := m.Called(ctx, key, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVariableRepository) DeletePlayerBatch(ctx context.Context, key string, before time.Time, limit int) (int64, error) {
	args := m.Called(ctx, key, before, limit)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVariableRepository) EarliestModifiedAt(ctx context.Context, scope domain.Scope, key string) (*time.Time, error) {
	args := m.Called(ctx, scope, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}
