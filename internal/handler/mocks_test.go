package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/CycleVars_Go/internal/cycle"
	"github.com/osse101/CycleVars_Go/internal/domain"
	"github.com/osse101/CycleVars_Go/internal/variable"
)

type MockValueService struct {
	mock.Mock
}

func (m *MockValueService) Get(ctx context.Context, key, playerID string) (*domain.VariableValue, error) {
	args := m.Called(ctx, key, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VariableValue), args.Error(1)
}

func (m *MockValueService) Set(ctx context.Context, key, playerID, value string) (*domain.VariableValue, error) {
	args := m.Called(ctx, key, playerID, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VariableValue), args.Error(1)
}

type MockReloader struct {
	mock.Mock
}

func (m *MockReloader) Reload(ctx context.Context) (*variable.LoadResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*variable.LoadResult), args.Error(1)
}

type MockCycleEngine struct {
	mock.Mock
}

func (m *MockCycleEngine) Status() []cycle.VariableStatus {
	args := m.Called()
	return args.Get(0).([]cycle.VariableStatus)
}

func (m *MockCycleEngine) RunOnce(ctx context.Context) []cycle.Outcome {
	args := m.Called(ctx)
	return args.Get(0).([]cycle.Outcome)
}

func (m *MockCycleEngine) NextBoundary(def domain.VariableDefinition) (time.Time, error) {
	args := m.Called(def)
	return args.Get(0).(time.Time), args.Error(1)
}

type MockProgress struct {
	mock.Mock
}

func (m *MockProgress) Snapshot(ctx context.Context) ([]domain.ProgressEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProgressEntry), args.Error(1)
}

type staticDefinitions []domain.VariableDefinition

func (s staticDefinitions) Cycled() []domain.VariableDefinition {
	return s
}
