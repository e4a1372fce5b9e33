package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"mederror/internal/domain"
)

// MockRunService is a mock implementation of service.RunService.
type MockRunService struct {
	mock.Mock
}

func (m *MockRunService) Get(ctx context.Context, id uuid.UUID) (*domain.EvalRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EvalRun), args.Error(1)
}

func (m *MockRunService) List(ctx context.Context, stage domain.RunStage, offset, limit int) ([]domain.EvalRun, int, error) {
	args := m.Called(ctx, stage, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.EvalRun), args.Int(1), args.Error(2)
}
