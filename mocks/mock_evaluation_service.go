package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mederror/internal/domain"
	"mederror/internal/service"
)

// MockEvaluationService is a mock implementation of service.EvaluationService.
type MockEvaluationService struct {
	mock.Mock
}

func (m *MockEvaluationService) Evaluate(ctx context.Context, req service.EvaluateRequest) (*domain.EvalReport, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EvalReport), args.Error(1)
}

func (m *MockEvaluationService) EvaluateLabels(pred, gold []string, caseSensitive bool) (*domain.EvalReport, error) {
	args := m.Called(pred, gold, caseSensitive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EvalReport), args.Error(1)
}

func (m *MockEvaluationService) EvaluatePredictions(ctx context.Context, pred []string, goldURI string) (*domain.EvalReport, error) {
	args := m.Called(ctx, pred, goldURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EvalReport), args.Error(1)
}
