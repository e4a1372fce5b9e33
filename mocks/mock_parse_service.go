package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mederror/internal/domain"
	"mederror/internal/service"
)

// MockParseService is a mock implementation of service.ParseService.
type MockParseService struct {
	mock.Mock
}

func (m *MockParseService) Parse(ctx context.Context, req service.ParseRequest) (*service.ParseResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ParseResult), args.Error(1)
}

func (m *MockParseService) ParseDocument(doc string, origin [][]string, mode domain.ParseMode) (*domain.ResultTable, error) {
	args := m.Called(doc, origin, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResultTable), args.Error(1)
}
