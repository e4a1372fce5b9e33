package service

import (
	"context"

	"github.com/google/uuid"

	"mederror/internal/domain"
	"mederror/internal/port"
)

// RunService exposes recorded pipeline runs.
type RunService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.EvalRun, error)
	List(ctx context.Context, stage domain.RunStage, offset, limit int) ([]domain.EvalRun, int, error)
}

type runService struct {
	repo port.RunRepository
}

// NewRunService creates a RunService. With a nil repository every lookup
// reports domain.ErrPersistenceDisabled.
func NewRunService(repo port.RunRepository) RunService {
	return &runService{repo: repo}
}

func (s *runService) Get(ctx context.Context, id uuid.UUID) (*domain.EvalRun, error) {
	if s.repo == nil {
		return nil, domain.ErrPersistenceDisabled
	}
	return s.repo.GetByID(ctx, id)
}

func (s *runService) List(ctx context.Context, stage domain.RunStage, offset, limit int) ([]domain.EvalRun, int, error) {
	if s.repo == nil {
		return nil, 0, domain.ErrPersistenceDisabled
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, stage, offset, limit)
}
