package port

import (
	"context"

	"github.com/google/uuid"

	"mederror/internal/domain"
)

// RunRepository persists pipeline run records.
type RunRepository interface {
	Create(ctx context.Context, run *domain.EvalRun) error
	Complete(ctx context.Context, run *domain.EvalRun) error
	Fail(ctx context.Context, id uuid.UUID, message string) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EvalRun, error)
	List(ctx context.Context, stage domain.RunStage, offset, limit int) ([]domain.EvalRun, int, error)
}
