package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mederror/internal/domain"
	"mederror/internal/port"
)

// runRecorder writes run records when a repository is configured. Recording
// failures are logged and never fail the run itself.
type runRecorder struct {
	repo port.RunRepository
	log  *zap.Logger
}

func newRunRecorder(repo port.RunRepository, log *zap.Logger) *runRecorder {
	return &runRecorder{repo: repo, log: log}
}

// start returns nil when recording is disabled.
func (r *runRecorder) start(ctx context.Context, stage domain.RunStage, model string, mode domain.ParseMode, source string) *domain.EvalRun {
	if r.repo == nil {
		return nil
	}
	run := &domain.EvalRun{
		ID:        uuid.New(),
		Stage:     stage,
		Model:     model,
		ParseMode: mode,
		Status:    domain.RunStatusRunning,
		SourceURI: source,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.repo.Create(ctx, run); err != nil {
		r.log.Warn("recording run start failed", zap.String("stage", string(stage)), zap.Error(err))
		return nil
	}
	return run
}

func (r *runRecorder) complete(ctx context.Context, run *domain.EvalRun) {
	if run == nil {
		return
	}
	now := time.Now().UTC()
	run.Status = domain.RunStatusCompleted
	run.CompletedAt = &now
	if err := r.repo.Complete(ctx, run); err != nil {
		r.log.Warn("recording run completion failed", zap.String("run_id", run.ID.String()), zap.Error(err))
	}
}

func (r *runRecorder) fail(ctx context.Context, run *domain.EvalRun, cause error) {
	if run == nil {
		return
	}
	run.Status = domain.RunStatusFailed
	run.ErrorMessage = cause.Error()
	// the caller's context may already be canceled
	if err := r.repo.Fail(context.WithoutCancel(ctx), run.ID, cause.Error()); err != nil {
		r.log.Warn("recording run failure failed", zap.String("run_id", run.ID.String()), zap.Error(err))
	}
}
