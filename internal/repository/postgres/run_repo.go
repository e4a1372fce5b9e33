package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mederror/internal/domain"
	"mederror/internal/port"
)

type runRepo struct {
	db *sqlx.DB
}

// NewRunRepo creates a new PostgreSQL-backed RunRepository.
func NewRunRepo(db *sqlx.DB) port.RunRepository {
	return &runRepo{db: db}
}

func (r *runRepo) Create(ctx context.Context, run *domain.EvalRun) error {
	query := `INSERT INTO eval_runs (id, stage, model, parse_mode, status, source_uri, result_uri,
		row_count, failure_count, error_message, created_at)
		VALUES (:id, :stage, :model, :parse_mode, :status, :source_uri, :result_uri,
		:row_count, :failure_count, :error_message, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("runRepo.Create: %w", err)
	}
	return nil
}

func (r *runRepo) Complete(ctx context.Context, run *domain.EvalRun) error {
	query := `UPDATE eval_runs SET status = :status, model = :model, result_uri = :result_uri,
		row_count = :row_count, failure_count = :failure_count,
		accuracy = :accuracy, precision_score = :precision_score, recall = :recall, f1 = :f1,
		completed_at = :completed_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, run)
	if err != nil {
		return fmt.Errorf("runRepo.Complete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *runRepo) Fail(ctx context.Context, id uuid.UUID, message string) error {
	query := `UPDATE eval_runs SET status = $1, error_message = $2, completed_at = NOW() WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, domain.RunStatusFailed, message, id)
	if err != nil {
		return fmt.Errorf("runRepo.Fail: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *runRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.EvalRun, error) {
	var run domain.EvalRun
	err := r.db.GetContext(ctx, &run, "SELECT * FROM eval_runs WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("runRepo.GetByID: %w", err)
	}
	return &run, nil
}

// List returns runs newest first. An empty stage lists every stage.
func (r *runRepo) List(ctx context.Context, stage domain.RunStage, offset, limit int) ([]domain.EvalRun, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM eval_runs WHERE ($1 = '' OR stage = $1)", stage)
	if err != nil {
		return nil, 0, fmt.Errorf("runRepo.List count: %w", err)
	}

	var runs []domain.EvalRun
	err = r.db.SelectContext(ctx, &runs,
		"SELECT * FROM eval_runs WHERE ($1 = '' OR stage = $1) ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		stage, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("runRepo.List: %w", err)
	}
	return runs, total, nil
}
