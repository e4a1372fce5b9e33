package service

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"

	"mederror/internal/dataset"
	"mederror/internal/domain"
	"mederror/internal/metrics"
	"mederror/internal/port"
	"mederror/internal/taxonomy"
)

// EvaluateRequest names a result table and its gold labels. Empty column
// settings fall back to the configured defaults.
type EvaluateRequest struct {
	ResultURI     string
	GoldURI       string
	ResultColumn  string
	GoldColumn    string
	GoldDelimiter string
	CaseSensitive *bool
}

// EvaluationOptions are the configured scoring defaults.
type EvaluationOptions struct {
	ResultColumn  string
	GoldColumn    string
	GoldDelimiter string
	CaseSensitive bool
	Taxonomy      *taxonomy.Taxonomy
}

// EvaluationService scores parsed labels against gold labels.
type EvaluationService interface {
	Evaluate(ctx context.Context, req EvaluateRequest) (*domain.EvalReport, error)
	EvaluateLabels(pred, gold []string, caseSensitive bool) (*domain.EvalReport, error)
	EvaluatePredictions(ctx context.Context, pred []string, goldURI string) (*domain.EvalReport, error)
}

type evaluationService struct {
	store port.ArtifactStore
	runs  *runRecorder
	opts  EvaluationOptions
	log   *zap.Logger
}

// NewEvaluationService creates an EvaluationService. runRepo may be nil.
func NewEvaluationService(store port.ArtifactStore, runRepo port.RunRepository, opts EvaluationOptions, log *zap.Logger) EvaluationService {
	if opts.ResultColumn == "" {
		opts.ResultColumn = domain.PrimaryColumns[2]
	}
	if opts.GoldColumn == "" {
		opts.GoldColumn = "Human_Label"
	}
	if opts.GoldDelimiter == "" {
		opts.GoldDelimiter = "\t"
	}
	return &evaluationService{
		store: store,
		runs:  newRunRecorder(runRepo, log),
		opts:  opts,
		log:   log,
	}
}

func (s *evaluationService) EvaluateLabels(pred, gold []string, caseSensitive bool) (*domain.EvalReport, error) {
	return metrics.Report(pred, gold, metrics.Options{
		CaseSensitive: caseSensitive,
		Taxonomy:      s.opts.Taxonomy,
	})
}

// EvaluatePredictions scores in-memory labels against a gold file using the
// configured column, delimiter and case rules.
func (s *evaluationService) EvaluatePredictions(ctx context.Context, pred []string, goldURI string) (*domain.EvalReport, error) {
	gold, err := s.readGold(ctx, goldURI, s.opts.GoldColumn, s.opts.GoldDelimiter)
	if err != nil {
		return nil, err
	}
	return s.EvaluateLabels(pred, gold, s.opts.CaseSensitive)
}

func (s *evaluationService) readGold(ctx context.Context, uri, column, delimiter string) ([]string, error) {
	data, err := s.store.Read(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("reading gold file: %w", err)
	}
	return dataset.ReadGoldLabels(bytes.NewReader(data), column, delimiter)
}

func (s *evaluationService) Evaluate(ctx context.Context, req EvaluateRequest) (*domain.EvalReport, error) {
	run := s.runs.start(ctx, domain.RunStageEvaluate, "", "", req.ResultURI)
	report, err := s.evaluate(ctx, req)
	if err != nil {
		s.runs.fail(ctx, run, err)
		return nil, err
	}
	if run != nil {
		run.ResultURI = req.ResultURI
		run.RowCount = report.Rows
		run.FailureCount = report.SentinelCount
		run.SetMetrics(report.Metrics)
		s.runs.complete(ctx, run)
	}
	return report, nil
}

func (s *evaluationService) evaluate(ctx context.Context, req EvaluateRequest) (*domain.EvalReport, error) {
	resultColumn := pick(req.ResultColumn, s.opts.ResultColumn)
	goldColumn := pick(req.GoldColumn, s.opts.GoldColumn)
	delimiter := pick(req.GoldDelimiter, s.opts.GoldDelimiter)
	caseSensitive := s.opts.CaseSensitive
	if req.CaseSensitive != nil {
		caseSensitive = *req.CaseSensitive
	}

	resultData, err := s.store.Read(ctx, req.ResultURI)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}
	pred, err := dataset.ReadResultLabels(bytes.NewReader(resultData), resultColumn)
	if err != nil {
		return nil, err
	}
	gold, err := s.readGold(ctx, req.GoldURI, goldColumn, delimiter)
	if err != nil {
		return nil, err
	}

	report, err := s.EvaluateLabels(pred, gold, caseSensitive)
	if err != nil {
		return nil, err
	}
	s.log.Info("evaluation complete",
		zap.Int("rows", report.Rows),
		zap.Float64("accuracy", report.Metrics.Accuracy),
		zap.Float64("f1", report.Metrics.F1),
		zap.Int("failures", report.SentinelCount),
	)
	return report, nil
}

func pick(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
