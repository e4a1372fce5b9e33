package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mederror/internal/csvexport"
	"mederror/internal/dataset"
	"mederror/internal/domain"
	"mederror/internal/port"
	"mederror/internal/xlsxexport"
)

// PipelineRequest drives generate, parse and evaluate in one invocation.
type PipelineRequest struct {
	InputURI    string
	OutputURI   string
	GoldURI     string
	XLSXURI     string
	Instruction string
	Mode        domain.ParseMode
}

// PipelineResult collects what each stage produced.
type PipelineResult struct {
	RunID       uuid.UUID
	DocumentURI string
	TableURI    string
	XLSXURI     string
	Generation  *GenerateResult
	Table       *domain.ResultTable
	Report      *domain.EvalReport
}

// PipelineService chains generation, parsing and evaluation.
type PipelineService interface {
	Run(ctx context.Context, req PipelineRequest) (*PipelineResult, error)
}

type pipelineService struct {
	store      port.ArtifactStore
	generation GenerationService
	parse      ParseService
	evaluation EvaluationService
	runs       *runRecorder
	model      string
	bom        bool
	log        *zap.Logger
}

// NewPipelineService creates a PipelineService. Stage services are used
// through their in-memory entry points so only the pipeline run is recorded.
func NewPipelineService(
	store port.ArtifactStore,
	generation GenerationService,
	parse ParseService,
	evaluation EvaluationService,
	runRepo port.RunRepository,
	model string,
	bom bool,
	log *zap.Logger,
) PipelineService {
	return &pipelineService{
		store:      store,
		generation: generation,
		parse:      parse,
		evaluation: evaluation,
		runs:       newRunRecorder(runRepo, log),
		model:      model,
		bom:        bom,
		log:        log,
	}
}

func (s *pipelineService) Run(ctx context.Context, req PipelineRequest) (*PipelineResult, error) {
	run := s.runs.start(ctx, domain.RunStagePipeline, s.model, req.Mode, req.InputURI)
	result, err := s.run(ctx, req)
	if err != nil {
		s.runs.fail(ctx, run, err)
		return nil, err
	}
	if run != nil {
		result.RunID = run.ID
		run.ResultURI = result.TableURI
		run.RowCount = result.Table.Len()
		run.FailureCount = result.Table.FailureCount()
		if result.Generation.Model != "" {
			run.Model = result.Generation.Model
		}
		if result.Report != nil {
			run.SetMetrics(result.Report.Metrics)
		}
		s.runs.complete(ctx, run)
	} else {
		result.RunID = uuid.New()
	}
	return result, nil
}

func (s *pipelineService) run(ctx context.Context, req PipelineRequest) (*PipelineResult, error) {
	data, err := s.store.Read(ctx, req.InputURI)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	origin, err := dataset.ReadOriginRows(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading input %s: %w", req.InputURI, err)
	}

	gen, err := s.generation.GenerateDocument(ctx, origin, req.Instruction)
	if err != nil {
		return nil, err
	}
	result := &PipelineResult{Generation: gen}
	if result.DocumentURI, err = s.store.Write(ctx, req.OutputURI, []byte(gen.Document), "text/plain; charset=utf-8"); err != nil {
		return nil, fmt.Errorf("writing response document: %w", err)
	}

	table, err := s.parse.ParseDocument(gen.Document, origin, req.Mode)
	if err != nil {
		return nil, fmt.Errorf("parsing generated document: %w", err)
	}
	result.Table = table

	var buf bytes.Buffer
	if err := csvexport.WriteTable(&buf, table, s.bom); err != nil {
		return nil, fmt.Errorf("encoding result table: %w", err)
	}
	if result.TableURI, err = s.store.Write(ctx, csvexport.CleanPath(req.OutputURI), buf.Bytes(), "text/csv"); err != nil {
		return nil, fmt.Errorf("writing result table: %w", err)
	}

	if req.GoldURI != "" {
		if result.Report, err = s.evaluation.EvaluatePredictions(ctx, table.ErrorClasses(), req.GoldURI); err != nil {
			return nil, fmt.Errorf("evaluating: %w", err)
		}
	}

	if req.XLSXURI != "" {
		var xbuf bytes.Buffer
		if err := xlsxexport.Write(&xbuf, table, result.Report); err != nil {
			return nil, fmt.Errorf("encoding workbook: %w", err)
		}
		if result.XLSXURI, err = s.store.Write(ctx, req.XLSXURI, xbuf.Bytes(), xlsxContentType); err != nil {
			return nil, fmt.Errorf("writing workbook: %w", err)
		}
	}

	s.log.Info("pipeline complete",
		zap.Int("rows", table.Len()),
		zap.Int("failures", table.FailureCount()),
		zap.String("table", result.TableURI),
	)
	return result, nil
}
