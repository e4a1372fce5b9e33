package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mederror/internal/dataset"
	"mederror/internal/domain"
	"mederror/internal/generator"
	"mederror/internal/port"
)

// GenerateRequest names the candidate-error input and the response document
// to produce.
type GenerateRequest struct {
	InputURI    string
	OutputURI   string
	Instruction string
}

// GenerateResult summarises one generation run.
type GenerateResult struct {
	OutputURI string
	Document  string
	Rows      int
	Failures  int
	Model     string
}

// GenerationService sends every input row to the classifier and writes the
// answers as a marker-delimited response document.
type GenerationService interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	GenerateDocument(ctx context.Context, origin [][]string, instruction string) (*GenerateResult, error)
}

type generationService struct {
	gen         port.Generator
	store       port.ArtifactStore
	runs        *runRecorder
	model       string
	concurrency int
	log         *zap.Logger
}

// NewGenerationService creates a GenerationService. model is recorded on run
// records; runRepo may be nil.
func NewGenerationService(
	gen port.Generator,
	store port.ArtifactStore,
	runRepo port.RunRepository,
	model string,
	concurrency int,
	log *zap.Logger,
) GenerationService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &generationService{
		gen:         gen,
		store:       store,
		runs:        newRunRecorder(runRepo, log),
		model:       model,
		concurrency: concurrency,
		log:         log,
	}
}

func (s *generationService) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	run := s.runs.start(ctx, domain.RunStageGenerate, s.model, "", req.InputURI)

	data, err := s.store.Read(ctx, req.InputURI)
	if err != nil {
		s.runs.fail(ctx, run, err)
		return nil, fmt.Errorf("reading input: %w", err)
	}
	origin, err := dataset.ReadOriginRows(bytes.NewReader(data))
	if err != nil {
		s.runs.fail(ctx, run, err)
		return nil, fmt.Errorf("reading input %s: %w", req.InputURI, err)
	}

	result, err := s.GenerateDocument(ctx, origin, req.Instruction)
	if err != nil {
		s.runs.fail(ctx, run, err)
		return nil, err
	}

	loc, err := s.store.Write(ctx, req.OutputURI, []byte(result.Document), "text/plain; charset=utf-8")
	if err != nil {
		s.runs.fail(ctx, run, err)
		return nil, fmt.Errorf("writing response document: %w", err)
	}
	result.OutputURI = loc

	if run != nil {
		run.ResultURI = loc
		run.RowCount = result.Rows
		run.FailureCount = result.Failures
		s.runs.complete(ctx, run)
	}
	return result, nil
}

type answer struct {
	text   string
	failed bool
	model  string
}

// GenerateDocument classifies origin rows concurrently and assembles the
// answers in row order. A row that cannot be processed becomes an error
// answer; only cancellation of ctx aborts the run.
func (s *generationService) GenerateDocument(ctx context.Context, origin [][]string, instruction string) (*GenerateResult, error) {
	if instruction == "" {
		instruction = generator.DefaultInstruction()
	}

	answers := make([]answer, len(origin))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range origin {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			ans, err := s.classify(gctx, i, origin[i], instruction)
			if err != nil {
				return err
			}
			answers[i] = ans
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generation aborted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generation aborted: %w", err)
	}

	result := &GenerateResult{Rows: len(origin), Model: s.model}
	var b strings.Builder
	for i, a := range answers {
		fmt.Fprintf(&b, "###### %d\n%s\n", i+1, a.text)
		if a.failed {
			result.Failures++
		}
		if a.model != "" {
			result.Model = a.model
		}
	}
	result.Document = b.String()

	s.log.Info("generation complete",
		zap.Int("rows", result.Rows),
		zap.Int("failures", result.Failures),
		zap.String("model", result.Model),
	)
	return result, nil
}

// classify returns an error only when ctx is done.
func (s *generationService) classify(ctx context.Context, idx int, cells []string, instruction string) (answer, error) {
	row, err := dataset.InputRowFromOrigin(cells)
	if err != nil {
		err = fmt.Errorf("row %d has %w", idx+2, err)
		return s.failed(idx, cells, err), nil
	}

	out, err := s.gen.Generate(ctx, port.GenerateInput{
		SystemPrompt: instruction,
		UserPrompt:   generator.BuildUserPrompt(row),
	})
	if err != nil {
		if ctx.Err() != nil {
			return answer{}, ctx.Err()
		}
		return s.failed(idx, cells, err), nil
	}
	return answer{text: strings.TrimSpace(out.Text), model: out.ModelUsed}, nil
}

func (s *generationService) failed(idx int, cells []string, err error) answer {
	s.log.Warn("row classification failed", zap.Int("row", idx+1), zap.Error(err))
	return answer{text: FailureAnswer(cells, err), failed: true}
}

// FailureAnswer is the block body written for a row that could not be
// classified. It keeps the sentence and prediction so the row stays readable.
func FailureAnswer(cells []string, err error) string {
	sentence, prediction := domain.Placeholder, domain.Placeholder
	if len(cells) > 1 {
		sentence = cells[1]
	}
	if len(cells) > 2 {
		prediction = cells[2]
	}
	return fmt.Sprintf("%s\t%s\tError\tError: Unable to process - %s", sentence, prediction, err)
}
