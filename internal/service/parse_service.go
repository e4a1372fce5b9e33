package service

import (
	"bytes"
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"mederror/internal/csvexport"
	"mederror/internal/dataset"
	"mederror/internal/domain"
	"mederror/internal/port"
	"mederror/internal/response"
	"mederror/internal/xlsxexport"
)

// ParseRequest names a response document and where its table goes.
type ParseRequest struct {
	DocumentURI string
	// OriginURI, when set, merges each row with its original input row.
	OriginURI string
	// OutputURI defaults to the document path with a _clean.csv suffix.
	OutputURI string
	// XLSXURI, when set, also writes the table as a workbook.
	XLSXURI string
	// Mode overrides the configured parse mode when non-empty.
	Mode domain.ParseMode
}

// ParseResult is the outcome of a parse run.
type ParseResult struct {
	Table     *domain.ResultTable
	OutputURI string
	XLSXURI   string
	Failures  int
	Dialects  map[domain.Dialect]int
}

// ParseService turns response documents into result tables.
type ParseService interface {
	Parse(ctx context.Context, req ParseRequest) (*ParseResult, error)
	ParseDocument(doc string, origin [][]string, mode domain.ParseMode) (*domain.ResultTable, error)
}

type parseService struct {
	store  port.ArtifactStore
	runs   *runRecorder
	mode   domain.ParseMode
	marker *regexp.Regexp
	bom    bool
	log    *zap.Logger
}

// ParseOptions carries the configured defaults for parsing and export.
type ParseOptions struct {
	Mode   domain.ParseMode
	Marker *regexp.Regexp
	BOM    bool
}

// NewParseService creates a ParseService. runRepo may be nil.
func NewParseService(store port.ArtifactStore, runRepo port.RunRepository, opts ParseOptions, log *zap.Logger) ParseService {
	mode := opts.Mode
	if mode == "" {
		mode = domain.ParseModeAuto
	}
	return &parseService{
		store:  store,
		runs:   newRunRecorder(runRepo, log),
		mode:   mode,
		marker: opts.Marker,
		bom:    opts.BOM,
		log:    log,
	}
}

func (s *parseService) parser(mode domain.ParseMode) (*response.Parser, error) {
	if mode == "" {
		mode = s.mode
	}
	opts := []response.Option{response.WithLogger(s.log)}
	if s.marker != nil {
		opts = append(opts, response.WithMarker(s.marker))
	}
	return response.New(mode, opts...)
}

// ParseDocument runs the parser over an in-memory document. origin may be nil.
func (s *parseService) ParseDocument(doc string, origin [][]string, mode domain.ParseMode) (*domain.ResultTable, error) {
	p, err := s.parser(mode)
	if err != nil {
		return nil, err
	}
	if origin != nil {
		return p.ParseWithOrigin(doc, origin)
	}
	return p.Parse(doc)
}

func (s *parseService) Parse(ctx context.Context, req ParseRequest) (*ParseResult, error) {
	mode := req.Mode
	if mode == "" {
		mode = s.mode
	}
	run := s.runs.start(ctx, domain.RunStageParse, "", mode, req.DocumentURI)
	result, err := s.parse(ctx, req, mode)
	if err != nil {
		s.runs.fail(ctx, run, err)
		return nil, err
	}
	if run != nil {
		run.ResultURI = result.OutputURI
		run.RowCount = result.Table.Len()
		run.FailureCount = result.Failures
		s.runs.complete(ctx, run)
	}
	return result, nil
}

func (s *parseService) parse(ctx context.Context, req ParseRequest, mode domain.ParseMode) (*ParseResult, error) {
	doc, err := s.store.Read(ctx, req.DocumentURI)
	if err != nil {
		return nil, fmt.Errorf("reading response document: %w", err)
	}

	var origin [][]string
	if req.OriginURI != "" {
		data, err := s.store.Read(ctx, req.OriginURI)
		if err != nil {
			return nil, fmt.Errorf("reading original input: %w", err)
		}
		origin, err = dataset.ReadOriginRows(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("reading original input %s: %w", req.OriginURI, err)
		}
	}

	table, err := s.ParseDocument(string(doc), origin, mode)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", req.DocumentURI, err)
	}

	result := &ParseResult{
		Table:    table,
		Failures: table.FailureCount(),
		Dialects: table.DialectCounts(),
	}
	s.log.Info("parse complete",
		zap.String("document", req.DocumentURI),
		zap.String("mode", string(mode)),
		zap.Int("rows", table.Len()),
		zap.Int("failures", result.Failures),
	)

	out := req.OutputURI
	if out == "" {
		out = csvexport.CleanPath(req.DocumentURI)
	}
	var buf bytes.Buffer
	if err := csvexport.WriteTable(&buf, table, s.bom); err != nil {
		return nil, fmt.Errorf("encoding result table: %w", err)
	}
	if result.OutputURI, err = s.store.Write(ctx, out, buf.Bytes(), "text/csv"); err != nil {
		return nil, fmt.Errorf("writing result table: %w", err)
	}

	if req.XLSXURI != "" {
		var xbuf bytes.Buffer
		if err := xlsxexport.Write(&xbuf, table, nil); err != nil {
			return nil, fmt.Errorf("encoding workbook: %w", err)
		}
		if result.XLSXURI, err = s.store.Write(ctx, req.XLSXURI, xbuf.Bytes(), xlsxContentType); err != nil {
			return nil, fmt.Errorf("writing workbook: %w", err)
		}
	}
	return result, nil
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
