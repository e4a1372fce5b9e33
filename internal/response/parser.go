package response

import (
	"errors"
	"regexp"

	"go.uber.org/zap"

	"mederror/internal/domain"
)

// Parser turns a generated response document into a ResultTable. It holds no
// mutable state and does no I/O.
type Parser struct {
	mode       domain.ParseMode
	strategies []Strategy
	marker     *regexp.Regexp
	log        *zap.Logger
}

// Option customizes a Parser.
type Option func(*Parser)

// WithMarker overrides the block delimiter pattern.
func WithMarker(marker *regexp.Regexp) Option {
	return func(p *Parser) { p.marker = marker }
}

// WithLogger sets the logger used for per-block diagnostics at debug level.
func WithLogger(log *zap.Logger) Option {
	return func(p *Parser) { p.log = log }
}

// New creates a Parser that attempts the strategies registered for mode.
func New(mode domain.ParseMode, opts ...Option) (*Parser, error) {
	strategies, err := StrategiesFor(mode)
	if err != nil {
		return nil, err
	}
	p := &Parser{
		mode:       mode,
		strategies: strategies,
		marker:     defaultMarkerRe,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Mode returns the parse mode the parser was built for.
func (p *Parser) Mode() domain.ParseMode { return p.mode }

// Parse extracts one row per block. It returns domain.ErrNoData when the
// document holds no blocks.
func (p *Parser) Parse(doc string) (*domain.ResultTable, error) {
	blocks := SplitBlocks(doc, p.marker)
	if len(blocks) == 0 {
		return nil, domain.ErrNoData
	}

	rows := make([]domain.ParsedRow, len(blocks))
	for i, block := range blocks {
		rows[i] = p.parseBlock(i, block)
	}
	p.logSummary(rows)
	return domain.NewResultTable(rows, false), nil
}

// ParseWithOrigin extracts one row per block and appends the cells of the
// original input row at the same position. The block count must equal the
// number of origin rows; any disagreement is returned as a *MergeError.
func (p *Parser) ParseWithOrigin(doc string, origin [][]string) (*domain.ResultTable, error) {
	blocks := SplitBlocks(doc, p.marker)
	if len(blocks) == 0 {
		return nil, domain.ErrNoData
	}

	cursor := NewOriginCursor(origin)
	rows := make([]domain.ParsedRow, len(blocks))
	for i, block := range blocks {
		cells, err := cursor.Next()
		if err != nil {
			return nil, &MergeError{Blocks: len(blocks), Rows: len(origin), Err: err}
		}
		row := p.parseBlock(i, block)
		row.Origin = cells
		rows[i] = row
	}
	if cursor.Remaining() > 0 {
		return nil, &MergeError{Blocks: len(blocks), Rows: len(origin), Err: domain.ErrOriginUnconsumed}
	}

	p.logSummary(rows)
	return domain.NewResultTable(rows, true), nil
}

// ParseBlock runs the strategies against a single block, falling back to the
// sentinel row when none succeeds.
func (p *Parser) ParseBlock(block string) domain.ParsedRow {
	return p.parseBlock(-1, block)
}

func (p *Parser) parseBlock(idx int, block string) domain.ParsedRow {
	var reasons []string
	for _, s := range p.strategies {
		fields, dialect, err := s.Extract(block)
		if err == nil {
			return fields.row(dialect)
		}
		var extractErr *ExtractError
		if errors.As(err, &extractErr) {
			reasons = append(reasons, extractErr.Error())
		} else {
			reasons = append(reasons, err.Error())
		}
	}

	if ce := p.log.Check(zap.DebugLevel, "response block not parsed"); ce != nil {
		ce.Write(zap.Int("block", idx+1), zap.Strings("reasons", reasons), zap.Int("length", len(block)))
	}
	return domain.SentinelRow()
}

func (p *Parser) logSummary(rows []domain.ParsedRow) {
	failures := 0
	for _, r := range rows {
		if r.IsSentinel() {
			failures++
		}
	}
	p.log.Debug("response document parsed",
		zap.String("mode", string(p.mode)),
		zap.Int("rows", len(rows)),
		zap.Int("failures", failures),
	)
}
