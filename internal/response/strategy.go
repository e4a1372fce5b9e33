package response

import (
	"errors"
	"fmt"
	"strings"

	"mederror/internal/domain"
)

// ErrNoMatch is wrapped by every extraction failure.
var ErrNoMatch = errors.New("no recognizable answer structure")

// Fields are the four primary values recovered from a block.
type Fields struct {
	Sentence      string
	NLPPrediction string
	ErrorClass    string
	Reasoning     string
}

func (f Fields) row(d domain.Dialect) domain.ParsedRow {
	return domain.ParsedRow{
		Sentence:      f.Sentence,
		NLPPrediction: f.NLPPrediction,
		ErrorClass:    f.ErrorClass,
		Reasoning:     f.Reasoning,
		Dialect:       d,
	}
}

func fieldsFromCells(cells []string) Fields {
	return Fields{Sentence: cells[0], NLPPrediction: cells[1], ErrorClass: cells[2], Reasoning: cells[3]}
}

// ExtractError reports why a strategy could not recover Fields from a block.
type ExtractError struct {
	Dialect domain.Dialect
	Reason  string
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("%s: %s", e.Dialect, e.Reason)
}

func (e *ExtractError) Unwrap() error {
	return ErrNoMatch
}

func noMatch(d domain.Dialect, reason string) *ExtractError {
	return &ExtractError{Dialect: d, Reason: reason}
}

// Strategy recovers Fields from a single block of model output. Extract is
// total: it returns Fields with a nil error, or an *ExtractError.
type Strategy interface {
	Dialect() domain.Dialect
	Extract(block string) (Fields, domain.Dialect, error)
}

// StrategiesFor returns the strategies attempted for mode, in priority order.
func StrategiesFor(mode domain.ParseMode) ([]Strategy, error) {
	switch mode {
	case domain.ParseModeTable:
		return []Strategy{TableStrategy{}}, nil
	case domain.ParseModeTab:
		return []Strategy{FinalAnswerStrategy{}}, nil
	case domain.ParseModeLabeled:
		return []Strategy{LabeledStrategy{}}, nil
	case domain.ParseModeAuto:
		return []Strategy{TableStrategy{}, FinalAnswerStrategy{}, LabeledStrategy{}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidParseMode, mode)
	}
}

// splitCells splits s on sep, trims every cell and drops empty ones.
func splitCells(s, sep string) []string {
	var cells []string
	for _, c := range strings.Split(s, sep) {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}
