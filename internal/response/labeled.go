package response

import (
	"regexp"
	"strings"

	"mederror/internal/domain"
)

var (
	// preambleRe collapses everything up to the first "final answer" so that
	// markers quoted in earlier reasoning are not picked up.
	preambleRe   = regexp.MustCompile(`(?is)^.*?final answer`)
	errorClassRe = regexp.MustCompile(`(?i)error class:\s*`)
	reasoningRe  = regexp.MustCompile(`(?i)\s*reasoning:\s*`)
)

// LabeledStrategy reads "Error class: ..." and "Reasoning: ..." fields.
// The dialect does not restate the input, so Sentence and NLPPrediction are
// set to domain.Placeholder.
type LabeledStrategy struct{}

func (LabeledStrategy) Dialect() domain.Dialect { return domain.DialectLabeled }

func (LabeledStrategy) Extract(block string) (Fields, domain.Dialect, error) {
	content := preambleRe.ReplaceAllLiteralString(block, "Final Answer")

	lower := strings.ToLower(content)
	if !strings.Contains(lower, "error class") || !strings.Contains(lower, "reasoning") {
		return Fields{}, domain.DialectLabeled, noMatch(domain.DialectLabeled, "missing error class or reasoning label")
	}

	content = strings.ReplaceAll(content, "*", "")
	ec := errorClassRe.FindStringIndex(content)
	rs := reasoningRe.FindStringIndex(content)
	if ec == nil || rs == nil {
		return Fields{}, domain.DialectLabeled, noMatch(domain.DialectLabeled, "error class or reasoning anchor not found")
	}
	if rs[1] <= ec[1] {
		return Fields{}, domain.DialectLabeled, noMatch(domain.DialectLabeled, "reasoning precedes error class")
	}

	// The reasoning anchor may begin inside the whitespace already consumed
	// by the error class anchor when the class value is blank.
	classEnd := max(rs[0], ec[1])
	errorClass := strings.TrimSpace(content[ec[1]:classEnd])
	if errorClass == "" {
		return Fields{}, domain.DialectLabeled, noMatch(domain.DialectLabeled, "empty error class")
	}

	return Fields{
		Sentence:      domain.Placeholder,
		NLPPrediction: domain.Placeholder,
		ErrorClass:    errorClass,
		Reasoning:     strings.TrimSpace(content[rs[1]:]),
	}, domain.DialectLabeled, nil
}
