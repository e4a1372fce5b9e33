package response

import (
	"regexp"
	"strings"

	"mederror/internal/domain"
)

var (
	boldFinalAnswerRe    = regexp.MustCompile(`(?s)\*\*Final Answer\*\*:\n(.+)`)
	headingFinalAnswerRe = regexp.MustCompile(`(?s)#{2,3}\s*Final Answer:\n(.+)`)
)

// FinalAnswerStrategy reads a tab-separated row introduced by a
// "**Final Answer**:" marker or a "## Final Answer:" heading.
type FinalAnswerStrategy struct{}

func (FinalAnswerStrategy) Dialect() domain.Dialect { return domain.DialectFinalAnswer }

func (FinalAnswerStrategy) Extract(block string) (Fields, domain.Dialect, error) {
	m := boldFinalAnswerRe.FindStringSubmatch(block)
	if m == nil {
		m = headingFinalAnswerRe.FindStringSubmatch(block)
	}
	if m == nil {
		return Fields{}, domain.DialectFinalAnswer, noMatch(domain.DialectFinalAnswer, "no final answer marker")
	}

	cells := splitCells(strings.TrimSpace(m[1]), "\t")
	if len(cells) != 4 {
		return Fields{}, domain.DialectFinalAnswer, noMatch(domain.DialectFinalAnswer, "final answer does not have 4 tab-separated cells")
	}
	return fieldsFromCells(cells), domain.DialectFinalAnswer, nil
}
