package response

import (
	"regexp"
	"strings"

	"mederror/internal/domain"
)

// tableRe finds the first run of pipe-delimited lines with three internal
// separators. It is deliberately not anchored to header wording.
var tableRe = regexp.MustCompile(`((\|?[^|\n]*\|[^|\n]*\|[^|\n]*\|[^|\n]*\|?)\n(\|?[^|\n]*\|[^|\n]*\|[^|\n]*\|[^|\n]*\|?\n?)*)`)

// textSpanRe matches LaTeX \text{...} spans emitted in display-math answers.
var textSpanRe = regexp.MustCompile(`\\text\{([^}]*)\}`)

// headerSpans is the number of \text spans restating the table header.
const headerSpans = 4

// TableStrategy extracts the data row of a four-column markdown table.
type TableStrategy struct{}

func (TableStrategy) Dialect() domain.Dialect { return domain.DialectTable }

func (s TableStrategy) Extract(block string) (Fields, domain.Dialect, error) {
	match := tableRe.FindString(block)
	if match == "" {
		return s.extractDisplayMath(block)
	}

	lines := strings.Split(strings.TrimSpace(match), "\n")
	var dataRow string
	switch {
	case len(lines) > 2:
		dataRow = lines[2]
	case len(lines) == 2:
		dataRow = lines[1]
	default:
		return s.extractDisplayMath(block)
	}

	cells := splitCells(dataRow, "|")
	if len(cells) != 4 {
		return Fields{}, domain.DialectTable, noMatch(domain.DialectTable, "table data row does not have 4 cells")
	}
	return fieldsFromCells(cells), domain.DialectTable, nil
}

// extractDisplayMath regroups a flat run of \text{} spans into rows of four,
// skipping the restated header, and returns the first row.
func (TableStrategy) extractDisplayMath(block string) (Fields, domain.Dialect, error) {
	matches := textSpanRe.FindAllStringSubmatch(block, -1)
	if len(matches) < headerSpans+4 {
		return Fields{}, domain.DialectDisplayMath, noMatch(domain.DialectTable, "no table found")
	}

	cells := make([]string, 4)
	for i := range cells {
		cells[i] = strings.TrimSpace(matches[headerSpans+i][1])
	}
	return fieldsFromCells(cells), domain.DialectDisplayMath, nil
}
