package response

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultMarker is the literal that opens every block written by the generator.
const DefaultMarker = "######"

// MarkerPattern builds the block delimiter for literal: a whole line holding
// the literal, one space and a positive integer.
func MarkerPattern(literal string) (*regexp.Regexp, error) {
	if strings.TrimSpace(literal) == "" {
		return nil, fmt.Errorf("block marker must not be empty")
	}
	return regexp.Compile(`(?m)^` + regexp.QuoteMeta(literal) + ` [1-9]\d*[ \t]*$`)
}

var defaultMarkerRe = regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(DefaultMarker) + ` [1-9]\d*[ \t]*$`)

// SplitBlocks partitions doc into the text found between consecutive marker
// lines. Text before the first marker is not a block. Blocks keep document
// order and are trimmed of surrounding whitespace. A leading BOM is dropped
// and CRLF or CR line endings are read as LF.
func SplitBlocks(doc string, marker *regexp.Regexp) []string {
	if marker == nil {
		marker = defaultMarkerRe
	}
	doc = strings.TrimSpace(normalizeNewlines(strings.TrimPrefix(doc, "\ufeff")))
	locs := marker.FindAllStringIndex(doc, -1)
	if len(locs) == 0 {
		return nil
	}

	blocks := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(doc)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		blocks = append(blocks, strings.TrimSpace(doc[loc[1]:end]))
	}
	return blocks
}

var newlineReplacer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func normalizeNewlines(s string) string {
	return newlineReplacer.Replace(s)
}
