// Package dataset reads the delimited files that feed and score the pipeline:
// the candidate-error CSV, the gold label sheet and parsed result tables.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"mederror/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// StripBOM drops a leading UTF-8 byte order mark.
func StripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

func newReader(r io.Reader, delimiter rune) (*csv.Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	cr := csv.NewReader(bytes.NewReader(StripBOM(data)))
	cr.Comma = delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr, nil
}

// ReadRecords returns every data record of a comma-separated file, header
// excluded. A file with only a header yields no records.
func ReadRecords(r io.Reader) ([][]string, error) {
	cr, err := newReader(r, ',')
	if err != nil {
		return nil, err
	}
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

// ReadOriginRows returns the original-input rows used for merging. Each
// record's cells are concatenated and re-split on tab, which recovers the
// columns of tab-separated rows saved with a .csv extension.
func ReadOriginRows(r io.Reader) ([][]string, error) {
	records, err := ReadRecords(r)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = strings.Split(strings.Join(rec, ""), "\t")
	}
	return rows, nil
}

// InputRowFromOrigin maps an original-input row onto an InputRow. The row
// needs at least four cells: ID, sentence, prediction, error type.
func InputRowFromOrigin(cells []string) (domain.InputRow, error) {
	if len(cells) < 4 {
		return domain.InputRow{}, fmt.Errorf("insufficient columns: got %d, need 4", len(cells))
	}
	return domain.InputRow{
		ID:                cells[0],
		Sentence:          cells[1],
		NLPPrediction:     cells[2],
		ExpectedErrorType: cells[3],
	}, nil
}

// ReadGoldLabels returns the named column of a gold file split on delimiter.
func ReadGoldLabels(r io.Reader, column, delimiter string) ([]string, error) {
	if len([]rune(delimiter)) != 1 {
		return nil, fmt.Errorf("gold delimiter must be a single character, got %q", delimiter)
	}
	cr, err := newReader(r, []rune(delimiter)[0])
	if err != nil {
		return nil, err
	}
	return readColumn(cr, column, "gold")
}

// ReadResultLabels returns the named column of a comma-separated result table.
func ReadResultLabels(r io.Reader, column string) ([]string, error) {
	cr, err := newReader(r, ',')
	if err != nil {
		return nil, err
	}
	return readColumn(cr, column, "result")
}

func readColumn(cr *csv.Reader, column, kind string) ([]string, error) {
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s file is empty: %w", kind, domain.ErrNoData)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s header: %w", kind, err)
	}

	idx := -1
	for i, h := range header {
		if strings.TrimSpace(h) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("column '%s' not found in %s file. Available columns: [%s]: %w",
			column, kind, strings.Join(header, ", "), domain.ErrColumnNotFound)
	}

	var labels []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s file: %w", kind, err)
		}
		if idx < len(rec) {
			labels = append(labels, rec[idx])
		} else {
			labels = append(labels, "")
		}
	}
	return labels, nil
}
