package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"mederror/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer wraps csv.Writer for exporting parsed result tables.
type Writer struct {
	out io.Writer
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: w, csv: csv.NewWriter(w)}
}

// WriteBOM writes the UTF-8 byte order mark. Call it before any row.
func (w *Writer) WriteBOM() error {
	_, err := w.out.Write(BOM)
	return err
}

// WriteHeader writes the table's column names.
func (w *Writer) WriteHeader(table *domain.ResultTable) error {
	return w.csv.Write(table.Columns())
}

// WriteRows writes every row of the table in block order.
func (w *Writer) WriteRows(table *domain.ResultTable) error {
	for _, rec := range table.Records() {
		if err := w.csv.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteTable writes an optional BOM, the header and all rows, then flushes.
func WriteTable(out io.Writer, table *domain.ResultTable, bom bool) error {
	w := NewWriter(out)
	if bom {
		if err := w.WriteBOM(); err != nil {
			return fmt.Errorf("writing bom: %w", err)
		}
	}
	if err := w.WriteHeader(table); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := w.WriteRows(table); err != nil {
		return fmt.Errorf("writing rows: %w", err)
	}
	w.Flush()
	return w.Error()
}

// CleanPath derives the default table path from a response document path.
func CleanPath(documentPath string) string {
	return documentPath + "_clean.csv"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a model or run name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized download name.
// Format: {sanitized_name}_{YYYY-MM-DD}.csv
func BuildFilename(name string) string {
	sanitized := SanitizeFilename(name)
	if sanitized == "" {
		sanitized = "results"
	}
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.csv", sanitized, date)
}
