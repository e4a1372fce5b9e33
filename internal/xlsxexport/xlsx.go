// Package xlsxexport writes result tables and scores as Excel workbooks.
package xlsxexport

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"mederror/internal/domain"
)

const (
	ResultsSheet = "results"
	MetricsSheet = "metrics"
)

// Write renders table on the results sheet and, when report is non-nil, the
// headline and per-class scores on a metrics sheet.
func Write(w io.Writer, table *domain.ResultTable, report *domain.EvalReport) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), ResultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeResults(f, table); err != nil {
		return fmt.Errorf("write results sheet: %w", err)
	}
	if report != nil {
		if err := writeMetrics(f, report); err != nil {
			return fmt.Errorf("write metrics sheet: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func toCells(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func writeResults(f *excelize.File, table *domain.ResultTable) error {
	if err := setRow(f, ResultsSheet, 1, toCells(table.Columns())); err != nil {
		return err
	}
	for i, rec := range table.Records() {
		if err := setRow(f, ResultsSheet, i+2, toCells(rec)); err != nil {
			return err
		}
	}
	if err := f.SetPanes(ResultsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	return f.SetColWidth(ResultsSheet, "A", "D", 40)
}

func writeMetrics(f *excelize.File, report *domain.EvalReport) error {
	if _, err := f.NewSheet(MetricsSheet); err != nil {
		return err
	}
	m := report.Metrics
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Accuracy", m.Accuracy},
		{"Precision", m.Precision},
		{"Recall", m.Recall},
		{"F1 Score", m.F1},
		{"Rows", report.Rows},
		{"Failures", report.SentinelCount},
		{"Out of taxonomy", report.OutOfTaxonomy},
		{},
		{"Class", "Precision", "Recall", "F1", "Support"},
	}
	for _, c := range report.Classes {
		rows = append(rows, []interface{}{c.Label, c.Precision, c.Recall, c.F1, c.Support})
	}
	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		if err := setRow(f, MetricsSheet, i+1, r); err != nil {
			return err
		}
	}
	return nil
}
