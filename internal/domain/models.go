package domain

import (
	"time"

	"github.com/google/uuid"
)

// FailureSentinel fills every primary field of a row whose block could not be parsed.
const FailureSentinel = "CHATGPT_FAILURE"

// Placeholder is used for fields a dialect does not restate.
const Placeholder = "N/A"

// PrimaryColumns are the four fields recovered from every response block.
var PrimaryColumns = []string{"Sentence", "NLP Prediction", "Error Class", "Reasoning"}

// OriginColumns are appended to PrimaryColumns when rows carry their original input.
var OriginColumns = []string{"ID", "sent", "Concept Norm", "error_type"}

// ParsedRow is the record recovered from one response block.
type ParsedRow struct {
	Sentence      string   `json:"sentence"`
	NLPPrediction string   `json:"nlp_prediction"`
	ErrorClass    string   `json:"error_class"`
	Reasoning     string   `json:"reasoning"`
	Origin        []string `json:"origin,omitempty"`
	Dialect       Dialect  `json:"dialect"`
}

// SentinelRow returns the failure record.
func SentinelRow() ParsedRow {
	return ParsedRow{
		Sentence:      FailureSentinel,
		NLPPrediction: FailureSentinel,
		ErrorClass:    FailureSentinel,
		Reasoning:     FailureSentinel,
		Dialect:       DialectNone,
	}
}

// IsSentinel reports whether all four primary fields hold the failure sentinel.
func (r ParsedRow) IsSentinel() bool {
	return r.Sentence == FailureSentinel &&
		r.NLPPrediction == FailureSentinel &&
		r.ErrorClass == FailureSentinel &&
		r.Reasoning == FailureSentinel
}

// Primary returns the four primary fields in column order.
func (r ParsedRow) Primary() []string {
	return []string{r.Sentence, r.NLPPrediction, r.ErrorClass, r.Reasoning}
}

// ResultTable is the immutable, block-ordered output of one parse invocation.
type ResultTable struct {
	rows      []ParsedRow
	hasOrigin bool
}

// NewResultTable takes ownership of rows. Origin slices are copied so the
// table shares no memory with the caller.
func NewResultTable(rows []ParsedRow, hasOrigin bool) *ResultTable {
	owned := make([]ParsedRow, len(rows))
	for i, r := range rows {
		if r.Origin != nil {
			r.Origin = append([]string(nil), r.Origin...)
		}
		owned[i] = r
	}
	return &ResultTable{rows: owned, hasOrigin: hasOrigin}
}

// Len returns the number of rows.
func (t *ResultTable) Len() int { return len(t.rows) }

// HasOrigin reports whether rows carry merged original-input cells.
func (t *ResultTable) HasOrigin() bool { return t.hasOrigin }

// Row returns the i-th row.
func (t *ResultTable) Row(i int) ParsedRow {
	r := t.rows[i]
	if r.Origin != nil {
		r.Origin = append([]string(nil), r.Origin...)
	}
	return r
}

// Rows returns a copy of all rows.
func (t *ResultTable) Rows() []ParsedRow {
	out := make([]ParsedRow, len(t.rows))
	for i := range t.rows {
		out[i] = t.Row(i)
	}
	return out
}

// Columns returns the header for the table's records.
func (t *ResultTable) Columns() []string {
	cols := append([]string(nil), PrimaryColumns...)
	if t.hasOrigin {
		cols = append(cols, OriginColumns...)
	}
	return cols
}

// Records flattens the table into string rows matching Columns. Origin rows
// shorter than the origin header are padded with empty cells; longer ones keep
// their extra cells.
func (t *ResultTable) Records() [][]string {
	records := make([][]string, len(t.rows))
	for i, r := range t.rows {
		rec := r.Primary()
		if t.hasOrigin {
			rec = append(rec, r.Origin...)
			for len(rec) < len(PrimaryColumns)+len(OriginColumns) {
				rec = append(rec, "")
			}
		}
		records[i] = rec
	}
	return records
}

// ErrorClasses returns the Error Class column in row order.
func (t *ResultTable) ErrorClasses() []string {
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.ErrorClass
	}
	return out
}

// FailureCount returns how many rows are sentinel rows.
func (t *ResultTable) FailureCount() int {
	n := 0
	for _, r := range t.rows {
		if r.IsSentinel() {
			n++
		}
	}
	return n
}

// DialectCounts tallies rows by the dialect that produced them.
func (t *ResultTable) DialectCounts() map[Dialect]int {
	counts := make(map[Dialect]int)
	for _, r := range t.rows {
		counts[r.Dialect]++
	}
	return counts
}

// InputRow is one candidate error case sent to the classifier.
type InputRow struct {
	ID                string
	Sentence          string
	NLPPrediction     string
	ExpectedErrorType string
}

// Metrics holds agreement scores between parsed labels and gold labels.
type Metrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// ClassMetrics holds per-label scores.
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// EvalReport is the full output of the metrics component.
type EvalReport struct {
	Metrics       Metrics        `json:"metrics"`
	Classes       []ClassMetrics `json:"classes"`
	Rows          int            `json:"rows"`
	SentinelCount int            `json:"sentinel_count"`
	OutOfTaxonomy int            `json:"out_of_taxonomy"`
}

// EvalRun records one invocation of a pipeline stage.
type EvalRun struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Stage        RunStage   `db:"stage" json:"stage"`
	Model        string     `db:"model" json:"model"`
	ParseMode    ParseMode  `db:"parse_mode" json:"parse_mode"`
	Status       RunStatus  `db:"status" json:"status"`
	SourceURI    string     `db:"source_uri" json:"source_uri"`
	ResultURI    string     `db:"result_uri" json:"result_uri"`
	RowCount     int        `db:"row_count" json:"row_count"`
	FailureCount int        `db:"failure_count" json:"failure_count"`
	Accuracy     *float64   `db:"accuracy" json:"accuracy,omitempty"`
	Precision    *float64   `db:"precision_score" json:"precision,omitempty"`
	Recall       *float64   `db:"recall" json:"recall,omitempty"`
	F1           *float64   `db:"f1" json:"f1,omitempty"`
	ErrorMessage string     `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// SetMetrics copies m into the run's nullable score columns.
func (r *EvalRun) SetMetrics(m Metrics) {
	acc, p, rec, f1 := m.Accuracy, m.Precision, m.Recall, m.F1
	r.Accuracy, r.Precision, r.Recall, r.F1 = &acc, &p, &rec, &f1
}
