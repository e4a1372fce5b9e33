package metrics_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mederror/internal/domain"
	"mederror/internal/metrics"
	"mederror/internal/taxonomy"
)

func TestEvaluate_WeightedScores(t *testing.T) {
	gold := []string{"Negation", "Negation", "Section", "Temporal"}
	pred := []string{"Negation", "Section", "Section", "Negation"}

	m, err := metrics.Evaluate(pred, gold, metrics.Options{})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, m.Accuracy, 1e-9)
	assert.InDelta(t, 0.375, m.Precision, 1e-9)
	assert.InDelta(t, 0.5, m.Recall, 1e-9)
	assert.InDelta(t, 0.25+0.25*(2.0/3.0), m.F1, 1e-9)
}

func TestEvaluate_PerfectAgreement(t *testing.T) {
	labels := []string{"Negation", "Section", "Section"}
	m, err := metrics.Evaluate(labels, labels, metrics.Options{})
	require.NoError(t, err)
	assert.Equal(t, domain.Metrics{Accuracy: 1, Precision: 1, Recall: 1, F1: 1}, m)
}

func TestEvaluate_CaseFolding(t *testing.T) {
	gold := []string{"Negation", "section"}
	pred := []string{"NEGATION", "Section"}

	m, err := metrics.Evaluate(pred, gold, metrics.Options{})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.Accuracy, 1e-9)

	m, err = metrics.Evaluate(pred, gold, metrics.Options{CaseSensitive: true})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, m.Accuracy, 1e-9)
	assert.InDelta(t, 0.0, m.F1, 1e-9)
}

func TestEvaluate_PredictedOnlyLabelCarriesNoWeight(t *testing.T) {
	gold := []string{"Negation", "Negation"}
	pred := []string{"Negation", domain.FailureSentinel}

	m, err := metrics.Evaluate(pred, gold, metrics.Options{})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, m.Accuracy, 1e-9)
	assert.InDelta(t, 1.0, m.Precision, 1e-9)
	assert.InDelta(t, 0.5, m.Recall, 1e-9)
	assert.InDelta(t, 2.0/3.0, m.F1, 1e-9)
}

func TestEvaluate_Errors(t *testing.T) {
	_, err := metrics.Evaluate([]string{"a"}, []string{"a", "b"}, metrics.Options{})
	require.ErrorIs(t, err, domain.ErrRowCountMismatch)
	assert.Contains(t, err.Error(), "result=1, gold=2")

	_, err = metrics.Evaluate(nil, nil, metrics.Options{})
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestReport_ClassesAndCounts(t *testing.T) {
	gold := []string{"Negation", "Section", "Section", "Temporal"}
	pred := []string{"Negation", "Section", domain.FailureSentinel, "Made_Up_Class"}

	report, err := metrics.Report(pred, gold, metrics.Options{Taxonomy: taxonomy.Default()})
	require.NoError(t, err)
	assert.Equal(t, 4, report.Rows)
	assert.Equal(t, 1, report.SentinelCount)
	assert.Equal(t, 1, report.OutOfTaxonomy)

	var labels []string
	for _, c := range report.Classes {
		labels = append(labels, c.Label)
	}
	assert.Equal(t, []string{"chatgpt_failure", "made_up_class", "negation", "section", "temporal"}, labels)

	section := report.Classes[3]
	assert.Equal(t, 2, section.Support)
	assert.InDelta(t, 1.0, section.Precision, 1e-9)
	assert.InDelta(t, 0.5, section.Recall, 1e-9)
}

func TestFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, metrics.Format(&buf, domain.Metrics{Accuracy: 0.5, Precision: 0.375, Recall: 0.5, F1: 0.41666}))
	assert.Equal(t,
		"Evaluation Metrics:\nAccuracy:  0.5000\nPrecision: 0.3750\nRecall:    0.5000\nF1 Score:  0.4167\n",
		buf.String())
}

func TestFormatClasses(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, metrics.FormatClasses(&buf, []domain.ClassMetrics{{Label: "negation", Precision: 1, Recall: 0.5, F1: 0.6667, Support: 2}}))
	assert.Contains(t, buf.String(), "negation")
	assert.Contains(t, buf.String(), "0.5000")
}
