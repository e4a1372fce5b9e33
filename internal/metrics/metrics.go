// Package metrics scores parsed error classes against gold labels.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"mederror/internal/domain"
	"mederror/internal/taxonomy"
)

// Options controls label comparison.
type Options struct {
	CaseSensitive bool
	// Taxonomy, when set, lets Report count predictions outside the known classes.
	Taxonomy *taxonomy.Taxonomy
}

type tally struct {
	truePos   int
	predicted int
	support   int
}

func normalize(labels []string, caseSensitive bool) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		if caseSensitive {
			out[i] = l
		} else {
			out[i] = strings.ToLower(l)
		}
	}
	return out
}

func check(pred, gold []string) error {
	if len(pred) != len(gold) {
		return fmt.Errorf("files have different numbers of rows: result=%d, gold=%d: %w",
			len(pred), len(gold), domain.ErrRowCountMismatch)
	}
	if len(gold) == 0 {
		return fmt.Errorf("no labelled rows to score: %w", domain.ErrNoData)
	}
	return nil
}

// tallies counts per label over the union of gold and predicted labels.
func tallies(pred, gold []string) (map[string]*tally, int) {
	counts := make(map[string]*tally)
	get := func(l string) *tally {
		t, ok := counts[l]
		if !ok {
			t = &tally{}
			counts[l] = t
		}
		return t
	}
	correct := 0
	for i := range gold {
		get(gold[i]).support++
		get(pred[i]).predicted++
		if pred[i] == gold[i] {
			get(gold[i]).truePos++
			correct++
		}
	}
	return counts, correct
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func (t *tally) scores() (precision, recall, f1 float64) {
	precision = ratio(t.truePos, t.predicted)
	recall = ratio(t.truePos, t.support)
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}

// Evaluate computes accuracy and support-weighted precision, recall and F1.
// A label never predicted or never present scores zero for the undefined
// ratio. Labels are lower-cased unless opts.CaseSensitive.
func Evaluate(pred, gold []string, opts Options) (domain.Metrics, error) {
	report, err := Report(pred, gold, opts)
	if err != nil {
		return domain.Metrics{}, err
	}
	return report.Metrics, nil
}

// Report is Evaluate plus per-class scores and failure counts. Classes are
// sorted by label.
func Report(pred, gold []string, opts Options) (*domain.EvalReport, error) {
	if err := check(pred, gold); err != nil {
		return nil, err
	}
	p := normalize(pred, opts.CaseSensitive)
	g := normalize(gold, opts.CaseSensitive)

	counts, correct := tallies(p, g)
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	report := &domain.EvalReport{Rows: len(g)}
	var m domain.Metrics
	total := float64(len(g))
	for _, l := range labels {
		t := counts[l]
		precision, recall, f1 := t.scores()
		weight := float64(t.support) / total
		m.Precision += weight * precision
		m.Recall += weight * recall
		m.F1 += weight * f1
		report.Classes = append(report.Classes, domain.ClassMetrics{
			Label:     l,
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   t.support,
		})
	}
	m.Accuracy = float64(correct) / total
	report.Metrics = m

	for _, l := range pred {
		if l == domain.FailureSentinel {
			report.SentinelCount++
			continue
		}
		if opts.Taxonomy != nil && !opts.Taxonomy.Contains(l) {
			report.OutOfTaxonomy++
		}
	}
	return report, nil
}

// Format writes the four headline scores in the fixed console layout.
func Format(w io.Writer, m domain.Metrics) error {
	_, err := fmt.Fprintf(w, "Evaluation Metrics:\nAccuracy:  %.4f\nPrecision: %.4f\nRecall:    %.4f\nF1 Score:  %.4f\n",
		m.Accuracy, m.Precision, m.Recall, m.F1)
	return err
}

// FormatClasses writes a per-class table below the headline scores.
func FormatClasses(w io.Writer, classes []domain.ClassMetrics) error {
	if _, err := fmt.Fprintf(w, "%-32s %9s %9s %9s %8s\n", "Class", "Precision", "Recall", "F1", "Support"); err != nil {
		return err
	}
	for _, c := range classes {
		if _, err := fmt.Fprintf(w, "%-32s %9.4f %9.4f %9.4f %8d\n", c.Label, c.Precision, c.Recall, c.F1, c.Support); err != nil {
			return err
		}
	}
	return nil
}
