package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mederror/internal/config"
	"mederror/internal/domain"
	"mederror/internal/metrics"
	"mederror/internal/service"
)

func newEvaluateCmd(root *rootOptions) *cobra.Command {
	var (
		result, gold, resultColumn, goldColumn string
		caseSensitive, classes                 bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score a result table against gold labels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(func(c *config.Config) {
				if cmd.Flags().Changed("case-sensitive") {
					c.Eval.CaseSensitive = caseSensitive
				}
			})
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.evaluationService().Evaluate(cmd.Context(), service.EvaluateRequest{
				ResultURI:    result,
				GoldURI:      gold,
				ResultColumn: resultColumn,
				GoldColumn:   goldColumn,
			})
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), report, classes)
		},
	}
	cmd.Flags().StringVarP(&result, "result", "r", "", "result CSV produced by parse")
	cmd.Flags().StringVarP(&gold, "gold", "g", "", "gold label file")
	cmd.Flags().StringVar(&resultColumn, "result-column", "", "label column in the result CSV")
	cmd.Flags().StringVar(&goldColumn, "gold-column", "", "label column in the gold file")
	cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "compare labels without lower-casing")
	cmd.Flags().BoolVar(&classes, "classes", false, "also print per-class scores")
	_ = cmd.MarkFlagRequired("result")
	_ = cmd.MarkFlagRequired("gold")
	return cmd
}

func printReport(w io.Writer, report *domain.EvalReport, classes bool) error {
	if err := metrics.Format(w, report.Metrics); err != nil {
		return err
	}
	fmt.Fprintf(w, "Rows: %d  Failures: %d  Out of taxonomy: %d\n", report.Rows, report.SentinelCount, report.OutOfTaxonomy)
	if classes {
		return metrics.FormatClasses(w, report.Classes)
	}
	return nil
}
