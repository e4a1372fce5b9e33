package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mederror/internal/config"
	"mederror/internal/csvexport"
	"mederror/internal/service"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		input, output, gold, xlsx, mode, provider, model string
		classes                                          bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate, parse and evaluate in one pass",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(func(c *config.Config) {
				if mode != "" {
					c.Parser.Mode = mode
				}
				if provider != "" {
					c.Generator.Primary.Provider = provider
				}
				if model != "" {
					c.Generator.Primary.DefaultModel = model
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

			gen, err := a.generationService()
			if err != nil {
				return err
			}
			parse, err := a.parseService()
			if err != nil {
				return err
			}
			instruction, err := a.instruction()
			if err != nil {
				return err
			}
			if output == "" {
				output = a.defaultDocumentPath()
			}
			if xlsx == "" {
				xlsx = a.xlsxPathFor(csvexport.CleanPath(output))
			}

			pipeline := service.NewPipelineService(a.store, gen, parse, a.evaluationService(), a.runs, a.model(), cfg.Output.BOM, a.log)
			res, err := pipeline.Run(cmd.Context(), service.PipelineRequest{
				InputURI:    input,
				OutputURI:   output,
				GoldURI:     gold,
				XLSXURI:     xlsx,
				Instruction: instruction,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "run %s\n", res.RunID)
			fmt.Fprintf(w, "document: %s\n", res.DocumentURI)
			fmt.Fprintf(w, "table:    %s (%d rows, %d failed)\n", res.TableURI, res.Table.Len(), res.Table.FailureCount())
			if res.XLSXURI != "" {
				fmt.Fprintf(w, "workbook: %s\n", res.XLSXURI)
			}
			if res.Report != nil {
				return printReport(w, res.Report, classes)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "candidate error CSV (local path or s3:// URI)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "response document to write; the table goes to <output>_clean.csv")
	cmd.Flags().StringVarP(&gold, "gold", "g", "", "gold label file; evaluation is skipped when empty")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "also write the table and metrics as an .xlsx workbook")
	cmd.Flags().StringVar(&mode, "mode", "", "parse mode: table, tab, labeled or auto")
	cmd.Flags().StringVar(&provider, "provider", "", "primary provider: openai, azure, local, claude or gemini")
	cmd.Flags().StringVarP(&model, "model", "m", "", "primary model or deployment name")
	cmd.Flags().BoolVar(&classes, "classes", false, "also print per-class scores")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
