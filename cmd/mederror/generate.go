package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mederror/internal/config"
	"mederror/internal/service"
)

func newGenerateCmd(root *rootOptions) *cobra.Command {
	var (
		input, output, provider, model string
		concurrency                    int
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Send every candidate error to the model and write a response document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(func(c *config.Config) {
				if provider != "" {
					c.Generator.Primary.Provider = provider
				}
				if model != "" {
					c.Generator.Primary.DefaultModel = model
				}
				if concurrency > 0 {
					c.Generator.Concurrency = concurrency
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

			svc, err := a.generationService()
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

			res, err := svc.Generate(cmd.Context(), service.GenerateRequest{
				InputURI:    input,
				OutputURI:   output,
				Instruction: instruction,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d responses (%d failed) to %s\n", res.Rows, res.Failures, res.OutputURI)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "candidate error CSV (local path or s3:// URI)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "response document to write (default <output.dir>/<model>_<date>.txt)")
	cmd.Flags().StringVar(&provider, "provider", "", "primary provider: openai, azure, local, claude or gemini")
	cmd.Flags().StringVarP(&model, "model", "m", "", "primary model or deployment name")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "maximum in-flight requests")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
