package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"mederror/internal/config"
	"mederror/internal/csvexport"
	"mederror/internal/domain"
	"mederror/internal/service"
)

func newParseCmd(root *rootOptions) *cobra.Command {
	var input, origin, output, xlsx, mode string
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Recover the result table from a response document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(func(c *config.Config) {
				if mode != "" {
					c.Parser.Mode = mode
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

			svc, err := a.parseService()
			if err != nil {
				return err
			}
			if xlsx == "" {
				target := output
				if target == "" {
					target = csvexport.CleanPath(input)
				}
				xlsx = a.xlsxPathFor(target)
			}

			res, err := svc.Parse(cmd.Context(), service.ParseRequest{
				DocumentURI: input,
				OriginURI:   origin,
				OutputURI:   output,
				XLSXURI:     xlsx,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "parsed %d rows (%d failed) to %s\n", res.Table.Len(), res.Failures, res.OutputURI)
			if res.XLSXURI != "" {
				fmt.Fprintf(w, "workbook: %s\n", res.XLSXURI)
			}
			printDialects(cmd, res.Dialects)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "response document (local path or s3:// URI)")
	cmd.Flags().StringVar(&origin, "origin", "", "original candidate error CSV to merge row by row")
	cmd.Flags().StringVarP(&output, "output", "o", "", "result CSV to write (default <input>_clean.csv)")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "also write the table as an .xlsx workbook")
	cmd.Flags().StringVar(&mode, "mode", "", "parse mode: table, tab, labeled or auto")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func printDialects(cmd *cobra.Command, counts map[domain.Dialect]int) {
	dialects := make([]string, 0, len(counts))
	for d := range counts {
		dialects = append(dialects, string(d))
	}
	sort.Strings(dialects)
	for _, d := range dialects {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-14s %d\n", d, counts[domain.Dialect(d)])
	}
}
