package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPromptCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Print the system prompt sent with every request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			instruction, err := a.instruction()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), instruction)
			return nil
		},
	}
}
