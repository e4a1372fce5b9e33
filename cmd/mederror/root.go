package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mederror/internal/config"
)

type rootOptions struct {
	configFile string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "mederror",
		Short: "Classify clinical NLP errors with an LLM and score the results.",
		Long: `mederror sends candidate clinical NLP errors to a language model, recovers
the error class and reasoning from each free-form answer, and scores the
recovered labels against human annotations.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "YAML config file (default $"+config.ConfigFileEnv+")")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log per-block parse diagnostics")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newParseCmd(opts),
		newEvaluateCmd(opts),
		newRunCmd(opts),
		newServeCmd(opts),
		newPromptCmd(opts),
	)
	return cmd
}

// loadConfig reads configuration, applies flag overrides and validates the result.
func (o *rootOptions) loadConfig(overrides ...func(*config.Config)) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadFile(o.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.verbose {
		cfg.Parser.Verbose = true
	}
	for _, apply := range overrides {
		apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
