// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	batchlog "github.com/davetashner/batchllm/internal/log"
)

// Global flag values.
var (
	verbose   bool
	quiet     bool
	noColor   bool
	logFormat string
)

// rootCmd is the base command for batchllm.
var rootCmd = &cobra.Command{
	Use:   "batchllm",
	Short: "Batched LLM completions and document stuffing",
	Long: `Batchllm sends prompts to a text-completion provider in fixed-size
batches with retry and backoff, and runs document stuffing chains that
join a set of documents into one prompt context.

Configuration is layered: ~/.config/batchllm/config.yaml, then
.batchllm.yaml in the working directory, then BATCHLLM_* environment
variables, then command-line flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if noColor {
			color.NoColor = true
		}
		if err := batchlog.SetupWriter(cmd.ErrOrStderr(), verbose, quiet, logFormat); err != nil {
			return exitError(ExitInvalidArgs, err, "--log-format")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", batchlog.FormatText, "log format: text or json")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(stuffCmd)
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)
}
