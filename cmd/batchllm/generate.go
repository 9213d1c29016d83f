// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/davetashner/batchllm/internal/generate"
)

// Generate command flags.
var (
	genEngine engineFlags
	genFile   string
	genFormat string
	genOutput string
)

// generateCmd completes prompts in batches.
var generateCmd = &cobra.Command{
	Use:   "generate [prompt...]",
	Short: "Complete prompts in batches",
	Long: `Complete every prompt and print the completions grouped per prompt.

Prompts come from the arguments and from --file, one prompt per non-empty
line ("-" reads stdin). They are sent in batches of --batch-size; a batch
that fails is retried with exponential backoff, and a batch that still
fails aborts the whole run.

Examples:
  batchllm generate "Tell me a joke" "Write a haiku"
  batchllm generate --file prompts.txt --format json -o out.json
  batchllm generate --provider lorem -n 3 "offline test"`,
	RunE: runGenerate,
}

func init() {
	genEngine.register(generateCmd.Flags())
	generateCmd.Flags().StringVarP(&genFile, "file", "f", "", "read prompts from a file, one per line (- for stdin)")
	generateCmd.Flags().StringVar(&genFormat, "format", "text", "output format: text or json")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "write output to a file instead of stdout")
}

// resetGenerateFlags resets generate command flags for testing.
func resetGenerateFlags() {
	genEngine.reset(generateCmd.Flags())
	genFile = ""
	genFormat = "text"
	genOutput = ""
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if genFormat != "text" && genFormat != "json" {
		return exitError(ExitInvalidArgs, nil, "unsupported format %q (want text or json)", genFormat)
	}

	prompts := append([]string(nil), args...)
	if genFile != "" {
		data, err := readInput(cmd.InOrStdin(), genFile)
		if err != nil {
			return exitError(ExitInvalidArgs, err, "reading prompts")
		}
		prompts = append(prompts, splitPrompts(string(data))...)
	}
	if len(prompts) == 0 {
		return exitError(ExitInvalidArgs, nil, "no prompts given")
	}

	cfg, err := resolvedConfig(cmd.Flags(), &genEngine)
	if err != nil {
		return err
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	res, err := engine.Generate(cmd.Context(), prompts, nil)
	if err != nil {
		return exitError(ExitGenerationFailed, err, "generation failed")
	}

	var buf bytes.Buffer
	if genFormat == "json" {
		err = writeResultJSON(&buf, res)
	} else {
		err = writeResultText(&buf, prompts, res)
	}
	if err != nil {
		return exitError(ExitOutputFailed, err, "formatting output")
	}
	return emit(cmd, genOutput, buf.Bytes())
}

// splitPrompts returns the non-empty lines of s.
func splitPrompts(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func writeResultJSON(w io.Writer, res *generate.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func writeResultText(w io.Writer, prompts []string, res *generate.Result) error {
	header := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)

	for i, gens := range res.Generations {
		if _, err := header.Fprintf(w, "[%d] %s\n", i+1, prompts[i]); err != nil {
			return err
		}
		for j, g := range gens {
			if len(gens) > 1 {
				if _, err := dim.Fprintf(w, "  #%d\n", j+1); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintln(w, g.Text); err != nil {
				return err
			}
		}
	}
	if u := res.Usage; u.TotalTokens != nil {
		if _, err := dim.Fprintf(w, "tokens: %d\n", *u.TotalTokens); err != nil {
			return err
		}
	}
	return nil
}

// emit writes data to path, or to the command's stdout when path is
// empty.
func emit(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return exitError(ExitOutputFailed, err, "writing output")
		}
		return nil
	}
	if err := cmdFS.WriteFile(path, data, 0o644); err != nil {
		return exitError(ExitOutputFailed, err, "writing %s", path)
	}
	return nil
}
