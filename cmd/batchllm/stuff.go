// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davetashner/batchllm/internal/chain"
	"github.com/davetashner/batchllm/internal/config"
)

// Stuff command flags.
var (
	stuffEngine    engineFlags
	stuffChainPath string
	stuffPrompt    string
	stuffInputs    []string
	stuffFormat    string
	stuffOutput    string
)

// stuffCmd runs a document stuffing chain.
var stuffCmd = &cobra.Command{
	Use:   "stuff [document...]",
	Short: "Join documents into one prompt and complete it",
	Long: `Read each document file ("-" reads stdin), join their contents with
blank lines, and complete a prompt that receives the joined text.

The chain comes from a saved chain file (--chain) or is built from the
layered configuration and a prompt template (--prompt). The template names
the joined text {context} unless stuff.document_variable_name says
otherwise; other placeholders are filled from --input key=value pairs.

A saved chain carries its own engine parameters, so --model, --batch-size,
-n, --max-tokens, --temperature, --stop and --max-retries are rejected with
--chain. --provider and --base-url still select credentials and endpoint.

Examples:
  batchllm stuff --prompt "Summarize:\n{context}" notes/*.md
  batchllm stuff --chain summarize.yaml --input audience=ops report.txt`,
	RunE: runStuff,
}

func init() {
	stuffEngine.register(stuffCmd.Flags())
	stuffCmd.Flags().StringVar(&stuffChainPath, "chain", "", "saved chain file (.json, .yaml, .yml or .toml)")
	stuffCmd.Flags().StringVar(&stuffPrompt, "prompt", "", "prompt template used when no --chain is given")
	stuffCmd.Flags().StringArrayVar(&stuffInputs, "input", nil, "extra prompt input as key=value (repeatable)")
	stuffCmd.Flags().StringVar(&stuffFormat, "format", "text", "output format: text or json")
	stuffCmd.Flags().StringVarP(&stuffOutput, "output", "o", "", "write output to a file instead of stdout")
	stuffCmd.MarkFlagsMutuallyExclusive("chain", "prompt")
}

// resetStuffFlags resets stuff command flags for testing.
func resetStuffFlags() {
	stuffEngine.reset(stuffCmd.Flags())
	stuffChainPath = ""
	stuffPrompt = ""
	stuffInputs = nil
	stuffFormat = "text"
	stuffOutput = ""
}

func runStuff(cmd *cobra.Command, args []string) error {
	if stuffFormat != "text" && stuffFormat != "json" {
		return exitError(ExitInvalidArgs, nil, "unsupported format %q (want text or json)", stuffFormat)
	}
	if stuffChainPath == "" && stuffPrompt == "" {
		return exitError(ExitInvalidArgs, nil, "one of --chain or --prompt is required")
	}
	if stuffChainPath != "" {
		if changed := changedParams(cmd.Flags()); len(changed) > 0 {
			return exitError(ExitInvalidArgs, nil, "%s cannot be used with --chain; the chain file sets engine parameters",
				strings.Join(changed, ", "))
		}
	}
	if len(args) == 0 {
		return exitError(ExitInvalidArgs, nil, "no documents given")
	}

	extra, err := parseInputs(stuffInputs)
	if err != nil {
		return exitError(ExitInvalidArgs, err, "--input")
	}
	docs := make([]chain.Document, 0, len(args))
	for _, path := range args {
		data, err := readInput(cmd.InOrStdin(), path)
		if err != nil {
			return exitError(ExitInvalidArgs, err, "reading document")
		}
		doc := chain.NewDocument(string(data))
		doc.Metadata = map[string]any{"source": path}
		docs = append(docs, doc)
	}

	cfg, err := resolvedConfig(cmd.Flags(), &stuffEngine)
	if err != nil {
		return err
	}

	var s *chain.StuffDocumentsChain
	if stuffChainPath != "" {
		s, err = loadStuffChain(cfg, stuffChainPath)
	} else {
		s, err = buildStuffChain(cfg, stuffPrompt)
	}
	if err != nil {
		return err
	}

	inputs := make(chain.Values, len(extra)+1)
	for k, v := range extra {
		inputs[k] = v
	}
	inputs[s.InputKey] = docs

	out, err := chain.Call(cmd.Context(), s, inputs)
	if err != nil {
		return exitError(ExitGenerationFailed, err, "stuff chain failed")
	}

	var buf bytes.Buffer
	if stuffFormat == "json" {
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(out)
	} else {
		err = writeValuesText(&buf, out)
	}
	if err != nil {
		return exitError(ExitOutputFailed, err, "formatting output")
	}
	return emit(cmd, stuffOutput, buf.Bytes())
}

// loadStuffChain loads a saved stuffing chain. References inside it are
// resolved against the chain file's directory.
func loadStuffChain(cfg *config.Config, path string) (*chain.StuffDocumentsChain, error) {
	abs, err := cmdFS.Abs(path)
	if err != nil {
		return nil, exitError(ExitInvalidArgs, err, "cannot resolve path %q", path)
	}
	loader := &chain.Loader{
		Resolver:   config.FileResolver{FS: cmdFS, BaseDir: filepath.Dir(abs)},
		Transports: cfg.TransportFactory(lookupEnv),
	}
	c, err := loader.LoadFile(abs)
	if err != nil {
		return nil, exitError(ExitInvalidArgs, err, "loading chain")
	}
	s, ok := c.(*chain.StuffDocumentsChain)
	if !ok {
		return nil, exitError(ExitInvalidArgs, nil, "chain %s has type %q, want %q", path, c.Type(), chain.TypeStuffDocuments)
	}
	return s, nil
}

// buildStuffChain assembles a stuffing chain from cfg and a prompt
// template.
func buildStuffChain(cfg *config.Config, template string) (*chain.StuffDocumentsChain, error) {
	prompt, err := chain.NewPromptTemplate(unescapeTemplate(template))
	if err != nil {
		return nil, exitError(ExitInvalidArgs, err, "--prompt")
	}
	engine, err := buildEngine(cfg)
	if err != nil {
		return nil, err
	}
	keys := chain.StuffKeys{
		InputKey:             cfg.Stuff.InputKey,
		OutputKey:            cfg.Stuff.OutputKey,
		DocumentVariableName: cfg.Stuff.DocumentVariableName,
	}
	return chain.NewStuffDocumentsChain(chain.NewLLMChain(engine, prompt), keys), nil
}

// unescapeTemplate turns the two-character sequences \n and \t typed on a
// shell command line into real control characters.
func unescapeTemplate(s string) string {
	return strings.NewReplacer(`\n`, "\n", `\t`, "\t").Replace(s)
}

// parseInputs splits key=value pairs.
func parseInputs(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%q is not key=value", p)
		}
		out[k] = v
	}
	return out, nil
}

// writeValuesText prints a lone output value bare, and several as
// sorted key: value lines.
func writeValuesText(buf *bytes.Buffer, out chain.Values) error {
	if len(out) == 1 {
		for _, v := range out {
			_, err := fmt.Fprintln(buf, v)
			return err
		}
	}
	keys := make([]string, 0, len(out))
	for k := range out {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(buf, "%s: %v\n", k, out[k]); err != nil {
			return err
		}
	}
	return nil
}
