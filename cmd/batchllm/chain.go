// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/davetashner/batchllm/internal/chain"
	"github.com/davetashner/batchllm/internal/config"
)

// Chain command flags.
var (
	chainEngine engineFlags
	chainPrompt string
	chainRef    string
)

// chainCmd is the parent command for chain file subcommands.
var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Create and inspect saved chain files",
}

// chainNewCmd writes a stuffing chain file.
var chainNewCmd = &cobra.Command{
	Use:   "new <file>",
	Short: "Save a stuffing chain built from config and a prompt",
	Long: `Build a stuffing chain from the layered configuration, engine flags
and --prompt, and save it. The extension picks the format: .json, .yaml,
.yml or .toml.

With --ref, the inner LLM chain is written to its own file and the saved
chain refers to it through llm_chain_path. A relative --ref is placed next
to <file>.

Examples:
  batchllm chain new summarize.yaml --prompt "Summarize:\n{context}"
  batchllm chain new summarize.json --prompt "{context}" --ref llm.toml`,
	Args: cobra.ExactArgs(1),
	RunE: runChainNew,
}

// chainShowCmd loads a chain file and prints its resolved form.
var chainShowCmd = &cobra.Command{
	Use:   "show <file>",
	Short: "Load a chain file and print it with references inlined",
	Args:  cobra.ExactArgs(1),
	RunE:  runChainShow,
}

func init() {
	chainEngine.register(chainNewCmd.Flags())
	chainNewCmd.Flags().StringVar(&chainPrompt, "prompt", "", "prompt template for the inner chain")
	chainNewCmd.Flags().StringVar(&chainRef, "ref", "", "save the inner chain to this file and reference it")
	_ = chainNewCmd.MarkFlagRequired("prompt")

	chainCmd.AddCommand(chainNewCmd)
	chainCmd.AddCommand(chainShowCmd)
}

// resetChainFlags resets chain command flags for testing.
func resetChainFlags() {
	chainEngine.reset(chainNewCmd.Flags())
	chainPrompt = ""
	chainRef = ""
}

func runChainNew(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := config.FormatForPath(path); err != nil {
		return exitError(ExitInvalidArgs, err, "chain file")
	}

	cfg, err := resolvedConfig(cmd.Flags(), &chainEngine)
	if err != nil {
		return err
	}
	s, err := buildStuffChain(cfg, chainPrompt)
	if err != nil {
		return err
	}

	if chainRef != "" {
		err = chain.SaveReferenced(cmdFS, s, path, "llm_chain", chainRef)
	} else {
		err = chain.Save(cmdFS, s, path)
	}
	if err != nil {
		return exitError(ExitOutputFailed, err, "saving chain")
	}
	if !quiet {
		_, _ = cmd.OutOrStdout().Write([]byte("Saved " + path + "\n"))
	}
	return nil
}

func runChainShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadLayered(".")
	if err != nil {
		return exitError(ExitInvalidArgs, err, "loading config")
	}
	abs, err := cmdFS.Abs(args[0])
	if err != nil {
		return exitError(ExitInvalidArgs, err, "cannot resolve path %q", args[0])
	}
	loader := &chain.Loader{
		Resolver:   config.FileResolver{FS: cmdFS, BaseDir: filepath.Dir(abs)},
		Transports: cfg.TransportFactory(lookupEnv),
	}
	c, err := loader.LoadFile(abs)
	if err != nil {
		return exitError(ExitInvalidArgs, err, "loading chain")
	}
	serialized, err := c.Serialize()
	if err != nil {
		return exitError(ExitInvalidArgs, err, "serializing chain")
	}
	data, err := config.EncodeMap(config.FormatYAML, serialized)
	if err != nil {
		return exitError(ExitOutputFailed, err, "formatting chain")
	}
	return emit(cmd, "", data)
}
