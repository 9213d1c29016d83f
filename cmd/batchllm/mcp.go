// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/davetashner/batchllm/internal/config"
	"github.com/davetashner/batchllm/internal/mcpserver"
)

// mcpCmd is the parent command for MCP-related subcommands.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server commands",
	Long:  "Commands for running batchllm as an MCP server, exposing generation and document stuffing to AI agents.",
}

// mcpServeCmd runs the MCP server over stdio.
var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio",
	Long: `Start an MCP server on stdin/stdout, exposing batchllm's tools:
  - generate:  Complete a list of prompts in batches
  - stuff:     Run a saved stuffing chain over a set of documents
  - providers: List providers and chain types

Tool calls start from the layered configuration of the working directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadLayered(".")
		if err != nil {
			return exitError(ExitInvalidArgs, err, "loading config")
		}
		if err := config.Validate(cfg); err != nil {
			return exitError(ExitInvalidArgs, err, "invalid config")
		}
		opts := mcpserver.Options{
			Config:     cfg,
			Transports: cfg.TransportFactory(lookupEnv),
		}
		return mcpserver.Run(cmd.Context(), Version, opts, &mcp.StdioTransport{})
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
}
