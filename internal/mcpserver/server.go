// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package mcpserver

import (
	"context"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/davetashner/batchllm/internal/config"
	"github.com/davetashner/batchllm/internal/llm"
)

// Options carries what the tools need to build engines and load chains.
type Options struct {
	// Config is the layered configuration tool calls start from.
	Config *config.Config

	// Transports builds provider transports. Nil means a factory over the
	// API keys in the process environment.
	Transports llm.Factory

	// BaseDir anchors relative chain paths. Empty means the working
	// directory.
	BaseDir string
}

// New creates a new MCP server with batchllm's tools registered.
func New(version string, opts Options) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "batchllm",
		Title:   "Batchllm: batched completions and document stuffing",
		Version: version,
	}, nil)

	if opts.Config == nil {
		opts.Config = &config.Config{}
	}
	if opts.Transports == nil {
		opts.Transports = opts.Config.TransportFactory(os.LookupEnv)
	}
	registerTools(server, &toolset{opts: opts})
	return server
}

// Run creates an MCP server and runs it on the given transport.
// It blocks until the client disconnects or the context is cancelled.
func Run(ctx context.Context, version string, opts Options, transport mcp.Transport) error {
	server := New(version, opts)
	return server.Run(ctx, transport)
}
