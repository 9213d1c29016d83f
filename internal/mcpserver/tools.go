// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/davetashner/batchllm/internal/chain"
	"github.com/davetashner/batchllm/internal/config"
	"github.com/davetashner/batchllm/internal/generate"
	"github.com/davetashner/batchllm/internal/llm"
)

// GenerateInput is the input schema for the generate MCP tool.
type GenerateInput struct {
	Prompts     []string `json:"prompts" jsonschema:"Prompts to complete, in order"`
	Provider    string   `json:"provider,omitempty" jsonschema:"Provider: openai, anthropic, lorem or mock (default from config)"`
	Model       string   `json:"model,omitempty" jsonschema:"Model name (default from config)"`
	N           int      `json:"n,omitempty" jsonschema:"Completions per prompt (default 1)"`
	MaxTokens   int      `json:"max_tokens,omitempty" jsonschema:"Token cap per completion"`
	Temperature *float64 `json:"temperature,omitempty" jsonschema:"Sampling temperature (0.0-2.0)"`
	Stop        []string `json:"stop,omitempty" jsonschema:"Stop sequences for this call; conflicts with configured stop sequences"`
}

// StuffInput is the input schema for the stuff MCP tool.
type StuffInput struct {
	Chain     string         `json:"chain" jsonschema:"Path to a saved stuff_documents_chain file (.json, .yaml, .yml or .toml)"`
	Documents []string       `json:"documents" jsonschema:"Document texts, joined in order"`
	Inputs    map[string]any `json:"inputs,omitempty" jsonschema:"Additional prompt inputs passed through to the inner chain"`
}

// ProvidersInput is the input schema for the providers MCP tool.
type ProvidersInput struct{}

// providersOutput is the JSON body returned by the providers tool.
type providersOutput struct {
	Providers  []string `json:"providers"`
	ChainTypes []string `json:"chain_types"`
	Default    string   `json:"default_provider"`
}

// boolPtr returns a pointer to a bool.
func boolPtr(b bool) *bool { return &b }

type toolset struct {
	opts Options
}

// registerTools adds all batchllm tools to the MCP server.
func registerTools(server *mcp.Server, ts *toolset) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate",
		Description: "Complete a list of prompts in provider-sized batches. Returns the completions grouped per prompt with aggregated token usage.",
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:    true,
			DestructiveHint: boolPtr(false),
			OpenWorldHint:   boolPtr(true),
		},
	}, ts.handleGenerate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "stuff",
		Description: "Join documents into one context and run a saved stuffing chain over them. Returns the chain's output values.",
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:    true,
			DestructiveHint: boolPtr(false),
			OpenWorldHint:   boolPtr(true),
		},
	}, ts.handleStuff)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "providers",
		Description: "List the available providers and chain types.",
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint:    true,
			DestructiveHint: boolPtr(false),
			OpenWorldHint:   boolPtr(false),
		},
	}, ts.handleProviders)
}

func (ts *toolset) handleGenerate(ctx context.Context, _ *mcp.CallToolRequest, input GenerateInput) (*mcp.CallToolResult, any, error) {
	if len(input.Prompts) == 0 {
		return nil, nil, fmt.Errorf("prompts must not be empty")
	}

	cfg := config.Merge(ts.opts.Config, &config.Config{
		Provider:    input.Provider,
		Model:       input.Model,
		N:           input.N,
		MaxTokens:   input.MaxTokens,
		Temperature: input.Temperature,
	})
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}
	ec, err := cfg.EngineConfig()
	if err != nil {
		return nil, nil, err
	}
	transport, err := ts.opts.Transports(cfg.ProviderName())
	if err != nil {
		return nil, nil, fmt.Errorf("provider %q: %w", cfg.ProviderName(), err)
	}
	engine, err := generate.New(transport, ec)
	if err != nil {
		return nil, nil, err
	}

	res, err := engine.Generate(ctx, input.Prompts, input.Stop)
	if err != nil {
		return nil, nil, fmt.Errorf("generation failed: %w", err)
	}
	return jsonResult(res)
}

func (ts *toolset) handleStuff(ctx context.Context, _ *mcp.CallToolRequest, input StuffInput) (*mcp.CallToolResult, any, error) {
	path, err := ResolveChainPath(ts.opts.BaseDir, input.Chain)
	if err != nil {
		return nil, nil, err
	}

	loader := chain.NewLoader(filepath.Dir(path), ts.opts.Transports)
	c, err := loader.LoadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load chain: %w", err)
	}
	stuff, ok := c.(*chain.StuffDocumentsChain)
	if !ok {
		return nil, nil, fmt.Errorf("chain %q has type %q, want %q", input.Chain, c.Type(), chain.TypeStuffDocuments)
	}

	docs := make([]chain.Document, len(input.Documents))
	for i, text := range input.Documents {
		docs[i] = chain.NewDocument(text)
	}
	values := make(chain.Values, len(input.Inputs)+1)
	maps.Copy(values, input.Inputs)
	values[stuff.InputKey] = docs

	out, err := chain.Call(ctx, stuff, values)
	if err != nil {
		return nil, nil, fmt.Errorf("chain failed: %w", err)
	}
	return jsonResult(out)
}

func (ts *toolset) handleProviders(_ context.Context, _ *mcp.CallToolRequest, _ ProvidersInput) (*mcp.CallToolResult, any, error) {
	return jsonResult(providersOutput{
		Providers:  llm.Providers(),
		ChainTypes: chain.Types(),
		Default:    ts.opts.Config.ProviderName(),
	})
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("formatting failed: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}
