// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

// Package generate implements the batch generation engine: it splits a
// prompt list into bounded batches, sends each batch through the retrying
// executor, and regroups the flat completion stream per prompt.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/davetashner/batchllm/internal/chunk"
	"github.com/davetashner/batchllm/internal/fault"
	"github.com/davetashner/batchllm/internal/llm"
	"github.com/davetashner/batchllm/internal/retry"
)

// Result is the outcome of one Generate call.
type Result struct {
	// Generations holds one group of N completions per prompt, in prompt
	// order.
	Generations [][]llm.Completion `json:"generations"`

	// Usage is the sum of every batch's usage.
	Usage llm.Usage `json:"usage"`

	// Model is the model reported by the last batch response.
	Model string `json:"model,omitempty"`
}

// Engine drives batched completion calls against a Transport. An Engine
// holds no per-call state and is safe for concurrent use whenever its
// transport is.
type Engine struct {
	transport llm.Transport
	cfg       Config
}

// New validates cfg and returns an Engine bound to t.
func New(t llm.Transport, cfg Config) (*Engine, error) {
	if t == nil {
		return nil, fault.InvalidArgument("transport must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{transport: t, cfg: cfg.clone()}, nil
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() Config { return e.cfg.clone() }

// Provider returns the transport's provider name.
func (e *Engine) Provider() string { return e.transport.Name() }

// Generate completes every prompt and returns N completions per prompt.
//
// A non-empty stop is used instead of the configured stop list; supplying
// both is a ConfigConflict. Batches are sent one after another. The first
// batch that fails aborts the call and discards all earlier results.
func (e *Engine) Generate(ctx context.Context, prompts []string, stop []string) (*Result, error) {
	if len(e.cfg.Stop) > 0 && len(stop) > 0 {
		return nil, fault.ConfigConflict("stop sequences given both in the engine configuration and in the call")
	}
	effectiveStop := e.cfg.Stop
	if len(stop) > 0 {
		effectiveStop = stop
	}

	batches, err := chunk.Chunk(prompts, e.cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	start := time.Now()
	n := e.cfg.N

	flat := make([]llm.Completion, 0, len(prompts)*n)
	var usage llm.Usage
	model := e.cfg.Model

	for i, batch := range batches {
		req := e.request(batch, effectiveStop)
		resp, err := retry.Do(ctx, e.cfg.Retry, func(ctx context.Context) (*llm.Response, error) {
			return e.transport.Complete(ctx, req)
		})
		if err != nil {
			return nil, fmt.Errorf("batch %d of %d: %w", i+1, len(batches), err)
		}
		if want := len(batch) * n; len(resp.Completions) != want {
			return nil, fmt.Errorf("batch %d of %d: %w: got %d completions, want %d",
				i+1, len(batches), llm.ErrMalformedResponse, len(resp.Completions), want)
		}

		flat = append(flat, resp.Completions...)
		usage = usage.Add(resp.Usage)
		if resp.Model != "" {
			model = resp.Model
		}

		slog.Debug("batch complete",
			"run_id", runID,
			"batch", i+1,
			"batches", len(batches),
			"prompts", len(batch),
		)
	}

	slog.Info("generation complete",
		"run_id", runID,
		"provider", e.transport.Name(),
		"model", model,
		"prompts", len(prompts),
		"batches", len(batches),
		"duration", time.Since(start),
	)

	return &Result{
		Generations: regroup(flat, n),
		Usage:       usage,
		Model:       model,
	}, nil
}

// Call completes a single prompt and returns the text of its first
// completion.
func (e *Engine) Call(ctx context.Context, prompt string, stop []string) (string, error) {
	res, err := e.Generate(ctx, []string{prompt}, stop)
	if err != nil {
		return "", err
	}
	return res.Generations[0][0].Text, nil
}

func (e *Engine) request(batch []string, stop []string) *llm.Request {
	c := e.cfg
	params := llm.Params{
		Temperature:      llm.Float(c.Temperature),
		TopP:             llm.Float(c.TopP),
		FrequencyPenalty: llm.Float(c.FrequencyPenalty),
		PresencePenalty:  llm.Float(c.PresencePenalty),
		N:                c.N,
		LogitBias:        c.LogitBias,
		Logprobs:         c.Logprobs,
	}
	if c.MaxTokens > 0 {
		params.MaxTokens = llm.Int(c.MaxTokens)
	}
	if c.BestOf > 1 {
		params.BestOf = c.BestOf
	}
	return &llm.Request{
		Model:   c.Model,
		Prompts: batch,
		Stop:    stop,
		Params:  params,
		Extra:   c.Extra,
	}
}

// regroup splits flat into consecutive groups of n. len(flat) must be a
// multiple of n.
func regroup(flat []llm.Completion, n int) [][]llm.Completion {
	groups := make([][]llm.Completion, 0, len(flat)/n)
	for i := 0; i < len(flat); i += n {
		groups = append(groups, flat[i:i+n:i+n])
	}
	return groups
}
