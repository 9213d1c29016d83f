// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package chain

import (
	"context"
	"fmt"
	"slices"

	"github.com/davetashner/batchllm/internal/fault"
	"github.com/davetashner/batchllm/internal/generate"
)

// TypeLLMChain is the type tag of a serialized LLMChain.
const TypeLLMChain = "llm_chain"

// DefaultLLMOutputKey is the key LLMChain writes its completion under.
const DefaultLLMOutputKey = "text"

// StopKey is an optional input carrying per-call stop sequences.
const StopKey = "stop"

// LLMChain formats a prompt from its inputs and completes it with an
// engine.
type LLMChain struct {
	Engine    *generate.Engine
	Prompt    PromptTemplate
	OutputKey string
}

// NewLLMChain returns an LLMChain writing to DefaultLLMOutputKey.
func NewLLMChain(engine *generate.Engine, prompt PromptTemplate) *LLMChain {
	return &LLMChain{Engine: engine, Prompt: prompt, OutputKey: DefaultLLMOutputKey}
}

// Compile-time interface check.
var _ Chain = (*LLMChain)(nil)

func (c *LLMChain) Type() string { return TypeLLMChain }

func (c *LLMChain) InputKeys() []string {
	return slices.Clone(c.Prompt.InputVariables)
}

func (c *LLMChain) OutputKeys() []string { return []string{c.outputKey()} }

// Run formats the prompt and returns the first completion's text.
func (c *LLMChain) Run(ctx context.Context, inputs Values) (Values, error) {
	if c.Engine == nil {
		return nil, fault.InvalidArgument("llm chain has no engine")
	}
	prompt, err := c.Prompt.Format(inputs)
	if err != nil {
		return nil, err
	}
	stop, err := stopFrom(inputs)
	if err != nil {
		return nil, err
	}
	text, err := c.Engine.Call(ctx, prompt, stop)
	if err != nil {
		return nil, err
	}
	return Values{c.outputKey(): text}, nil
}

// Apply formats one prompt per input set and completes them all in a single
// engine call, so they share batching. Every input set must carry the same
// stop sequences.
func (c *LLMChain) Apply(ctx context.Context, inputs []Values) ([]Values, error) {
	if c.Engine == nil {
		return nil, fault.InvalidArgument("llm chain has no engine")
	}
	if len(inputs) == 0 {
		return nil, nil
	}

	prompts := make([]string, len(inputs))
	var stop []string
	for i, in := range inputs {
		p, err := c.Prompt.Format(in)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		prompts[i] = p

		s, err := stopFrom(in)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		if i == 0 {
			stop = s
		} else if !slices.Equal(stop, s) {
			return nil, fault.InvalidArgument("input %d: stop sequences differ from input 0", i)
		}
	}

	res, err := c.Engine.Generate(ctx, prompts, stop)
	if err != nil {
		return nil, err
	}
	out := make([]Values, len(res.Generations))
	for i, gens := range res.Generations {
		out[i] = Values{c.outputKey(): gens[0].Text}
	}
	return out, nil
}

// Serialize embeds the engine configuration under "llm", tagged with the
// provider name, and the prompt under "prompt".
func (c *LLMChain) Serialize() (Config, error) {
	if c.Engine == nil {
		return nil, fault.InvalidArgument("llm chain has no engine")
	}
	llmCfg := c.Engine.Config().Map()
	llmCfg[TypeKey] = c.Engine.Provider()
	return Config{
		TypeKey:      TypeLLMChain,
		"llm":        llmCfg,
		"prompt":     c.Prompt.Serialize(),
		"output_key": c.outputKey(),
	}, nil
}

func (c *LLMChain) outputKey() string {
	if c.OutputKey == "" {
		return DefaultLLMOutputKey
	}
	return c.OutputKey
}

func stopFrom(inputs Values) ([]string, error) {
	raw, ok := inputs[StopKey]
	if !ok {
		return nil, nil
	}
	stop, err := stringList(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StopKey, err)
	}
	return stop, nil
}

func loadLLMChain(l *Loader, cfg Config) (Chain, error) {
	r := l.resolver()

	llmCfg, err := r.Resolve("llm", cfg)
	if err != nil {
		return nil, err
	}
	provider, _ := llmCfg[TypeKey].(string)
	if provider == "" {
		return nil, &fault.ConfigResolutionError{Key: "llm", Reason: "missing provider type tag"}
	}
	if l.Transports == nil {
		return nil, &fault.ConfigResolutionError{Key: "llm", Reason: "loader has no transport factory"}
	}
	transport, err := l.Transports(provider)
	if err != nil {
		return nil, &fault.ConfigResolutionError{
			Key:    "llm",
			Reason: fmt.Sprintf("cannot build %q transport", provider),
			Err:    err,
		}
	}
	engineCfg, err := generate.ConfigFromMap(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	engine, err := generate.New(transport, engineCfg)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}

	promptCfg, err := r.Resolve("prompt", cfg)
	if err != nil {
		return nil, err
	}
	prompt, err := promptFromMap(promptCfg)
	if err != nil {
		return nil, fmt.Errorf("prompt: %w", err)
	}

	c := NewLLMChain(engine, prompt)
	if raw, ok := cfg["output_key"]; ok {
		key, ok := raw.(string)
		if !ok || key == "" {
			return nil, fault.InvalidArgument("output_key must be a non-empty string, got %v", raw)
		}
		c.OutputKey = key
	}
	return c, nil
}
