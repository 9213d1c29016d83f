// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

// Package llm provides the remote-inference transport abstraction and its
// implementations (OpenAI, Anthropic, an offline lorem generator, and a
// scripted mock) used by the batch generation engine.
package llm

import "context"

// Transport abstracts one remote completion call for a batch of prompts.
type Transport interface {
	// Complete sends every prompt in req and returns N completions per
	// prompt, prompt-major: the N replicas of prompt i occupy positions
	// [i*N, (i+1)*N) of Response.Completions.
	// Implementations must respect context cancellation and deadlines.
	Complete(ctx context.Context, req *Request) (*Response, error)

	// Name returns the provider identifier (e.g. "openai", "lorem").
	Name() string
}

// Request describes a single remote call covering one batch of prompts.
type Request struct {
	// Model is the provider's model identifier.
	Model string

	// Prompts is the ordered batch of prompts.
	Prompts []string

	// Stop sequences; generation halts when any is produced.
	Stop []string

	// Params holds the sampling parameters.
	Params Params

	// Extra carries additional provider parameters passed through verbatim.
	Extra map[string]any
}

// Params holds sampling parameters. Pointer fields distinguish "not set"
// from a zero value.
type Params struct {
	Temperature      *float64
	TopP             *float64
	FrequencyPenalty *float64
	PresencePenalty  *float64
	MaxTokens        *int

	// N is the number of completions per prompt. Zero means one.
	N int

	// BestOf is the number of server-side candidates per prompt. Zero means
	// provider default.
	BestOf int

	// LogitBias maps token IDs to a bias in [-100, 100].
	LogitBias map[string]int

	// Logprobs requests log-probabilities for the top Logprobs tokens.
	Logprobs *int
}

// Replicas returns the effective number of completions per prompt.
func (p Params) Replicas() int {
	if p.N < 1 {
		return 1
	}
	return p.N
}

// Response holds the result of one Complete call.
type Response struct {
	// Completions in prompt-major order.
	Completions []Completion

	// Usage reports token consumption. Counters the provider omitted are nil.
	Usage Usage

	// Model is the model that actually served the request.
	Model string
}

// Completion is one generated text for one prompt.
type Completion struct {
	Text         string    `json:"text"`
	FinishReason string    `json:"finish_reason,omitempty"`
	Logprobs     *Logprobs `json:"logprobs,omitempty"`
}

// Logprobs carries token-level log-probabilities when requested.
type Logprobs struct {
	Tokens        []string             `json:"tokens,omitempty"`
	TokenLogprobs []float64            `json:"token_logprobs,omitempty"`
	TopLogprobs   []map[string]float64 `json:"top_logprobs,omitempty"`
	TextOffset    []int                `json:"text_offset,omitempty"`
}

// Usage tracks token counters. A nil counter means the provider never
// reported it.
type Usage struct {
	PromptTokens     *int `json:"prompt_tokens,omitempty"`
	CompletionTokens *int `json:"completion_tokens,omitempty"`
	TotalTokens      *int `json:"total_tokens,omitempty"`
}

// NewUsage returns a Usage with all three counters set.
func NewUsage(prompt, completion, total int) Usage {
	return Usage{
		PromptTokens:     &prompt,
		CompletionTokens: &completion,
		TotalTokens:      &total,
	}
}

// Add returns the counter-wise sum of u and o. An absent counter on either
// side contributes nothing; the sum stays absent only if both are absent.
// Add never mutates u or o.
func (u Usage) Add(o Usage) Usage {
	return Usage{
		PromptTokens:     addCounter(u.PromptTokens, o.PromptTokens),
		CompletionTokens: addCounter(u.CompletionTokens, o.CompletionTokens),
		TotalTokens:      addCounter(u.TotalTokens, o.TotalTokens),
	}
}

// IsZero reports whether no counter was ever reported.
func (u Usage) IsZero() bool {
	return u.PromptTokens == nil && u.CompletionTokens == nil && u.TotalTokens == nil
}

func addCounter(a, b *int) *int {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		v := *b
		return &v
	case b == nil:
		v := *a
		return &v
	}
	v := *a + *b
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
