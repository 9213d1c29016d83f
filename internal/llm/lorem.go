// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"strings"
	"sync"

	loremgen "github.com/bozaro/golorem"
)

// ProviderLorem is the provider name of LoremTransport.
const ProviderLorem = "lorem"

// LoremTransport is an offline Transport that answers every prompt with
// lorem ipsum sentences. It needs no credentials and is useful for dry runs
// of a pipeline. Usage counts whitespace-separated words.
type LoremTransport struct {
	mu        sync.Mutex
	generator *loremgen.Lorem
}

// Compile-time check that LoremTransport satisfies the Transport interface.
var _ Transport = (*LoremTransport)(nil)

// NewLoremTransport creates a lorem ipsum transport.
func NewLoremTransport() *LoremTransport {
	return &LoremTransport{
		generator: loremgen.New(),
	}
}

// Name returns "lorem".
func (t *LoremTransport) Name() string { return ProviderLorem }

// Complete returns N sentences per prompt. When MaxTokens is set, each
// sentence is truncated to that many words and finishes with "length".
func (t *LoremTransport) Complete(ctx context.Context, req *Request) (*Response, error) {
	n := req.Params.Replicas()
	out := make([]Completion, 0, len(req.Prompts)*n)
	promptTokens, completionTokens := 0, 0

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, prompt := range req.Prompts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		promptTokens += len(strings.Fields(prompt))
		for range n {
			words := strings.Fields(t.generator.Sentence(5, 15))
			finish := "stop"
			if req.Params.MaxTokens != nil && *req.Params.MaxTokens > 0 && len(words) > *req.Params.MaxTokens {
				words = words[:*req.Params.MaxTokens]
				finish = "length"
			}
			completionTokens += len(words)
			out = append(out, Completion{
				Text:         truncateAtStop(strings.Join(words, " "), req.Stop),
				FinishReason: finish,
			})
		}
	}

	return &Response{
		Completions: out,
		Usage:       NewUsage(promptTokens, completionTokens, promptTokens+completionTokens),
		Model:       ProviderLorem,
	}, nil
}

// truncateAtStop cuts text at the earliest stop sequence.
func truncateAtStop(text string, stop []string) string {
	cut := len(text)
	for _, s := range stop {
		if s == "" {
			continue
		}
		if i := strings.Index(text, s); i >= 0 && i < cut {
			cut = i
		}
	}
	return text[:cut]
}
