// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoremTransport_ShapeAndUsage(t *testing.T) {
	tr := NewLoremTransport()

	resp, err := tr.Complete(context.Background(), &Request{
		Prompts: []string{"one two", "three"},
		Params:  Params{N: 3},
	})
	require.NoError(t, err)
	require.Len(t, resp.Completions, 6)

	words := 0
	for _, c := range resp.Completions {
		assert.NotEmpty(t, c.Text)
		words += len(strings.Fields(c.Text))
	}
	assert.Equal(t, 3, *resp.Usage.PromptTokens)
	assert.Equal(t, words, *resp.Usage.CompletionTokens)
	assert.Equal(t, 3+words, *resp.Usage.TotalTokens)
}

func TestLoremTransport_MaxTokensTruncates(t *testing.T) {
	tr := NewLoremTransport()

	resp, err := tr.Complete(context.Background(), &Request{
		Prompts: []string{"p"},
		Params:  Params{N: 5, MaxTokens: Int(2)},
	})
	require.NoError(t, err)
	for _, c := range resp.Completions {
		assert.LessOrEqual(t, len(strings.Fields(c.Text)), 2)
		assert.Equal(t, "length", c.FinishReason)
	}
}

func TestLoremTransport_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoremTransport().Complete(ctx, &Request{Prompts: []string{"p"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTruncateAtStop(t *testing.T) {
	assert.Equal(t, "lorem ", truncateAtStop("lorem ipsum. dolor", []string{"ipsum", "dolor"}))
	assert.Equal(t, "lorem", truncateAtStop("lorem", []string{"", "zzz"}))
	assert.Equal(t, "", truncateAtStop("lorem", []string{"lo"}))
}
