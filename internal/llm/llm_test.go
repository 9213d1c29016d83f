// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package llm_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/batchllm/internal/llm"
)

// TestTransportInterfaceCompliance documents which types satisfy Transport.
func TestTransportInterfaceCompliance(t *testing.T) {
	t.Run("MockTransport implements Transport", func(t *testing.T) {
		var tr llm.Transport = llm.NewMockTransport()
		assert.Equal(t, "mock", tr.Name())
	})
	t.Run("LoremTransport implements Transport", func(t *testing.T) {
		var tr llm.Transport = llm.NewLoremTransport()
		assert.Equal(t, "lorem", tr.Name())
	})
}

func TestParams_Replicas(t *testing.T) {
	assert.Equal(t, 1, llm.Params{}.Replicas())
	assert.Equal(t, 1, llm.Params{N: -3}.Replicas())
	assert.Equal(t, 4, llm.Params{N: 4}.Replicas())
}

func TestUsage_AddAbsentContributesNothing(t *testing.T) {
	a := llm.Usage{PromptTokens: llm.Int(3)}
	b := llm.Usage{CompletionTokens: llm.Int(5)}

	sum := a.Add(b)
	require.NotNil(t, sum.PromptTokens)
	require.NotNil(t, sum.CompletionTokens)
	assert.Equal(t, 3, *sum.PromptTokens)
	assert.Equal(t, 5, *sum.CompletionTokens)
	assert.Nil(t, sum.TotalTokens, "never reported anywhere, stays absent")
}

func TestUsage_AddDoesNotAlias(t *testing.T) {
	a := llm.NewUsage(1, 2, 3)
	sum := llm.Usage{}.Add(a)
	*sum.PromptTokens = 100
	assert.Equal(t, 1, *a.PromptTokens)
}

func TestUsage_AddCommutativeAndAssociative(t *testing.T) {
	parts := []llm.Usage{
		llm.NewUsage(1, 2, 3),
		{PromptTokens: llm.Int(10)},
		{},
		{CompletionTokens: llm.Int(7), TotalTokens: llm.Int(7)},
	}

	forward := llm.Usage{}
	for _, u := range parts {
		forward = forward.Add(u)
	}
	backward := llm.Usage{}
	for i := len(parts) - 1; i >= 0; i-- {
		backward = parts[i].Add(backward)
	}
	grouped := parts[0].Add(parts[1]).Add(parts[2].Add(parts[3]))

	for _, got := range []llm.Usage{backward, grouped} {
		assert.Equal(t, *forward.PromptTokens, *got.PromptTokens)
		assert.Equal(t, *forward.CompletionTokens, *got.CompletionTokens)
		assert.Equal(t, *forward.TotalTokens, *got.TotalTokens)
	}
	assert.Equal(t, 11, *forward.PromptTokens)
	assert.Equal(t, 9, *forward.CompletionTokens)
	assert.Equal(t, 10, *forward.TotalTokens)
}

func TestUsage_IsZeroAndJSON(t *testing.T) {
	var u llm.Usage
	assert.True(t, u.IsZero())

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))

	u = u.Add(llm.Usage{TotalTokens: llm.Int(0)})
	assert.False(t, u.IsZero(), "a reported zero is still reported")

	data, err = json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_tokens":0}`, string(data))
}
