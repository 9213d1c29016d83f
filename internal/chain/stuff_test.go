// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package chain_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/batchllm/internal/chain"
	"github.com/davetashner/batchllm/internal/chain/chaintest"
	"github.com/davetashner/batchllm/internal/fault"
	"github.com/davetashner/batchllm/internal/llm"
)

func docs(texts ...string) []chain.Document {
	out := make([]chain.Document, len(texts))
	for i, t := range texts {
		out[i] = chain.NewDocument(t)
	}
	return out
}

func TestStuffDocumentsChain_MergesAndPassesThrough(t *testing.T) {
	inner := chaintest.NewMockChain(t)
	inner.On("Run", mock.Anything, chain.Values{"other": 1, "context": "A\n\nB"}).
		Return(chain.Values{"text": "summary"}, nil).Once()

	s := chain.NewStuffDocumentsChain(inner, chain.StuffKeys{})
	inputs := chain.Values{"input_documents": docs("A", "B"), "other": 1}

	out, err := chain.Call(context.Background(), s, inputs)
	require.NoError(t, err)
	assert.Equal(t, chain.Values{"text": "summary"}, out)

	// The caller's map is left alone.
	assert.Len(t, inputs, 2)
	assert.NotContains(t, inputs, "context")
}

func TestStuffDocumentsChain_PointerDocuments(t *testing.T) {
	inner := chaintest.NewMockChain(t)
	inner.On("Run", mock.Anything, chain.Values{"context": "one\n\ntwo"}).
		Return(chain.Values{"text": "ok"}, nil).Once()

	s := chain.NewStuffDocumentsChain(inner, chain.StuffKeys{})
	a, b := chain.NewDocument("one"), chain.NewDocument("two")

	_, err := s.Run(context.Background(), chain.Values{"input_documents": []*chain.Document{&a, &b}})
	require.NoError(t, err)
}

func TestStuffDocumentsChain_EmptyDocuments(t *testing.T) {
	inner := chaintest.NewMockChain(t)
	inner.On("Run", mock.Anything, chain.Values{"context": ""}).
		Return(chain.Values{"text": ""}, nil).Once()

	s := chain.NewStuffDocumentsChain(inner, chain.StuffKeys{})
	_, err := s.Run(context.Background(), chain.Values{"input_documents": []chain.Document{}})
	require.NoError(t, err)
}

func TestStuffDocumentsChain_MissingDocuments(t *testing.T) {
	inner := chaintest.NewMockChain(t)
	s := chain.NewStuffDocumentsChain(inner, chain.StuffKeys{})

	_, err := chain.Call(context.Background(), s, chain.Values{"other": 1})
	assert.ErrorIs(t, err, fault.ErrMissingInput)

	_, err = s.Run(context.Background(), chain.Values{"other": 1})
	var mi *fault.MissingInputError
	require.ErrorAs(t, err, &mi)
	assert.Equal(t, "input_documents", mi.Key)

	inner.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestStuffDocumentsChain_BadDocuments(t *testing.T) {
	inner := chaintest.NewMockChain(t)
	s := chain.NewStuffDocumentsChain(inner, chain.StuffKeys{})

	for name, v := range map[string]any{
		"strings":     []string{"A", "B"},
		"single":      chain.NewDocument("A"),
		"nil pointer": []*chain.Document{nil},
		"nil":         nil,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.Run(context.Background(), chain.Values{"input_documents": v})
			assert.ErrorIs(t, err, fault.ErrInvalidArgument)
		})
	}
}

func TestStuffDocumentsChain_CustomKeys(t *testing.T) {
	inner := chaintest.NewMockChain(t)
	inner.On("Run", mock.Anything, chain.Values{"body": "x\n\ny"}).
		Return(chain.Values{"text": "done"}, nil).Once()

	s := chain.NewStuffDocumentsChain(inner, chain.StuffKeys{
		InputKey:             "docs",
		DocumentVariableName: "body",
	})
	assert.Equal(t, []string{"docs"}, s.InputKeys())
	assert.Equal(t, []string{"output_text"}, s.OutputKeys())

	out, err := s.Run(context.Background(), chain.Values{"docs": docs("x", "y")})
	require.NoError(t, err)
	assert.Equal(t, chain.Values{"text": "done"}, out)
}

func TestStuffDocumentsChain_Defaults(t *testing.T) {
	assert.Equal(t, chain.StuffKeys{
		InputKey:             "input_documents",
		OutputKey:            "output_text",
		DocumentVariableName: "context",
	}, chain.DefaultStuffKeys())

	s := chain.NewStuffDocumentsChain(nil, chain.StuffKeys{})
	assert.Equal(t, chain.DefaultStuffKeys(), s.StuffKeys)

	// A bare literal behaves the same.
	bare := &chain.StuffDocumentsChain{}
	assert.Equal(t, []string{"input_documents"}, bare.InputKeys())
	assert.Equal(t, "stuff_documents_chain", bare.Type())
}

func TestStuffDocumentsChain_InnerErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	inner := chaintest.NewMockChain(t)
	inner.On("Run", mock.Anything, mock.Anything).Return(nil, boom).Once()

	s := chain.NewStuffDocumentsChain(inner, chain.StuffKeys{})
	_, err := s.Run(context.Background(), chain.Values{"input_documents": docs("A")})
	assert.ErrorIs(t, err, boom)
}

func TestStuffDocumentsChain_NoInner(t *testing.T) {
	s := &chain.StuffDocumentsChain{}
	_, err := s.Run(context.Background(), chain.Values{"input_documents": docs("A")})
	assert.ErrorIs(t, err, fault.ErrInvalidArgument)
}

func TestStuffDocumentsChain_SerializeEmbedsInner(t *testing.T) {
	inner := chaintest.NewMockChain(t)
	inner.On("Serialize").Return(chain.Config{"_type": "fake"}, nil).Once()

	s := chain.NewStuffDocumentsChain(inner, chain.StuffKeys{OutputKey: "summary"})
	cfg, err := s.Serialize()
	require.NoError(t, err)
	assert.Equal(t, chain.Config{
		"_type":                  "stuff_documents_chain",
		"input_key":              "input_documents",
		"output_key":             "summary",
		"document_variable_name": "context",
		"llm_chain":              map[string]any{"_type": "fake"},
	}, cfg)
}

func TestStuffDocumentsChain_EndToEnd(t *testing.T) {
	tr := llm.NewMockTransport()
	inner := chain.NewLLMChain(testEngine(t, tr, nil), chain.MustPromptTemplate("Summarize for {who}:\n{context}"))
	s := chain.NewStuffDocumentsChain(inner, chain.StuffKeys{})

	out, err := chain.Call(context.Background(), s, chain.Values{
		"input_documents": docs("first", "second"),
		"who":             "ops",
	})
	require.NoError(t, err)
	assert.Equal(t, chain.Values{"text": "Summarize for ops:\nfirst\n\nsecond#0"}, out)

	require.Len(t, tr.Calls(), 1)
	assert.Equal(t, []string{"Summarize for ops:\nfirst\n\nsecond"}, tr.Calls()[0].Prompts)
}
