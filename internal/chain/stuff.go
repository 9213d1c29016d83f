// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcuadros/go-defaults"

	"github.com/davetashner/batchllm/internal/fault"
)

// TypeStuffDocuments is the type tag of a serialized StuffDocumentsChain.
const TypeStuffDocuments = "stuff_documents_chain"

// DocumentSeparator joins document texts before they are handed on.
const DocumentSeparator = "\n\n"

// StuffKeys names the keys a StuffDocumentsChain reads and writes. Empty
// fields take the tagged defaults.
type StuffKeys struct {
	// InputKey holds the documents to stuff.
	InputKey string `default:"input_documents"`

	// OutputKey is declared as the stage's output.
	OutputKey string `default:"output_text"`

	// DocumentVariableName receives the joined text on the inner chain.
	DocumentVariableName string `default:"context"`
}

// DefaultStuffKeys returns StuffKeys with every default applied.
func DefaultStuffKeys() StuffKeys {
	var k StuffKeys
	defaults.SetDefaults(&k)
	return k
}

// StuffDocumentsChain joins a list of documents into one string and runs an
// inner chain with it under DocumentVariableName. Other inputs pass
// through to the inner chain untouched.
type StuffDocumentsChain struct {
	LLMChain Chain
	StuffKeys
}

// NewStuffDocumentsChain wraps inner. Empty fields of keys take defaults.
func NewStuffDocumentsChain(inner Chain, keys StuffKeys) *StuffDocumentsChain {
	defaults.SetDefaults(&keys)
	return &StuffDocumentsChain{LLMChain: inner, StuffKeys: keys}
}

// Compile-time interface check.
var _ Chain = (*StuffDocumentsChain)(nil)

func (s *StuffDocumentsChain) Type() string { return TypeStuffDocuments }

func (s *StuffDocumentsChain) InputKeys() []string { return []string{s.keys().InputKey} }

func (s *StuffDocumentsChain) OutputKeys() []string { return []string{s.keys().OutputKey} }

// Run returns the inner chain's output as is.
func (s *StuffDocumentsChain) Run(ctx context.Context, inputs Values) (Values, error) {
	if s.LLMChain == nil {
		return nil, fault.InvalidArgument("stuff documents chain has no inner chain")
	}
	k := s.keys()

	raw, ok := inputs[k.InputKey]
	if !ok {
		return nil, &fault.MissingInputError{Key: k.InputKey}
	}
	texts, err := documentTexts(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", k.InputKey, err)
	}

	merged := make(Values, len(inputs))
	for key, v := range inputs {
		if key != k.InputKey {
			merged[key] = v
		}
	}
	merged[k.DocumentVariableName] = strings.Join(texts, DocumentSeparator)

	return s.LLMChain.Run(ctx, merged)
}

func (s *StuffDocumentsChain) Serialize() (Config, error) {
	if s.LLMChain == nil {
		return nil, fault.InvalidArgument("stuff documents chain has no inner chain")
	}
	inner, err := s.LLMChain.Serialize()
	if err != nil {
		return nil, fmt.Errorf("llm_chain: %w", err)
	}
	k := s.keys()
	return Config{
		TypeKey:                  TypeStuffDocuments,
		"input_key":              k.InputKey,
		"output_key":             k.OutputKey,
		"document_variable_name": k.DocumentVariableName,
		"llm_chain":              map[string]any(inner),
	}, nil
}

func (s *StuffDocumentsChain) keys() StuffKeys {
	k := s.StuffKeys
	defaults.SetDefaults(&k)
	return k
}

func documentTexts(raw any) ([]string, error) {
	switch docs := raw.(type) {
	case []Document:
		texts := make([]string, len(docs))
		for i, d := range docs {
			texts[i] = d.PageContent
		}
		return texts, nil
	case []*Document:
		texts := make([]string, len(docs))
		for i, d := range docs {
			if d == nil {
				return nil, fault.InvalidArgument("document %d is nil", i)
			}
			texts[i] = d.PageContent
		}
		return texts, nil
	}
	return nil, fault.InvalidArgument("want a list of documents, got %T", raw)
}

func loadStuffDocumentsChain(l *Loader, cfg Config) (Chain, error) {
	innerCfg, err := l.resolver().Resolve("llm_chain", cfg)
	if err != nil {
		return nil, err
	}
	if _, ok := innerCfg[TypeKey]; !ok {
		innerCfg[TypeKey] = TypeLLMChain
	}
	inner, err := l.Load(innerCfg)
	if err != nil {
		return nil, fmt.Errorf("llm_chain: %w", err)
	}

	var keys StuffKeys
	fields := []struct {
		name string
		dst  *string
	}{
		{"input_key", &keys.InputKey},
		{"output_key", &keys.OutputKey},
		{"document_variable_name", &keys.DocumentVariableName},
	}
	for _, f := range fields {
		raw, ok := cfg[f.name]
		if !ok {
			continue
		}
		v, ok := raw.(string)
		if !ok || v == "" {
			return nil, fault.InvalidArgument("%s must be a non-empty string, got %v", f.name, raw)
		}
		*f.dst = v
	}
	return NewStuffDocumentsChain(inner, keys), nil
}
