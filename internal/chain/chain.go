// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

// Package chain defines composable pipeline stages: a prompt-formatting
// LLM stage and a document stuffing stage that feeds one, plus the
// loader and saver for their serialized configuration.
package chain

import (
	"context"

	"github.com/davetashner/batchllm/internal/fault"
)

// TypeKey holds the type tag of a serialized chain.
const TypeKey = "_type"

// Values is the generic input and output envelope of a chain. Keys a stage
// does not consume pass through unchanged.
type Values map[string]any

// Config is the serialized form of a chain. Nested dependencies are plain
// map[string]any values, inline at <key> or referenced by <key>_path.
type Config map[string]any

// Chain is a pipeline stage.
type Chain interface {
	// Run executes the stage. Implementations must honor ctx.
	Run(ctx context.Context, inputs Values) (Values, error)

	// InputKeys lists the keys Run requires.
	InputKeys() []string

	// OutputKeys lists the keys Run produces.
	OutputKeys() []string

	// Type returns the type tag stored under TypeKey when serialized.
	Type() string

	// Serialize returns the configuration Loader.Load rebuilds the chain
	// from.
	Serialize() (Config, error)
}

// Call checks that every key in c.InputKeys is present, then runs c.
func Call(ctx context.Context, c Chain, inputs Values) (Values, error) {
	for _, k := range c.InputKeys() {
		if _, ok := inputs[k]; !ok {
			return nil, &fault.MissingInputError{Key: k}
		}
	}
	return c.Run(ctx, inputs)
}
