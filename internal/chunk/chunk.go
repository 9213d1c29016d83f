// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

// Package chunk splits ordered sequences into bounded, ordered sub-sequences.
package chunk

import "github.com/davetashner/batchllm/internal/fault"

// Chunk splits items into consecutive chunks of length size. Every chunk has
// exactly size elements except possibly the last. Concatenating the result
// in order reproduces items.
//
// Chunks share items' backing array but are capacity-capped, so appending to
// one chunk never overwrites the next.
func Chunk[T any](items []T, size int) ([][]T, error) {
	if size <= 0 {
		return nil, fault.InvalidArgument("chunk size must be positive, got %d", size)
	}
	if len(items) == 0 {
		return nil, nil
	}

	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks, nil
}
