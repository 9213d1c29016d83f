// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package chain

// Document is a unit of text fed to a stuffing stage. Metadata travels
// with the document but is never read by this package.
type Document struct {
	PageContent string         `json:"page_content" yaml:"page_content"`
	Metadata    map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// NewDocument returns a Document with no metadata.
func NewDocument(text string) Document {
	return Document{PageContent: text}
}
