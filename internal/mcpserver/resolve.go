// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes batched generation and document stuffing as tools.
package mcpserver

import (
	"fmt"
	"path/filepath"

	"github.com/davetashner/batchllm/internal/config"
	"github.com/davetashner/batchllm/internal/testable"
)

// ResolveChainPath resolves a chain file path to an absolute,
// symlink-resolved path. Relative paths are taken from baseDir, or the
// working directory when baseDir is empty. The file must exist and carry a
// supported extension.
func ResolveChainPath(baseDir, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("chain path is required")
	}
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path %q: %w", path, err)
	}
	absPath, err = filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path %q: %w", path, err)
	}

	info, err := testable.DefaultFS.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("path %q does not exist", path)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%q is a directory", path)
	}
	if _, err := config.FormatForPath(absPath); err != nil {
		return "", fmt.Errorf("%q: %w", path, err)
	}
	return absPath, nil
}
