// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"path/filepath"

	"github.com/davetashner/batchllm/internal/fault"
	"github.com/davetashner/batchllm/internal/testable"
)

// PathSuffix marks a key that references an external file instead of
// holding its value inline.
const PathSuffix = "_path"

// Resolver turns a nested dependency of a serialized config into an inline
// mapping. The dependency is either cfg[key] or the file named by
// cfg[key+"_path"], never both.
type Resolver interface {
	Resolve(key string, cfg map[string]any) (map[string]any, error)
}

// FileResolver resolves "_path" references by reading files.
type FileResolver struct {
	// FS reads referenced files. Nil means testable.DefaultFS.
	FS testable.FileSystem

	// BaseDir anchors relative paths. Empty means the working directory.
	BaseDir string
}

// Compile-time interface check.
var _ Resolver = FileResolver{}

// Resolve returns a copy of the inline mapping at key, or the parsed
// contents of the file at key+"_path". The file format follows the
// extension: .json, .yaml, .yml or .toml.
func (r FileResolver) Resolve(key string, cfg map[string]any) (map[string]any, error) {
	pathKey := key + PathSuffix
	inline, hasInline := cfg[key]
	rawPath, hasPath := cfg[pathKey]

	switch {
	case hasInline && hasPath:
		return nil, &fault.ConfigResolutionError{
			Key:    key,
			Reason: fmt.Sprintf("both %q and %q given; supply exactly one", key, pathKey),
		}
	case !hasInline && !hasPath:
		return nil, &fault.ConfigResolutionError{
			Key:    key,
			Reason: fmt.Sprintf("neither %q nor %q given", key, pathKey),
		}
	case hasInline:
		m, ok := inline.(map[string]any)
		if !ok {
			return nil, &fault.ConfigResolutionError{
				Key:    key,
				Reason: fmt.Sprintf("inline value is %T, want a mapping", inline),
			}
		}
		return copyMap(m), nil
	}

	path, ok := rawPath.(string)
	if !ok || path == "" {
		return nil, &fault.ConfigResolutionError{
			Key:    key,
			Reason: fmt.Sprintf("%q must be a non-empty string, got %T", pathKey, rawPath),
		}
	}
	return r.ReadFile(key, path)
}

// ReadFile loads and parses the config file at path on behalf of key.
func (r FileResolver) ReadFile(key, path string) (map[string]any, error) {
	full := r.abs(path)
	format, err := FormatForPath(full)
	if err != nil {
		return nil, &fault.ConfigResolutionError{Key: key, Path: path, Reason: "cannot pick a parser", Err: err}
	}
	data, err := r.fs().ReadFile(full)
	if err != nil {
		return nil, &fault.ConfigResolutionError{Key: key, Path: path, Reason: "cannot read file", Err: err}
	}
	m, err := DecodeMap(format, data)
	if err != nil {
		return nil, &fault.ConfigResolutionError{Key: key, Path: path, Reason: "cannot parse file", Err: err}
	}
	return m, nil
}

func (r FileResolver) fs() testable.FileSystem {
	if r.FS == nil {
		return testable.DefaultFS
	}
	return r.FS
}

func (r FileResolver) abs(path string) string {
	if filepath.IsAbs(path) || r.BaseDir == "" {
		return path
	}
	return filepath.Join(r.BaseDir, path)
}

// copyMap returns a deep copy of nested mappings and lists in m.
func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = copyValue(item)
		}
		return out
	}
	return v
}
