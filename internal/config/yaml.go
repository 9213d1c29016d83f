// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/davetashner/batchllm/internal/testable"
)

// Load reads the .batchllm.yaml file from the given project root.
// If the file does not exist, it returns a zero-value Config and nil error.
func Load(dir string) (*Config, error) {
	return LoadFile(testable.DefaultFS, filepath.Join(dir, FileName))
}

// LoadFile reads a project config from path on fsys. A missing file yields
// a zero-value Config.
func LoadFile(fsys testable.FileSystem, path string) (*Config, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Write marshals the config to YAML and writes it to w.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close() //nolint:errcheck // best-effort close
	enc.SetIndent(2)
	return enc.Encode(cfg)
}

// LoadRaw reads a YAML config file as a generic map, for edits that must
// keep keys this version does not know. A missing file yields an empty
// map.
func LoadRaw(fsys testable.FileSystem, path string) (map[string]any, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	m, err := DecodeMap(FormatYAML, data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}

// WriteRaw writes m to path as YAML, creating the parent directory.
func WriteRaw(fsys testable.FileSystem, path string, m map[string]any) error {
	data, err := EncodeMap(FormatYAML, m)
	if err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return fsys.WriteFile(path, data, 0o600)
}
