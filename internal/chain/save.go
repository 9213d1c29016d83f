// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package chain

import (
	"fmt"
	"path/filepath"

	"github.com/davetashner/batchllm/internal/config"
	"github.com/davetashner/batchllm/internal/fault"
	"github.com/davetashner/batchllm/internal/testable"
)

// Save writes c's serialized config to path, creating parent directories.
// The format follows the extension.
func Save(fsys testable.FileSystem, c Chain, path string) error {
	cfg, err := c.Serialize()
	if err != nil {
		return err
	}
	return writeConfig(fsys, map[string]any(cfg), path)
}

// SaveReferenced is Save with the nested dependency under key moved to its
// own file at refPath. The saved config holds key+"_path" instead. A
// relative refPath is written next to path and stored as given, so a
// Loader rooted at path's directory finds it.
func SaveReferenced(fsys testable.FileSystem, c Chain, path, key, refPath string) error {
	cfg, err := c.Serialize()
	if err != nil {
		return err
	}
	nested, ok := cfg[key].(map[string]any)
	if !ok {
		return fault.InvalidArgument("chain %q has no nested config under %q", c.Type(), key)
	}

	target := refPath
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), refPath)
	}
	if err := writeConfig(fsys, nested, target); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}

	delete(cfg, key)
	cfg[key+config.PathSuffix] = refPath
	return writeConfig(fsys, map[string]any(cfg), path)
}

func writeConfig(fsys testable.FileSystem, m map[string]any, path string) error {
	if fsys == nil {
		fsys = testable.DefaultFS
	}
	format, err := config.FormatForPath(path)
	if err != nil {
		return err
	}
	data, err := config.EncodeMap(format, m)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := fsys.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
