// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"

	"github.com/davetashner/batchllm/internal/testable"
)

// GlobalConfigDir returns the directory for global batchllm configuration.
// It uses $XDG_CONFIG_HOME/batchllm if set, otherwise ~/.config/batchllm.
func GlobalConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "batchllm")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "batchllm")
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return filepath.Join(GlobalConfigDir(), "config.yaml")
}

// LoadGlobal loads the global config file.
// If the file does not exist, it returns a zero-value Config and nil error.
func LoadGlobal() (*Config, error) {
	return LoadFile(testable.DefaultFS, GlobalConfigPath())
}
