// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

// Package config handles .batchllm.yaml project configuration and the
// resolution of nested chain configuration given inline or by file path.
package config

// Config represents the contents of a .batchllm.yaml file. Zero values mean
// "not set" so that layers can be merged.
type Config struct {
	Provider  string `yaml:"provider,omitempty"`
	Model     string `yaml:"model,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
	BaseURL   string `yaml:"base_url,omitempty"`

	BatchSize   int      `yaml:"batch_size,omitempty"`
	N           int      `yaml:"n,omitempty"`
	MaxTokens   int      `yaml:"max_tokens,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
	Stop        []string `yaml:"stop,omitempty"`

	MaxRetries     int    `yaml:"max_retries,omitempty"`
	RetryMinWait   string `yaml:"retry_min_wait,omitempty"`
	RetryMaxWait   string `yaml:"retry_max_wait,omitempty"`
	RetryTransient *bool  `yaml:"retry_transient,omitempty"`

	Stuff StuffConfig `yaml:"stuff,omitempty"`
}

// StuffConfig holds the document stuffing key names.
type StuffConfig struct {
	InputKey             string `yaml:"input_key,omitempty"`
	OutputKey            string `yaml:"output_key,omitempty"`
	DocumentVariableName string `yaml:"document_variable_name,omitempty"`
}

// FileName is the expected config file name in a project root.
const FileName = ".batchllm.yaml"
