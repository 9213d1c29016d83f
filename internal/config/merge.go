// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package config

// Merge layers override on top of base and returns a new Config. Every
// field set in override wins; unset fields fall through to base. Neither
// input is modified.
func Merge(base, override *Config) *Config {
	if base == nil {
		base = &Config{}
	}
	if override == nil {
		override = &Config{}
	}
	result := *base
	result.Stop = append([]string(nil), base.Stop...)

	if override.Provider != "" {
		result.Provider = override.Provider
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	if override.APIKeyEnv != "" {
		result.APIKeyEnv = override.APIKeyEnv
	}
	if override.BaseURL != "" {
		result.BaseURL = override.BaseURL
	}
	if override.BatchSize != 0 {
		result.BatchSize = override.BatchSize
	}
	if override.N != 0 {
		result.N = override.N
	}
	if override.MaxTokens != 0 {
		result.MaxTokens = override.MaxTokens
	}
	if override.Temperature != nil {
		t := *override.Temperature
		result.Temperature = &t
	}
	if len(override.Stop) > 0 {
		result.Stop = append([]string(nil), override.Stop...)
	}
	if override.MaxRetries != 0 {
		result.MaxRetries = override.MaxRetries
	}
	if override.RetryMinWait != "" {
		result.RetryMinWait = override.RetryMinWait
	}
	if override.RetryMaxWait != "" {
		result.RetryMaxWait = override.RetryMaxWait
	}
	if override.RetryTransient != nil {
		b := *override.RetryTransient
		result.RetryTransient = &b
	}

	if override.Stuff.InputKey != "" {
		result.Stuff.InputKey = override.Stuff.InputKey
	}
	if override.Stuff.OutputKey != "" {
		result.Stuff.OutputKey = override.Stuff.OutputKey
	}
	if override.Stuff.DocumentVariableName != "" {
		result.Stuff.DocumentVariableName = override.Stuff.DocumentVariableName
	}

	return &result
}

// LoadLayered loads the global config, the project config in dir, and the
// BATCHLLM_* environment, and merges them in that order of increasing
// precedence.
func LoadLayered(dir string) (*Config, error) {
	global, err := LoadGlobal()
	if err != nil {
		return nil, err
	}
	project, err := Load(dir)
	if err != nil {
		return nil, err
	}
	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	return Merge(Merge(global, project), env), nil
}
