// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"time"

	"github.com/davetashner/batchllm/internal/generate"
	"github.com/davetashner/batchllm/internal/retry"
)

// EngineConfig overlays the engine fields of cfg onto
// generate.DefaultConfig. Call Validate first; unparsable durations are
// reported here too.
func (cfg *Config) EngineConfig() (generate.Config, error) {
	ec := generate.DefaultConfig()
	if cfg.Model != "" {
		ec.Model = cfg.Model
	}
	if cfg.BatchSize != 0 {
		ec.BatchSize = cfg.BatchSize
	}
	if cfg.N != 0 {
		ec.N = cfg.N
		if ec.BestOf < ec.N {
			ec.BestOf = ec.N
		}
	}
	if cfg.MaxTokens != 0 {
		ec.MaxTokens = cfg.MaxTokens
	}
	if cfg.Temperature != nil {
		ec.Temperature = *cfg.Temperature
	}
	if len(cfg.Stop) > 0 {
		ec.Stop = append([]string(nil), cfg.Stop...)
	}
	if cfg.MaxRetries != 0 {
		ec.Retry.MaxAttempts = cfg.MaxRetries
	}
	if cfg.RetryMinWait != "" {
		d, err := time.ParseDuration(cfg.RetryMinWait)
		if err != nil {
			return generate.Config{}, fmt.Errorf("retry_min_wait: %w", err)
		}
		ec.Retry.MinWait = d
	}
	if cfg.RetryMaxWait != "" {
		d, err := time.ParseDuration(cfg.RetryMaxWait)
		if err != nil {
			return generate.Config{}, fmt.Errorf("retry_max_wait: %w", err)
		}
		ec.Retry.MaxWait = d
	}
	if cfg.RetryTransient != nil && *cfg.RetryTransient {
		ec.Retry.RetryIf = retry.RetryTransient
	}
	return ec, nil
}
