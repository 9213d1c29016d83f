// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/davetashner/batchllm/internal/llm"
)

// Validate checks all fields in the config and returns all errors at once.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Provider != "" && !slices.Contains(llm.Providers(), cfg.Provider) {
		errs = append(errs, fmt.Sprintf("provider: unknown provider %q (must be one of %s)",
			cfg.Provider, strings.Join(llm.Providers(), ", ")))
	}

	if cfg.BatchSize < 0 {
		errs = append(errs, fmt.Sprintf("batch_size: must be positive, got %d", cfg.BatchSize))
	}
	if cfg.N < 0 {
		errs = append(errs, fmt.Sprintf("n: must be positive, got %d", cfg.N))
	}
	if cfg.MaxTokens < 0 {
		errs = append(errs, fmt.Sprintf("max_tokens: must be non-negative, got %d", cfg.MaxTokens))
	}
	if cfg.Temperature != nil && (*cfg.Temperature < 0 || *cfg.Temperature > 2) {
		errs = append(errs, fmt.Sprintf("temperature: must be between 0.0 and 2.0, got %g", *cfg.Temperature))
	}
	if cfg.MaxRetries < 0 {
		errs = append(errs, fmt.Sprintf("max_retries: must be positive, got %d", cfg.MaxRetries))
	}

	minWait, minErr := parseWait("retry_min_wait", cfg.RetryMinWait)
	if minErr != "" {
		errs = append(errs, minErr)
	}
	maxWait, maxErr := parseWait("retry_max_wait", cfg.RetryMaxWait)
	if maxErr != "" {
		errs = append(errs, maxErr)
	}
	if minErr == "" && maxErr == "" && minWait > 0 && maxWait > 0 && minWait > maxWait {
		errs = append(errs, fmt.Sprintf("retry_min_wait: %s exceeds retry_max_wait %s", minWait, maxWait))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func parseWait(field, value string) (time.Duration, string) {
	if value == "" {
		return 0, ""
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Sprintf("%s: invalid duration %q", field, value)
	}
	if d < 0 {
		return 0, fmt.Sprintf("%s: must be non-negative, got %s", field, value)
	}
	return d, ""
}
