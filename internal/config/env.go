// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cast"
)

// envConfig lists the BATCHLLM_* variables. Fields that need a "not set"
// state are read as strings and converted afterwards.
type envConfig struct {
	Provider       string `env:"BATCHLLM_PROVIDER"`
	Model          string `env:"BATCHLLM_MODEL"`
	APIKeyEnv      string `env:"BATCHLLM_API_KEY_ENV"`
	BaseURL        string `env:"BATCHLLM_BASE_URL"`
	BatchSize      int    `env:"BATCHLLM_BATCH_SIZE"`
	N              int    `env:"BATCHLLM_N"`
	MaxTokens      int    `env:"BATCHLLM_MAX_TOKENS"`
	Temperature    string `env:"BATCHLLM_TEMPERATURE"`
	MaxRetries     int    `env:"BATCHLLM_MAX_RETRIES"`
	RetryMinWait   string `env:"BATCHLLM_RETRY_MIN_WAIT"`
	RetryMaxWait   string `env:"BATCHLLM_RETRY_MAX_WAIT"`
	RetryTransient string `env:"BATCHLLM_RETRY_TRANSIENT"`
}

// LoadEnv reads BATCHLLM_* variables from the process environment.
func LoadEnv() (*Config, error) {
	return loadEnv(envconfig.OsLookuper())
}

func loadEnv(lookuper envconfig.Lookuper) (*Config, error) {
	var e envConfig
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &e,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg := &Config{
		Provider:     e.Provider,
		Model:        e.Model,
		APIKeyEnv:    e.APIKeyEnv,
		BaseURL:      e.BaseURL,
		BatchSize:    e.BatchSize,
		N:            e.N,
		MaxTokens:    e.MaxTokens,
		MaxRetries:   e.MaxRetries,
		RetryMinWait: e.RetryMinWait,
		RetryMaxWait: e.RetryMaxWait,
	}
	if e.Temperature != "" {
		t, err := cast.ToFloat64E(e.Temperature)
		if err != nil {
			return nil, fmt.Errorf("BATCHLLM_TEMPERATURE: %w", err)
		}
		cfg.Temperature = &t
	}
	if e.RetryTransient != "" {
		b, err := cast.ToBoolE(e.RetryTransient)
		if err != nil {
			return nil, fmt.Errorf("BATCHLLM_RETRY_TRANSIENT: %w", err)
		}
		cfg.RetryTransient = &b
	}
	return cfg, nil
}
