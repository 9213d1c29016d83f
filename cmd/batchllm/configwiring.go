// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package main

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/davetashner/batchllm/internal/config"
	"github.com/davetashner/batchllm/internal/generate"
	"github.com/davetashner/batchllm/internal/llm"
)

// engineFlags holds the flags shared by commands that build an engine.
type engineFlags struct {
	provider    string
	model       string
	baseURL     string
	batchSize   int
	n           int
	maxTokens   int
	temperature float64
	stop        []string
	maxRetries  int
}

func (f *engineFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.provider, "provider", "", "provider: "+joinProviders())
	fs.StringVar(&f.model, "model", "", "model name")
	fs.StringVar(&f.baseURL, "base-url", "", "override the provider endpoint")
	fs.IntVar(&f.batchSize, "batch-size", 0, "prompts per provider call (default 20)")
	fs.IntVarP(&f.n, "n", "n", 0, "completions per prompt (default 1)")
	fs.IntVar(&f.maxTokens, "max-tokens", 0, "token cap per completion (default 256)")
	fs.Float64Var(&f.temperature, "temperature", 0, "sampling temperature (default 0.7)")
	fs.StringSliceVar(&f.stop, "stop", nil, "stop sequence (repeatable)")
	fs.IntVar(&f.maxRetries, "max-retries", 0, "attempts per batch, including the first (default 6)")
}

// overrides returns a Config layer holding only the flags set on the
// command line.
func (f *engineFlags) overrides(fs *pflag.FlagSet) *config.Config {
	cfg := &config.Config{}
	if fs.Changed("provider") {
		cfg.Provider = f.provider
	}
	if fs.Changed("model") {
		cfg.Model = f.model
	}
	if fs.Changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if fs.Changed("batch-size") {
		cfg.BatchSize = f.batchSize
	}
	if fs.Changed("n") {
		cfg.N = f.n
	}
	if fs.Changed("max-tokens") {
		cfg.MaxTokens = f.maxTokens
	}
	if fs.Changed("temperature") {
		t := f.temperature
		cfg.Temperature = &t
	}
	if fs.Changed("stop") {
		cfg.Stop = append([]string(nil), f.stop...)
	}
	if fs.Changed("max-retries") {
		cfg.MaxRetries = f.maxRetries
	}
	return cfg
}

// paramFlags are the engine flags a saved chain file fixes itself.
var paramFlags = []string{"model", "batch-size", "n", "max-tokens", "temperature", "stop", "max-retries"}

// changedParams returns the names of paramFlags set on the command line.
func changedParams(fs *pflag.FlagSet) []string {
	var changed []string
	for _, name := range paramFlags {
		if fs.Changed(name) {
			changed = append(changed, "--"+name)
		}
	}
	return changed
}

func (f *engineFlags) reset(fs *pflag.FlagSet) {
	*f = engineFlags{}
	fs.VisitAll(func(fl *pflag.Flag) {
		fl.Changed = false
	})
}

// resolvedConfig loads the layered configuration from the working
// directory and applies flag overrides on top.
func resolvedConfig(fs *pflag.FlagSet, f *engineFlags) (*config.Config, error) {
	layered, err := config.LoadLayered(".")
	if err != nil {
		return nil, exitError(ExitInvalidArgs, err, "loading config")
	}
	cfg := config.Merge(layered, f.overrides(fs))
	if err := config.Validate(cfg); err != nil {
		return nil, exitError(ExitInvalidArgs, err, "invalid config")
	}
	return cfg, nil
}

// buildEngine constructs the engine described by cfg.
func buildEngine(cfg *config.Config) (*generate.Engine, error) {
	ec, err := cfg.EngineConfig()
	if err != nil {
		return nil, exitError(ExitInvalidArgs, err, "invalid config")
	}
	transport, err := cfg.TransportFactory(lookupEnv)(cfg.ProviderName())
	if err != nil {
		return nil, exitError(ExitInvalidArgs, err, "provider %q", cfg.ProviderName())
	}
	engine, err := generate.New(transport, ec)
	if err != nil {
		return nil, exitError(ExitInvalidArgs, err, "invalid engine configuration")
	}
	return engine, nil
}

func joinProviders() string {
	return strings.Join(llm.Providers(), ", ")
}
