// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package config

import (
	"github.com/davetashner/batchllm/internal/llm"
	"github.com/davetashner/batchllm/internal/redact"
)

// DefaultProvider is used when no layer names a provider.
const DefaultProvider = llm.ProviderOpenAI

// defaultKeyVars names the environment variable holding each remote
// provider's API key.
var defaultKeyVars = map[string]string{
	llm.ProviderOpenAI:    "OPENAI_API_KEY",
	llm.ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// Lookuper reads one environment variable. os.LookupEnv satisfies it.
type Lookuper func(key string) (string, bool)

// ProviderName returns the configured provider or DefaultProvider.
func (cfg *Config) ProviderName() string {
	if cfg == nil || cfg.Provider == "" {
		return DefaultProvider
	}
	return cfg.Provider
}

// APIKeyVar returns the environment variable that holds provider's API
// key. api_key_env applies to the configured provider only. Offline
// providers have none.
func (cfg *Config) APIKeyVar(provider string) string {
	if cfg != nil && cfg.APIKeyEnv != "" && provider == cfg.ProviderName() {
		return cfg.APIKeyEnv
	}
	return defaultKeyVars[provider]
}

// Credentials reads every remote provider's key through lookup. Each key
// found is registered with the redact package. BaseURL is attached to the
// configured provider only.
func (cfg *Config) Credentials(lookup Lookuper) map[string]llm.Credentials {
	creds := make(map[string]llm.Credentials, len(defaultKeyVars))
	for provider := range defaultKeyVars {
		var c llm.Credentials
		if key, ok := lookup(cfg.APIKeyVar(provider)); ok && key != "" {
			c.APIKey = key
			redact.Register(key)
		}
		if cfg != nil && provider == cfg.ProviderName() {
			c.BaseURL = cfg.BaseURL
		}
		creds[provider] = c
	}
	return creds
}

// TransportFactory returns a factory over the credentials found through
// lookup.
func (cfg *Config) TransportFactory(lookup Lookuper, opts ...llm.Option) llm.Factory {
	return llm.StaticFactory(cfg.Credentials(lookup), opts...)
}
