// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/batchllm/internal/llm"
	"github.com/davetashner/batchllm/internal/redact"
)

func mapLookup(m map[string]string) Lookuper {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestProviderName(t *testing.T) {
	var nilCfg *Config
	assert.Equal(t, "openai", nilCfg.ProviderName())
	assert.Equal(t, "openai", (&Config{}).ProviderName())
	assert.Equal(t, "anthropic", (&Config{Provider: "anthropic"}).ProviderName())
}

func TestAPIKeyVar(t *testing.T) {
	cfg := &Config{Provider: "anthropic", APIKeyEnv: "MY_PROXY_KEY"}
	assert.Equal(t, "MY_PROXY_KEY", cfg.APIKeyVar("anthropic"))
	assert.Equal(t, "OPENAI_API_KEY", cfg.APIKeyVar("openai"))
	assert.Equal(t, "", cfg.APIKeyVar("lorem"))
}

func TestCredentials(t *testing.T) {
	redact.ResetForTest()
	t.Cleanup(redact.ResetForTest)

	cfg := &Config{Provider: "openai", APIKeyEnv: "CUSTOM_KEY", BaseURL: "http://proxy.local"}
	creds := cfg.Credentials(mapLookup(map[string]string{
		"CUSTOM_KEY":        "sk-custom-1234",
		"OPENAI_API_KEY":    "sk-ignored-5678",
		"ANTHROPIC_API_KEY": "ant-key-9999",
	}))

	assert.Equal(t, llm.Credentials{APIKey: "sk-custom-1234", BaseURL: "http://proxy.local"}, creds["openai"])
	assert.Equal(t, llm.Credentials{APIKey: "ant-key-9999"}, creds["anthropic"])
	assert.Equal(t, "key [REDACTED]", redact.String("key sk-custom-1234"))
}

func TestTransportFactory(t *testing.T) {
	cfg := &Config{}
	factory := cfg.TransportFactory(mapLookup(map[string]string{"OPENAI_API_KEY": "sk-test-0000"}))

	tr, err := factory("openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", tr.Name())

	_, err = factory("anthropic")
	assert.ErrorIs(t, err, llm.ErrInvalidAPIKey)

	tr, err = factory("lorem")
	require.NoError(t, err)
	assert.Equal(t, "lorem", tr.Name())
}
