// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"net/http"
	"time"
)

// Credentials is the explicit connection configuration for a remote
// provider. The library never reads credentials from the environment;
// callers (e.g. the CLI) are responsible for populating this struct.
type Credentials struct {
	APIKey  string `yaml:"-" json:"-"`
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
}

// Option configures an SDK-backed transport.
type Option func(*transportConfig)

type transportConfig struct {
	apiKey      string
	baseURL     string
	model       string
	httpClient  *http.Client
	timeout     time.Duration
	concurrency int
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *transportConfig) {
		c.apiKey = key
	}
}

// WithBaseURL overrides the provider endpoint (used for proxies and tests).
func WithBaseURL(url string) Option {
	return func(c *transportConfig) {
		c.baseURL = url
	}
}

// WithModel sets the model used when a request leaves Model empty.
func WithModel(model string) Option {
	return func(c *transportConfig) {
		c.model = model
	}
}

// WithHTTPClient sets the HTTP client used by the SDK.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *transportConfig) {
		c.httpClient = hc
	}
}

// WithRequestTimeout bounds each individual HTTP request.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *transportConfig) {
		c.timeout = d
	}
}

// WithConcurrency bounds the number of in-flight calls a transport issues
// for a single batch. Only transports that fan out (Anthropic) use it.
func WithConcurrency(n int) Option {
	return func(c *transportConfig) {
		c.concurrency = n
	}
}

// WithCredentials applies both fields of creds.
func WithCredentials(creds Credentials) Option {
	return func(c *transportConfig) {
		c.apiKey = creds.APIKey
		if creds.BaseURL != "" {
			c.baseURL = creds.BaseURL
		}
	}
}

func newTransportConfig(defaultModel string, opts []Option) transportConfig {
	cfg := transportConfig{
		model:       defaultModel,
		concurrency: defaultConcurrency,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.concurrency < 1 {
		cfg.concurrency = 1
	}
	return cfg
}

// defaultConcurrency is the fan-out bound for transports that issue one call
// per prompt replica.
const defaultConcurrency = 4
