// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package generate

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/spf13/cast"

	"github.com/davetashner/batchllm/internal/fault"
	"github.com/davetashner/batchllm/internal/retry"
)

// Default engine settings.
const (
	DefaultModel       = "gpt-3.5-turbo-instruct"
	DefaultBatchSize   = 20
	DefaultN           = 1
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 256
	DefaultTopP        = 1.0
	DefaultBestOf      = 1
)

// Config is the construction-time configuration of an Engine. It is
// read-only once the engine is built.
type Config struct {
	// Model is the provider's model identifier.
	Model string

	Temperature      float64
	MaxTokens        int // 0 leaves the limit to the provider
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64

	// N is the number of completions per prompt.
	N int

	// BestOf is the number of server-side candidates per prompt.
	BestOf int

	LogitBias map[string]int
	Logprobs  *int

	// Stop is the default stop list. A call may supply its own only when
	// this is empty.
	Stop []string

	// BatchSize bounds the number of prompts per remote call.
	BatchSize int

	// Retry governs each batch call.
	Retry retry.Policy

	// Extra holds provider parameters passed through verbatim.
	Extra map[string]any
}

// DefaultConfig returns the stock engine configuration.
func DefaultConfig() Config {
	return Config{
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		TopP:        DefaultTopP,
		N:           DefaultN,
		BestOf:      DefaultBestOf,
		BatchSize:   DefaultBatchSize,
		Retry:       retry.DefaultPolicy(),
	}
}

// clone copies the slices, maps and pointers of c. Extra is copied one
// level deep.
func (c Config) clone() Config {
	c.Stop = slices.Clone(c.Stop)
	c.LogitBias = maps.Clone(c.LogitBias)
	c.Extra = maps.Clone(c.Extra)
	if c.Logprobs != nil {
		lp := *c.Logprobs
		c.Logprobs = &lp
	}
	return c
}

// reservedParams are request fields the engine sets itself; Extra may not
// override them.
var reservedParams = map[string]bool{
	"model":             true,
	"prompt":            true,
	"temperature":       true,
	"max_tokens":        true,
	"top_p":             true,
	"frequency_penalty": true,
	"presence_penalty":  true,
	"n":                 true,
	"best_of":           true,
	"logit_bias":        true,
	"logprobs":          true,
	"stop":              true,
}

// Validate checks c for values no provider would accept.
func (c Config) Validate() error {
	if c.Model == "" {
		return fault.InvalidArgument("model must not be empty")
	}
	if c.BatchSize <= 0 {
		return fault.InvalidArgument("batch size must be positive, got %d", c.BatchSize)
	}
	if c.N <= 0 {
		return fault.InvalidArgument("n must be positive, got %d", c.N)
	}
	if c.BestOf != 0 && c.BestOf < c.N {
		return fault.InvalidArgument("best_of (%d) must be at least n (%d)", c.BestOf, c.N)
	}
	if c.MaxTokens < 0 {
		return fault.InvalidArgument("max tokens must not be negative, got %d", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fault.InvalidArgument("temperature must be within [0, 2], got %g", c.Temperature)
	}
	if c.TopP < 0 || c.TopP > 1 {
		return fault.InvalidArgument("top_p must be within [0, 1], got %g", c.TopP)
	}
	if c.FrequencyPenalty < -2 || c.FrequencyPenalty > 2 {
		return fault.InvalidArgument("frequency_penalty must be within [-2, 2], got %g", c.FrequencyPenalty)
	}
	if c.PresencePenalty < -2 || c.PresencePenalty > 2 {
		return fault.InvalidArgument("presence_penalty must be within [-2, 2], got %g", c.PresencePenalty)
	}
	for tok, bias := range c.LogitBias {
		if bias < -100 || bias > 100 {
			return fault.InvalidArgument("logit_bias for token %q must be within [-100, 100], got %d", tok, bias)
		}
	}
	if c.Logprobs != nil && *c.Logprobs < 0 {
		return fault.InvalidArgument("logprobs must not be negative, got %d", *c.Logprobs)
	}
	for _, k := range sortedKeys(c.Extra) {
		if reservedParams[k] {
			return fault.InvalidArgument("parameter %q was given both explicitly and in model_kwargs", k)
		}
	}
	return c.Retry.Validate()
}

// Map returns c in its serialized form. Durations are Go duration strings.
// A Retry.RetryIf other than retry.RetryTransient has no serialized form
// and is written as retry_transient false.
func (c Config) Map() map[string]any {
	m := map[string]any{
		"model_name":        c.Model,
		"temperature":       c.Temperature,
		"max_tokens":        c.MaxTokens,
		"top_p":             c.TopP,
		"frequency_penalty": c.FrequencyPenalty,
		"presence_penalty":  c.PresencePenalty,
		"n":                 c.N,
		"best_of":           c.BestOf,
		"batch_size":        c.BatchSize,
		"max_retries":       c.Retry.MaxAttempts,
		"retry_min_wait":    c.Retry.MinWait.String(),
		"retry_max_wait":    c.Retry.MaxWait.String(),
		"retry_max_jitter":  c.Retry.MaxJitter.String(),
		"retry_transient":   c.Retry.Transient(),
	}
	if len(c.LogitBias) > 0 {
		bias := make(map[string]any, len(c.LogitBias))
		for k, v := range c.LogitBias {
			bias[k] = v
		}
		m["logit_bias"] = bias
	}
	if c.Logprobs != nil {
		m["logprobs"] = *c.Logprobs
	}
	if len(c.Stop) > 0 {
		stop := make([]any, len(c.Stop))
		for i, s := range c.Stop {
			stop[i] = s
		}
		m["stop"] = stop
	}
	if len(c.Extra) > 0 {
		extra := make(map[string]any, len(c.Extra))
		for k, v := range c.Extra {
			extra[k] = v
		}
		m["model_kwargs"] = extra
	}
	return m
}

// ConfigFromMap overlays m onto DefaultConfig. It accepts the numeric
// types produced by the JSON, YAML and TOML decoders. The "_type" tag is
// ignored; any other unknown key is an error.
func ConfigFromMap(m map[string]any) (Config, error) {
	c := DefaultConfig()
	for _, key := range sortedKeys(m) {
		v := m[key]
		var err error
		switch key {
		case "_type":
		case "model_name":
			c.Model, err = asString(v)
		case "temperature":
			c.Temperature, err = asFloat(v)
		case "max_tokens":
			c.MaxTokens, err = asInt(v)
		case "top_p":
			c.TopP, err = asFloat(v)
		case "frequency_penalty":
			c.FrequencyPenalty, err = asFloat(v)
		case "presence_penalty":
			c.PresencePenalty, err = asFloat(v)
		case "n":
			c.N, err = asInt(v)
		case "best_of":
			c.BestOf, err = asInt(v)
		case "logit_bias":
			c.LogitBias, err = asIntMap(v)
		case "logprobs":
			var lp int
			if lp, err = asInt(v); err == nil {
				c.Logprobs = &lp
			}
		case "stop":
			c.Stop, err = asStrings(v)
		case "batch_size":
			c.BatchSize, err = asInt(v)
		case "max_retries":
			c.Retry.MaxAttempts, err = asInt(v)
		case "retry_min_wait":
			c.Retry.MinWait, err = asDuration(v)
		case "retry_max_wait":
			c.Retry.MaxWait, err = asDuration(v)
		case "retry_max_jitter":
			c.Retry.MaxJitter, err = asDuration(v)
		case "retry_transient":
			var transient bool
			if transient, err = asBool(v); err == nil {
				c.Retry.RetryIf = nil
				if transient {
					c.Retry.RetryIf = retry.RetryTransient
				}
			}
		case "model_kwargs":
			c.Extra, err = asMap(v)
		default:
			return Config{}, fault.InvalidArgument("unknown engine parameter %q", key)
		}
		if err != nil {
			return Config{}, fmt.Errorf("engine parameter %q: %w", key, err)
		}
	}
	return c, nil
}

func asString(v any) (string, error) {
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fault.InvalidArgument("%v", err)
	}
	return s, nil
}

func asFloat(v any) (float64, error) {
	if _, ok := v.(string); ok {
		return 0, fault.InvalidArgument("want number, got string")
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, fault.InvalidArgument("%v", err)
	}
	return f, nil
}

func asInt(v any) (int, error) {
	switch n := v.(type) {
	case string:
		return 0, fault.InvalidArgument("want integer, got string %q", n)
	case float64:
		if n != math.Trunc(n) {
			return 0, fault.InvalidArgument("want integer, got %g", n)
		}
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return 0, fault.InvalidArgument("%v", err)
	}
	return i, nil
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fault.InvalidArgument("want bool, got %T", v)
	}
	return b, nil
}

func asDuration(v any) (time.Duration, error) {
	d, err := cast.ToDurationE(v)
	if err != nil {
		return 0, fault.InvalidArgument("%v", err)
	}
	return d, nil
}

// asStrings keeps a lone string whole; stop sequences may contain spaces.
func asStrings(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fault.InvalidArgument("element %d: want string, got %T", i, item)
			}
			out[i] = s
		}
		return out, nil
	case string:
		return []string{list}, nil
	}
	return nil, fault.InvalidArgument("want list of strings, got %T", v)
}

func asMap(v any) (map[string]any, error) {
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, fault.InvalidArgument("%v", err)
	}
	out := make(map[string]any, len(m))
	for k, val := range m {
		out[k] = val
	}
	return out, nil
}

func asIntMap(v any) (map[string]int, error) {
	m, err := asMap(v)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(m))
	for k, val := range m {
		n, err := asInt(val)
		if err != nil {
			return nil, fmt.Errorf("token %q: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
