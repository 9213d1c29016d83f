// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

// Package redact strips provider credentials from strings before they
// appear in output, logs, or error messages.
package redact

import (
	"os"
	"strings"
	"sync"
)

// Placeholder replaces every secret occurrence.
const Placeholder = "[REDACTED]"

// minSecretLen guards against redacting short, common substrings.
const minSecretLen = 4

// sensitiveEnvVars lists environment variables whose values are always
// treated as secrets. Keys read from other variables are added with
// Register.
var sensitiveEnvVars = []string{
	"OPENAI_API_KEY",
	"ANTHROPIC_API_KEY",
}

var (
	mu         sync.RWMutex
	envSecrets []string
	registered []string
	envOnce    sync.Once
)

func loadEnvSecrets() {
	var found []string
	for _, name := range sensitiveEnvVars {
		if val := os.Getenv(name); len(val) >= minSecretLen {
			found = append(found, val)
		}
	}
	mu.Lock()
	envSecrets = found
	mu.Unlock()
}

// Register adds secret values to redact, such as an API key read from a
// custom environment variable. Values shorter than four bytes are ignored.
func Register(secrets ...string) {
	mu.Lock()
	defer mu.Unlock()
	for _, s := range secrets {
		if len(s) >= minSecretLen {
			registered = append(registered, s)
		}
	}
}

// ResetForTest clears registered secrets and the environment cache so
// tests can change variables with t.Setenv.
func ResetForTest() {
	mu.Lock()
	defer mu.Unlock()
	envSecrets = nil
	registered = nil
	envOnce = sync.Once{}
}

// String replaces every known secret in s with Placeholder. Environment
// values are read once, on first use.
func String(s string) string {
	envOnce.Do(loadEnvSecrets)

	mu.RLock()
	defer mu.RUnlock()
	for _, secret := range envSecrets {
		s = strings.ReplaceAll(s, secret, Placeholder)
	}
	for _, secret := range registered {
		s = strings.ReplaceAll(s, secret, Placeholder)
	}
	return s
}

// Error returns err's message with secrets removed. A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
