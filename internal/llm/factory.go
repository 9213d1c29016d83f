// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"fmt"
	"sort"
)

// Factory builds a Transport for a provider name. The chain loader uses it
// to reconstruct transports from serialized configs without knowing how
// credentials are obtained.
type Factory func(provider string) (Transport, error)

// Providers returns the names accepted by NewTransport, sorted.
func Providers() []string {
	names := []string{ProviderOpenAI, ProviderAnthropic, ProviderLorem, ProviderMock}
	sort.Strings(names)
	return names
}

// NewTransport constructs the transport registered under provider using the
// explicit credentials given. Credentials are ignored by the offline
// providers.
func NewTransport(provider string, creds Credentials, opts ...Option) (Transport, error) {
	all := append([]Option{WithCredentials(creds)}, opts...)
	switch provider {
	case ProviderOpenAI:
		return NewOpenAITransport(all...)
	case ProviderAnthropic:
		return NewAnthropicTransport(all...)
	case ProviderLorem:
		return NewLoremTransport(), nil
	case ProviderMock:
		return NewMockTransport(), nil
	default:
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownProvider, provider, Providers())
	}
}

// StaticFactory returns a Factory that looks up credentials per provider in
// creds. Providers absent from creds get empty credentials.
func StaticFactory(creds map[string]Credentials, opts ...Option) Factory {
	return func(provider string) (Transport, error) {
		return NewTransport(provider, creds[provider], opts...)
	}
}

// FixedFactory returns a Factory that hands out t regardless of the
// provider name. Useful in tests and when a single transport is shared.
func FixedFactory(t Transport) Factory {
	return func(string) (Transport, error) {
		return t, nil
	}
}
