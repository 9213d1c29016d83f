// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for provider failure modes. These can be checked with
// errors.Is().
var (
	// ErrInvalidAPIKey indicates the API key is missing, malformed, or unauthorized.
	ErrInvalidAPIKey = errors.New("llm: invalid API key")

	// ErrRateLimited indicates the provider's rate limit has been exceeded.
	ErrRateLimited = errors.New("llm: rate limit exceeded")

	// ErrInvalidRequest indicates the provider rejected the request parameters.
	ErrInvalidRequest = errors.New("llm: invalid request")

	// ErrProviderUnavailable indicates the provider is down or unreachable.
	ErrProviderUnavailable = errors.New("llm: provider unavailable")

	// ErrMalformedResponse indicates the provider returned a response whose
	// shape does not match the request (e.g. wrong number of completions).
	ErrMalformedResponse = errors.New("llm: malformed response")

	// ErrUnknownProvider indicates no transport is registered under a name.
	ErrUnknownProvider = errors.New("llm: unknown provider")
)

// ProviderError represents an error from the underlying provider API.
type ProviderError struct {
	Provider   string // The provider name
	StatusCode int    // HTTP status code (if applicable)
	Message    string // Error message from provider
	Retryable  bool   // Whether this error is potentially retryable
	Err        error  // Wrapped sentinel error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider '%s' error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider '%s' error: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ClassifyStatus builds a ProviderError for an HTTP status code.
// A status of zero means the request never got a response (network error).
func ClassifyStatus(provider string, status int, msg string) *ProviderError {
	pe := &ProviderError{Provider: provider, StatusCode: status, Message: msg}
	switch {
	case status == 0:
		pe.Err, pe.Retryable = ErrProviderUnavailable, true
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		pe.Err = ErrInvalidAPIKey
	case status == http.StatusTooManyRequests:
		pe.Err, pe.Retryable = ErrRateLimited, true
	case status == http.StatusRequestTimeout || status == http.StatusConflict:
		pe.Err, pe.Retryable = ErrProviderUnavailable, true
	case status >= 500:
		pe.Err, pe.Retryable = ErrProviderUnavailable, true
	case status >= 400:
		pe.Err = ErrInvalidRequest
	default:
		pe.Err, pe.Retryable = ErrProviderUnavailable, true
	}
	return pe
}

// IsRetryable checks if an error is potentially retryable.
// Returns true for rate limits, temporary unavailability, network errors, etc.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrProviderUnavailable)
}

// IsPermanent reports whether retrying err cannot succeed without changing
// the request: invalid parameters, bad credentials, or a malformed response.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidAPIKey) ||
		errors.Is(err, ErrMalformedResponse)
}
