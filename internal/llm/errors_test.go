// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status    int
		sentinel  error
		retryable bool
	}{
		{0, ErrProviderUnavailable, true},
		{http.StatusBadRequest, ErrInvalidRequest, false},
		{http.StatusUnauthorized, ErrInvalidAPIKey, false},
		{http.StatusForbidden, ErrInvalidAPIKey, false},
		{http.StatusNotFound, ErrInvalidRequest, false},
		{http.StatusRequestTimeout, ErrProviderUnavailable, true},
		{http.StatusUnprocessableEntity, ErrInvalidRequest, false},
		{http.StatusTooManyRequests, ErrRateLimited, true},
		{http.StatusInternalServerError, ErrProviderUnavailable, true},
		{529, ErrProviderUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			pe := ClassifyStatus("openai", tt.status, "msg")
			assert.ErrorIs(t, pe, tt.sentinel)
			assert.Equal(t, tt.retryable, pe.Retryable)
			assert.Equal(t, tt.retryable, IsRetryable(pe))
			assert.Equal(t, !tt.retryable, IsPermanent(pe))
		})
	}
}

func TestProviderError_Message(t *testing.T) {
	pe := ClassifyStatus("anthropic", 429, "slow down")
	assert.Equal(t, "provider 'anthropic' error (status 429): slow down", pe.Error())

	pe = ClassifyStatus("anthropic", 0, "dial tcp: refused")
	assert.Equal(t, "provider 'anthropic' error: dial tcp: refused", pe.Error())
}

func TestIsRetryable_ContextErrors(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", ErrRateLimited)))
}

func TestIsPermanent(t *testing.T) {
	assert.False(t, IsPermanent(nil))
	assert.False(t, IsPermanent(errors.New("transient")))
	assert.True(t, IsPermanent(fmt.Errorf("x: %w", ErrMalformedResponse)))
	assert.True(t, IsPermanent(ErrInvalidAPIKey))
}
