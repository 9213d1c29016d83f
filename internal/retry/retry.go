// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

// Package retry runs a remote call under an exponential-backoff policy.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"time"

	retrygo "github.com/avast/retry-go/v4"

	"github.com/davetashner/batchllm/internal/fault"
	"github.com/davetashner/batchllm/internal/llm"
)

// Default policy values.
const (
	DefaultMaxAttempts = 6
	DefaultMinWait     = 4 * time.Second
	DefaultMaxWait     = 10 * time.Second
	DefaultMaxJitter   = time.Second
)

// Policy controls how many times a call is attempted and how long to wait
// between attempts.
type Policy struct {
	// MaxAttempts bounds the number of invocations, the first included.
	MaxAttempts int

	// MinWait is the starting delay. It doubles after every failure.
	MinWait time.Duration

	// MaxWait caps a single delay.
	MaxWait time.Duration

	// MaxJitter bounds the random delay added to each backoff step.
	MaxJitter time.Duration

	// RetryIf decides whether a failure is worth another attempt. Nil
	// retries every failure.
	RetryIf func(error) bool

	timer retrygo.Timer
}

// DefaultPolicy returns 6 attempts with backoff from 4s to 10s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		MinWait:     DefaultMinWait,
		MaxWait:     DefaultMaxWait,
		MaxJitter:   DefaultMaxJitter,
	}
}

// RetryTransient is a classifier for Policy.RetryIf that gives up on
// provider errors that cannot succeed on a repeat (bad request, bad key,
// malformed response).
func RetryTransient(err error) bool {
	return !llm.IsPermanent(err)
}

// Transient reports whether p.RetryIf is RetryTransient. It is the only
// classifier with a serialized form.
func (p Policy) Transient() bool {
	return p.RetryIf != nil &&
		reflect.ValueOf(p.RetryIf).Pointer() == reflect.ValueOf(RetryTransient).Pointer()
}

// Validate reports whether p can drive Do.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fault.InvalidArgument("max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.MinWait < 0 || p.MaxWait < 0 || p.MaxJitter < 0 {
		return fault.InvalidArgument("retry waits must not be negative")
	}
	if p.MaxWait > 0 && p.MinWait > p.MaxWait {
		return fault.InvalidArgument("retry min wait %s exceeds max wait %s", p.MinWait, p.MaxWait)
	}
	return nil
}

// Do invokes fn until it succeeds, the policy's attempt budget is spent,
// or ctx is done. Each attempt is a fresh call to fn.
//
// When attempts run out, or RetryIf rejects a failure, the returned error
// is a *fault.RetryExhaustedError wrapping the last failure. A done context
// yields ctx.Err() unchanged.
func Do[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := p.Validate(); err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	attempts := 0
	var lastErr error
	v, err := retrygo.DoWithData(func() (T, error) {
		attempts++
		v, err := fn(ctx)
		if err != nil {
			lastErr = err
		}
		return v, err
	}, p.options(ctx)...)
	if err == nil {
		return v, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, ctxErr
	}
	if lastErr == nil {
		lastErr = err
	}
	return zero, &fault.RetryExhaustedError{Attempts: attempts, Err: lastErr}
}

func (p Policy) options(ctx context.Context) []retrygo.Option {
	jitter := p.MaxJitter
	if jitter <= 0 {
		// RandomDelay panics on a zero bound.
		jitter = time.Nanosecond
	}

	opts := []retrygo.Option{
		retrygo.Context(ctx),
		retrygo.Attempts(uint(p.MaxAttempts)),
		retrygo.Delay(p.MinWait),
		retrygo.MaxDelay(p.MaxWait),
		retrygo.MaxJitter(jitter),
		retrygo.DelayType(retrygo.CombineDelay(retrygo.BackOffDelay, retrygo.RandomDelay)),
		retrygo.LastErrorOnly(true),
		retrygo.RetryIf(func(err error) bool {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return false
			}
			return p.RetryIf == nil || p.RetryIf(err)
		}),
		retrygo.OnRetry(func(n uint, err error) {
			if int(n)+1 >= p.MaxAttempts {
				return
			}
			slog.Warn("call failed, retrying",
				"attempt", n+1,
				"max_attempts", p.MaxAttempts,
				"error", err,
			)
		}),
	}
	if p.timer != nil {
		opts = append(opts, retrygo.WithTimer(p.timer))
	}
	return opts
}
