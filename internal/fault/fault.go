// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

// Package fault defines the error taxonomy shared by the generation engine,
// the retry executor, and the chain pipeline. Every failure surfaced to a
// caller matches exactly one of the sentinels below via errors.Is.
package fault

import (
	"errors"
	"fmt"
)

// Sentinel errors for each failure class.
var (
	// ErrInvalidArgument indicates bad static configuration or a bad call argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConfigConflict indicates mutually exclusive settings were both supplied.
	ErrConfigConflict = errors.New("config conflict")

	// ErrRetryExhausted indicates every retry attempt failed.
	ErrRetryExhausted = errors.New("retry exhausted")

	// ErrMissingInput indicates a required pipeline input key was absent.
	ErrMissingInput = errors.New("missing input")

	// ErrConfigResolution indicates a nested configuration could not be resolved.
	ErrConfigResolution = errors.New("config resolution failed")
)

// InvalidArgument returns an error matching ErrInvalidArgument with a
// formatted explanation.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// ConfigConflict returns an error matching ErrConfigConflict.
func ConfigConflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfigConflict, fmt.Sprintf(format, args...))
}

// RetryExhaustedError reports that a call failed on every attempt. It wraps
// the last underlying failure.
type RetryExhaustedError struct {
	Attempts int   // Number of invocations made
	Err      error // Last underlying failure
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("retry exhausted after %d attempt(s): %v", e.Attempts, e.Err)
}

// Is reports whether target is ErrRetryExhausted.
func (e *RetryExhaustedError) Is(target error) bool {
	return target == ErrRetryExhausted
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}

// MissingInputError names the pipeline input key that was absent.
type MissingInputError struct {
	Key string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing input: required key %q not found", e.Key)
}

// Is reports whether target is ErrMissingInput.
func (e *MissingInputError) Is(target error) bool {
	return target == ErrMissingInput
}

// ConfigResolutionError reports why a nested configuration under Key could
// not be resolved. Path is set when an external reference was involved.
type ConfigResolutionError struct {
	Key    string
	Path   string
	Reason string
	Err    error
}

func (e *ConfigResolutionError) Error() string {
	msg := fmt.Sprintf("resolve %q", e.Key)
	if e.Path != "" {
		msg += fmt.Sprintf(" from %q", e.Path)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}
	return msg
}

// Is reports whether target is ErrConfigResolution.
func (e *ConfigResolutionError) Is(target error) bool {
	return target == ErrConfigResolution
}

func (e *ConfigResolutionError) Unwrap() error {
	return e.Err
}
