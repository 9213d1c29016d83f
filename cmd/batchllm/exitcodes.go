// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package main

import "fmt"

// Exit codes for batchllm CLI.
const (
	ExitOK               = 0 // Success.
	ExitInvalidArgs      = 1 // Invalid arguments, configuration or chain file.
	ExitGenerationFailed = 2 // The provider call or chain run failed.
	ExitOutputFailed     = 3 // Results were produced but could not be written.
)

// exitCodeError carries a non-zero exit code through cobra's error handling.
type exitCodeError struct {
	code int
	msg  string
	err  error
}

func (e *exitCodeError) Error() string { return e.msg }

func (e *exitCodeError) Unwrap() error { return e.err }

// ExitCode returns the exit code for this error.
func (e *exitCodeError) ExitCode() int { return e.code }

// exitError wraps err with an exit code and a "batchllm: <context>: <err>"
// message.
func exitError(code int, err error, format string, args ...any) *exitCodeError {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &exitCodeError{code: code, msg: "batchllm: " + msg, err: err}
}
