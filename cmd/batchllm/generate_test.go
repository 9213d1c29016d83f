// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davetashner/batchllm/internal/fault"
	"github.com/davetashner/batchllm/internal/generate"
)

func TestGenerate_TextOutput(t *testing.T) {
	isolate(t)
	cmd, stdout, _ := newTestCmd(t)
	cmd.SetArgs([]string{"generate", "--no-color", "--provider", "mock", "a", "b"})

	require.NoError(t, cmd.Execute())
	out := stdout.String()
	assert.Contains(t, out, "[1] a\na#0\n")
	assert.Contains(t, out, "[2] b\nb#0\n")
	assert.Contains(t, out, "tokens: 4")
}

func TestGenerate_JSONOutput(t *testing.T) {
	isolate(t)
	cmd, stdout, _ := newTestCmd(t)
	cmd.SetArgs([]string{"generate", "--provider", "mock", "-n", "2", "--format", "json", "x"})

	require.NoError(t, cmd.Execute())
	var res generate.Result
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &res))
	require.Len(t, res.Generations, 1)
	require.Len(t, res.Generations[0], 2)
	assert.Equal(t, "x#1", res.Generations[0][1].Text)
}

func TestGenerate_PromptsFromStdin(t *testing.T) {
	isolate(t)
	cmd, stdout, _ := newTestCmd(t)
	cmd.SetIn(strings.NewReader("first\n\nsecond\r\n"))
	cmd.SetArgs([]string{"generate", "--provider", "mock", "--format", "json", "--file", "-", "zeroth"})

	require.NoError(t, cmd.Execute())
	var res generate.Result
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &res))
	require.Len(t, res.Generations, 3)
	assert.Equal(t, "zeroth#0", res.Generations[0][0].Text)
	assert.Equal(t, "first#0", res.Generations[1][0].Text)
	assert.Equal(t, "second#0", res.Generations[2][0].Text)
}

func TestGenerate_OutputFile(t *testing.T) {
	dir := isolate(t)
	cmd, stdout, _ := newTestCmd(t)
	cmd.SetArgs([]string{"generate", "--provider", "mock", "--format", "json", "-o", "out.json", "p"})

	require.NoError(t, cmd.Execute())
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(filepath.Join(dir, "out.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"p#0"`)
}

func TestGenerate_ProjectConfigAndFlagPrecedence(t *testing.T) {
	dir := isolate(t)
	writeTestFile(t, dir, ".batchllm.yaml", "provider: mock\nn: 2\n")

	cmd, stdout, _ := newTestCmd(t)
	cmd.SetArgs([]string{"generate", "--format", "json", "q"})
	require.NoError(t, cmd.Execute())
	var res generate.Result
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &res))
	assert.Len(t, res.Generations[0], 2, "n from project config")

	cmd, stdout, _ = newTestCmd(t)
	cmd.SetArgs([]string{"generate", "--format", "json", "-n", "3", "q"})
	require.NoError(t, cmd.Execute())
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &res))
	assert.Len(t, res.Generations[0], 3, "flag wins")
}

func TestGenerate_EnvOverridesProject(t *testing.T) {
	dir := isolate(t)
	writeTestFile(t, dir, ".batchllm.yaml", "provider: openai\n")
	t.Setenv("BATCHLLM_PROVIDER", "mock")

	cmd, stdout, _ := newTestCmd(t)
	cmd.SetArgs([]string{"generate", "--no-color", "hello"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "hello#0")
}

func TestGenerate_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no prompts", []string{"generate", "--provider", "mock"}},
		{"bad format", []string{"generate", "--provider", "mock", "--format", "xml", "a"}},
		{"unknown provider", []string{"generate", "--provider", "telegraph", "a"}},
		{"missing key", []string{"generate", "--provider", "openai", "a"}},
		{"bad temperature", []string{"generate", "--provider", "mock", "--temperature", "7", "a"}},
		{"missing prompt file", []string{"generate", "--provider", "mock", "--file", "absent.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			cmd, _, _ := newTestCmd(t)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			require.Error(t, err)
			assert.Equal(t, ExitInvalidArgs, exitCode(t, err))
		})
	}
}

func TestGenerate_StopFlagReplacesConfig(t *testing.T) {
	dir := isolate(t)
	writeTestFile(t, dir, ".batchllm.yaml", "provider: mock\nstop: [\"###\"]\n")

	cmd, _, _ := newTestCmd(t)
	cmd.SetArgs([]string{"generate", "--stop", "END", "a"})

	// The flag replaces the configured list rather than conflicting with it.
	require.NoError(t, cmd.Execute())
}

func TestGenerate_ProviderFailure(t *testing.T) {
	isolate(t)
	withEnv(t, map[string]string{"OPENAI_API_KEY": "sk-cli-test-0001"})

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad prompt sk-cli-test-0001","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	cmd, _, _ := newTestCmd(t)
	cmd.SetArgs([]string{"generate", "--base-url", srv.URL, "--max-retries", "1", "a"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitGenerationFailed, exitCode(t, err))
	assert.ErrorIs(t, err, fault.ErrRetryExhausted)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSplitPrompts(t *testing.T) {
	assert.Equal(t, []string{"a", "  b"}, splitPrompts("a\n\n  b\r\n   \n"))
	assert.Empty(t, splitPrompts(""))
}
