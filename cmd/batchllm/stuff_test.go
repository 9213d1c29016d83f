// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStuff_PromptMode(t *testing.T) {
	dir := isolate(t)
	writeTestFile(t, dir, "a.txt", "alpha")
	writeTestFile(t, dir, "b.txt", "beta")

	cmd, stdout, _ := newTestCmd(t)
	cmd.SetArgs([]string{"stuff", "--provider", "mock", "--prompt", `For {who}:\n{context}`, "--input", "who=ops", "a.txt", "b.txt"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "For ops:\nalpha\n\nbeta#0\n", stdout.String())
}

func TestStuff_ConfiguredKeys(t *testing.T) {
	dir := isolate(t)
	writeTestFile(t, dir, ".batchllm.yaml", "provider: mock\nstuff:\n  document_variable_name: body\n")
	writeTestFile(t, dir, "a.txt", "alpha")

	cmd, stdout, _ := newTestCmd(t)
	cmd.SetArgs([]string{"stuff", "--prompt", "<{body}>", "--format", "json", "a.txt"})

	require.NoError(t, cmd.Execute())
	var out map[string]any
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Equal(t, map[string]any{"text": "<alpha>#0"}, out)
}

func TestStuff_DocumentFromStdin(t *testing.T) {
	isolate(t)
	cmd, stdout, _ := newTestCmd(t)
	cmd.SetIn(strings.NewReader("piped"))
	cmd.SetArgs([]string{"stuff", "--provider", "mock", "--prompt", "{context}", "-"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "piped#0\n", stdout.String())
}

func TestStuff_SavedChain(t *testing.T) {
	dir := isolate(t)
	writeTestFile(t, dir, "doc.md", "notes")

	cmd, _, _ := newTestCmd(t)
	cmd.SetArgs([]string{"chain", "new", "chains/sum.yaml", "--provider", "mock", "--prompt", "Sum {context} for {who}", "--ref", "llm.json"})
	require.NoError(t, cmd.Execute())

	cmd, stdout, _ := newTestCmd(t)
	cmd.SetArgs([]string{"stuff", "--chain", "chains/sum.yaml", "--input", "who=me", "doc.md"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Sum notes for me#0\n", stdout.String())
}

func TestStuff_ChainRejectsEngineParams(t *testing.T) {
	tests := []struct {
		name string
		flag []string
	}{
		{"model", []string{"--model", "other"}},
		{"n", []string{"-n", "3"}},
		{"stop", []string{"--stop", "END"}},
		{"max retries", []string{"--max-retries", "1"}},
		{"batch size", []string{"--batch-size", "2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			writeTestFile(t, dir, "doc.md", "notes")

			cmd, _, _ := newTestCmd(t)
			cmd.SetArgs([]string{"chain", "new", "sum.yaml", "--provider", "mock", "--prompt", "{context}"})
			require.NoError(t, cmd.Execute())

			cmd, stdout, _ := newTestCmd(t)
			cmd.SetArgs(append([]string{"stuff", "--chain", "sum.yaml", "doc.md"}, tt.flag...))
			err := cmd.Execute()
			require.Error(t, err)
			assert.Equal(t, ExitInvalidArgs, exitCode(t, err))
			assert.Contains(t, err.Error(), tt.flag[0])
			assert.Contains(t, err.Error(), "--chain")
			assert.Empty(t, stdout.String())
		})
	}
}

func TestStuff_ChainAcceptsProviderFlag(t *testing.T) {
	dir := isolate(t)
	writeTestFile(t, dir, "doc.md", "notes")

	cmd, _, _ := newTestCmd(t)
	cmd.SetArgs([]string{"chain", "new", "sum.yaml", "--provider", "mock", "--prompt", "{context}"})
	require.NoError(t, cmd.Execute())

	cmd, stdout, _ := newTestCmd(t)
	cmd.SetArgs([]string{"stuff", "--chain", "sum.yaml", "--provider", "mock", "doc.md"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "notes#0\n", stdout.String())
}

func TestStuff_MissingPromptInputFails(t *testing.T) {
	dir := isolate(t)
	writeTestFile(t, dir, "a.txt", "alpha")

	cmd, _, _ := newTestCmd(t)
	cmd.SetArgs([]string{"stuff", "--provider", "mock", "--prompt", "{context} {missing}", "a.txt"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitGenerationFailed, exitCode(t, err))
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestStuff_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no chain or prompt", []string{"stuff", "--provider", "mock", "a.txt"}},
		{"no documents", []string{"stuff", "--provider", "mock", "--prompt", "{context}"}},
		{"bad input pair", []string{"stuff", "--provider", "mock", "--prompt", "{context}", "--input", "novalue", "a.txt"}},
		{"missing document", []string{"stuff", "--provider", "mock", "--prompt", "{context}", "absent.txt"}},
		{"bad template", []string{"stuff", "--provider", "mock", "--prompt", "{context", "a.txt"}},
		{"missing chain", []string{"stuff", "--chain", "absent.yaml", "a.txt"}},
		{"bad format", []string{"stuff", "--provider", "mock", "--prompt", "{context}", "--format", "csv", "a.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			writeTestFile(t, dir, "a.txt", "alpha")
			cmd, _, _ := newTestCmd(t)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			require.Error(t, err)
			assert.Equal(t, ExitInvalidArgs, exitCode(t, err))
		})
	}
}

func TestStuff_WrongChainType(t *testing.T) {
	dir := isolate(t)
	writeTestFile(t, dir, "a.txt", "alpha")
	writeTestFile(t, dir, "llm.json", `{"_type":"llm_chain","llm":{"_type":"mock"},"prompt":{"template":"{context}"}}`)

	cmd, _, _ := newTestCmd(t)
	cmd.SetArgs([]string{"stuff", "--chain", "llm.json", "a.txt"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitInvalidArgs, exitCode(t, err))
	assert.Contains(t, err.Error(), "stuff_documents_chain")
}

func TestParseInputs(t *testing.T) {
	got, err := parseInputs([]string{"a=1", "b=x=y", "c="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "1", "b": "x=y", "c": ""}, got)

	_, err = parseInputs([]string{"=v"})
	assert.Error(t, err)
}
