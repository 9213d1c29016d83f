// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package mcpserver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func TestResolveChainPath_RelativeToBase(t *testing.T) {
	dir := tempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chain.yaml"), []byte("_type: x\n"), 0o600))

	got, err := ResolveChainPath(dir, "chain.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chain.yaml"), got)

	got, err = ResolveChainPath("/elsewhere", filepath.Join(dir, "chain.yaml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chain.yaml"), got)
}

func TestResolveChainPath_FollowsSymlinks(t *testing.T) {
	dir := tempDir(t)
	target := filepath.Join(dir, "real.json")
	require.NoError(t, os.WriteFile(target, []byte("{}"), 0o600))
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "link.json")))

	got, err := ResolveChainPath(dir, "link.json")
	require.NoError(t, err)
	assert.Equal(t, target, got)
}

func TestResolveChainPath_Errors(t *testing.T) {
	dir := tempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o750))

	tests := []struct {
		path string
		want string
	}{
		{"", "chain path is required"},
		{"missing.yaml", "cannot resolve path"},
		{"sub.yaml", "is a directory"},
		{"notes.txt", "unsupported file extension"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := ResolveChainPath(dir, tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
