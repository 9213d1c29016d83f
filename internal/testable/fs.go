// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

// Package testable holds the file system seam shared by config resolution,
// chain persistence and the CLI, plus an in-memory implementation for tests.
package testable

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileSystem is the set of file operations batchllm performs on chain and
// config files.
type FileSystem interface {
	Abs(path string) (string, error)
	Stat(name string) (os.FileInfo, error)
	ReadFile(name string) ([]byte, error)

	// WriteFile replaces name with data. Readers see either the old
	// contents or the new ones, never a partial write.
	WriteFile(name string, data []byte, perm os.FileMode) error

	MkdirAll(path string, perm os.FileMode) error
}

// OS is the FileSystem backed by the host operating system.
type OS struct{}

func (OS) Abs(path string) (string, error)       { return filepath.Abs(path) }
func (OS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }
func (OS) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (OS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name) //nolint:gosec // chain and config paths come from the caller
}

// WriteFile writes to a temporary file in the target directory and renames
// it over name.
func (OS) WriteFile(name string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(name), "."+filepath.Base(name)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmpName, name); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// DefaultFS is used wherever no FileSystem is injected.
var DefaultFS FileSystem = OS{}
