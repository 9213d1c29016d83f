// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package main

import (
	"io"
	"os"

	"github.com/davetashner/batchllm/internal/testable"
)

// cmdFS is the file system implementation used by CLI commands.
// Override in tests with a testable.MockFileSystem.
var cmdFS testable.FileSystem = testable.DefaultFS

// lookupEnv reads provider API keys. Tests replace it.
var lookupEnv = os.LookupEnv

// readInput returns the contents of path, or of stdin when path is "-".
func readInput(in io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(in)
	}
	return cmdFS.ReadFile(path)
}
