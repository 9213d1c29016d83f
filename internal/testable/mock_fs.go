// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package testable

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MockFileSystem is an in-memory FileSystem. Files are keyed by cleaned
// absolute path; relative names are anchored at "/".
//
// Each method also has a function field. When the field is non-nil the mock
// calls it instead, which lets tests inject failures for one operation while
// keeping in-memory behavior for the rest.
type MockFileSystem struct {
	AbsFn       func(path string) (string, error)
	StatFn      func(name string) (os.FileInfo, error)
	ReadFileFn  func(name string) ([]byte, error)
	WriteFileFn func(name string, data []byte, perm os.FileMode) error
	MkdirAllFn  func(path string, perm os.FileMode) error

	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool
}

// NewMockFileSystem returns a MockFileSystem pre-populated with files.
func NewMockFileSystem(files map[string]string) *MockFileSystem {
	m := &MockFileSystem{}
	for name, content := range files {
		_ = m.put(name, []byte(content))
	}
	return m
}

// Compile-time interface check.
var _ FileSystem = (*MockFileSystem)(nil)

func memPath(name string) string {
	if !filepath.IsAbs(name) {
		name = filepath.Join(string(filepath.Separator), name)
	}
	return filepath.Clean(name)
}

func (m *MockFileSystem) put(name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
		m.dirs = make(map[string]bool)
	}
	p := memPath(name)
	m.files[p] = append([]byte(nil), data...)
	for dir := filepath.Dir(p); ; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
		if dir == filepath.Dir(dir) {
			break
		}
	}
	return nil
}

// Abs calls AbsFn if set, otherwise anchors path at "/".
func (m *MockFileSystem) Abs(path string) (string, error) {
	if m.AbsFn != nil {
		return m.AbsFn(path)
	}
	return memPath(path), nil
}

// Stat calls StatFn if set, otherwise reports in-memory files and
// directories.
func (m *MockFileSystem) Stat(name string) (os.FileInfo, error) {
	if m.StatFn != nil {
		return m.StatFn(name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p := memPath(name)
	if data, ok := m.files[p]; ok {
		return memInfo{name: filepath.Base(p), size: int64(len(data))}, nil
	}
	if m.dirs[p] {
		return memInfo{name: filepath.Base(p), dir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// ReadFile calls ReadFileFn if set, otherwise returns the in-memory
// contents.
func (m *MockFileSystem) ReadFile(name string) ([]byte, error) {
	if m.ReadFileFn != nil {
		return m.ReadFileFn(name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[memPath(name)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

// WriteFile calls WriteFileFn if set, otherwise stores data in memory.
func (m *MockFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	if m.WriteFileFn != nil {
		return m.WriteFileFn(name, data, perm)
	}
	return m.put(name, data)
}

// MkdirAll calls MkdirAllFn if set, otherwise records the directory.
func (m *MockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	if m.MkdirAllFn != nil {
		return m.MkdirAllFn(path, perm)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dirs == nil {
		m.files = make(map[string][]byte)
		m.dirs = make(map[string]bool)
	}
	m.dirs[memPath(path)] = true
	return nil
}

// Files returns the sorted paths of every in-memory file.
func (m *MockFileSystem) Files() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

type memInfo struct {
	name string
	size int64
	dir  bool
}

func (i memInfo) Name() string { return i.name }
func (i memInfo) Size() int64  { return i.size }
func (i memInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | 0o755
	}
	return 0o644
}
func (i memInfo) ModTime() time.Time { return time.Time{} }
func (i memInfo) IsDir() bool        { return i.dir }
func (i memInfo) Sys() any           { return nil }
