// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fakefs provides a fake file system implementation for testing.
package fakefs

import (
	"io/fs"
	"sync"
	"testing/fstest"
)

// FakeFS is an in-memory filesystem whose directory listings and file reads
// can be made to fail for specific paths.
type FakeFS struct {
	fstest.MapFS

	// ReadDirErrs maps directory paths to the error ReadDir returns for them.
	ReadDirErrs map[string]error
	// ReadFileErrs maps file paths to the error Open and ReadFile return for them.
	ReadFileErrs map[string]error
	// ReadDirHook, if set, is called with the directory path before each
	// listing. It may be called concurrently.
	ReadDirHook func(name string)

	mu       sync.Mutex
	readDirs []string
}

// New returns a FakeFS serving the given files. Keys are slash-separated
// paths, values the file contents.
func New(files map[string]string) *FakeFS {
	m := fstest.MapFS{}
	for name, content := range files {
		m[name] = &fstest.MapFile{Data: []byte(content), Mode: 0o644}
	}
	return &FakeFS{MapFS: m}
}

// Open opens the named file.
func (f *FakeFS) Open(name string) (fs.File, error) {
	if err, ok := f.ReadFileErrs[name]; ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return f.MapFS.Open(name)
}

// ReadFile reads the named file.
func (f *FakeFS) ReadFile(name string) ([]byte, error) {
	if err, ok := f.ReadFileErrs[name]; ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: err}
	}
	return f.MapFS.ReadFile(name)
}

// ReadDir lists the named directory.
func (f *FakeFS) ReadDir(name string) ([]fs.DirEntry, error) {
	f.mu.Lock()
	f.readDirs = append(f.readDirs, name)
	f.mu.Unlock()
	if f.ReadDirHook != nil {
		f.ReadDirHook(name)
	}
	if err, ok := f.ReadDirErrs[name]; ok {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	return f.MapFS.ReadDir(name)
}

// ReadDirCalls returns the directories listed so far.
func (f *FakeFS) ReadDirCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.readDirs...)
}
