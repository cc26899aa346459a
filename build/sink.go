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

package build

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// Sink receives the artifacts emitted by a build.
type Sink interface {
	Emit(name string, content []byte) error
}

// DirSink writes artifacts into a directory. Each artifact is written to a
// temporary file first and renamed into place, so readers never observe a
// partially written artifact.
type DirSink struct {
	Dir string
}

// Emit writes content to Dir/name.
func (s *DirSink) Emit(name string, content []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(s.Dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	// No-op once the rename succeeded.
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.Dir, name)); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// MemorySink keeps emitted artifacts in memory.
type MemorySink struct {
	mu        sync.Mutex
	artifacts map[string][]byte
	order     []string
}

// Emit stores a copy of content under name.
func (s *MemorySink) Emit(name string, content []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.artifacts == nil {
		s.artifacts = map[string][]byte{}
	}
	if _, ok := s.artifacts[name]; !ok {
		s.order = append(s.order, name)
	}
	s.artifacts[name] = slices.Clone(content)
	return nil
}

// Get returns the artifact stored under name.
func (s *MemorySink) Get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.artifacts[name]
	return b, ok
}

// Names returns the artifact names in emission order.
func (s *MemorySink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}
