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

// Package discovery keeps the per-build table of third-party packages that
// were resolved from a dependency storage area.
package discovery

import (
	"slices"
	"strings"

	"github.com/google/embeddeddeps/descriptor"
	"github.com/google/embeddeddeps/log"
)

// DefaultStorageSegment is the path segment identifying a dependency storage area.
const DefaultStorageSegment = "node_modules"

// ModuleEvent is delivered once per module resolved during a build.
type ModuleEvent struct {
	// Descriptor is the manifest of the package owning the module, if known.
	Descriptor *descriptor.Package
	// DescriptorRoot is the absolute path of the package folder, if known.
	DescriptorRoot string
	// RelativePath is the module's path relative to DescriptorRoot.
	RelativePath string
}

// Filter decides whether a package resolved from path is included in the
// inventory. It must not keep state between calls.
type Filter func(pkg *descriptor.Package, path string) bool

// Entry is a third-party package retained for enrichment.
type Entry struct {
	// Key is name@version.
	Key string
	// PackageFolderPath is the absolute path of the package folder.
	PackageFolderPath string
	Descriptor        *descriptor.Package
}

// Table is the set of third-party packages seen during one build. Observe is
// called serially by the host and needs no locking.
type Table struct {
	filter  Filter
	segment string
	entries map[string]*Entry
}

// NewTable returns an empty table. A nil filter accepts every package and an
// empty segment defaults to DefaultStorageSegment.
func NewTable(filter Filter, segment string) *Table {
	if segment == "" {
		segment = DefaultStorageSegment
	}
	return &Table{
		filter:  filter,
		segment: segment,
		entries: map[string]*Entry{},
	}
}

// Observe records the package owning ev if it's a third-party package. The
// first observation of a name@version wins.
func (t *Table) Observe(ev ModuleEvent) {
	if ev.Descriptor == nil || ev.DescriptorRoot == "" {
		return
	}
	if !InDependencyStore(ev.DescriptorRoot, t.segment) {
		return
	}
	if t.filter != nil && !t.filter(ev.Descriptor, ev.DescriptorRoot) {
		log.Debugf("package %s at %s excluded by filter", ev.Descriptor.Key(), ev.DescriptorRoot)
		return
	}
	key := ev.Descriptor.Key()
	if _, ok := t.entries[key]; ok {
		return
	}
	t.entries[key] = &Entry{
		Key:               key,
		PackageFolderPath: ev.DescriptorRoot,
		Descriptor:        ev.Descriptor,
	}
}

// Len returns the number of retained packages.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns the retained packages ordered by key.
func (t *Table) Entries() []*Entry {
	result := make([]*Entry, 0, len(t.entries))
	for _, e := range t.entries {
		result = append(result, e)
	}
	slices.SortFunc(result, func(a, b *Entry) int { return strings.Compare(a.Key, b.Key) })
	return result
}

// InDependencyStore reports whether path has segment as one of its path
// segments. Both slash and backslash separators are accepted.
func InDependencyStore(path, segment string) bool {
	segments := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' })
	for _, s := range segments {
		if s == segment {
			return true
		}
	}
	return false
}
