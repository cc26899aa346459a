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

// Package inventory defines the package records produced for a build and the
// inventory document they are reported in.
package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"deps.dev/util/semver"
)

// DefaultFileName is the default name of the inventory document artifact.
const DefaultFileName = "embedded-dependencies.json"

// Record is the license information collected for one third-party package.
// License and Copyright are best effort and may both be empty. LicenseSource
// is only set if a license file was found and read.
type Record struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	License       string `json:"license,omitempty"`
	LicenseSource string `json:"licenseSource,omitempty"`
	Copyright     string `json:"copyright,omitempty"`
}

// Document is the inventory of all embedded third-party packages of a build.
type Document struct {
	EmbeddedDependencies []*Record `json:"embeddedDependencies"`
}

// NewDocument returns a document holding a sorted copy of records.
func NewDocument(records []*Record) *Document {
	sorted := slices.Clone(records)
	if sorted == nil {
		sorted = []*Record{}
	}
	Sort(sorted)
	return &Document{EmbeddedDependencies: sorted}
}

// Sort orders records by name, then by version. Versions that parse as npm
// semantic versions come first in semver order, followed by the remaining
// ones in string order, so the order is total and stable across runs.
func Sort(records []*Record) {
	slices.SortStableFunc(records, Compare)
}

// Compare is the ordering used by Sort.
func Compare(a, b *Record) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if a.Version == b.Version {
		return 0
	}
	va, errA := semver.NPM.Parse(a.Version)
	vb, errB := semver.NPM.Parse(b.Version)
	switch {
	case errA == nil && errB == nil:
		if c := va.Compare(vb); c != 0 {
			return c
		}
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a.Version, b.Version)
}

// Marshal serializes the document as indented UTF-8 JSON. HTML characters in
// license texts are kept as is.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding inventory document: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal parses a document produced by Marshal.
func Unmarshal(b []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(b, doc); err != nil {
		return nil, fmt.Errorf("decoding inventory document: %w", err)
	}
	if doc.EmbeddedDependencies == nil {
		doc.EmbeddedDependencies = []*Record{}
	}
	return doc, nil
}
