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

// Package descriptor reads package.json manifests into package descriptors.
package descriptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrMissingNameOrVersion is returned for manifests without a name or version.
var ErrMissingNameOrVersion = errors.New("package.json has no name and/or version")

// ManifestName is the filename of a package descriptor.
const ManifestName = "package.json"

// Package is a parsed package manifest. It is immutable once parsed.
type Package struct {
	Name    string
	Version string
	// Author is nil if the manifest has no usable author field.
	Author *Person

	// raw holds the full manifest so fields not modelled here stay available.
	raw []byte
}

type manifest struct {
	Name    string  `json:"name"`
	Version string  `json:"version"`
	Author  *Person `json:"author"`
}

// Parse decodes a package.json manifest.
func Parse(r io.Reader) (*Package, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading package.json: %w", err)
	}
	return ParseBytes(b)
}

// ParseBytes decodes a package.json manifest held in memory.
func ParseBytes(b []byte) (*Package, error) {
	var m manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to parse package.json file: %w", err)
	}
	if m.Name == "" || m.Version == "" {
		return nil, ErrMissingNameOrVersion
	}
	if m.Author != nil && m.Author.empty() {
		m.Author = nil
	}
	return &Package{
		Name:    m.Name,
		Version: m.Version,
		Author:  m.Author,
		raw:     b,
	}, nil
}

// Key returns the name@version key identifying the package within a build.
func (p *Package) Key() string {
	return p.Name + "@" + p.Version
}

// Field returns a manifest field that isn't modelled by Package, addressed
// with a gjson path. The zero gjson.Result is returned if it doesn't exist.
func (p *Package) Field(path string) gjson.Result {
	return gjson.GetBytes(p.raw, path)
}

// Raw returns a copy of the manifest bytes.
func (p *Package) Raw() []byte {
	return append([]byte(nil), p.raw...)
}

// License derives the license string declared by the manifest:
//
//   - a string "license" field is returned as is,
//   - a legacy {"type", "url"} "license" object yields its type,
//   - a single-entry "licenses" collection yields that entry's type,
//   - several "licenses" entries are joined as "(A OR B)".
//
// An empty string means no license was declared.
func (p *Package) License() string {
	if l := p.Field("license"); l.Exists() {
		switch {
		case l.Type == gjson.String:
			if s := strings.TrimSpace(l.String()); s != "" {
				return s
			}
		case l.IsObject():
			if t := l.Get("type"); t.Type == gjson.String && t.String() != "" {
				return t.String()
			}
		}
	}

	ls := p.Field("licenses")
	if !ls.IsArray() {
		return ""
	}
	var types []string
	for _, entry := range ls.Array() {
		var t string
		if entry.Type == gjson.String {
			t = entry.String()
		} else {
			t = entry.Get("type").String()
		}
		if t != "" {
			types = append(types, t)
		}
	}
	switch len(types) {
	case 0:
		return ""
	case 1:
		return types[0]
	default:
		return "(" + strings.Join(types, " OR ") + ")"
	}
}

// AuthorString returns the author as declared: a string author verbatim, the
// name of an object author, or "" if there's none.
func (p *Package) AuthorString() string {
	if p.Author == nil {
		return ""
	}
	if p.Author.raw != "" {
		return p.Author.raw
	}
	return p.Author.Name
}
