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

// Package purl builds package URLs (https://github.com/package-url/purl-spec)
// for the packages listed in an inventory.
package purl

import (
	"fmt"
	"strings"

	"github.com/package-url/packageurl-go"
)

// TypeNPM is a pkg:npm purl.
const TypeNPM = "npm"

// PackageURL is the struct representation of the parts that make a package url.
type PackageURL struct {
	Type      string
	Namespace string
	Name      string
	Version   string
}

// NPM returns the purl of an npm package. A "@scope/name" package name is
// split into namespace and name.
func NPM(name, version string) PackageURL {
	p := PackageURL{Type: TypeNPM, Name: name, Version: version}
	if strings.HasPrefix(name, "@") {
		if scope, rest, ok := strings.Cut(name, "/"); ok {
			p.Namespace = scope
			p.Name = rest
		}
	}
	return p
}

// String returns the canonical string form of the package url.
func (p PackageURL) String() string {
	return packageurl.NewPackageURL(p.Type, p.Namespace, p.Name, p.Version, nil, "").ToString()
}

// FromString parses a package url string.
func FromString(s string) (PackageURL, error) {
	u, err := packageurl.FromString(s)
	if err != nil {
		return PackageURL{}, fmt.Errorf("parsing purl %q: %w", s, err)
	}
	return PackageURL{Type: u.Type, Namespace: u.Namespace, Name: u.Name, Version: u.Version}, nil
}
