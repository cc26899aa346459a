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

package enricher

import (
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// Lower-cased filenames accepted as license files, e.g. LICENSE, License.md,
// LICENSE-MIT, licence_apache, COPYING.
var licenseFileGlobs = []glob.Glob{
	glob.MustCompile("{license,licence,unlicense,copying,copyright}"),
	glob.MustCompile("{license,licence,unlicense,copying,copyright}{.,-,_}*"),
}

// Matches the first copyright statement line, e.g. "Copyright (c) 2020 Acme Corp"
// or "© 2010 Acme". "Copyright" must be followed by a copyright sign or a year
// and a bare sign by a year, so license prose such as "copyright notice" or an
// Apache "(c) You must retain" clause is not a statement.
var copyrightPattern = regexp.MustCompile(`(?m)^[ \t]*((?:(?:Copyright|COPYRIGHT):?[ \t]+(?:\([Cc]\)|©|[0-9])|(?:\([Cc]\)|©)[ \t]*[0-9]).*)$`)

// IsLicenseFile reports whether filename names a license file. The match is
// case-insensitive.
func IsLicenseFile(filename string) bool {
	lower := strings.ToLower(filename)
	for _, g := range licenseFileGlobs {
		if g.Match(lower) {
			return true
		}
	}
	return false
}

// FindLicenseFile returns the first license file in names. Callers pass the
// listing sorted by filename, so LICENSE is picked over LICENSE.txt.
func FindLicenseFile(names []string) (string, bool) {
	for _, n := range names {
		if IsLicenseFile(n) {
			return n, true
		}
	}
	return "", false
}

// ExtractCopyright returns the first copyright line of a license text, or "".
func ExtractCopyright(text string) string {
	m := copyrightPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
