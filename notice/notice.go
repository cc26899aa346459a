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

// Package notice renders the human-readable license document listing the
// license texts of all embedded packages.
package notice

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"text/template"

	"github.com/gobwas/glob"
	"github.com/google/embeddeddeps/inventory"
)

// DefaultFileName is the default name of the license document artifact.
const DefaultFileName = "THIRD-PARTY-NOTICES.html"

// Placeholder is shown for packages with neither license text nor copyright.
const Placeholder = "No license text found."

// Func renders the license document from the sorted package records.
// Implementations must not keep state between calls.
type Func func(records []*inventory.Record) (string, error)

var filenameGlob = glob.MustCompile("*.{html,md,txt}")

// ValidFilename reports whether name is an accepted license document name.
func ValidFilename(name string) bool {
	return filenameGlob.Match(name)
}

// Text returns what the document shows for a package: its license text, else
// its copyright, else Placeholder.
func Text(r *inventory.Record) string {
	switch {
	case r.LicenseSource != "":
		return r.LicenseSource
	case r.Copyright != "":
		return r.Copyright
	default:
		return Placeholder
	}
}

var funcs = map[string]any{"text": Text}

var defaultTemplate = htmltemplate.Must(htmltemplate.New("notices").Funcs(funcs).Parse(
	`{{range $i, $r := .}}{{if $i}}<hr>
{{end}}<h2>{{$r.Name}} {{$r.Version}}</h2>
<pre>{{text $r}}</pre>
{{end}}`))

// Default renders one block per package: a header with name and version
// followed by the package's text, blocks separated by horizontal rules.
func Default(records []*inventory.Record) (string, error) {
	var buf bytes.Buffer
	if err := defaultTemplate.Execute(&buf, records); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FromTemplateFile returns a Func executing the text/template at path against
// the record list. The "text" function is available to templates.
func FromTemplateFile(path string) (Func, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading license template: %w", err)
	}
	tmpl, err := template.New(filepath.Base(path)).Funcs(funcs).Parse(string(b))
	if err != nil {
		return nil, fmt.Errorf("parsing license template %s: %w", path, err)
	}
	return func(records []*inventory.Record) (string, error) {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, records); err != nil {
			return "", err
		}
		return buf.String(), nil
	}, nil
}
