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

package descriptor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Person represents a person field in a package.json file.
type Person struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	URL   string `json:"url"`

	// raw is the original string form, if the field was a string.
	raw string
}

// match example: "author": "Isaac Z. Schlueter <i@izs.me> (http://blog.izs.me)"
// ---> name: "Isaac Z. Schlueter" email: "i@izs.me" url: "http://blog.izs.me"
var personPattern = regexp.MustCompile(`^\s*(?P<name>[^<(]*)(\s*<(?P<email>[^>]*)>)?(\s*\((?P<url>[^)]*)\))?\s*$`)

// UnmarshalJSON parses a JSON object or string into a Person struct. Values of
// any other shape leave the Person empty.
func (p *Person) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = *PersonFromString(s)
		return nil
	}

	// for more information: https://docs.npmjs.com/files/package.json#people-fields-author-contributors
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		*p = Person{}
		return nil
	}
	str := func(k string) string {
		v, _ := raw[k].(string)
		return strings.TrimSpace(v)
	}
	*p = Person{Name: str("name"), Email: str("email"), URL: str("url")}
	return nil
}

// PersonFromString parses a string of the form "name <email> (url)".
func PersonFromString(s string) *Person {
	p := &Person{raw: strings.TrimSpace(s)}
	m := personPattern.FindStringSubmatch(s)
	if m == nil {
		p.Name = p.raw
		return p
	}
	for i, group := range personPattern.SubexpNames() {
		v := strings.TrimSpace(m[i])
		switch group {
		case "name":
			p.Name = v
		case "email":
			p.Email = v
		case "url":
			p.URL = v
		}
	}
	return p
}

// String produces the "name <email> (url)" form of the person.
func (p *Person) String() string {
	if p == nil || p.Name == "" {
		return ""
	}
	result := p.Name
	if p.Email != "" {
		result += fmt.Sprintf(" <%s>", p.Email)
	}
	if p.URL != "" {
		result += fmt.Sprintf(" (%s)", p.URL)
	}
	return result
}

func (p *Person) empty() bool {
	return p.Name == "" && p.raw == ""
}
