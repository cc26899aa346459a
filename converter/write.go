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

package converter

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/CycloneDX/cyclonedx-go"
	"github.com/google/embeddeddeps/inventory"
	spdxjson "github.com/spdx/tools-golang/json"
	"github.com/spdx/tools-golang/spdx/v2/v2_3"
	"github.com/spdx/tools-golang/tagvalue"
	spdxyaml "github.com/spdx/tools-golang/yaml"
)

type spdxWriteFun func(doc *v2_3.Document, w io.Writer) error

// Writer functions associated with SPDX v2.3 formats.
var spdx23Writers = map[string]spdxWriteFun{
	"spdx23-tag-value": func(doc *v2_3.Document, w io.Writer) error { return tagvalue.Write(doc, w) },
	"spdx23-json":      func(doc *v2_3.Document, w io.Writer) error { return spdxjson.Write(doc, w, spdxjson.Indent("  ")) },
	"spdx23-yaml":      func(doc *v2_3.Document, w io.Writer) error { return spdxyaml.Write(doc, w) },
}

var cdxFormats = map[string]cyclonedx.BOMFileFormat{
	"cdx-json": cyclonedx.BOMFileFormatJSON,
	"cdx-xml":  cyclonedx.BOMFileFormatXML,
}

// Default artifact names per output format.
var defaultFileNames = map[string]string{
	"spdx23-tag-value": "embedded-dependencies.spdx",
	"spdx23-json":      "embedded-dependencies.spdx.json",
	"spdx23-yaml":      "embedded-dependencies.spdx.yaml",
	"cdx-json":         "embedded-dependencies.cdx.json",
	"cdx-xml":          "embedded-dependencies.cdx.xml",
}

// Formats returns the supported SBOM output formats.
func Formats() []string {
	var formats []string
	for f := range defaultFileNames {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}

// ValidFormat reports whether format is a supported SBOM output format.
func ValidFormat(format string) bool {
	_, ok := defaultFileNames[format]
	return ok
}

// FileName returns the artifact name used for format.
func FileName(format string) string {
	return defaultFileNames[format]
}

// Config holds the settings of all SBOM formats.
type Config struct {
	SPDX SPDXConfig
	CDX  CDXConfig
}

// Write converts doc into the given SBOM format.
func Write(doc *inventory.Document, format string, c Config) ([]byte, error) {
	var buf bytes.Buffer
	if w, ok := spdx23Writers[format]; ok {
		if err := w(ToSPDX23(doc, c.SPDX), &buf); err != nil {
			return nil, fmt.Errorf("writing %s: %w", format, err)
		}
		return buf.Bytes(), nil
	}
	if f, ok := cdxFormats[format]; ok {
		enc := cyclonedx.NewBOMEncoder(&buf, f).SetPretty(true)
		if err := enc.Encode(ToCDX(doc, c.CDX)); err != nil {
			return nil, fmt.Errorf("writing %s: %w", format, err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%q is not a supported SBOM format", format)
}
