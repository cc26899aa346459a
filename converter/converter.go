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

// Package converter provides utility functions for converting an inventory
// document to standardized SBOM formats.
package converter

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/CycloneDX/cyclonedx-go"
	"github.com/google/embeddeddeps/inventory"
	"github.com/google/embeddeddeps/purl"
	"github.com/google/uuid"
	"github.com/spdx/tools-golang/spdx/v2/common"
	"github.com/spdx/tools-golang/spdx/v2/v2_3"
)

const (
	// NoAssertion indicates that we don't claim anything about the value of a given field.
	NoAssertion = "NOASSERTION"
	// SPDXRefPrefix is the prefix used in reference IDs in the SPDX document.
	SPDXRefPrefix = "SPDXRef-"
	// SPDXDocumentID is the string identifier used to refer to the SPDX document.
	SPDXDocumentID = "SPDXRef-DOCUMENT"
	// LicenseRefPrefix is the prefix for licenses that aren't SPDX expressions.
	LicenseRefPrefix = "LicenseRef-"

	toolName = "embeddeddeps"
)

// spdx_id must only contain letters, numbers, "." and "-"
var spdxIDInvalidCharRe = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// A license expression made of identifiers joined with AND / OR / WITH,
// optionally parenthesized, e.g. "(MIT OR Apache-2.0)".
var licenseExpressionRe = regexp.MustCompile(`^\(?[A-Za-z0-9.+-]+( (AND|OR|WITH) [A-Za-z0-9.+-]+)*\)?$`)

// SPDXConfig describes custom settings that should be applied to the generated SPDX file.
type SPDXConfig struct {
	DocumentName      string
	DocumentNamespace string
	Creators          []common.Creator
	// Created is the document creation time. Defaults to now.
	Created time.Time
}

// ToSPDX23 converts an inventory document into an SPDX v2.3 document.
func ToSPDX23(doc *inventory.Document, c SPDXConfig) *v2_3.Document {
	packages := make([]*v2_3.Package, 0, len(doc.EmbeddedDependencies)+1)

	// A main package that contains all embedded packages.
	mainPackageID := SPDXRefPrefix + "Package-main"
	packages = append(packages, &v2_3.Package{
		PackageName:           "main",
		PackageSPDXIdentifier: common.ElementID(mainPackageID),
		PackageVersion:        "0",
		PackageSupplier: &common.Supplier{
			Supplier:     NoAssertion,
			SupplierType: NoAssertion,
		},
		PackageDownloadLocation:   NoAssertion,
		IsFilesAnalyzedTagPresent: false,
	})

	relationships := make([]*v2_3.Relationship, 0, 1+len(doc.EmbeddedDependencies))
	relationships = append(relationships, &v2_3.Relationship{
		RefA:         toDocElementID(SPDXDocumentID),
		RefB:         toDocElementID(mainPackageID),
		Relationship: "DESCRIBES",
	})

	var otherLicenses []*v2_3.OtherLicense
	// Sanitizing can map distinct names to the same ID, so IDs are
	// disambiguated in document order.
	usedIDs := map[string]bool{mainPackageID: true}
	licenseRefs := map[string]string{}

	for _, r := range doc.EmbeddedDependencies {
		pID := uniqueID(SPDXRefPrefix+"Package-"+replaceSPDXIDInvalidChars(r.Name)+"-"+replaceSPDXIDInvalidChars(r.Version), usedIDs)

		declared := NoAssertion
		if r.License != "" {
			if licenseExpressionRe.MatchString(r.License) {
				declared = r.License
			} else {
				ref, ok := licenseRefs[r.License]
				if !ok {
					ref = uniqueID(LicenseRefPrefix+replaceSPDXIDInvalidChars(r.License), usedIDs)
					licenseRefs[r.License] = ref
					otherLicenses = append(otherLicenses, &v2_3.OtherLicense{
						LicenseIdentifier: ref,
						ExtractedText:     r.License,
					})
				}
				declared = ref
			}
		}
		copyright := NoAssertion
		if r.Copyright != "" {
			copyright = r.Copyright
		}

		packages = append(packages, &v2_3.Package{
			PackageName:           r.Name,
			PackageSPDXIdentifier: common.ElementID(pID),
			PackageVersion:        r.Version,
			PackageSupplier: &common.Supplier{
				Supplier:     NoAssertion,
				SupplierType: NoAssertion,
			},
			PackageDownloadLocation:   NoAssertion,
			IsFilesAnalyzedTagPresent: false,
			PackageLicenseConcluded:   NoAssertion,
			PackageLicenseDeclared:    declared,
			PackageCopyrightText:      copyright,
			PackageExternalReferences: []*v2_3.PackageExternalReference{
				{
					Category: "PACKAGE-MANAGER",
					RefType:  "purl",
					Locator:  purl.NPM(r.Name, r.Version).String(),
				},
			},
		})
		relationships = append(relationships, &v2_3.Relationship{
			RefA:         toDocElementID(mainPackageID),
			RefB:         toDocElementID(pID),
			Relationship: "CONTAINS",
		})
	}

	name := c.DocumentName
	if name == "" {
		name = "embedded dependencies"
	}
	namespace := c.DocumentNamespace
	if namespace == "" {
		namespace = "https://spdx.org/spdxdocs/" + toolName + "-" + uuid.New().String()
	}
	creators := []common.Creator{
		{
			CreatorType: "Tool",
			Creator:     toolName,
		},
	}
	creators = append(creators, c.Creators...)

	return &v2_3.Document{
		SPDXVersion:       "SPDX-2.3",
		DataLicense:       "CC0-1.0",
		SPDXIdentifier:    "DOCUMENT",
		DocumentName:      name,
		DocumentNamespace: namespace,
		CreationInfo: &v2_3.CreationInfo{
			Creators: creators,
			Created:  timestamp(c.Created),
		},
		Packages:      packages,
		Relationships: relationships,
		OtherLicenses: otherLicenses,
	}
}

// uniqueID returns id, or id with the smallest "-N" suffix not yet in used,
// and marks the result as used.
func uniqueID(id string, used map[string]bool) string {
	candidate := id
	for n := 2; used[candidate]; n++ {
		candidate = id + "-" + strconv.Itoa(n)
	}
	used[candidate] = true
	return candidate
}

func replaceSPDXIDInvalidChars(id string) string {
	return spdxIDInvalidCharRe.ReplaceAllString(id, "-")
}

func toDocElementID(id string) common.DocElementID {
	return common.DocElementID{
		ElementRefID: common.ElementID(id),
	}
}

// CDXConfig describes custom settings that should be applied to the generated CDX file.
type CDXConfig struct {
	ComponentName    string
	ComponentVersion string
	Authors          []string
	// Timestamp defaults to now.
	Timestamp time.Time
}

// ToCDX converts an inventory document into a CycloneDX BOM.
func ToCDX(doc *inventory.Document, c CDXConfig) *cyclonedx.BOM {
	bom := cyclonedx.NewBOM()
	bom.Metadata = &cyclonedx.Metadata{
		Timestamp: timestamp(c.Timestamp),
		Component: &cyclonedx.Component{
			Type:    cyclonedx.ComponentTypeApplication,
			Name:    c.ComponentName,
			Version: c.ComponentVersion,
		},
		Tools: &cyclonedx.ToolsChoice{
			Components: &[]cyclonedx.Component{
				{
					Type: cyclonedx.ComponentTypeApplication,
					Name: toolName,
				},
			},
		},
	}
	if len(c.Authors) > 0 {
		authors := make([]cyclonedx.OrganizationalContact, 0, len(c.Authors))
		for _, author := range c.Authors {
			authors = append(authors, cyclonedx.OrganizationalContact{
				Name: author,
			})
		}
		bom.Metadata.Authors = &authors
	}

	comps := make([]cyclonedx.Component, 0, len(doc.EmbeddedDependencies))
	for _, r := range doc.EmbeddedDependencies {
		p := purl.NPM(r.Name, r.Version).String()
		comp := cyclonedx.Component{
			BOMRef:     p,
			Type:       cyclonedx.ComponentTypeLibrary,
			Name:       r.Name,
			Version:    r.Version,
			PackageURL: p,
			Copyright:  r.Copyright,
		}
		if r.License != "" {
			comp.Licenses = &cyclonedx.Licenses{cdxLicense(r.License)}
		}
		comps = append(comps, comp)
	}
	bom.Components = &comps

	return bom
}

func cdxLicense(l string) cyclonedx.LicenseChoice {
	if strings.Contains(l, " OR ") || strings.Contains(l, " AND ") || strings.Contains(l, " WITH ") {
		return cyclonedx.LicenseChoice{Expression: l}
	}
	return cyclonedx.LicenseChoice{License: &cyclonedx.License{Name: l}}
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format("2006-01-02T15:04:05Z")
}
