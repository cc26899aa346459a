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
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/embeddeddeps/converter"
	"github.com/google/embeddeddeps/discovery"
	"github.com/google/embeddeddeps/enricher"
	"github.com/google/embeddeddeps/inventory"
	"github.com/google/embeddeddeps/notice"
	"github.com/google/embeddeddeps/stats"
)

// Config is the configuration surface of the inventory pipeline.
type Config struct {
	// OutputFileName is the name of the inventory document artifact.
	OutputFileName string
	// GenerateLicenseFile enables the license document artifact.
	GenerateLicenseFile bool
	// GenerateLicenseFileFunction renders the license document. Defaults to
	// notice.Default.
	GenerateLicenseFileFunction notice.Func
	// GeneratedLicenseFilename is the name of the license document artifact.
	// Must match *.{html,md,txt}.
	GeneratedLicenseFilename string
	// PackageFilter selects the packages to include. nil includes all.
	PackageFilter discovery.Filter
	// StorageSegment is the path segment identifying dependency storage areas.
	StorageSegment string
	// MaxConcurrency bounds concurrent package folder reads.
	MaxConcurrency int
	// SBOMFormats lists additional SBOM artifacts to emit, see converter.Formats.
	SBOMFormats []string
	// SBOM holds format specific settings of the SBOM artifacts.
	SBOM converter.Config
	// Stats is notified about enrichment and emitted artifacts.
	Stats stats.Collector
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		OutputFileName:              inventory.DefaultFileName,
		GenerateLicenseFile:         false,
		GenerateLicenseFileFunction: notice.Default,
		GeneratedLicenseFilename:    notice.DefaultFileName,
		StorageSegment:              discovery.DefaultStorageSegment,
		MaxConcurrency:              enricher.DefaultMaxConcurrency,
	}
}

// Validate checks the configuration and fills in defaults for unset fields.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if c.OutputFileName == "" {
		c.OutputFileName = def.OutputFileName
	}
	if c.GenerateLicenseFileFunction == nil {
		c.GenerateLicenseFileFunction = def.GenerateLicenseFileFunction
	}
	if c.GeneratedLicenseFilename == "" {
		c.GeneratedLicenseFilename = def.GeneratedLicenseFilename
	}
	if c.StorageSegment == "" {
		c.StorageSegment = def.StorageSegment
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = def.MaxConcurrency
	}
	if c.Stats == nil {
		c.Stats = stats.NoopCollector{}
	}

	var errs []error
	if err := validArtifactName(c.OutputFileName); err != nil {
		errs = append(errs, fmt.Errorf("output file name: %w", err))
	}
	if err := validArtifactName(c.GeneratedLicenseFilename); err != nil {
		errs = append(errs, fmt.Errorf("generated license filename: %w", err))
	} else if !notice.ValidFilename(c.GeneratedLicenseFilename) {
		errs = append(errs, fmt.Errorf("generated license filename %q must match *.{html,md,txt}", c.GeneratedLicenseFilename))
	}
	if c.OutputFileName == c.GeneratedLicenseFilename {
		errs = append(errs, fmt.Errorf("output file name and generated license filename are both %q", c.OutputFileName))
	}
	for _, f := range c.SBOMFormats {
		if !converter.ValidFormat(f) {
			errs = append(errs, fmt.Errorf("unsupported SBOM format %q, supported formats: %v", f, converter.Formats()))
		}
	}
	return errors.Join(errs...)
}

func validArtifactName(name string) error {
	if filepath.Base(name) != name || name == "." || name == ".." {
		return fmt.Errorf("%q must be a plain file name", name)
	}
	return nil
}
