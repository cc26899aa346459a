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

// Package cli defines the structures to store the CLI flags used by the
// embeddeddeps binary.
package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/google/embeddeddeps/build"
	"github.com/google/embeddeddeps/config"
	"github.com/google/embeddeddeps/converter"
	"github.com/google/embeddeddeps/modulewalk"
	"github.com/google/embeddeddeps/notice"
	"github.com/spdx/tools-golang/spdx/v2/common"
)

// Flags contains a field for all the cli flags that can be set.
type Flags struct {
	Root       string
	OutDir     string
	OutputFile string
	// LicenseFile is nil if --license-file wasn't passed, so that the config
	// file setting applies.
	LicenseFile           *bool
	LicenseFilename       string
	LicenseTemplate       string
	ConfigFile            string
	Include               []string
	Exclude               []string
	SkipDirGlob           string
	MaxConcurrency        int
	SBOM                  []string
	SPDXDocumentName      string
	SPDXDocumentNamespace string
	SPDXCreators          string
	CDXComponentName      string
	CDXComponentVersion   string
	CDXAuthors            string
	Verbose               bool
}

// ValidateFlags validates the passed command line flags.
func ValidateFlags(flags *Flags) error {
	if flags.Root == "" {
		return errors.New("--root needs to be set")
	}
	if err := validateFileName(flags.OutputFile); err != nil {
		return fmt.Errorf("--output-file %w", err)
	}
	if err := validateFileName(flags.LicenseFilename); err != nil {
		return fmt.Errorf("--license-filename %w", err)
	}
	if flags.LicenseFilename != "" && !notice.ValidFilename(flags.LicenseFilename) {
		return fmt.Errorf("--license-filename %q must match *.{html,md,txt}", flags.LicenseFilename)
	}
	if flags.MaxConcurrency < 0 {
		return fmt.Errorf("--max-concurrency must not be negative, got %d", flags.MaxConcurrency)
	}
	if err := validateSBOM(flags.SBOM); err != nil {
		return fmt.Errorf("--sbom %w", err)
	}
	if err := validateGlob(flags.SkipDirGlob); err != nil {
		return fmt.Errorf("--skip-dir-glob: %w", err)
	}
	if _, err := config.NameFilter(flags.Include, flags.Exclude); err != nil {
		return fmt.Errorf("--include/--exclude: %w", err)
	}
	if err := validateCreators(flags.SPDXCreators); err != nil {
		return fmt.Errorf("--spdx-creators %w", err)
	}
	return nil
}

func validateFileName(name string) error {
	if name == "" {
		return nil
	}
	if filepath.Base(name) != name {
		return fmt.Errorf("%q must be a file name, not a path", name)
	}
	return nil
}

func validateSBOM(formats []string) error {
	for _, f := range formats {
		if !converter.ValidFormat(f) {
			return fmt.Errorf("format %q not recognized, supported formats are %v", f, converter.Formats())
		}
	}
	return nil
}

func validateGlob(arg string) error {
	if arg == "" {
		return nil
	}
	_, err := glob.Compile(arg, '/')
	return err
}

func validateCreators(arg string) error {
	if arg == "" {
		return nil
	}
	for _, item := range strings.Split(arg, ",") {
		if c := strings.SplitN(item, ":", 2); len(c) != 2 || c[0] == "" || c[1] == "" {
			return fmt.Errorf("item %q should follow the format creatortype:creator", item)
		}
	}
	return nil
}

// BuildConfig constructs the build config from the project's config file and
// the CLI flags. Flags take precedence over the config file. Without
// --config the config file is looked up in the root directory.
func (f *Flags) BuildConfig() (build.Config, error) {
	cfg := build.DefaultConfig()

	cfgPath := f.ConfigFile
	if cfgPath == "" {
		p, err := config.Resolve(f.Root)
		switch {
		case err == nil:
			cfgPath = p
		case !errors.Is(err, config.ErrNoConfigFile):
			return cfg, err
		}
	}
	if cfgPath != "" {
		file, err := config.Load(cfgPath)
		if err != nil {
			return cfg, err
		}
		if err := file.Apply(&cfg); err != nil {
			return cfg, fmt.Errorf("applying %s: %w", cfgPath, err)
		}
	}

	if f.OutputFile != "" {
		cfg.OutputFileName = f.OutputFile
	}
	if f.LicenseFile != nil {
		cfg.GenerateLicenseFile = *f.LicenseFile
	}
	if f.LicenseFilename != "" {
		cfg.GeneratedLicenseFilename = f.LicenseFilename
	}
	if f.LicenseTemplate != "" {
		fn, err := notice.FromTemplateFile(f.LicenseTemplate)
		if err != nil {
			return cfg, err
		}
		cfg.GenerateLicenseFileFunction = fn
	}
	if len(f.Include) > 0 || len(f.Exclude) > 0 {
		filter, err := config.NameFilter(f.Include, f.Exclude)
		if err != nil {
			return cfg, err
		}
		cfg.PackageFilter = filter
	}
	if f.MaxConcurrency > 0 {
		cfg.MaxConcurrency = f.MaxConcurrency
	}
	if len(f.SBOM) > 0 {
		cfg.SBOMFormats = f.SBOM
	}
	cfg.SBOM = converter.Config{SPDX: f.GetSPDXConfig(), CDX: f.GetCDXConfig()}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// WalkConfig constructs the module walk config from the CLI flags.
func (f *Flags) WalkConfig(cfg build.Config) (modulewalk.Config, error) {
	wc := modulewalk.Config{StorageSegment: cfg.StorageSegment}
	if f.SkipDirGlob != "" {
		g, err := glob.Compile(f.SkipDirGlob, '/')
		if err != nil {
			return wc, err
		}
		wc.SkipDirGlob = g
	}
	return wc, nil
}

// OutputDir returns the directory the artifacts are written to.
func (f *Flags) OutputDir() string {
	if f.OutDir != "" {
		return f.OutDir
	}
	return f.Root
}

// GetSPDXConfig creates an SPDXConfig struct based on the CLI flags.
func (f *Flags) GetSPDXConfig() converter.SPDXConfig {
	creators := []common.Creator{}
	if len(f.SPDXCreators) > 0 {
		for _, item := range strings.Split(f.SPDXCreators, ",") {
			c := strings.SplitN(item, ":", 2)
			if len(c) != 2 {
				continue
			}
			creators = append(creators, common.Creator{
				CreatorType: c[0],
				Creator:     c[1],
			})
		}
	}
	return converter.SPDXConfig{
		DocumentName:      f.SPDXDocumentName,
		DocumentNamespace: f.SPDXDocumentNamespace,
		Creators:          creators,
	}
}

// GetCDXConfig creates an CDXConfig struct based on the CLI flags.
func (f *Flags) GetCDXConfig() converter.CDXConfig {
	var authors []string
	if f.CDXAuthors != "" {
		authors = strings.Split(f.CDXAuthors, ",")
	}
	return converter.CDXConfig{
		ComponentName:    f.CDXComponentName,
		ComponentVersion: f.CDXComponentVersion,
		Authors:          authors,
	}
}
