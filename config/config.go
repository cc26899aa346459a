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

// Package config resolves and loads the optional embeddeddeps configuration
// file of a project.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gobwas/glob"
	"github.com/google/embeddeddeps/build"
	"github.com/google/embeddeddeps/descriptor"
	"github.com/google/embeddeddeps/discovery"
	"github.com/google/embeddeddeps/notice"
	"github.com/tidwall/jsonc"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// ErrNoConfigFile is returned by Resolve if the directory has no config file.
var ErrNoConfigFile = errors.New("no embeddeddeps config file found")

// BaseName is the name of config files without extension.
const BaseName = "embeddeddeps.config"

// Extensions lists the supported config file extensions in resolution order.
var Extensions = []string{".json", ".jsonc", ".yaml", ".yml", ".toml"}

// File is the content of a config file. Unset fields leave the build config
// unchanged.
type File struct {
	OutputFileName           string   `json:"outputFileName" yaml:"outputFileName" toml:"outputFileName"`
	GenerateLicenseFile      *bool    `json:"generateLicenseFile" yaml:"generateLicenseFile" toml:"generateLicenseFile"`
	GeneratedLicenseFilename string   `json:"generatedLicenseFilename" yaml:"generatedLicenseFilename" toml:"generatedLicenseFilename"`
	LicenseTemplate          string   `json:"licenseTemplate" yaml:"licenseTemplate" toml:"licenseTemplate"`
	Include                  []string `json:"include" yaml:"include" toml:"include"`
	Exclude                  []string `json:"exclude" yaml:"exclude" toml:"exclude"`
	StorageDir               string   `json:"storageDir" yaml:"storageDir" toml:"storageDir"`
	MaxConcurrency           int      `json:"maxConcurrency" yaml:"maxConcurrency" toml:"maxConcurrency"`
	SBOM                     []string `json:"sbom" yaml:"sbom" toml:"sbom"`

	// Directory of the file, relative paths inside it are resolved against it.
	dir string
}

// Resolve returns the path of the config file in dir.
func Resolve(dir string) (string, error) {
	for _, ext := range Extensions {
		p := filepath.Join(dir, BaseName+ext)
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("resolving config file: %w", err)
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNoConfigFile, dir)
}

// Load parses the config file at path. The format is chosen by extension.
// Unknown keys are rejected.
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(b, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	f.dir = filepath.Dir(path)
	return f, nil
}

// Parse decodes config file content in the format given by ext.
func Parse(b []byte, ext string) (*File, error) {
	f := &File{}
	switch strings.ToLower(ext) {
	case ".json", ".jsonc":
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(b)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(f); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		// An empty document leaves f unset.
		if err := dec.Decode(f); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(b)).Decode(f)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown keys %v", undecoded)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}
	return f, nil
}

// Apply merges the file into cfg.
func (f *File) Apply(cfg *build.Config) error {
	if f.OutputFileName != "" {
		cfg.OutputFileName = f.OutputFileName
	}
	if f.GenerateLicenseFile != nil {
		cfg.GenerateLicenseFile = *f.GenerateLicenseFile
	}
	if f.GeneratedLicenseFilename != "" {
		cfg.GeneratedLicenseFilename = f.GeneratedLicenseFilename
	}
	if f.StorageDir != "" {
		cfg.StorageSegment = f.StorageDir
	}
	if f.MaxConcurrency > 0 {
		cfg.MaxConcurrency = f.MaxConcurrency
	}
	if len(f.SBOM) > 0 {
		cfg.SBOMFormats = f.SBOM
	}

	var errs error
	if f.LicenseTemplate != "" {
		p := f.LicenseTemplate
		if !filepath.IsAbs(p) && f.dir != "" {
			p = filepath.Join(f.dir, p)
		}
		fn, err := notice.FromTemplateFile(p)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			cfg.GenerateLicenseFileFunction = fn
		}
	}
	if len(f.Include) > 0 || len(f.Exclude) > 0 {
		filter, err := NameFilter(f.Include, f.Exclude)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			cfg.PackageFilter = filter
		}
	}
	return errs
}

// NameFilter returns a package filter accepting packages whose name matches
// one of the include globs (or any name if include is empty) and none of the
// exclude globs. Globs use '/' as separator, so "@scope/*" matches all
// packages of a scope.
func NameFilter(include, exclude []string) (discovery.Filter, error) {
	inc, err := compileGlobs(include)
	if err != nil {
		return nil, fmt.Errorf("include: %w", err)
	}
	exc, err := compileGlobs(exclude)
	if err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}
	return func(pkg *descriptor.Package, _ string) bool {
		if len(inc) > 0 && !matchAny(inc, pkg.Name) {
			return false
		}
		return !matchAny(exc, pkg.Name)
	}, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	var errs error
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid glob %q: %w", p, err))
			continue
		}
		globs = append(globs, g)
	}
	return globs, errs
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
