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

// Package build runs the embedded-dependency inventory pipeline for one build:
// packages are observed while modules are resolved, then enriched with license
// data and reported as artifacts at a single finalization checkpoint.
package build

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/embeddeddeps/converter"
	"github.com/google/embeddeddeps/discovery"
	"github.com/google/embeddeddeps/enricher"
	scalibrfs "github.com/google/embeddeddeps/fs"
	"github.com/google/embeddeddeps/inventory"
	"github.com/google/embeddeddeps/log"
	"github.com/google/embeddeddeps/stats"
)

var (
	// ErrFinalized is returned when a build is finalized twice.
	ErrFinalized = errors.New("build already finalized")
	// ErrNoScanRoot is returned when a build is created without a scan root.
	ErrNoScanRoot = errors.New("no scan root specified")
)

// Status is the overall outcome of a build.
type Status int

// Status values.
const (
	StatusUnspecified Status = iota
	StatusSucceeded
	// StatusPartiallySucceeded means the inventory document was emitted but
	// errors were reported along the way.
	StatusPartiallySucceeded
	StatusFailed
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "SUCCEEDED"
	case StatusPartiallySucceeded:
		return "PARTIALLY_SUCCEEDED"
	case StatusFailed:
		return "FAILED"
	case StatusUnspecified:
		fallthrough
	default:
		return "UNSPECIFIED"
	}
}

// Result describes a finalized build.
type Result struct {
	Status      Status
	Document    *inventory.Document
	Diagnostics []Diagnostic
	// Artifacts lists the names of the emitted artifacts in emission order.
	Artifacts []string
}

// Errors returns the error diagnostics.
func (r *Result) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Build holds the state of one build. It must not be reused across builds.
type Build struct {
	cfg       Config
	root      *scalibrfs.ScanRoot
	table     *discovery.Table
	finalized bool
}

// New starts a build of the project at root.
func New(cfg Config, root *scalibrfs.ScanRoot) (*Build, error) {
	if root == nil || root.FS == nil {
		return nil, ErrNoScanRoot
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	abs, err := root.WithAbsolutePath()
	if err != nil {
		return nil, err
	}
	return &Build{
		cfg:   cfg,
		root:  abs,
		table: discovery.NewTable(cfg.PackageFilter, cfg.StorageSegment),
	}, nil
}

// Root returns the absolute scan root of the build.
func (b *Build) Root() *scalibrfs.ScanRoot { return b.root }

// Observe records the package owning a resolved module. It must be called
// serially and only before Finalize.
func (b *Build) Observe(ev discovery.ModuleEvent) {
	b.table.Observe(ev)
}

// Finalize enriches the observed packages and emits the inventory document,
// followed by the optional license document and SBOM artifacts.
//
// Enrichment and license document failures are reported as diagnostics and
// don't prevent the inventory document from being emitted. A failure to emit
// the inventory document, or a cancelled ctx, is returned as an error. No
// artifact is emitted once ctx is cancelled.
func (b *Build) Finalize(ctx context.Context, sink Sink) (*Result, error) {
	if b.finalized {
		return nil, ErrFinalized
	}
	b.finalized = true

	start := time.Now()
	res := &Result{}
	defer func() {
		fstats := &stats.FinalizeStats{
			Artifacts: len(res.Artifacts),
			Errors:    len(res.Errors()),
			Cancelled: ctx.Err() != nil,
		}
		if res.Document != nil {
			fstats.Packages = len(res.Document.EmbeddedDependencies)
		}
		b.cfg.Stats.AfterFinalize(time.Since(start), fstats)
	}()

	entries := b.table.Entries()
	log.Infof("Processing %d embedded dependencies", len(entries))

	records, err := enricher.Enrich(ctx, b.root, entries, enricher.Config{
		MaxConcurrency: b.cfg.MaxConcurrency,
		Stats:          b.cfg.Stats,
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		b.report(res, newDiagnostic(SeverityError, "Failed processing embedded dependencies", err))
	}

	res.Document = inventory.NewDocument(records)
	content, err := inventory.Marshal(res.Document)
	if err != nil {
		res.Status = StatusFailed
		return res, err
	}
	if err := b.emit(ctx, sink, res, b.cfg.OutputFileName, content); err != nil {
		res.Status = StatusFailed
		return res, err
	}

	if b.cfg.GenerateLicenseFile {
		if err := b.emitLicenseFile(ctx, sink, res); err != nil {
			return res, err
		}
	}

	for _, format := range b.cfg.SBOMFormats {
		content, err := converter.Write(res.Document, format, b.cfg.SBOM)
		if err != nil {
			b.report(res, newDiagnostic(SeverityError, "Failed to generate "+format, err))
			continue
		}
		if err := b.emit(ctx, sink, res, converter.FileName(format), content); err != nil {
			if ctx.Err() != nil {
				return res, err
			}
			b.report(res, newDiagnostic(SeverityError, "Failed to emit "+format, err))
		}
	}

	res.Status = StatusSucceeded
	if len(res.Errors()) > 0 {
		res.Status = StatusPartiallySucceeded
	}
	return res, nil
}

func (b *Build) emitLicenseFile(ctx context.Context, sink Sink, res *Result) error {
	text, err := callSafely(func() (string, error) {
		return b.cfg.GenerateLicenseFileFunction(res.Document.EmbeddedDependencies)
	})
	if err != nil {
		d := newDiagnostic(SeverityError, "Failed to generate license file", err)
		var p *panicError
		if errors.As(err, &p) {
			d.Stack = string(p.stack)
		}
		b.report(res, d)
		return nil
	}
	if err := b.emit(ctx, sink, res, b.cfg.GeneratedLicenseFilename, []byte(text)); err != nil {
		if ctx.Err() != nil {
			return err
		}
		b.report(res, newDiagnostic(SeverityError, "Failed to emit license file", err))
	}
	return nil
}

func (b *Build) emit(ctx context.Context, sink Sink, res *Result, name string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := sink.Emit(name, content)
	b.cfg.Stats.AfterArtifactEmitted(name, len(content), err)
	if err != nil {
		return fmt.Errorf("emitting %s: %w", name, err)
	}
	res.Artifacts = append(res.Artifacts, name)
	log.Debugf("Emitted %s (%d bytes)", name, len(content))
	return nil
}

func (b *Build) report(res *Result, d Diagnostic) {
	res.Diagnostics = append(res.Diagnostics, d)
	if d.Severity == SeverityError {
		log.Errorf("%s", d.Message)
	} else {
		log.Warnf("%s", d.Message)
	}
}
