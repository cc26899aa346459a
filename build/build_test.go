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

package build_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/embeddeddeps/build"
	"github.com/google/embeddeddeps/descriptor"
	"github.com/google/embeddeddeps/discovery"
	scalibrfs "github.com/google/embeddeddeps/fs"
	"github.com/google/embeddeddeps/inventory"
	"github.com/google/embeddeddeps/notice"
	"github.com/google/embeddeddeps/stats"
	"github.com/google/embeddeddeps/testing/fakefs"
	"github.com/google/embeddeddeps/testing/testcollector"
	"github.com/google/go-cmp/cmp"
)

var projectRoot = filepath.FromSlash("/project")

type fixture struct {
	fs     *fakefs.FakeFS
	root   *scalibrfs.ScanRoot
	events []discovery.ModuleEvent
}

// newFixture builds a project with the given packages. Keys of manifests are
// folder paths relative to the project root.
func newFixture(t *testing.T, manifests map[string]string, files map[string]string) *fixture {
	t.Helper()
	all := map[string]string{}
	for k, v := range files {
		all[k] = v
	}
	f := &fixture{}
	for dir, m := range manifests {
		manifest := path.Join(dir, "package.json")
		all[manifest] = m
		p, err := descriptor.ParseBytes([]byte(m))
		if err != nil {
			t.Fatalf("ParseBytes(%q): %v", m, err)
		}
		f.events = append(f.events, discovery.ModuleEvent{
			Descriptor:     p,
			DescriptorRoot: filepath.Join(projectRoot, filepath.FromSlash(dir)),
			RelativePath:   "index.js",
		})
	}
	f.fs = fakefs.New(all)
	f.root = &scalibrfs.ScanRoot{FS: f.fs, Path: projectRoot}
	return f
}

func (f *fixture) run(t *testing.T, ctx context.Context, cfg build.Config) (*build.Result, *build.MemorySink, error) {
	t.Helper()
	b, err := build.New(cfg, f.root)
	if err != nil {
		t.Fatalf("build.New(): %v", err)
	}
	for _, ev := range f.events {
		b.Observe(ev)
	}
	sink := &build.MemorySink{}
	res, err := b.Finalize(ctx, sink)
	return res, sink, err
}

func readDoc(t *testing.T, sink *build.MemorySink, name string) *inventory.Document {
	t.Helper()
	b, ok := sink.Get(name)
	if !ok {
		t.Fatalf("artifact %s not emitted, got %v", name, sink.Names())
	}
	doc, err := inventory.Unmarshal(b)
	if err != nil {
		t.Fatalf("inventory.Unmarshal(): %v", err)
	}
	return doc
}

func TestFinalize(t *testing.T) {
	f := newFixture(t,
		map[string]string{
			"node_modules/foo":  `{"name": "foo", "version": "1.0.0", "license": "MIT", "author": "Jane Doe"}`,
			"node_modules/acme": `{"name": "acme", "version": "2.0.0", "licenses": [{"type": "MIT"}, {"type": "Apache-2.0"}]}`,
			".":                 `{"name": "my-app", "version": "0.0.0"}`,
		},
		map[string]string{
			"node_modules/acme/LICENSE": "Copyright (c) 2020 Acme Corp\nMIT License text...",
		},
	)

	res, sink, err := f.run(t, t.Context(), build.DefaultConfig())
	if err != nil {
		t.Fatalf("Finalize(): %v", err)
	}
	if res.Status != build.StatusSucceeded {
		t.Errorf("Finalize() status = %v, want %v (diagnostics %v)", res.Status, build.StatusSucceeded, res.Diagnostics)
	}
	if diff := cmp.Diff([]string{inventory.DefaultFileName}, sink.Names()); diff != "" {
		t.Errorf("emitted artifacts diff (-want +got):\n%s", diff)
	}

	want := &inventory.Document{EmbeddedDependencies: []*inventory.Record{
		{
			Name:          "acme",
			Version:       "2.0.0",
			License:       "(MIT OR Apache-2.0)",
			LicenseSource: "Copyright (c) 2020 Acme Corp\nMIT License text...",
			Copyright:     "Copyright (c) 2020 Acme Corp",
		},
		{Name: "foo", Version: "1.0.0", License: "MIT", Copyright: "Jane Doe"},
	}}
	if diff := cmp.Diff(want, readDoc(t, sink, inventory.DefaultFileName)); diff != "" {
		t.Errorf("inventory document diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, res.Document); diff != "" {
		t.Errorf("Result.Document diff (-want +got):\n%s", diff)
	}
}

func TestFinalizeEmptyBuild(t *testing.T) {
	f := newFixture(t, nil, nil)
	_, sink, err := f.run(t, t.Context(), build.DefaultConfig())
	if err != nil {
		t.Fatalf("Finalize(): %v", err)
	}
	if doc := readDoc(t, sink, inventory.DefaultFileName); len(doc.EmbeddedDependencies) != 0 {
		t.Errorf("inventory document = %v, want no packages", doc.EmbeddedDependencies)
	}
}

func TestFinalizeLicenseFile(t *testing.T) {
	f := newFixture(t,
		map[string]string{"node_modules/foo": `{"name": "foo", "version": "1.0.0", "author": "Jane Doe"}`},
		nil,
	)
	cfg := build.DefaultConfig()
	cfg.GenerateLicenseFile = true
	cfg.GeneratedLicenseFilename = "NOTICES.md"
	cfg.GenerateLicenseFileFunction = func(records []*inventory.Record) (string, error) {
		var sb strings.Builder
		for _, r := range records {
			fmt.Fprintf(&sb, "%s %s: %s\n", r.Name, r.Version, notice.Text(r))
		}
		return sb.String(), nil
	}

	res, sink, err := f.run(t, t.Context(), cfg)
	if err != nil {
		t.Fatalf("Finalize(): %v", err)
	}
	if diff := cmp.Diff([]string{inventory.DefaultFileName, "NOTICES.md"}, res.Artifacts); diff != "" {
		t.Errorf("Result.Artifacts diff (-want +got):\n%s", diff)
	}
	got, _ := sink.Get("NOTICES.md")
	if string(got) != "foo 1.0.0: Jane Doe\n" {
		t.Errorf("license document = %q", got)
	}
}

func TestFinalizeDefaultLicenseFile(t *testing.T) {
	f := newFixture(t,
		map[string]string{"node_modules/foo": `{"name": "foo", "version": "1.0.0"}`},
		nil,
	)
	cfg := build.DefaultConfig()
	cfg.GenerateLicenseFile = true

	_, sink, err := f.run(t, t.Context(), cfg)
	if err != nil {
		t.Fatalf("Finalize(): %v", err)
	}
	got, ok := sink.Get(notice.DefaultFileName)
	if !ok {
		t.Fatalf("%s not emitted, got %v", notice.DefaultFileName, sink.Names())
	}
	if !strings.Contains(string(got), notice.Placeholder) {
		t.Errorf("license document %q doesn't contain the placeholder", got)
	}
}

func TestFinalizeTemplateFailure(t *testing.T) {
	tests := []struct {
		desc      string
		fn        notice.Func
		wantMsg   string
		wantStack bool
	}{
		{
			desc:    "error",
			fn:      func([]*inventory.Record) (string, error) { return "", errors.New("bad template") },
			wantMsg: "bad template",
		},
		{
			desc:      "panic_with_error",
			fn:        func([]*inventory.Record) (string, error) { panic(errors.New("bad template")) },
			wantMsg:   "bad template",
			wantStack: true,
		},
		{
			desc:      "panic_with_other_value",
			fn:        func([]*inventory.Record) (string, error) { panic(struct{ Code int }{42}) },
			wantMsg:   "{42}",
			wantStack: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			f := newFixture(t,
				map[string]string{"node_modules/foo": `{"name": "foo", "version": "1.0.0"}`},
				nil,
			)
			cfg := build.DefaultConfig()
			cfg.GenerateLicenseFile = true
			cfg.GenerateLicenseFileFunction = tc.fn

			res, sink, err := f.run(t, t.Context(), cfg)
			if err != nil {
				t.Fatalf("Finalize(): %v", err)
			}
			if diff := cmp.Diff([]string{inventory.DefaultFileName}, sink.Names()); diff != "" {
				t.Errorf("emitted artifacts diff (-want +got):\n%s", diff)
			}
			if res.Status != build.StatusPartiallySucceeded {
				t.Errorf("Finalize() status = %v, want %v", res.Status, build.StatusPartiallySucceeded)
			}
			errs := res.Errors()
			if len(errs) != 1 {
				t.Fatalf("Finalize() error diagnostics = %v, want exactly one", errs)
			}
			msg := errs[0].Message
			for _, want := range []string{build.Tag, "Failed to generate license file", tc.wantMsg} {
				if !strings.Contains(msg, want) {
					t.Errorf("diagnostic %q doesn't contain %q", msg, want)
				}
			}
			if gotStack := errs[0].Stack != ""; gotStack != tc.wantStack {
				t.Errorf("diagnostic has stack = %v, want %v", gotStack, tc.wantStack)
			}
		})
	}
}

func TestFinalizeEnrichmentFailure(t *testing.T) {
	f := newFixture(t,
		map[string]string{
			"node_modules/ok":     `{"name": "ok", "version": "1.0.0", "license": "MIT"}`,
			"node_modules/locked": `{"name": "locked", "version": "1.0.0", "license": "ISC"}`,
		},
		map[string]string{"node_modules/ok/LICENSE": "Copyright 2024 OK"},
	)
	f.fs.ReadDirErrs = map[string]error{"node_modules/locked": errors.New("permission denied")}

	res, sink, err := f.run(t, t.Context(), build.DefaultConfig())
	if err != nil {
		t.Fatalf("Finalize(): %v", err)
	}
	if res.Status != build.StatusPartiallySucceeded {
		t.Errorf("Finalize() status = %v, want %v", res.Status, build.StatusPartiallySucceeded)
	}
	errs := res.Errors()
	if len(errs) != 1 || !strings.Contains(errs[0].Message, "Failed processing embedded dependencies") ||
		!strings.Contains(errs[0].Message, "locked@1.0.0") || !strings.Contains(errs[0].Message, "permission denied") {
		t.Errorf("Finalize() error diagnostics = %v", errs)
	}

	want := []*inventory.Record{
		{Name: "locked", Version: "1.0.0", License: "ISC"},
		{Name: "ok", Version: "1.0.0", License: "MIT", LicenseSource: "Copyright 2024 OK", Copyright: "Copyright 2024 OK"},
	}
	if diff := cmp.Diff(want, readDoc(t, sink, inventory.DefaultFileName).EmbeddedDependencies); diff != "" {
		t.Errorf("inventory document diff (-want +got):\n%s", diff)
	}
}

func TestFinalizeCancelled(t *testing.T) {
	f := newFixture(t,
		map[string]string{"node_modules/foo": `{"name": "foo", "version": "1.0.0"}`},
		nil,
	)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	cfg := build.DefaultConfig()
	cfg.GenerateLicenseFile = true
	res, sink, err := f.run(t, ctx, cfg)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Finalize() error = %v, want %v", err, context.Canceled)
	}
	if res != nil {
		t.Errorf("Finalize() result = %+v, want nil", res)
	}
	if names := sink.Names(); len(names) != 0 {
		t.Errorf("cancelled build emitted %v", names)
	}
}

func TestFinalizeCancelledDuringEnrichment(t *testing.T) {
	manifests := map[string]string{}
	for i := range 5 {
		manifests[fmt.Sprintf("node_modules/pkg%d", i)] = fmt.Sprintf(`{"name": "pkg%d", "version": "1.0.0", "license": "MIT"}`, i)
	}
	f := newFixture(t, manifests, nil)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	f.fs.ReadDirHook = func(string) { cancel() }

	cfg := build.DefaultConfig()
	cfg.GenerateLicenseFile = true
	cfg.MaxConcurrency = 1
	res, sink, err := f.run(t, ctx, cfg)
	if !errors.Is(err, context.Canceled) || !errors.Is(err, ctx.Err()) {
		t.Errorf("Finalize() error = %v, want %v", err, ctx.Err())
	}
	if res != nil {
		t.Errorf("Finalize() result = %+v, want nil", res)
	}
	if names := sink.Names(); len(names) != 0 {
		t.Errorf("cancelled build emitted %v", names)
	}
	if calls := f.fs.ReadDirCalls(); len(calls) != 1 {
		t.Errorf("enrichment listed %v after cancellation, want only the first package", calls)
	}
}

type failingSink struct{}

func (failingSink) Emit(string, []byte) error { return errors.New("disk full") }

func TestFinalizeSinkFailure(t *testing.T) {
	f := newFixture(t, nil, nil)
	b, err := build.New(build.DefaultConfig(), f.root)
	if err != nil {
		t.Fatalf("build.New(): %v", err)
	}
	res, err := b.Finalize(t.Context(), failingSink{})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Finalize() error = %v, want disk full", err)
	}
	if res == nil || res.Status != build.StatusFailed {
		t.Errorf("Finalize() result = %+v, want status %v", res, build.StatusFailed)
	}
}

func TestFinalizeTwice(t *testing.T) {
	f := newFixture(t, nil, nil)
	b, err := build.New(build.DefaultConfig(), f.root)
	if err != nil {
		t.Fatalf("build.New(): %v", err)
	}
	if _, err := b.Finalize(t.Context(), &build.MemorySink{}); err != nil {
		t.Fatalf("first Finalize(): %v", err)
	}
	if _, err := b.Finalize(t.Context(), &build.MemorySink{}); !errors.Is(err, build.ErrFinalized) {
		t.Errorf("second Finalize() error = %v, want %v", err, build.ErrFinalized)
	}
}

func TestBuildsDoNotShareState(t *testing.T) {
	f := newFixture(t,
		map[string]string{"node_modules/foo": `{"name": "foo", "version": "1.0.0"}`},
		nil,
	)
	first, err := build.New(build.DefaultConfig(), f.root)
	if err != nil {
		t.Fatalf("build.New(): %v", err)
	}
	second, err := build.New(build.DefaultConfig(), f.root)
	if err != nil {
		t.Fatalf("build.New(): %v", err)
	}
	for _, ev := range f.events {
		first.Observe(ev)
	}
	res, err := second.Finalize(t.Context(), &build.MemorySink{})
	if err != nil {
		t.Fatalf("Finalize(): %v", err)
	}
	if n := len(res.Document.EmbeddedDependencies); n != 0 {
		t.Errorf("second build saw %d packages observed by the first one", n)
	}
}

func TestFinalizeSBOMs(t *testing.T) {
	f := newFixture(t,
		map[string]string{"node_modules/foo": `{"name": "foo", "version": "1.0.0", "license": "MIT"}`},
		nil,
	)
	cfg := build.DefaultConfig()
	cfg.SBOMFormats = []string{"spdx23-json", "cdx-json"}

	res, _, err := f.run(t, t.Context(), cfg)
	if err != nil {
		t.Fatalf("Finalize(): %v", err)
	}
	want := []string{inventory.DefaultFileName, "embedded-dependencies.spdx.json", "embedded-dependencies.cdx.json"}
	if diff := cmp.Diff(want, res.Artifacts); diff != "" {
		t.Errorf("Result.Artifacts diff (-want +got):\n%s", diff)
	}
}

func TestNewInvalidConfig(t *testing.T) {
	root := &scalibrfs.ScanRoot{FS: fakefs.New(nil), Path: projectRoot}
	tests := []struct {
		desc string
		mod  func(*build.Config)
	}{
		{desc: "license_filename_extension", mod: func(c *build.Config) { c.GeneratedLicenseFilename = "notices.json" }},
		{desc: "output_file_with_directory", mod: func(c *build.Config) { c.OutputFileName = "../out.json" }},
		{desc: "clashing_names", mod: func(c *build.Config) { c.OutputFileName = "a.txt"; c.GeneratedLicenseFilename = "a.txt" }},
		{desc: "sbom_format", mod: func(c *build.Config) { c.SBOMFormats = []string{"textproto"} }},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			cfg := build.DefaultConfig()
			tc.mod(&cfg)
			if _, err := build.New(cfg, root); err == nil {
				t.Error("build.New() error = nil, want error")
			}
		})
	}
	if _, err := build.New(build.DefaultConfig(), nil); !errors.Is(err, build.ErrNoScanRoot) {
		t.Errorf("build.New(nil root) error = %v, want %v", err, build.ErrNoScanRoot)
	}
}

func TestValidateFillsDefaults(t *testing.T) {
	var cfg build.Config
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate(): %v", err)
	}
	if cfg.OutputFileName != inventory.DefaultFileName || cfg.GeneratedLicenseFilename != notice.DefaultFileName ||
		cfg.GenerateLicenseFileFunction == nil || cfg.StorageSegment != discovery.DefaultStorageSegment || cfg.MaxConcurrency <= 0 {
		t.Errorf("Validate() left unset fields: %+v", cfg)
	}
}

func TestDirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sink := &build.DirSink{Dir: dir}
	if err := sink.Emit("a.json", []byte("first")); err != nil {
		t.Fatalf("Emit(): %v", err)
	}
	if err := sink.Emit("a.json", []byte("second")); err != nil {
		t.Fatalf("Emit(): %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "a.json"))
	if err != nil {
		t.Fatalf("ReadFile(): %v", err)
	}
	if string(got) != "second" {
		t.Errorf("a.json = %q, want %q", got, "second")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(): %v", err)
	}
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("output dir contains %v, want only a.json", names)
	}
}

func TestFinalizeReportsStats(t *testing.T) {
	f := newFixture(t,
		map[string]string{
			"node_modules/foo": `{"name": "foo", "version": "1.0.0"}`,
			"node_modules/bar": `{"name": "bar", "version": "1.0.0"}`,
		},
		map[string]string{"node_modules/bar/LICENSE": "Copyright 2024 Bar"},
	)
	collector := testcollector.New()
	cfg := build.DefaultConfig()
	cfg.GenerateLicenseFile = true
	cfg.Stats = collector

	if _, _, err := f.run(t, t.Context(), cfg); err != nil {
		t.Fatalf("Finalize(): %v", err)
	}
	if diff := cmp.Diff([]string{inventory.DefaultFileName, notice.DefaultFileName}, collector.Artifacts()); diff != "" {
		t.Errorf("emitted artifacts diff (-want +got):\n%s", diff)
	}
	if got := collector.LicenseFileResult("bar@1.0.0"); got != stats.LicenseFileResultFound {
		t.Errorf("LicenseFileResult(bar@1.0.0) = %v, want %v", got, stats.LicenseFileResultFound)
	}
	want := &stats.FinalizeStats{Packages: 2, Artifacts: 2}
	if diff := cmp.Diff(want, collector.FinalizeStats()); diff != "" {
		t.Errorf("FinalizeStats() diff (-want +got):\n%s", diff)
	}
}
