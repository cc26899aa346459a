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

// Package modulewalk walks a project directory and reports every installed
// package as a module resolution event, serving as the event source of a build
// when no bundler drives it.
package modulewalk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/gobwas/glob"
	"github.com/google/embeddeddeps/descriptor"
	"github.com/google/embeddeddeps/discovery"
	scalibrfs "github.com/google/embeddeddeps/fs"
	"github.com/google/embeddeddeps/log"
	"github.com/google/embeddeddeps/stats"
)

// Config for Walk.
type Config struct {
	// StorageSegment is the directory name of dependency storage areas.
	// Defaults to discovery.DefaultStorageSegment.
	StorageSegment string
	// Optional: directories whose slash-separated path relative to the root
	// matches the glob are skipped.
	SkipDirGlob glob.Glob
	// Optional: the walk fails once more than MaxInodes files and
	// directories were visited.
	MaxInodes int
	// ErrorOnFSErrors makes the walk fail on FS errors instead of logging them.
	ErrorOnFSErrors bool
	// Optional: notified of every visited inode.
	Stats stats.Collector
}

// Directories inside storage areas that never contain packages.
var storageMetadataDirs = map[string]bool{
	".bin":   true,
	".cache": true,
}

type walkContext struct {
	//nolint:containedctx
	ctx     context.Context
	root    *scalibrfs.ScanRoot
	segment string
	cfg     Config
	stats   stats.Collector
	fn      func(discovery.ModuleEvent)

	inodesVisited int
	packagesFound int
}

// Walk visits the scan root and calls fn once for the project's own manifest
// and once per package installed below a storage area, i.e. for every
// package.json at node_modules/<name> or node_modules/@scope/<name>. Events are
// delivered serially in lexical path order. Manifests that can't be parsed are
// skipped.
func Walk(ctx context.Context, root *scalibrfs.ScanRoot, cfg Config, fn func(discovery.ModuleEvent)) error {
	if root == nil || root.FS == nil {
		return errors.New("no scan root specified")
	}
	wc := &walkContext{
		ctx:     ctx,
		root:    root,
		segment: cfg.StorageSegment,
		cfg:     cfg,
		stats:   cfg.Stats,
		fn:      fn,
	}
	if wc.stats == nil {
		wc.stats = stats.NoopCollector{}
	}
	if wc.segment == "" {
		wc.segment = discovery.DefaultStorageSegment
	}
	if err := fs.WalkDir(root.FS, ".", wc.handleFile); err != nil {
		return err
	}
	log.Infof("Found %d package manifests in %d visited inodes", wc.packagesFound, wc.inodesVisited)
	return nil
}

func (wc *walkContext) handleFile(p string, d fs.DirEntry, fserr error) error {
	wc.inodesVisited++
	if wc.cfg.MaxInodes > 0 && wc.inodesVisited > wc.cfg.MaxInodes {
		return fmt.Errorf("maxInodes (%d) exceeded", wc.cfg.MaxInodes)
	}
	wc.stats.AfterInodeVisited(p)
	if err := wc.ctx.Err(); err != nil {
		return err
	}
	if fserr != nil {
		if wc.cfg.ErrorOnFSErrors {
			return fmt.Errorf("handleFile(%q) fserr: %w", p, fserr)
		}
		if os.IsPermission(fserr) {
			log.Debugf("fserr (permission error): %v", fserr)
		} else {
			log.Errorf("fserr (non-permission error): %v", fserr)
		}
		if d != nil && d.IsDir() {
			return fs.SkipDir
		}
		return nil
	}

	if d.IsDir() {
		if wc.shouldSkipDir(p) {
			return fs.SkipDir
		}
		return nil
	}
	if d.Name() != descriptor.ManifestName || !d.Type().IsRegular() {
		return nil
	}
	dir := path.Dir(p)
	if dir != "." && !wc.isPackageRoot(dir) {
		return nil
	}
	wc.handleManifest(p, dir)
	return nil
}

func (wc *walkContext) handleManifest(p, dir string) {
	f, err := wc.root.FS.Open(p)
	if err != nil {
		log.Debugf("opening %s: %v", p, err)
		return
	}
	defer f.Close()

	pkg, err := descriptor.Parse(f)
	if err != nil {
		log.Debugf("skipping %s: %v", p, err)
		return
	}
	wc.packagesFound++
	wc.fn(discovery.ModuleEvent{
		Descriptor:     pkg,
		DescriptorRoot: wc.root.HostPath(dir),
		RelativePath:   descriptor.ManifestName,
	})
}

func (wc *walkContext) shouldSkipDir(p string) bool {
	if p == "." {
		return false
	}
	if storageMetadataDirs[path.Base(p)] && path.Base(path.Dir(p)) == wc.segment {
		return true
	}
	if wc.cfg.SkipDirGlob != nil {
		return wc.cfg.SkipDirGlob.Match(p)
	}
	return false
}

// isPackageRoot reports whether dir is the folder of an installed package.
func (wc *walkContext) isPackageRoot(dir string) bool {
	parts := strings.Split(dir, "/")
	n := len(parts)
	if n >= 2 && parts[n-2] == wc.segment {
		return !strings.HasPrefix(parts[n-1], "@")
	}
	return n >= 3 && parts[n-3] == wc.segment && strings.HasPrefix(parts[n-2], "@")
}
