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

// Package fs provides the filesystem abstraction used by the inventory
// pipeline and related helper functions.
package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned when a host path can't be expressed relative to
// the scan root.
var ErrOutsideRoot = errors.New("path is outside of the scan root")

// FS is a filesystem interface that allows the opening of files, reading of
// directories, and performing stat on files.
type FS interface {
	fs.FS
	fs.ReadDirFS
	fs.StatFS
}

// ScanRoot defines the project directory a build is run against.
type ScanRoot struct {
	// A virtual filesystem for file access, rooted at the scan root.
	FS FS
	// The absolute host path of the scan root. Package folder paths handed
	// around by the pipeline are absolute paths below it.
	Path string
}

// WithAbsolutePath returns a copy of the ScanRoot with the Path
// set an absolute path.
func (r *ScanRoot) WithAbsolutePath() (*ScanRoot, error) {
	absroot, err := filepath.Abs(r.Path)
	if err != nil {
		return nil, err
	}
	return &ScanRoot{FS: r.FS, Path: absroot}, nil
}

// HostPath converts a slash-separated FS path into a host path below the root.
func (r *ScanRoot) HostPath(fsPath string) string {
	if fsPath == "." || fsPath == "" {
		return r.Path
	}
	return filepath.Join(r.Path, filepath.FromSlash(fsPath))
}

// FSPath converts an absolute host path below the root into a path usable
// with r.FS.
func (r *ScanRoot) FSPath(hostPath string) (string, error) {
	rel, err := filepath.Rel(r.Path, hostPath)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrOutsideRoot, hostPath, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, hostPath)
	}
	return path.Clean(rel), nil
}

// DirFS returns an FS implementation that accesses the real filesystem at the given root.
func DirFS(root string) FS {
	return os.DirFS(root).(FS)
}

// RealFSScanRoot returns a ScanRoot for the given root path on the real
// filesystem.
func RealFSScanRoot(path string) *ScanRoot {
	return &ScanRoot{FS: DirFS(path), Path: path}
}

// ListFiles returns the names of the regular, non-directory entries directly
// inside dir, in the order the FS reports them (sorted by filename for
// fs.ReadDir implementations).
func ListFiles(fsys FS, dir string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
