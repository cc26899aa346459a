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

// Package enricher turns the third-party packages retained during discovery
// into package records by reading their license files.
package enricher

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sync"
	"time"

	"github.com/google/embeddeddeps/discovery"
	scalibrfs "github.com/google/embeddeddeps/fs"
	"github.com/google/embeddeddeps/inventory"
	"github.com/google/embeddeddeps/log"
	"github.com/google/embeddeddeps/stats"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrency is the default number of packages processed at once.
const DefaultMaxConcurrency = 16

// Config for the enrichment stage.
type Config struct {
	// MaxConcurrency bounds the number of packages whose folders are read
	// concurrently. Values <= 0 select DefaultMaxConcurrency.
	MaxConcurrency int
	// Stats is notified once per package. Defaults to stats.NoopCollector.
	Stats stats.Collector
}

// Enrich builds one record per entry. Entries are processed concurrently and
// the records are returned in entry order.
//
// A package whose folder can't be listed or whose license file can't be read
// still gets a record built from its descriptor alone; the failure is returned
// as part of the combined error, next to the records. Cancelling ctx aborts the
// whole batch: no records are returned, only the context error.
func Enrich(ctx context.Context, root *scalibrfs.ScanRoot, entries []*discovery.Entry, cfg Config) ([]*inventory.Record, error) {
	limit := cfg.MaxConcurrency
	if limit <= 0 {
		limit = DefaultMaxConcurrency
	}
	collector := cfg.Stats
	if collector == nil {
		collector = stats.NoopCollector{}
	}

	records := make([]*inventory.Record, len(entries))
	var (
		mu       sync.Mutex
		entryErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, e := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			rec, es, err := enrichEntry(root, e)
			es.Runtime = time.Since(start)
			es.Error = err
			collector.AfterPackageEnriched(e.Key, es)
			records[i] = rec
			if err != nil {
				log.Warnf("embedded dependency %s: %v", e.Key, err)
				mu.Lock()
				entryErr = multierr.Append(entryErr, fmt.Errorf("%s: %w", e.Key, err))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, entryErr
}

// enrichEntry always returns a record. The error reports why the license file
// couldn't be used.
func enrichEntry(root *scalibrfs.ScanRoot, e *discovery.Entry) (*inventory.Record, *stats.EnrichStats, error) {
	rec := &inventory.Record{
		Name:      e.Descriptor.Name,
		Version:   e.Descriptor.Version,
		License:   e.Descriptor.License(),
		Copyright: e.Descriptor.AuthorString(),
	}
	es := &stats.EnrichStats{Path: e.PackageFolderPath, Result: stats.LicenseFileResultError}

	dir, err := root.FSPath(e.PackageFolderPath)
	if err != nil {
		return rec, es, err
	}
	names, err := scalibrfs.ListFiles(root.FS, dir)
	if err != nil {
		return rec, es, fmt.Errorf("listing package folder: %w", err)
	}
	name, ok := FindLicenseFile(names)
	if !ok {
		log.Debugf("no license file found for %s in %s", e.Key, e.PackageFolderPath)
		es.Result = stats.LicenseFileResultNotFound
		return rec, es, nil
	}
	es.Path = root.HostPath(path.Join(dir, name))
	content, err := fs.ReadFile(root.FS, path.Join(dir, name))
	if err != nil {
		return rec, es, fmt.Errorf("reading license file: %w", err)
	}
	es.Result = stats.LicenseFileResultFound
	es.FileSizeBytes = int64(len(content))
	rec.LicenseSource = string(content)
	if c := ExtractCopyright(rec.LicenseSource); c != "" {
		rec.Copyright = c
	}
	return rec, es, nil
}
