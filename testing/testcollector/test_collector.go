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

// Package testcollector provides an implementation of stats.Collector that
// stores recorded metrics for verification in tests.
package testcollector

import (
	"slices"
	"sync"
	"time"

	"github.com/google/embeddeddeps/stats"
)

// Collector implements the stats.Collector interface and simply stores metrics
// by package key and artifact name. It's safe for concurrent use.
type Collector struct {
	stats.NoopCollector

	mu            sync.Mutex
	inodes        int
	enrichStats   map[string]*stats.EnrichStats
	artifactBytes map[string]int
	artifacts     []string
	finalizeStats *stats.FinalizeStats
}

// New returns a new test Collector with maps initialized.
func New() *Collector {
	return &Collector{
		enrichStats:   make(map[string]*stats.EnrichStats),
		artifactBytes: make(map[string]int),
	}
}

// AfterInodeVisited counts the visited inodes.
func (c *Collector) AfterInodeVisited(string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inodes++
}

// AfterPackageEnriched stores the metrics of a package's license file lookup.
func (c *Collector) AfterPackageEnriched(key string, enrichstats *stats.EnrichStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enrichStats[key] = enrichstats
}

// AfterArtifactEmitted stores the size of successfully emitted artifacts.
func (c *Collector) AfterArtifactEmitted(name string, bytes int, err error) {
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.artifacts = append(c.artifacts, name)
	c.artifactBytes[name] = bytes
}

// AfterFinalize stores the build metrics.
func (c *Collector) AfterFinalize(_ time.Duration, finalizestats *stats.FinalizeStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.finalizeStats = finalizestats
}

// InodesVisited returns the number of visited inodes.
func (c *Collector) InodesVisited() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inodes
}

// LicenseFileResult returns the license file lookup result for a given
// package key, if found. Otherwise, returns an empty string.
func (c *Collector) LicenseFileResult(key string) stats.LicenseFileResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.enrichStats[key]; ok {
		return s.Result
	}
	return ""
}

// LicenseFileSize returns the license file size recorded for a given package
// key, if found. Otherwise, returns 0.
func (c *Collector) LicenseFileSize(key string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.enrichStats[key]; ok {
		return s.FileSizeBytes
	}
	return 0
}

// Artifacts returns the names of the emitted artifacts in emission order.
func (c *Collector) Artifacts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.artifacts)
}

// ArtifactSize returns the size of an emitted artifact, or 0.
func (c *Collector) ArtifactSize(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.artifactBytes[name]
}

// FinalizeStats returns the build metrics, or nil if the build wasn't
// finalized.
func (c *Collector) FinalizeStats() *stats.FinalizeStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finalizeStats
}
