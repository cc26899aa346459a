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

// Package stats contains interfaces and utilities relating to the collection of
// statistics from embedded-dependency builds.
package stats

import "time"

// Collector is a component which is notified when certain events occur. It can be implemented with
// different metric backends to enable monitoring of builds.
type Collector interface {
	AfterInodeVisited(path string)

	// AfterPackageEnriched is called once per package after its license file
	// lookup. It's called concurrently from the enrichment workers.
	AfterPackageEnriched(key string, enrichstats *EnrichStats)

	// AfterArtifactEmitted is called after an artifact was handed to the sink.
	AfterArtifactEmitted(name string, bytes int, err error)

	// AfterFinalize is called when a build was finalized.
	AfterFinalize(runtime time.Duration, finalizestats *FinalizeStats)
}

// NoopCollector implements Collector by doing nothing.
type NoopCollector struct{}

// AfterInodeVisited implements Collector by doing nothing.
func (c NoopCollector) AfterInodeVisited(path string) {}

// AfterPackageEnriched implements Collector by doing nothing.
func (c NoopCollector) AfterPackageEnriched(key string, enrichstats *EnrichStats) {}

// AfterArtifactEmitted implements Collector by doing nothing.
func (c NoopCollector) AfterArtifactEmitted(name string, bytes int, err error) {}

// AfterFinalize implements Collector by doing nothing.
func (c NoopCollector) AfterFinalize(runtime time.Duration, finalizestats *FinalizeStats) {}
