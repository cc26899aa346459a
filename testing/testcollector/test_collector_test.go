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

package testcollector_test

import (
	"errors"
	"testing"

	"github.com/google/embeddeddeps/stats"
	"github.com/google/embeddeddeps/testing/testcollector"
	"github.com/google/go-cmp/cmp"
)

func TestCollector(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		enrichStats *stats.EnrichStats
	}{
		{
			name: "license file found",
			key:  "foo@1.0.0",
			enrichStats: &stats.EnrichStats{
				Path:          "node_modules/foo/LICENSE",
				Result:        stats.LicenseFileResultFound,
				FileSizeBytes: 1000,
			},
		},
		{
			name: "read error",
			key:  "bar@2.0.0",
			enrichStats: &stats.EnrichStats{
				Path:   "node_modules/bar",
				Result: stats.LicenseFileResultError,
				Error:  errors.New("permission denied"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := testcollector.New()
			collector.AfterPackageEnriched(tt.key, tt.enrichStats)

			if got := collector.LicenseFileResult(tt.key); got != tt.enrichStats.Result {
				t.Errorf("LicenseFileResult(%s) = %v, want %v", tt.key, got, tt.enrichStats.Result)
			}
			if got := collector.LicenseFileSize(tt.key); got != tt.enrichStats.FileSizeBytes {
				t.Errorf("LicenseFileSize(%s) = %v, want %v", tt.key, got, tt.enrichStats.FileSizeBytes)
			}
			if got := collector.LicenseFileResult("unknown@0.0.0"); got != "" {
				t.Errorf("LicenseFileResult(unknown) = %v, want empty", got)
			}
		})
	}
}

func TestCollector_Artifacts(t *testing.T) {
	collector := testcollector.New()
	collector.AfterInodeVisited("a")
	collector.AfterInodeVisited("b")
	collector.AfterArtifactEmitted("deps.json", 42, nil)
	collector.AfterArtifactEmitted("NOTICES.html", 0, errors.New("disk full"))

	if got := collector.InodesVisited(); got != 2 {
		t.Errorf("InodesVisited() = %d, want 2", got)
	}
	if diff := cmp.Diff([]string{"deps.json"}, collector.Artifacts()); diff != "" {
		t.Errorf("Artifacts() diff (-want +got):\n%s", diff)
	}
	if got := collector.ArtifactSize("deps.json"); got != 42 {
		t.Errorf("ArtifactSize(deps.json) = %d, want 42", got)
	}
	if collector.FinalizeStats() != nil {
		t.Error("FinalizeStats() before AfterFinalize = non-nil, want nil")
	}
}
