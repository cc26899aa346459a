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

package stats

import "time"

// LicenseFileResult is a string representation of the outcome of a package's
// license file lookup.
type LicenseFileResult string

const (
	// LicenseFileResultFound indicates that a license file was found and read.
	LicenseFileResultFound LicenseFileResult = "LICENSE_FILE_RESULT_FOUND"

	// LicenseFileResultNotFound indicates that the package folder contains no
	// license file.
	LicenseFileResultNotFound LicenseFileResult = "LICENSE_FILE_RESULT_NOT_FOUND"

	// LicenseFileResultError indicates that the package folder or the license
	// file couldn't be read.
	LicenseFileResultError LicenseFileResult = "LICENSE_FILE_RESULT_ERROR"
)

// EnrichStats is a struct containing stats about the enrichment of a single
// package.
type EnrichStats struct {
	Path          string
	Result        LicenseFileResult
	FileSizeBytes int64
	Runtime       time.Duration
	Error         error
}

// FinalizeStats is a struct containing stats about a finalized build.
type FinalizeStats struct {
	Packages  int
	Artifacts int
	// Errors is the number of error diagnostics reported by the build.
	Errors int
	// Cancelled is set if the build was aborted by its context.
	Cancelled bool
}
