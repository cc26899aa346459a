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

// Package scanrunner provides the main function for building the embedded
// dependency inventory of a project with the embeddeddeps binary.
package scanrunner

import (
	"context"
	"os"

	"github.com/google/embeddeddeps/binary/cli"
	"github.com/google/embeddeddeps/build"
	scalibrfs "github.com/google/embeddeddeps/fs"
	"github.com/google/embeddeddeps/log"
	"github.com/google/embeddeddeps/modulewalk"
)

// RunScan builds the inventory of the project at flags.Root and writes the
// artifacts to the output directory. It returns the exit code passed to
// os.Exit() in the main binary: 0 if the inventory document was written, even
// with reported errors, and 1 otherwise.
func RunScan(ctx context.Context, flags *cli.Flags) int {
	if flags.Verbose {
		log.SetLogger(log.NewDefaultLogger(os.Stderr, true))
	}

	cfg, err := flags.BuildConfig()
	if err != nil {
		log.Errorf("%v.BuildConfig(): %v", flags.Root, err)
		return 1
	}
	walkCfg, err := flags.WalkConfig(cfg)
	if err != nil {
		log.Errorf("%v.WalkConfig(): %v", flags.Root, err)
		return 1
	}

	b, err := build.New(cfg, scalibrfs.RealFSScanRoot(flags.Root))
	if err != nil {
		log.Errorf("Failed to start build: %v", err)
		return 1
	}
	log.Infof("Scan root: %s", b.Root().Path)
	if err := modulewalk.Walk(ctx, b.Root(), walkCfg, b.Observe); err != nil {
		log.Errorf("Failed to walk %s: %v", b.Root().Path, err)
		return 1
	}

	outDir := flags.OutputDir()
	result, err := b.Finalize(ctx, &build.DirSink{Dir: outDir})
	if err != nil {
		log.Errorf("Failed to write embedded dependencies to %s: %v", outDir, err)
		return 1
	}

	log.Infof("Build status: %v", result.Status)
	log.Infof("Found %d embedded dependencies, wrote %v to %s",
		len(result.Document.EmbeddedDependencies), result.Artifacts, outDir)
	for _, d := range result.Diagnostics {
		if d.Stack != "" {
			log.Debugf("%s", d.Stack)
		}
	}
	if result.Status == build.StatusPartiallySucceeded {
		log.Warnf("Build finished with %d errors", len(result.Errors()))
	}
	return 0
}
