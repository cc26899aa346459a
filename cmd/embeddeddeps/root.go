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

package main

import (
	"github.com/google/embeddeddeps/binary/cli"
	"github.com/google/embeddeddeps/binary/scanrunner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// flagAliases maps the camel-case option names of the bundler plugin config
// to the CLI flags.
var flagAliases = map[string]string{
	"outputFileName":           "output-file",
	"licenseFile":              "license-file",
	"generateLicenseFile":      "license-file",
	"generatedLicenseFilename": "license-filename",
	"licenseTemplate":          "license-template",
	"outDir":                   "out-dir",
	"maxConcurrency":           "max-concurrency",
	"skipDirGlob":              "skip-dir-glob",
}

func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if alias, ok := flagAliases[name]; ok {
		name = alias
	}
	return pflag.NormalizedName(name)
}

// newRootCmd creates the embeddeddeps command tree. The exit code of a scan is
// stored in exitCode.
func newRootCmd(exitCode *int) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "embeddeddeps",
		Short: "Inventory the third-party packages embedded in a JavaScript build",
		Long: `embeddeddeps lists the third-party packages installed below node_modules,
reads their license files and writes a sorted JSON inventory, optionally
together with a license notices document and SBOMs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable this to print debug logs")
	rootCmd.AddCommand(newScanCmd(exitCode))
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)
	return rootCmd
}

func newScanCmd(exitCode *int) *cobra.Command {
	var (
		flags       cli.Flags
		licenseFile bool
	)
	cmd := &cobra.Command{
		Use:     "scan",
		Aliases: []string{"inventory", "inv"},
		Short:   "Build the embedded-dependency inventory of a project",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("license-file") {
				flags.LicenseFile = &licenseFile
			}
			flags.Verbose, _ = cmd.Flags().GetBool("verbose")
			if err := cli.ValidateFlags(&flags); err != nil {
				return err
			}
			*exitCode = scanrunner.RunScan(cmd.Context(), &flags)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.Root, "root", ".", "The project directory whose node_modules tree is inventoried")
	f.StringVar(&flags.OutDir, "out-dir", "", "The directory the artifacts are written to. Defaults to --root")
	f.StringVarP(&flags.OutputFile, "output-file", "o", "", "The file name of the JSON inventory (default embedded-dependencies.json)")
	f.BoolVar(&licenseFile, "license-file", false, "Also write a license notices document")
	f.StringVar(&flags.LicenseFilename, "license-filename", "", "The file name of the license notices document, must end in .html, .md or .txt (default THIRD-PARTY-NOTICES.html)")
	f.StringVar(&flags.LicenseTemplate, "license-template", "", "A text/template file rendering the license notices document from the package records")
	f.StringVar(&flags.ConfigFile, "config", "", "The config file to use. Defaults to embeddeddeps.config.{json,jsonc,yaml,yml,toml} in --root")
	f.StringSliceVar(&flags.Include, "include", nil, "Only inventory packages whose name matches one of these globs")
	f.StringSliceVar(&flags.Exclude, "exclude", nil, "Don't inventory packages whose name matches one of these globs")
	f.StringVar(&flags.SkipDirGlob, "skip-dir-glob", "", "If the glob matches a directory path relative to --root, it will be skipped")
	f.IntVar(&flags.MaxConcurrency, "max-concurrency", 0, "The number of package folders read concurrently (default 16)")
	f.StringArrayVar(&flags.SBOM, "sbom", nil, "Additional SBOM artifacts to write, e.g. --sbom spdx23-json --sbom cdx-xml")
	f.StringVar(&flags.SPDXDocumentName, "spdx-document-name", "", "The 'name' field for the output SPDX document")
	f.StringVar(&flags.SPDXDocumentNamespace, "spdx-document-namespace", "", "The 'documentNamespace' field for the output SPDX document")
	f.StringVar(&flags.SPDXCreators, "spdx-creators", "", "The 'creators' field for the output SPDX document. Format is --spdx-creators=creatortype1:creator1,creatortype2:creator2")
	f.StringVar(&flags.CDXComponentName, "cdx-component-name", "", "The 'metadata.component.name' field for the output CDX document")
	f.StringVar(&flags.CDXComponentVersion, "cdx-component-version", "", "The 'metadata.component.version' field for the output CDX document")
	f.StringVar(&flags.CDXAuthors, "cdx-authors", "", "The 'authors' field for the output CDX document. Format is --cdx-authors=author1,author2")
	return cmd
}
