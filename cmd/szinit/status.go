// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/szinit/internal/bootstrap"
	"github.com/kraklabs/szinit/internal/errors"
	"github.com/kraklabs/szinit/internal/output"
	"github.com/kraklabs/szinit/internal/ui"
	"github.com/kraklabs/szinit/pkg/runstate"
)

// runStatus executes the 'status' command, showing whether the volume was
// initialized, the recorded runs and which managed files exist.
//
// Examples:
//
//	szinit status                 Display formatted status
//	szinit --json status          Output as JSON for scripts
//	szinit status --format yaml   Output as YAML
func runStatus(args []string, globals GlobalFlags) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	addConfigFlags(fs)
	format := fs.String("format", "text", "Output format: text, json or yaml")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: szinit status [options]

Shows the sentinel state and the files managed below the root directory.
Nothing is written.

Options:
`)
		fs.PrintDefaults()
	}

	if err := parseFlags(fs, args); err != nil {
		return err
	}
	f, err := outputFormat(*format, globals)
	if err != nil {
		return err
	}

	cfg, logger, err := setup(fs, globals)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	report, err := bootstrap.Status(bootstrap.Config{Root: cfg.RootDir})
	if err != nil {
		return err
	}
	if f != output.FormatText {
		return output.Write(stdout, f, report)
	}

	ui.Header("Volume status")
	fmt.Fprintf(ui.Output, "%s %s\n", ui.Label("Root:    "), report.Root)
	fmt.Fprintf(ui.Output, "%s %s\n", ui.Label("Sentinel:"), report.Sentinel)
	if report.State == runstate.Completed {
		fmt.Fprintf(ui.Output, "%s %s\n", ui.Label("State:   "), ui.Green.Sprint(report.State))
	} else {
		fmt.Fprintf(ui.Output, "%s %s\n", ui.Label("State:   "), ui.Yellow.Sprint(report.State))
	}
	for _, run := range report.Runs {
		fmt.Fprintf(ui.Output, "  %s %s %s\n", run.Time.Format("2006-01-02T15:04:05Z07:00"), run.Protocol, ui.DimText("("+humanize.Time(run.Time)+")"))
	}

	fmt.Fprintln(ui.Output)
	fmt.Fprintln(ui.Output, ui.Label("Files:"))
	for _, file := range report.Files {
		if !file.Exists {
			fmt.Fprintf(ui.Output, "  %s %s\n", ui.DimText("missing "), file.Path)
			continue
		}
		fmt.Fprintf(ui.Output, "  %s %s %s\n", ui.Green.Sprint("present "), file.Path, ui.DimText(file.Size))
	}
	return nil
}

// outputFormat resolves --format, with the global --json taking precedence.
func outputFormat(s string, globals GlobalFlags) (output.Format, error) {
	if globals.JSON {
		return output.FormatJSON, nil
	}
	f, err := output.ParseFormat(s)
	if err != nil {
		return "", errors.NewInputError("Invalid --format", err.Error(), "Use text, json or yaml", err)
	}
	return f, nil
}
