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
	"sort"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/szinit/internal/bootstrap"
	"github.com/kraklabs/szinit/internal/output"
	"github.com/kraklabs/szinit/internal/ui"
)

// runDebugDatabaseURL executes the 'debug-database-url' command. It parses
// and adapts the database URL and prints what initialize would write,
// without touching the volume.
func runDebugDatabaseURL(args []string, globals GlobalFlags) error {
	fs := flag.NewFlagSet("debug-database-url", flag.ContinueOnError)
	addConfigFlags(fs)
	format := fs.String("format", "text", "Output format: text, json or yaml")
	showPassword := fs.Bool("show-password", false, "Print the password instead of masking it")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: szinit debug-database-url [options]

Description:
  Show the parsed database URL, the connection strings each consumer gets
  and the driver files initialize would render. Nothing is written.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(stderr, `
Examples:
  szinit debug-database-url --database-url 'postgresql://u:p@db:5432/G2'
  szinit debug-database-url --format yaml --show-password
`)
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

	desc, err := bootstrap.Describe(bootstrap.Config{DatabaseURL: cfg.DatabaseURL, Root: cfg.RootDir}, *showPassword)
	if err != nil {
		return err
	}
	if f != output.FormatText {
		return output.Write(stdout, f, desc)
	}

	d := desc.Descriptor
	ui.Header("Database URL")
	rows := [][2]string{
		{"Protocol", d.Protocol.String()},
		{"Username", d.Username},
		{"Password", d.Password},
		{"Host", d.Host},
		{"Port", portText(d.Port)},
		{"Path", d.Path},
		{"Schema", d.Schema},
		{"Query", d.Query},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		fmt.Fprintf(ui.Output, "  %s %s\n", ui.Label(fmt.Sprintf("%-9s", row[0]+":")), row[1])
	}

	fmt.Fprintln(ui.Output)
	ui.Header("Targets")
	for _, t := range desc.Targets {
		if t.Value != "" {
			fmt.Fprintf(ui.Output, "  %s %s\n", ui.Label(fmt.Sprintf("%-13s", string(t.Consumer)+":")), t.Value)
			continue
		}
		fmt.Fprintf(ui.Output, "  %s %s\n", ui.Label(fmt.Sprintf("%-13s", string(t.Consumer)+":")), ui.DimText("driver template"))
	}

	paths := make([]string, 0, len(desc.DriverFiles))
	for p := range desc.DriverFiles {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		fmt.Fprintln(ui.Output)
		ui.Header(p)
		fmt.Fprint(ui.Output, desc.DriverFiles[p])
	}
	return nil
}

func portText(port int) string {
	if port == 0 {
		return ""
	}
	return fmt.Sprint(port)
}
