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

// Package main implements the szinit CLI, which prepares an engine volume
// from a single database connection string.
//
// Usage:
//
//	szinit initialize                  Render configuration and mark the volume
//	szinit status [--json]             Show the sentinel and managed files
//	szinit debug-database-url          Show how a URL would be rendered
//	szinit wait-for-database           Block until the database answers
package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/szinit/internal/config"
	"github.com/kraklabs/szinit/internal/errors"
	"github.com/kraklabs/szinit/internal/ui"
)

// Version information (set via ldflags during build)
var (
	version = "dev"     // Version string
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// stdout receives command results. Tests replace it.
var stdout io.Writer = os.Stdout

// stderr receives usage text and logs.
var stderr io.Writer = os.Stderr

// errHelp is returned when a command printed its usage on request.
var errHelp = flag.ErrHelp

// GlobalFlags are accepted before the command name.
type GlobalFlags struct {
	ConfigFile string
	EnvFile    string
	JSON       bool
	Quiet      bool
	NoColor    bool
}

func main() {
	globals, err := run(os.Args[1:])
	errors.FatalError(err, globals.JSON)
}

// run parses global flags and dispatches to a command handler.
//
// With no command, SENZING_SUBCOMMAND names the command to run so the binary
// can be used as a container entrypoint without arguments.
func run(args []string) (GlobalFlags, error) {
	var globals GlobalFlags

	fs := flag.NewFlagSet("szinit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	showVersion := fs.Bool("version", false, "Show version and exit")
	fs.StringVar(&globals.ConfigFile, "config", "", "Path to a YAML configuration file")
	fs.StringVar(&globals.EnvFile, "env-file", "", "Path to a .env file (default: ./.env if present)")
	fs.BoolVar(&globals.JSON, "json", false, "Output results and errors as JSON")
	fs.BoolVarP(&globals.Quiet, "quiet", "q", false, "Only print warnings and errors")
	fs.BoolVar(&globals.NoColor, "no-color", false, "Disable colored output")
	fs.Usage = func() {
		fmt.Fprintf(stderr, `szinit - engine volume initializer

szinit turns one database connection string into the engine configuration
files of a mounted volume. It runs once per volume: a sentinel file records
success and later runs exit immediately.

Usage:
  szinit [global options] <command> [options]

Commands:
  initialize          Render configuration files and record completion
  status              Show the sentinel and the managed files
  debug-database-url  Show how a connection string would be rendered
  wait-for-database   Wait until the database accepts connections
  version             Show version information
  completion          Generate shell completion script (bash|zsh)

Global Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(stderr, `
Environment Variables:
  SENZING_DATABASE_URL            Connection string (default: %s)
  SENZING_ROOT_DIR                Directory prepended to managed paths (default: /)
  SENZING_DEBUG                   Enable debug logging
  SENZING_DELAY_IN_SECONDS        Sleep before initializing
  SENZING_LICENSE_BASE64_ENCODED  License written to etc/opt/senzing/g2.lic
  SENZING_SUBCOMMAND              Command to run when none is given

Examples:
  szinit initialize
  szinit initialize --database-url postgresql://postgres:postgres@db:5432/G2
  szinit --json status
  szinit debug-database-url --format yaml --database-url mysql://u:p@db/G2
  szinit wait-for-database --timeout 2m

For detailed command help: szinit <command> --help
`, config.DefaultDatabaseURL)
	}

	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return globals, nil
		}
		return globals, errors.NewInputError("Invalid option", err.Error(), "Run 'szinit --help' for usage", err)
	}

	if globals.JSON {
		globals.Quiet = true
	}
	ui.InitColors(globals.NoColor)

	if *showVersion {
		return globals, runVersion(nil, globals)
	}

	rest := fs.Args()
	command := os.Getenv("SENZING_SUBCOMMAND")
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}
	if command == "" {
		fs.Usage()
		return globals, errors.NewInputError("No command given", "", "Run 'szinit initialize' or see 'szinit --help'", nil)
	}

	var err error
	switch command {
	case "initialize":
		err = runInitialize(rest, globals)
	case "status":
		err = runStatus(rest, globals)
	case "debug-database-url":
		err = runDebugDatabaseURL(rest, globals)
	case "wait-for-database":
		err = runWaitForDatabase(rest, globals)
	case "version":
		err = runVersion(rest, globals)
	case "completion":
		err = runCompletion(rest, globals)
	default:
		fs.Usage()
		err = errors.NewInputError(
			fmt.Sprintf("Unknown command: %s", command),
			"",
			"Run 'szinit --help' to list commands",
			nil,
		)
	}
	if stderrors.Is(err, errHelp) {
		return globals, nil
	}
	return globals, classify(err)
}

// parseFlags parses a command FlagSet. errHelp means usage was printed.
func parseFlags(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return errors.NewInputError("Invalid option", err.Error(), fmt.Sprintf("Run 'szinit %s --help' for usage", fs.Name()), err)
	}
	if fs.NArg() > 0 {
		return errors.NewInputError(
			fmt.Sprintf("Unexpected argument: %s", fs.Arg(0)),
			"",
			fmt.Sprintf("Run 'szinit %s --help' for usage", fs.Name()),
			nil,
		)
	}
	return nil
}
