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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/szinit/internal/dbwait"
	"github.com/kraklabs/szinit/internal/output"
	"github.com/kraklabs/szinit/internal/ui"
	"github.com/kraklabs/szinit/pkg/dburl"
)

// waitResult is the JSON form of a successful wait.
type waitResult struct {
	Database string `json:"database"`
	dbwait.Result
}

// runWaitForDatabase executes the 'wait-for-database' command. It pings the
// database until it accepts connections or the timeout expires, so a
// container can start initialize only once the database is up.
func runWaitForDatabase(args []string, globals GlobalFlags) error {
	fs := flag.NewFlagSet("wait-for-database", flag.ContinueOnError)
	addConfigFlags(fs)
	timeout := fs.Duration("timeout", 5*time.Minute, "Give up after this long (0 waits forever)")
	interval := fs.Duration("interval", 2*time.Second, "Time between attempts")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: szinit wait-for-database [options]

Description:
  Connect to the database named by the database URL until it answers.
  Supported for sqlite3, mysql and postgresql. SQLite files are opened
  read-only below the root directory.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(stderr, `
Examples:
  szinit wait-for-database --timeout 2m
  szinit wait-for-database --database-url mysql://u:p@mysql:3306/G2 --interval 5s
`)
	}

	if err := parseFlags(fs, args); err != nil {
		return err
	}

	cfg, logger, err := setup(fs, globals)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	d, err := dburl.Parse(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	spinner := NewSpinner(NewProgressConfig(globals), "Waiting for "+d.Redacted())
	res, err := dbwait.Wait(ctx, d, dbwait.Options{
		Timeout:  *timeout,
		Interval: *interval,
		Root:     cfg.RootDir,
		Logger:   logger.Logger,
		OnRetry: func(int, error) {
			if spinner != nil {
				_ = spinner.Add(1)
			}
		},
	})
	if spinner != nil {
		_ = spinner.Finish()
	}
	if err != nil {
		return err
	}

	if globals.JSON {
		return output.JSONTo(stdout, waitResult{Database: d.Redacted(), Result: res})
	}
	if !globals.Quiet {
		ui.Successf("Database %s is ready after %s (%s)",
			d.Redacted(),
			humanize.Comma(int64(res.Attempts))+" attempt(s)",
			res.Elapsed.Round(time.Millisecond))
	}
	return nil
}
