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

package bootstrap

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kraklabs/szinit/internal/metrics"
	"github.com/kraklabs/szinit/pkg/adapter"
	"github.com/kraklabs/szinit/pkg/dburl"
	"github.com/kraklabs/szinit/pkg/render"
	"github.com/kraklabs/szinit/pkg/runstate"
)

// ErrInvalidLicense is returned when the license value is not base64.
var ErrInvalidLicense = errors.New("invalid base64 license")

// Config holds everything one initialization run needs.
type Config struct {
	// DatabaseURL is the raw connection string.
	DatabaseURL string

	// Root is prepended to every managed path. Defaults to "/".
	Root string

	// LicenseBase64 is an optional base64-encoded engine license.
	LicenseBase64 string

	// Clock defaults to time.Now.
	Clock func() time.Time

	// Metrics may be nil.
	Metrics *metrics.Metrics
}

func (c Config) withDefaults() Config {
	if c.Root == "" {
		c.Root = "/"
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

// Report describes one Initialize call.
type Report struct {
	RunID              string          `json:"run_id" yaml:"run_id"`
	Protocol           dburl.Protocol  `json:"protocol" yaml:"protocol"`
	Database           string          `json:"database" yaml:"database"`
	AlreadyInitialized bool            `json:"already_initialized" yaml:"already_initialized"`
	Files              []render.Result `json:"files,omitempty" yaml:"files,omitempty"`
	Warnings           []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Sentinel           string          `json:"sentinel" yaml:"sentinel"`
	StartedAt          time.Time       `json:"started_at" yaml:"started_at"`
	Elapsed            time.Duration   `json:"elapsed" yaml:"elapsed"`
}

// Changed returns the files that were written.
func (r *Report) Changed() []render.Result {
	var out []render.Result
	for _, f := range r.Files {
		if f.Changed() {
			out = append(out, f)
		}
	}
	return out
}

// Initialize renders the engine configuration for cfg.DatabaseURL below
// cfg.Root and records the run in the sentinel file.
//
// The steps run in a fixed order:
//  1. Parse the connection string
//  2. Return early when the sentinel already exists
//  3. Adapt the connection for each consumer and decode the license
//  4. Seed missing configuration files and SQLite databases, and move
//     obsolete files aside
//  5. Set the pipeline directories and drop settings the engine no longer reads
//  6. Apply the engine setting, driver files and license
//  7. Append to the sentinel
//
// Errors from steps 1 and 3 happen before any file is touched. Warnings from
// the renderer do not stop the run and are listed in the report. A run that
// fails leaves the sentinel absent, so the next invocation starts over.
func Initialize(cfg Config, logger *slog.Logger) (report *Report, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	runID := uuid.NewString()
	logger = logger.With("run_id", runID)
	started := cfg.Clock()
	tracker := runstate.NewTracker(render.New(cfg.Root).Path(SentinelPath))

	report = &Report{RunID: runID, Sentinel: tracker.Path(), StartedAt: started}
	defer func() {
		report.Elapsed = cfg.Clock().Sub(started)
		result := metrics.ResultCompleted
		switch {
		case err != nil:
			result = metrics.ResultFailed
		case report.AlreadyInitialized:
			result = metrics.ResultAlreadyInitialized
		}
		cfg.Metrics.RecordRun(result, report.Protocol.String(), report.Elapsed, cfg.Clock())
	}()

	logger.Info("bootstrap.initialize.start", "root", cfg.Root)

	d, err := dburl.Parse(cfg.DatabaseURL)
	if err != nil {
		logger.Error("bootstrap.initialize.parse.failed", "err", err)
		return report, err
	}
	report.Protocol = d.Protocol
	report.Database = d.Redacted()
	logger.Debug("bootstrap.initialize.parsed", "database", report.Database)

	state, err := tracker.State()
	if err != nil {
		return report, &render.IOError{Op: "stat", Path: tracker.Path(), Err: err}
	}
	if state == runstate.Completed {
		report.AlreadyInitialized = true
		logger.Info("bootstrap.initialize.skipped", "sentinel", tracker.Path())
		return report, nil
	}

	targets, err := adapter.Adapt(d)
	if err != nil {
		logger.Error("bootstrap.initialize.adapt.failed", "err", err)
		return report, err
	}

	license, err := decodeLicense(cfg.LicenseBase64)
	if err != nil {
		logger.Error("bootstrap.initialize.license.failed", "err", err)
		return report, err
	}

	r := render.New(cfg.Root, render.WithClock(cfg.Clock), render.WithLogger(logger))
	record := func(res render.Result) {
		report.Files = append(report.Files, res)
		if res.Warning != nil {
			report.Warnings = append(report.Warnings, res.Warning.Error())
		}
		cfg.Metrics.RecordFile(string(res.Outcome))
	}

	seeded, err := r.Seed(seeds())
	for _, res := range seeded {
		record(res)
	}
	if err != nil {
		return report, err
	}
	for _, rel := range obsoleteFiles {
		res, err := r.Remove(rel)
		if err != nil {
			return report, err
		}
		if res != nil {
			record(*res)
		}
	}

	for _, s := range pipelineSettings {
		res, err := r.ApplySetting(s.Setting, s.Value)
		if err != nil {
			return report, err
		}
		record(res)
	}
	for _, s := range removedSettings {
		res, err := r.RemoveSetting(s)
		if err != nil {
			return report, err
		}
		record(res)
	}

	for _, t := range targets {
		if t.Consumer == adapter.ConsumerEngine {
			for _, s := range engineSettings {
				res, err := r.ApplySetting(s, t.Value)
				if err != nil {
					return report, err
				}
				record(res)
			}
			continue
		}

		f, ok := driverFiles[t.Consumer]
		if !ok {
			return report, fmt.Errorf("no driver file for consumer %s", t.Consumer)
		}
		res, err := r.ApplyDriver(f, t.Tokens)
		if err != nil {
			return report, err
		}
		record(res)
	}

	if license != nil {
		res, err := r.WriteFile(LicensePath, license, 0o644)
		if err != nil {
			return report, err
		}
		record(res)
	}

	rec := runstate.Record{Time: cfg.Clock().UTC(), Protocol: d.Protocol}
	if err := tracker.MarkCompleted(rec); err != nil {
		return report, &render.IOError{Op: "write", Path: tracker.Path(), Err: err}
	}

	logger.Info("bootstrap.initialize.complete",
		"protocol", d.Protocol.String(),
		"files_changed", len(report.Changed()),
		"warnings", len(report.Warnings),
	)
	return report, nil
}

func decodeLicense(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLicense, err)
	}
	return data, nil
}
