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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kraklabs/szinit/pkg/render"
	"github.com/kraklabs/szinit/pkg/runstate"
)

// FileStatus describes one managed file on disk.
type FileStatus struct {
	Path    string     `json:"path" yaml:"path"`
	Exists  bool       `json:"exists" yaml:"exists"`
	Size    string     `json:"size,omitempty" yaml:"size,omitempty"`
	ModTime *time.Time `json:"mod_time,omitempty" yaml:"mod_time,omitempty"`
}

// StatusReport describes the initialization state of a volume.
type StatusReport struct {
	Root     string            `json:"root" yaml:"root"`
	Sentinel string            `json:"sentinel" yaml:"sentinel"`
	State    runstate.State    `json:"state" yaml:"state"`
	Runs     []runstate.Record `json:"runs,omitempty" yaml:"runs,omitempty"`
	Files    []FileStatus      `json:"files" yaml:"files"`
}

// Status reads the sentinel and the managed files without changing anything.
func Status(cfg Config) (*StatusReport, error) {
	cfg = cfg.withDefaults()
	r := render.New(cfg.Root)
	tracker := runstate.NewTracker(r.Path(SentinelPath))

	state, err := tracker.State()
	if err != nil {
		return nil, err
	}
	runs, err := tracker.Records()
	if err != nil {
		return nil, err
	}

	report := &StatusReport{Root: cfg.Root, Sentinel: tracker.Path(), State: state, Runs: runs}
	for _, rel := range ManagedFiles() {
		path := r.Path(rel)
		st := FileStatus{Path: path}
		info, err := os.Stat(path)
		switch {
		case err == nil:
			st.Exists = true
			st.Size = humanize.Bytes(uint64(info.Size()))
			mtime := info.ModTime()
			st.ModTime = &mtime
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		report.Files = append(report.Files, st)
	}
	return report, nil
}
