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

// Package runstate records completed initialization runs in a sentinel file.
//
// The presence of the file is the only truth: a run that crashes before
// MarkCompleted leaves the volume NotStarted, and the configuration files
// themselves are never inspected to infer state.
package runstate

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kraklabs/szinit/pkg/dburl"
)

// State is the initialization state of a volume.
type State int

const (
	NotStarted State = iota
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Completed:
		return "completed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Record is one completed run.
type Record struct {
	Time     time.Time      `json:"time" yaml:"time"`
	Protocol dburl.Protocol `json:"protocol" yaml:"protocol"`
}

func (r Record) String() string {
	return r.Time.UTC().Format(time.RFC3339) + " " + r.Protocol.Scheme()
}

// Tracker reads and appends the sentinel file.
type Tracker struct {
	path string
}

// NewTracker returns a tracker for the sentinel at path.
func NewTracker(path string) *Tracker {
	return &Tracker{path: path}
}

// Path returns the sentinel location.
func (t *Tracker) Path() string {
	return t.path
}

// State reports Completed when the sentinel exists.
func (t *Tracker) State() (State, error) {
	_, err := os.Stat(t.path)
	switch {
	case err == nil:
		return Completed, nil
	case errors.Is(err, fs.ErrNotExist):
		return NotStarted, nil
	}
	return NotStarted, fmt.Errorf("stat sentinel: %w", err)
}

// Records returns the runs recorded so far, oldest first. Lines that cannot
// be parsed are skipped.
func (t *Tracker) Records() ([]Record, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sentinel: %w", err)
	}

	var records []Record
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		stamp, scheme, ok := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		if !ok {
			continue
		}
		when, err := time.Parse(time.RFC3339, stamp)
		if err != nil {
			continue
		}
		protocol, _ := dburl.LookupScheme(scheme)
		records = append(records, Record{Time: when, Protocol: protocol})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan sentinel: %w", err)
	}
	return records, nil
}

// MarkCompleted appends rec to the sentinel, creating it and its directory
// when needed. Existing records are never rewritten.
func (t *Tracker) MarkCompleted(rec Record) error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("create sentinel dir: %w", err)
	}

	f, err := os.OpenFile(t.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open sentinel: %w", err)
	}
	if _, err := fmt.Fprintln(f, rec.String()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write sentinel: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close sentinel: %w", err)
	}
	return nil
}
