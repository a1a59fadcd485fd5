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

package render

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	ErrRenderWarning = errors.New("render warning")
	ErrIOFailure     = errors.New("io failure")

	// ErrEmptyFile is wrapped by the IOError for a configuration file that
	// exists but holds nothing.
	ErrEmptyFile = errors.New("file is empty")
)

// Warning describes a file that was left unchanged on purpose.
type Warning struct {
	Path   string
	Reason string
}

func (w *Warning) Error() string {
	return fmt.Sprintf("%s: %s", w.Path, w.Reason)
}

// Unwrap returns ErrRenderWarning.
func (w *Warning) Unwrap() error {
	return ErrRenderWarning
}

// IOError reports a file that could not be read or written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap exposes both ErrIOFailure and the underlying error.
func (e *IOError) Unwrap() []error {
	return []error{ErrIOFailure, e.Err}
}
