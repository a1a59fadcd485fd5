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

// Package render turns shipped configuration templates into live files.
//
// Three kinds of work are supported, all relative to a root directory so a
// whole volume can be rendered inside a test's temporary directory:
//
//   - Seed copies shipped templates into place when the live file is absent.
//   - ApplySetting replaces the value of one key in an INI file in place.
//   - ApplyDriver regenerates a driver configuration file from a template
//     with {token} placeholders.
//
// # In-Place Edits
//
// ApplySetting never regenerates a whole INI file. It reads the key's current
// value with gopkg.in/ini.v1 and substitutes exactly that literal text on the
// key's line, so comments, ordering and spacing survive. Writing the value the
// file already holds is a no-op that leaves the modification time alone.
//
// Before a file is changed its previous content is copied to
// "<file>.<unix-seconds>". The copy is best-effort: a failure is logged and
// rendering continues. When several edits hit one file within a second, the
// first copy is kept.
//
// The new content goes to a temporary file in the same directory, which takes
// the mode and owner of the original and is then renamed over it. A crash
// leaves either the old or the new file, never a truncated one.
//
// # Warnings and Failures
//
// Some conditions mean an operator has reshaped a file by hand. They produce a
// Result with Outcome Warned, leave the file untouched and let the caller go on
// with its other files:
//
//   - the section or the key is absent
//   - the key appears more than once in its section
//   - the parsed value cannot be found verbatim on the key's line
//   - a driver template is missing and no fallback is configured
//
// Anything that prevents reading or writing a file the caller requires is an
// IOError and should abort the run. So is a required file that exists but is
// empty (ErrEmptyFile).
package render
