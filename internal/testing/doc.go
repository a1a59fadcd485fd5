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

// Package testing provides test helpers for szinit integration tests.
//
// SetupVolume builds a temporary engine volume holding the shipped templates
// so the orchestrator and the CLI can run against a real file tree:
//
//	func TestIdempotent(t *testing.T) {
//	    vol := testing.SetupVolume(t)
//	    // run once, then
//	    before := vol.Snapshot()
//	    // run again
//	    require.Equal(t, before, vol.Snapshot())
//	}
//
// Snapshot captures content and modification time of every file, so a single
// comparison proves that a run touched nothing. Age pushes modification
// times into the past first, which keeps that comparison meaningful on file
// systems with coarse timestamps.
package testing
