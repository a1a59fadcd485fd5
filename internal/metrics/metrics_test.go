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

package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New()
	m.RecordFile("rendered")
	m.RecordFile("rendered")
	m.RecordFile("warning")

	at := time.Unix(1772366400, 0)
	m.RecordRun(ResultCompleted, "postgresql", 250*time.Millisecond, at)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.files.WithLabelValues("rendered")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.files.WithLabelValues("warning")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(ResultCompleted, "postgresql")))
	assert.Equal(t, 1772366400.0, testutil.ToFloat64(m.lastSuccess))
}

func TestMetrics_FailedRunKeepsLastSuccess(t *testing.T) {
	m := New()
	m.RecordRun(ResultFailed, "mysql", time.Second, time.Unix(100, 0))
	assert.Zero(t, testutil.ToFloat64(m.lastSuccess))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.RecordFile("created")
	m.RecordRun(ResultAlreadyInitialized, "sqlite3", time.Millisecond, time.Unix(200, 0))

	path := filepath.Join(t.TempDir(), "szinit.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `szinit_files_total{outcome="created"} 1`)
	assert.Contains(t, string(data), `szinit_runs_total{protocol="sqlite3",result="already_initialized"} 1`)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordFile("created")
	m.RecordRun(ResultCompleted, "db2", time.Second, time.Now())
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}
