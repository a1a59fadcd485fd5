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

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Writer: &buf})
	require.NoError(t, err)

	logger.Debug("bootstrap.debug")
	logger.Info("bootstrap.info", "scheme", "postgresql")
	assert.NotContains(t, buf.String(), "bootstrap.debug")
	assert.Contains(t, buf.String(), "msg=bootstrap.info scheme=postgresql")

	buf.Reset()
	debug, err := New(Options{Writer: &buf, Debug: true})
	require.NoError(t, err)
	debug.Debug("bootstrap.debug")
	assert.Contains(t, buf.String(), "bootstrap.debug")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Writer: &buf, Format: "json"})
	require.NoError(t, err)

	logger.Warn("render.warning", "path", "/etc/opt/senzing/G2Module.ini")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "render.warning", record["msg"])
	assert.Equal(t, "/etc/opt/senzing/G2Module.ini", record["path"])
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "szinit.log")
	var buf bytes.Buffer

	logger, err := New(Options{Writer: &buf, File: path})
	require.NoError(t, err)
	logger.Info("bootstrap.initialize.complete")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "bootstrap.initialize.complete")
	assert.Contains(t, buf.String(), "bootstrap.initialize.complete")
}

func TestNew_UnknownFormat(t *testing.T) {
	_, err := New(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestClose_NoFile(t *testing.T) {
	logger, err := New(Options{Writer: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.NoError(t, logger.Close())

	var nilLogger *Logger
	assert.NoError(t, nilLogger.Close())
}
