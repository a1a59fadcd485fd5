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

package testing

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Shipped template contents placed by SetupVolume.
const (
	ShippedModuleINI = `[PIPELINE]
SUPPORTPATH=/opt/senzing/g2/data
CONFIGPATH=/opt/senzing/g2/python
RESOURCEPATH=/opt/senzing/g2/resources

[SQL]
CONNECTION=sqlite3://na:na@/var/opt/senzing/sqlite/G2C.db
G2CONFIGFILE=/opt/senzing/g2/python/g2config.json
`

	ShippedProjectINI = `[g2]
G2Connection=sqlite3://na:na@/var/opt/senzing/sqlite/G2C.db
iniPath=/etc/opt/senzing/G2Module.ini
collapsedTableSchema=Y
`

	ShippedDB2Template = `<configuration>
  <dsncollection>
    <dsn alias="{schema}" name="{schema}" host="{hostname}" port="{port}"/>
  </dsncollection>
</configuration>
`
)

// TemplateDir is where the engine package ships configuration templates.
const TemplateDir = "opt/senzing/g2/resources/templates"

// Volume is a temporary directory laid out like an engine volume.
type Volume struct {
	t    *testing.T
	Root string
}

// FileState is a file's content and modification time.
type FileState struct {
	Content string
	ModTime time.Time
}

// SetupVolume creates a volume holding the shipped templates, including the
// Db2 driver template. Nothing under etc/ exists yet.
//
// Example:
//
//	func TestInitialize(t *testing.T) {
//	    vol := testing.SetupVolume(t)
//	    report, err := bootstrap.Initialize(bootstrap.Config{Root: vol.Root, ...}, nil)
//	    ...
//	    vol.ReadFile("etc/opt/senzing/G2Module.ini")
//	}
func SetupVolume(t *testing.T) *Volume {
	t.Helper()

	v := &Volume{t: t, Root: t.TempDir()}
	v.WriteFile(TemplateDir+"/G2Module.ini", ShippedModuleINI)
	v.WriteFile(TemplateDir+"/G2Project.ini", ShippedProjectINI)
	v.WriteFile(TemplateDir+"/cfgVariant.json", "{}\n")
	v.WriteFile(TemplateDir+"/stb.config", "stb\n")
	v.WriteFile("opt/IBM/db2/clidriver/cfg/db2dsdriver.cfg.senzing-template", ShippedDB2Template)
	return v
}

// SetupEmptyVolume creates a volume with no files at all.
func SetupEmptyVolume(t *testing.T) *Volume {
	t.Helper()
	return &Volume{t: t, Root: t.TempDir()}
}

// Path resolves rel inside the volume.
func (v *Volume) Path(rel string) string {
	return filepath.Join(v.Root, filepath.FromSlash(rel))
}

// WriteFile creates rel with content, creating parent directories.
func (v *Volume) WriteFile(rel, content string) {
	v.t.Helper()

	path := v.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		v.t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		v.t.Fatalf("failed to write %s: %v", path, err)
	}
}

// ReadFile returns the content of rel and fails the test if it is missing.
func (v *Volume) ReadFile(rel string) string {
	v.t.Helper()

	data, err := os.ReadFile(v.Path(rel))
	if err != nil {
		v.t.Fatalf("failed to read %s: %v", rel, err)
	}
	return string(data)
}

// Exists reports whether rel exists.
func (v *Volume) Exists(rel string) bool {
	_, err := os.Stat(v.Path(rel))
	return err == nil
}

// Snapshot records every regular file in the volume, keyed by slash path.
func (v *Volume) Snapshot() map[string]FileState {
	v.t.Helper()

	files := make(map[string]FileState)
	err := filepath.WalkDir(v.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(v.Root, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = FileState{Content: string(data), ModTime: info.ModTime()}
		return nil
	})
	if err != nil {
		v.t.Fatalf("failed to snapshot volume: %v", err)
	}
	return files
}

// Age moves every file's modification time back by d, so a later rewrite
// shows up even on file systems with coarse timestamps.
func (v *Volume) Age(d time.Duration) {
	v.t.Helper()

	for rel, state := range v.Snapshot() {
		when := state.ModTime.Add(-d)
		if err := os.Chtimes(v.Path(rel), when, when); err != nil {
			v.t.Fatalf("failed to age %s: %v", rel, err)
		}
	}
}
