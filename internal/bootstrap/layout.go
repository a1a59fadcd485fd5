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
	"github.com/kraklabs/szinit/pkg/adapter"
	"github.com/kraklabs/szinit/pkg/render"
)

// Paths below are relative to Config.Root.
const (
	ConfigDir    = "etc/opt/senzing"
	TemplateDir  = "opt/senzing/g2/resources/templates"
	SQLiteDir    = "var/opt/senzing/sqlite"
	SentinelPath = "var/opt/senzing/.szinit-completed"
	LicensePath  = ConfigDir + "/g2.lic"
)

// seededFiles are copied from TemplateDir into ConfigDir when absent.
var seededFiles = []string{
	"G2Module.ini",
	"G2Project.ini",
	"cfgVariant.json",
	"customGn.txt",
	"customOn.txt",
	"customSn.txt",
	"defaultGNRCP.config",
	"stb.config",
}

// sqliteDatabases are created from the shipped empty G2C.db so the bundled
// SQLite backend works without a database server.
var sqliteDatabases = []string{"G2C.db", "G2C_LIBFEAT.db", "G2C_RES.db"}

// obsoleteFiles are moved aside when present. The engine keeps its
// configuration in the database and must not find a stale copy on disk.
var obsoleteFiles = []string{ConfigDir + "/g2config.json"}

// seeds lists the shipped templates first and the older
// "<file>.template" copies kept next to the live file second. The SQLite
// databases come first, after a pristine copy of an existing G2C.db is
// kept as G2C.db.template.
func seeds() []render.Seed {
	out := []render.Seed{{Source: SQLiteDir + "/G2C.db", Target: SQLiteDir + "/G2C.db.template"}}
	for _, src := range []string{TemplateDir + "/G2C.db", TemplateDir + "/G2C.db.template"} {
		for _, db := range sqliteDatabases {
			out = append(out, render.Seed{Source: src, Target: SQLiteDir + "/" + db})
		}
	}
	for _, name := range seededFiles {
		out = append(out, render.Seed{Source: TemplateDir + "/" + name, Target: ConfigDir + "/" + name})
	}
	for _, name := range seededFiles {
		out = append(out, render.Seed{Source: ConfigDir + "/" + name + ".template", Target: ConfigDir + "/" + name})
	}
	return out
}

// engineSettings receive the engine connection string.
var engineSettings = []render.Setting{
	{File: ConfigDir + "/G2Module.ini", Section: "SQL", Key: "CONNECTION"},
	// G2Project.ini is no longer shipped by newer engine releases.
	{File: ConfigDir + "/G2Project.ini", Section: "g2", Key: "G2Connection", Optional: true},
}

// pipelineSettings point the engine at the directories of the image.
var pipelineSettings = []struct {
	render.Setting
	Value string
}{
	{render.Setting{File: ConfigDir + "/G2Module.ini", Section: "PIPELINE", Key: "SUPPORTPATH"}, "/opt/senzing/data"},
	{render.Setting{File: ConfigDir + "/G2Module.ini", Section: "PIPELINE", Key: "CONFIGPATH"}, "/etc/opt/senzing"},
	{render.Setting{File: ConfigDir + "/G2Module.ini", Section: "PIPELINE", Key: "RESOURCEPATH"}, "/opt/senzing/g2/resources"},
}

// removedSettings are deleted from the engine configuration.
var removedSettings = []render.Setting{
	{File: ConfigDir + "/G2Module.ini", Section: "SQL", Key: "G2CONFIGFILE"},
}

const odbcTemplate = `[{schema}]
Database = G2
Description = Senzing MS SQL database for G2
Driver = ODBC Driver 17 for SQL Server
Server = {hostname},{port}
`

// driverFiles maps driver consumers to the file rendered for them.
var driverFiles = map[adapter.Consumer]render.DriverFile{
	adapter.ConsumerDB2Driver: {
		Template: "opt/IBM/db2/clidriver/cfg/db2dsdriver.cfg.senzing-template",
		Output:   "opt/IBM/db2/clidriver/cfg/db2dsdriver.cfg",
	},
	adapter.ConsumerMSSQLDriver: {
		Template: "etc/odbc.ini.mssql-template",
		Output:   "opt/microsoft/msodbcsql17/etc/odbc.ini",
		Fallback: odbcTemplate,
	},
}

// ManagedFiles returns every file szinit may write, relative to the root.
func ManagedFiles() []string {
	files := []string{}
	for _, s := range engineSettings {
		files = append(files, s.File)
	}
	for _, c := range []adapter.Consumer{adapter.ConsumerDB2Driver, adapter.ConsumerMSSQLDriver} {
		files = append(files, driverFiles[c].Output)
	}
	for _, db := range sqliteDatabases {
		files = append(files, SQLiteDir+"/"+db)
	}
	return append(files, LicensePath, SentinelPath)
}
