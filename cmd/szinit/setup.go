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

package main

import (
	flag "github.com/spf13/pflag"

	"github.com/kraklabs/szinit/internal/config"
	"github.com/kraklabs/szinit/internal/errors"
	"github.com/kraklabs/szinit/internal/logging"
)

// addConfigFlags registers the flags every command that reads the
// configuration accepts. config.Load binds them by name.
func addConfigFlags(fs *flag.FlagSet) {
	fs.String("database-url", "", "Database connection string (env SENZING_DATABASE_URL)")
	fs.String("root-dir", "/", "Directory prepended to every managed path (env SENZING_ROOT_DIR)")
	fs.Bool("debug", false, "Enable debug logging (env SENZING_DEBUG)")
	fs.String("log-format", "text", "Log format: text or json (env SENZING_LOG_FORMAT)")
	fs.String("log-file", "", "Also write logs to this rotated file (env SENZING_LOG_FILE)")
}

// setup resolves the configuration for a parsed command FlagSet and builds
// the logger. Callers must Close the logger.
func setup(fs *flag.FlagSet, globals GlobalFlags) (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(config.Options{
		Flags:      fs,
		ConfigFile: globals.ConfigFile,
		EnvFile:    globals.EnvFile,
	})
	if err != nil {
		return nil, nil, errors.NewConfigError(
			"Invalid configuration",
			err.Error(),
			"Check the SENZING_* environment variables, the command flags and --config",
			err,
		)
	}

	logger, err := logging.New(logging.Options{
		Debug:  cfg.Debug,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Writer: stderr,
	})
	if err != nil {
		return nil, nil, errors.NewConfigError(
			"Cannot set up logging",
			err.Error(),
			"Check --log-format and that the --log-file directory is writable",
			err,
		)
	}
	return cfg, logger, nil
}
