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

// Package config loads szinit settings from flags, SENZING_* environment
// variables, an optional YAML file and an optional .env file.
//
// Precedence, highest first: flags that were set explicitly, environment,
// config file, .env file, built-in defaults. Values read from a .env file
// never modify the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "SENZING"

// DefaultDatabaseURL is the connection string shipped in the engine templates.
const DefaultDatabaseURL = "sqlite3://na:na@/var/opt/senzing/sqlite/G2C.db"

// Keys known to the loader, with the flag that can override each one.
const (
	KeyDatabaseURL   = "database_url"
	KeyDebug         = "debug"
	KeyRootDir       = "root_dir"
	KeyDelaySeconds  = "delay_in_seconds"
	KeyLicenseBase64 = "license_base64_encoded"
	KeyLogFormat     = "log_format"
	KeyLogFile       = "log_file"
	KeyMetricsFile   = "metrics_file"
)

var flagNames = map[string]string{
	KeyDatabaseURL:  "database-url",
	KeyDebug:        "debug",
	KeyRootDir:      "root-dir",
	KeyDelaySeconds: "delay",
	KeyLogFormat:    "log-format",
	KeyLogFile:      "log-file",
	KeyMetricsFile:  "metrics-file",
}

// Config holds the resolved settings.
type Config struct {
	DatabaseURL   string `mapstructure:"database_url"`
	Debug         bool   `mapstructure:"debug"`
	RootDir       string `mapstructure:"root_dir"`
	DelaySeconds  int    `mapstructure:"delay_in_seconds"`
	LicenseBase64 string `mapstructure:"license_base64_encoded"`
	LogFormat     string `mapstructure:"log_format"`
	LogFile       string `mapstructure:"log_file"`
	MetricsFile   string `mapstructure:"metrics_file"`
}

// Options tells Load where to look.
type Options struct {
	// Flags may be nil. Only flags named in this package are bound.
	Flags *pflag.FlagSet
	// ConfigFile is an optional YAML file. A missing file is an error.
	ConfigFile string
	// EnvFile is an optional .env file. When empty, ".env" in the working
	// directory is read if it exists.
	EnvFile string
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := loadEnvFile(v, opts.EnvFile); err != nil {
		return nil, err
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if !strings.HasSuffix(opts.ConfigFile, ".yaml") && !strings.HasSuffix(opts.ConfigFile, ".yml") {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", opts.ConfigFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for key, name := range flagNames {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag --%s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RootDir) == "" {
		return errors.New("root directory must not be empty")
	}
	if c.DelaySeconds < 0 {
		return fmt.Errorf("delay must not be negative, got %d", c.DelaySeconds)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", c.LogFormat)
	}
	return nil
}

// EnvName returns the environment variable read for key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabaseURL, DefaultDatabaseURL)
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyRootDir, "/")
	v.SetDefault(KeyDelaySeconds, 0)
	v.SetDefault(KeyLicenseBase64, "")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyMetricsFile, "")
}

// loadEnvFile layers SENZING_* entries of a .env file over the defaults.
func loadEnvFile(v *viper.Viper, path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read env file %s: %w", path, err)
	}

	prefix := EnvPrefix + "_"
	for name, value := range values {
		if key, ok := strings.CutPrefix(name, prefix); ok {
			v.SetDefault(strings.ToLower(key), value)
		}
	}
	return nil
}
