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
	"errors"
	"io/fs"
	"os"

	"github.com/kraklabs/szinit/pkg/adapter"
	"github.com/kraklabs/szinit/pkg/dburl"
	"github.com/kraklabs/szinit/pkg/render"
)

// Description is what Initialize would do with a connection string.
type Description struct {
	Descriptor dburl.Descriptor `json:"descriptor" yaml:"descriptor"`
	Targets    []adapter.Target `json:"targets" yaml:"targets"`
	// DriverFiles maps output paths to the content that would be written.
	DriverFiles map[string]string `json:"driver_files,omitempty" yaml:"driver_files,omitempty"`
}

// Describe parses and adapts cfg.DatabaseURL without writing anything.
// Passwords are masked unless showPassword is set. Driver templates are read
// from cfg.Root when present.
func Describe(cfg Config, showPassword bool) (*Description, error) {
	cfg = cfg.withDefaults()

	d, err := dburl.Parse(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if !showPassword {
		d = d.Masked()
	}

	targets, err := adapter.Adapt(d)
	if err != nil {
		return nil, err
	}

	desc := &Description{Descriptor: d, Targets: targets}
	r := render.New(cfg.Root)
	for _, t := range targets {
		f, ok := driverFiles[t.Consumer]
		if !ok {
			continue
		}
		tmpl := f.Fallback
		data, err := os.ReadFile(r.Path(f.Template))
		switch {
		case err == nil:
			tmpl = string(data)
		case !errors.Is(err, fs.ErrNotExist):
			return nil, &render.IOError{Op: "read", Path: r.Path(f.Template), Err: err}
		}
		if tmpl == "" {
			continue
		}
		if desc.DriverFiles == nil {
			desc.DriverFiles = make(map[string]string)
		}
		desc.DriverFiles[r.Path(f.Output)] = render.Substitute(tmpl, t.Tokens)
	}
	return desc, nil
}
