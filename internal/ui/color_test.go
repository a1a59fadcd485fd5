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

package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
)

func withoutColor(t *testing.T) *bytes.Buffer {
	t.Helper()
	originalNoColor, originalOutput := color.NoColor, Output
	color.NoColor = true
	var buf bytes.Buffer
	Output = &buf
	t.Cleanup(func() {
		color.NoColor = originalNoColor
		Output = originalOutput
	})
	return &buf
}

func TestInitColors(t *testing.T) {
	original := color.NoColor
	defer func() { color.NoColor = original }()

	color.NoColor = false
	InitColors(false)
	if color.NoColor {
		t.Error("InitColors(false) disabled colors")
	}

	InitColors(true)
	if !color.NoColor {
		t.Error("InitColors(true) left colors enabled")
	}
}

func TestMessages(t *testing.T) {
	tests := []struct {
		name  string
		print func()
		want  string
	}{
		{"success", func() { Success("initialized") }, "✓ initialized\n"},
		{"successf", func() { Successf("%d files", 3) }, "✓ 3 files\n"},
		{"warning", func() { Warning("template missing") }, "⚠ template missing\n"},
		{"warningf", func() { Warningf("%s skipped", "G2Project.ini") }, "⚠ G2Project.ini skipped\n"},
		{"info", func() { Info("already initialized") }, "ℹ already initialized\n"},
		{"infof", func() { Infof("waiting %ds", 5) }, "ℹ waiting 5s\n"},
		{"header", func() { Header("Status") }, "Status\n======\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := withoutColor(t)
			tt.print()
			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInlineHelpers(t *testing.T) {
	withoutColor(t)

	if got := Label("Root:"); got != "Root:" {
		t.Errorf("Label() = %q", got)
	}
	if got := DimText("/opt/senzing"); got != "/opt/senzing" {
		t.Errorf("DimText() = %q", got)
	}
	for _, outcome := range []string{"created", "rendered", "removed", "warning", "skipped", "unchanged"} {
		if got := OutcomeText(outcome); got != outcome {
			t.Errorf("OutcomeText(%q) = %q", outcome, got)
		}
	}
}
