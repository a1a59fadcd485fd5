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

package render

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

const keyValueDelimiters = "=:"

var loadOptions = ini.LoadOptions{
	IgnoreContinuation:         true,
	IgnoreInlineComment:        true,
	PreserveSurroundedQuote:    true,
	AllowShadows:               true,
	AllowDuplicateShadowValues: true,
	SkipUnrecognizableLines:    true,
	KeyValueDelimiters:         keyValueDelimiters,
}

// lookupValue returns the value of key in section. Inherited keys do not
// count: the key has to be written in the section itself.
func lookupValue(data []byte, section, key string) (string, error) {
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return "", fmt.Errorf("cannot parse file: %w", err)
	}

	sec, err := f.GetSection(section)
	if err != nil {
		return "", fmt.Errorf("section [%s] not found", section)
	}

	for _, k := range sec.Keys() {
		if k.Name() != key {
			continue
		}
		if values := k.ValueWithShadows(); len(values) > 1 {
			return "", fmt.Errorf("key %s appears %d times in [%s]", key, len(values), section)
		}
		return k.Value(), nil
	}
	return "", fmt.Errorf("key %s not found in [%s]", key, section)
}

// replaceValue swaps current for value on the single line assigning key in
// section and returns the new file content. Every other byte is kept.
func replaceValue(data []byte, section, key, current, value string) ([]byte, error) {
	lines := strings.SplitAfter(string(data), "\n")

	found, err := findKey(lines, section, key)
	if err != nil {
		return nil, err
	}
	if found < 0 {
		return nil, fmt.Errorf("key %s not found in [%s]", key, section)
	}

	line := lines[found]
	d := strings.IndexAny(line, keyValueDelimiters)
	head, tail := line[:d+1], line[d+1:]

	pos := strings.Index(tail, current)
	if current == "" {
		pos = len(tail) - len(strings.TrimLeft(tail, " \t"))
	}
	if pos < 0 {
		return nil, fmt.Errorf("value %q of %s in [%s] is not written verbatim on its line", current, key, section)
	}

	lines[found] = head + tail[:pos] + value + tail[pos+len(current):]
	return []byte(strings.Join(lines, "")), nil
}

// removeKey drops the line assigning key in section. found is false when
// the section or the key does not exist.
func removeKey(data []byte, section, key string) (updated []byte, found bool, err error) {
	lines := strings.SplitAfter(string(data), "\n")

	i, err := findKey(lines, section, key)
	if err != nil || i < 0 {
		return nil, false, err
	}
	lines = append(lines[:i], lines[i+1:]...)
	return []byte(strings.Join(lines, "")), true, nil
}

// findKey returns the index of the line assigning key in section, or -1.
func findKey(lines []string, section, key string) (int, error) {
	inSection := section == ini.DefaultSection
	found := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed[0] == '#' || trimmed[0] == ';' {
			continue
		}
		if trimmed[0] == '[' {
			if end := strings.IndexByte(trimmed, ']'); end > 0 {
				inSection = strings.TrimSpace(trimmed[1:end]) == section
				continue
			}
		}
		if !inSection {
			continue
		}
		d := strings.IndexAny(line, keyValueDelimiters)
		if d < 0 || strings.TrimSpace(line[:d]) != key {
			continue
		}
		if found >= 0 {
			return -1, fmt.Errorf("key %s appears more than once in [%s]", key, section)
		}
		found = i
	}
	return found, nil
}
