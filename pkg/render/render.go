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
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Outcome is what happened to one file.
type Outcome string

const (
	// Unchanged means the file already held the requested content.
	Unchanged Outcome = "unchanged"
	// Rendered means an existing file was rewritten.
	Rendered Outcome = "rendered"
	// Created means the file did not exist and was written.
	Created Outcome = "created"
	// Removed means an obsolete file was moved aside.
	Removed Outcome = "removed"
	// Skipped means an optional file was absent.
	Skipped Outcome = "skipped"
	// Warned means the file was left alone; see Result.Warning.
	Warned Outcome = "warning"
)

// Result describes the work done on a single file.
type Result struct {
	Path    string  `json:"path" yaml:"path"`
	Outcome Outcome `json:"outcome" yaml:"outcome"`
	// Backup is the copy taken before the file was changed, if any.
	Backup  string   `json:"backup,omitempty" yaml:"backup,omitempty"`
	Warning *Warning `json:"-" yaml:"-"`
}

// Changed reports whether the file on disk was written.
func (r Result) Changed() bool {
	return r.Outcome == Rendered || r.Outcome == Created || r.Outcome == Removed
}

// Setting addresses one key of an INI file.
type Setting struct {
	File    string
	Section string
	Key     string
	// Optional files that do not exist produce Skipped instead of an IOError.
	Optional bool
}

// DriverFile is a driver configuration generated from a template.
type DriverFile struct {
	Template string
	Output   string
	// Fallback is used when Template does not exist. Leave empty to warn instead.
	Fallback string
}

// Seed copies Source to Target when Target is absent.
type Seed struct {
	Source string
	Target string
}

// Renderer applies settings below a root directory.
type Renderer struct {
	root   string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock sets the clock used to name backups.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// WithLogger sets the logger. A nil logger falls back to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) { r.logger = logger }
}

// New returns a Renderer rooted at root. Relative paths given to its
// methods are resolved against root.
func New(root string, opts ...Option) *Renderer {
	r := &Renderer{root: root, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Path resolves rel against the renderer root.
func (r *Renderer) Path(rel string) string {
	return filepath.Join(r.root, filepath.FromSlash(rel))
}

// ApplySetting sets s.Key in s.Section of s.File to value.
func (r *Renderer) ApplySetting(s Setting, value string) (Result, error) {
	path := r.Path(s.File)

	data, res, err := r.readSetting(s)
	if data == nil {
		return res, err
	}

	current, err := lookupValue(data, s.Section, s.Key)
	if err != nil {
		return r.warn(path, err.Error()), nil
	}
	if current == value {
		r.logger.Debug("render.setting.unchanged", "path", path, "section", s.Section, "key", s.Key)
		return Result{Path: path, Outcome: Unchanged}, nil
	}

	updated, err := replaceValue(data, s.Section, s.Key, current, value)
	if err != nil {
		return r.warn(path, err.Error()), nil
	}

	backup := r.snapshot(path, data)
	if err := r.replaceFile(path, updated, 0o644); err != nil {
		return Result{}, err
	}

	r.logger.Info("render.setting.applied", "path", path, "section", s.Section, "key", s.Key)
	return Result{Path: path, Outcome: Rendered, Backup: backup}, nil
}

// RemoveSetting deletes the line assigning s.Key in s.Section of s.File.
// A key that is not there leaves the file Unchanged.
func (r *Renderer) RemoveSetting(s Setting) (Result, error) {
	path := r.Path(s.File)

	data, res, err := r.readSetting(s)
	if data == nil {
		return res, err
	}

	updated, found, err := removeKey(data, s.Section, s.Key)
	if err != nil {
		return r.warn(path, err.Error()), nil
	}
	if !found {
		r.logger.Debug("render.setting.absent", "path", path, "section", s.Section, "key", s.Key)
		return Result{Path: path, Outcome: Unchanged}, nil
	}

	backup := r.snapshot(path, data)
	if err := r.replaceFile(path, updated, 0o644); err != nil {
		return Result{}, err
	}

	r.logger.Info("render.setting.removed", "path", path, "section", s.Section, "key", s.Key)
	return Result{Path: path, Outcome: Rendered, Backup: backup}, nil
}

// readSetting loads s.File. A nil slice means the caller must return res
// and err as they are: the file is optional and absent, or it cannot be
// used. A file holding only whitespace is an IOError wrapping ErrEmptyFile.
func (r *Renderer) readSetting(s Setting) ([]byte, Result, error) {
	path := r.Path(s.File)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && s.Optional {
			r.logger.Debug("render.setting.skipped", "path", path, "reason", "file not found")
			return nil, Result{Path: path, Outcome: Skipped}, nil
		}
		return nil, Result{}, &IOError{Op: "read", Path: path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, Result{}, &IOError{Op: "read", Path: path, Err: ErrEmptyFile}
	}
	return data, Result{}, nil
}

// ApplyDriver renders f.Template with tokens and writes the result to
// f.Output when it differs from what is already there.
func (r *Renderer) ApplyDriver(f DriverFile, tokens map[string]string) (Result, error) {
	out := r.Path(f.Output)
	templatePath := r.Path(f.Template)

	tmpl, err := os.ReadFile(templatePath)
	switch {
	case err == nil:
	case !errors.Is(err, fs.ErrNotExist):
		return Result{}, &IOError{Op: "read", Path: templatePath, Err: err}
	case f.Fallback == "":
		return r.warn(out, fmt.Sprintf("template %s not found", templatePath)), nil
	default:
		r.logger.Warn("render.driver.fallback", "template", templatePath, "output", out)
		tmpl = []byte(f.Fallback)
	}

	content := []byte(Substitute(string(tmpl), tokens))
	return r.write(out, content, 0o644)
}

// WriteFile writes data to rel unless the file already holds exactly data.
func (r *Renderer) WriteFile(rel string, data []byte, perm fs.FileMode) (Result, error) {
	return r.write(r.Path(rel), data, perm)
}

// Remove moves rel aside to its backup name. A file that does not exist
// produces no result.
func (r *Renderer) Remove(rel string) (*Result, error) {
	path := r.Path(rel)

	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}

	backup := r.backupName(path)
	if err := os.Rename(path, backup); err != nil {
		return nil, &IOError{Op: "rename", Path: path, Err: err}
	}

	r.logger.Info("render.file.removed", "path", path, "backup", backup)
	return &Result{Path: path, Outcome: Removed, Backup: backup}, nil
}

// Seed copies every seed whose target is absent. Seeds whose source does not
// exist are ignored, so alternative sources for one target can be listed in
// order of preference.
func (r *Renderer) Seed(seeds []Seed) ([]Result, error) {
	var results []Result
	for _, s := range seeds {
		src, dst := r.Path(s.Source), r.Path(s.Target)

		if _, err := os.Stat(dst); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return results, &IOError{Op: "stat", Path: dst, Err: err}
		}

		info, err := os.Stat(src)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return results, &IOError{Op: "stat", Path: src, Err: err}
		}
		data, err := os.ReadFile(src)
		if err != nil {
			return results, &IOError{Op: "read", Path: src, Err: err}
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return results, &IOError{Op: "mkdir", Path: filepath.Dir(dst), Err: err}
		}
		if err := r.replaceFile(dst, data, info.Mode().Perm()); err != nil {
			return results, err
		}

		r.logger.Info("render.seed.copied", "source", src, "target", dst, "size", humanize.Bytes(uint64(len(data))))
		results = append(results, Result{Path: dst, Outcome: Created})
	}
	return results, nil
}

// Substitute replaces every {name} in tmpl with tokens[name]. Placeholders
// without a token are left as they are.
func Substitute(tmpl string, tokens map[string]string) string {
	names := make([]string, 0, len(tokens))
	for name := range tokens {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, "{"+name+"}", tokens[name])
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func (r *Renderer) write(path string, data []byte, perm fs.FileMode) (Result, error) {
	existing, err := os.ReadFile(path)
	outcome := Created
	backup := ""
	switch {
	case err == nil && bytes.Equal(existing, data):
		r.logger.Debug("render.file.unchanged", "path", path)
		return Result{Path: path, Outcome: Unchanged}, nil
	case err == nil:
		outcome = Rendered
		backup = r.snapshot(path, existing)
	case !errors.Is(err, fs.ErrNotExist):
		return Result{}, &IOError{Op: "read", Path: path, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Result{}, &IOError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}
	if err := r.replaceFile(path, data, perm); err != nil {
		return Result{}, err
	}

	r.logger.Info("render.file.written", "path", path, "outcome", string(outcome))
	return Result{Path: path, Outcome: outcome, Backup: backup}, nil
}

// snapshot copies data next to path and returns the copy's name, or "" when
// the copy could not be written. A backup already taken in the same second
// holds the older content and is kept.
func (r *Renderer) snapshot(path string, data []byte) string {
	backup := r.backupName(path)

	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	f, err := os.OpenFile(backup, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if errors.Is(err, fs.ErrExist) {
		if info, serr := os.Lstat(backup); serr == nil && info.Mode().IsRegular() {
			r.logger.Debug("render.backup.exists", "path", backup)
			return backup
		}
	}
	if err == nil {
		_, err = f.Write(data)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(backup)
		}
	}
	if err != nil {
		r.logger.Warn("render.backup.failed", "path", path, "err", err)
		return ""
	}
	r.logger.Debug("render.backup.created", "path", backup, "size", humanize.Bytes(uint64(len(data))))
	return backup
}

func (r *Renderer) backupName(path string) string {
	return fmt.Sprintf("%s.%d", path, r.now().Unix())
}

func (r *Renderer) warn(path, reason string) Result {
	w := &Warning{Path: path, Reason: reason}
	r.logger.Warn("render.warning", "path", path, "reason", reason)
	return Result{Path: path, Outcome: Warned, Warning: w}
}

// replaceFile writes data to a temporary file next to path and renames it
// over path, so a crash leaves either the old or the new content. An
// existing file keeps its mode and owner; perm only applies to new files.
func (r *Renderer) replaceFile(path string, data []byte, perm fs.FileMode) error {
	prev, err := os.Lstat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		prev = nil
	case err != nil:
		return &IOError{Op: "stat", Path: path, Err: err}
	case prev.Mode()&fs.ModeSymlink != 0:
		// Renaming would replace the link itself.
		return writeInPlace(path, data)
	default:
		perm = prev.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	fail := func(op string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return &IOError{Op: op, Path: path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return fail("chmod", err)
	}
	if prev != nil {
		if err := chownLike(tmp, prev); err != nil {
			// Without privileges the owner survives only in the old inode.
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
			r.logger.Warn("render.write.inplace", "path", path, "err", err)
			return writeInPlace(path, data)
		}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return &IOError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return &IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

// writeInPlace rewrites an existing file through its inode. It is not
// atomic and is only used when the file cannot be replaced.
func writeInPlace(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return &IOError{Op: "open", Path: path, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}
