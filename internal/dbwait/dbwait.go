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

// Package dbwait blocks until the configured database answers a ping.
//
// It backs the wait-for-database command, which deployments run before
// starting engine services. PostgreSQL, MySQL and SQLite are probed through
// database/sql. Db2 and SQL Server need vendor client libraries and are
// reported as unsupported.
package dbwait

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/kraklabs/szinit/pkg/adapter"
	"github.com/kraklabs/szinit/pkg/dburl"
)

// ErrUnsupported is returned for protocols without a probe.
var ErrUnsupported = errors.New("no database probe for protocol")

// PingFunc checks the database once.
type PingFunc func(ctx context.Context, d dburl.Descriptor) error

// Options configures Wait.
type Options struct {
	// Timeout bounds the whole wait. Zero means only ctx bounds it.
	Timeout time.Duration
	// Interval between attempts. Defaults to one second.
	Interval time.Duration
	// Root is prepended to SQLite database paths.
	Root string
	// Ping replaces the database/sql probe in tests.
	Ping PingFunc
	// OnRetry, if set, is called after every failed attempt.
	OnRetry func(attempt int, err error)
	Logger  *slog.Logger
}

// Result summarizes a successful wait.
type Result struct {
	Attempts int           `json:"attempts" yaml:"attempts"`
	Elapsed  time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Wait pings d until it answers, ctx is done or the timeout expires.
func Wait(ctx context.Context, d dburl.Descriptor, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ping := opts.Ping
	if ping == nil {
		root := opts.Root
		ping = func(ctx context.Context, d dburl.Descriptor) error {
			return pingSQL(ctx, d, root)
		}
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	var res Result
	for {
		res.Attempts++
		err := ping(ctx, d)
		if err == nil {
			res.Elapsed = time.Since(start)
			logger.Info("dbwait.ready", "database", d.Redacted(), "attempts", res.Attempts)
			return res, nil
		}
		if errors.Is(err, ErrUnsupported) {
			return res, err
		}
		logger.Debug("dbwait.attempt.failed", "database", d.Redacted(), "attempt", res.Attempts, "err", err)
		if opts.OnRetry != nil {
			opts.OnRetry(res.Attempts, err)
		}

		select {
		case <-ctx.Done():
			res.Elapsed = time.Since(start)
			return res, fmt.Errorf("database %s not reachable after %d attempts: %w", d.Redacted(), res.Attempts, errors.Join(ctx.Err(), err))
		case <-time.After(interval):
		}
	}
}

// Open returns a database/sql handle for d without connecting.
func Open(d dburl.Descriptor, root string) (*sql.DB, error) {
	rule, ok := adapter.Lookup(d.Protocol)
	if !ok {
		return nil, &dburl.UnknownProtocolError{Scheme: d.Scheme}
	}
	port := d.Port
	if port == 0 {
		port = rule.DefaultPort
	}
	host := strings.Trim(d.Host, "[]")

	switch d.Protocol {
	case dburl.PostgreSQL:
		cfg, err := pgx.ParseConfig("")
		if err != nil {
			return nil, fmt.Errorf("postgres config: %w", err)
		}
		cfg.Host = host
		cfg.Port = uint16(port)
		cfg.User = d.Username
		cfg.Password = d.Password
		cfg.Database = d.Schema
		return stdlib.OpenDB(*cfg), nil

	case dburl.MySQL:
		cfg := mysql.NewConfig()
		cfg.User = d.Username
		cfg.Passwd = d.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
		cfg.DBName = d.Schema
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, fmt.Errorf("mysql config: %w", err)
		}
		return sql.OpenDB(connector), nil

	case dburl.SQLite:
		path := filepath.Join(root, filepath.FromSlash(d.Path))
		return sql.Open("sqlite3", "file:"+path+"?mode=ro")
	}
	return nil, fmt.Errorf("%w %s", ErrUnsupported, d.Protocol)
}

func pingSQL(ctx context.Context, d dburl.Descriptor, root string) error {
	db, err := Open(d, root)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.PingContext(ctx)
}
