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

// Package adapter re-encodes a parsed database URL into the literal syntax
// each configuration consumer expects.
//
// Every protocol owns one row in a lookup table. A row names the default
// port, the fields the protocol cannot do without, the function producing the
// engine connection string and, for engines configured through a client
// driver file, the driver consumer whose template needs token substitution.
// Supporting another engine means adding a row; callers never branch on the
// protocol themselves.
package adapter

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/kraklabs/szinit/pkg/dburl"
)

// Consumer names a configuration artifact that reads a re-encoded connection.
type Consumer string

const (
	// ConsumerEngine is the engine INI connection setting.
	ConsumerEngine Consumer = "engine"
	// ConsumerDB2Driver is the IBM Db2 CLI driver db2dsdriver.cfg.
	ConsumerDB2Driver Consumer = "db2-driver"
	// ConsumerMSSQLDriver is the Microsoft ODBC driver odbc.ini.
	ConsumerMSSQLDriver Consumer = "mssql-driver"
)

// Field names a descriptor field a protocol may require.
type Field string

const (
	FieldHost     Field = "host"
	FieldUsername Field = "username"
	FieldSchema   Field = "schema"
	FieldPath     Field = "path"
)

// ErrMissingField is matched by every MissingFieldError.
var ErrMissingField = errors.New("missing field")

// MissingFieldError reports a field the selected protocol requires.
type MissingFieldError struct {
	Protocol dburl.Protocol
	Field    Field
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s connection string is missing the %s", e.Protocol, e.Field)
}

// Unwrap returns ErrMissingField.
func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// Target is one re-encoded form of the connection for a single consumer.
type Target struct {
	Consumer Consumer `json:"consumer" yaml:"consumer"`
	// Value is the literal connection string for ConsumerEngine.
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	// Tokens feed {name} placeholders in driver templates.
	Tokens map[string]string `json:"tokens,omitempty" yaml:"tokens,omitempty"`
}

// Rule is one row of the protocol table.
type Rule struct {
	Protocol    dburl.Protocol
	DefaultPort int
	Required    []Field
	Connection  func(d dburl.Descriptor) string
	// Driver is empty when the protocol needs no driver configuration file.
	Driver Consumer
	// SchemaParam names a query parameter that supplies the schema when the
	// path carries none.
	SchemaParam string
}

var table = map[dburl.Protocol]Rule{
	dburl.SQLite: {
		Protocol: dburl.SQLite,
		Required: []Field{FieldPath},
		Connection: func(d dburl.Descriptor) string {
			return fmt.Sprintf("%s://%s%s", d.Scheme, d.Authority, d.Path)
		},
	},
	dburl.MySQL: {
		Protocol:    dburl.MySQL,
		DefaultPort: 3306,
		Required:    []Field{FieldHost, FieldUsername, FieldSchema},
		Connection: func(d dburl.Descriptor) string {
			return fmt.Sprintf("%s://%s:%s@%s:%d/?schema=%s", d.Scheme, d.Username, d.Password, d.Host, d.Port, d.Schema)
		},
		// Accepts the engine's own form, mysql://u:p@host:3306/?schema=G2.
		SchemaParam: "schema",
	},
	dburl.PostgreSQL: {
		Protocol:    dburl.PostgreSQL,
		DefaultPort: 5432,
		Required:    []Field{FieldHost, FieldUsername, FieldSchema},
		Connection: func(d dburl.Descriptor) string {
			return fmt.Sprintf("%s://%s:%s@%s:%d:%s/", d.Scheme, d.Username, d.Password, d.Host, d.Port, d.Schema)
		},
	},
	dburl.DB2: {
		Protocol:    dburl.DB2,
		DefaultPort: 50000,
		Required:    []Field{FieldHost, FieldUsername, FieldSchema},
		Connection:  aliasConnection,
		Driver:      ConsumerDB2Driver,
	},
	dburl.MSSQL: {
		Protocol:    dburl.MSSQL,
		DefaultPort: 1433,
		Required:    []Field{FieldHost, FieldUsername, FieldSchema},
		Connection:  aliasConnection,
		Driver:      ConsumerMSSQLDriver,
	},
}

// aliasConnection addresses the database through the alias declared in the
// driver configuration, so host and port stay out of the engine string.
func aliasConnection(d dburl.Descriptor) string {
	return fmt.Sprintf("%s://%s:%s@%s", d.Scheme, d.Username, d.Password, d.Schema)
}

// Lookup returns the table row for p.
func Lookup(p dburl.Protocol) (Rule, bool) {
	r, ok := table[p]
	return r, ok
}

// Adapt maps d to one Target per consumer of its protocol.
//
// The engine target always comes first. Adapt is pure: the same descriptor
// always yields the same targets.
func Adapt(d dburl.Descriptor) ([]Target, error) {
	rule, ok := table[d.Protocol]
	if !ok {
		return nil, &dburl.UnknownProtocolError{Scheme: d.Scheme}
	}

	if d.Port == 0 {
		d.Port = rule.DefaultPort
	}
	if d.Schema == "" && rule.SchemaParam != "" {
		if q, err := url.ParseQuery(d.Query); err == nil {
			d.Schema = q.Get(rule.SchemaParam)
		}
	}
	for _, f := range rule.Required {
		if fieldValue(d, f) == "" {
			return nil, &MissingFieldError{Protocol: d.Protocol, Field: f}
		}
	}

	targets := []Target{{Consumer: ConsumerEngine, Value: rule.Connection(d)}}
	if rule.Driver != "" {
		targets = append(targets, Target{Consumer: rule.Driver, Tokens: Tokens(d, rule.DefaultPort)})
	}
	return targets, nil
}

// Tokens returns the template substitutions for d. A zero port is replaced
// by defaultPort.
func Tokens(d dburl.Descriptor, defaultPort int) map[string]string {
	port := d.Port
	if port == 0 {
		port = defaultPort
	}
	return map[string]string{
		"scheme":   d.Scheme,
		"username": d.Username,
		"password": d.Password,
		"hostname": d.Host,
		"port":     strconv.Itoa(port),
		"schema":   d.Schema,
	}
}

// Find returns the target for consumer c.
func Find(targets []Target, c Consumer) (Target, bool) {
	for _, t := range targets {
		if t.Consumer == c {
			return t, true
		}
	}
	return Target{}, false
}

func fieldValue(d dburl.Descriptor, f Field) string {
	switch f {
	case FieldHost:
		return d.Host
	case FieldUsername:
		return d.Username
	case FieldSchema:
		return d.Schema
	case FieldPath:
		return d.Path
	}
	return ""
}
