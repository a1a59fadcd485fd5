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

package dburl

// Protocol identifies one of the supported database engines.
type Protocol int

const (
	// Unknown is the zero value and never produced by a successful Parse.
	Unknown Protocol = iota
	SQLite
	MySQL
	PostgreSQL
	DB2
	MSSQL
)

// schemes maps each protocol to the literal scheme used in database URLs.
var schemes = map[Protocol]string{
	SQLite:     "sqlite3",
	MySQL:      "mysql",
	PostgreSQL: "postgresql",
	DB2:        "db2",
	MSSQL:      "mssql",
}

// Protocols returns every supported protocol in declaration order.
func Protocols() []Protocol {
	return []Protocol{SQLite, MySQL, PostgreSQL, DB2, MSSQL}
}

// Scheme returns the URL scheme for p, or "" for Unknown.
func (p Protocol) Scheme() string {
	return schemes[p]
}

// String implements fmt.Stringer.
func (p Protocol) String() string {
	if s, ok := schemes[p]; ok {
		return s
	}
	return "unknown"
}

// FileBased reports whether the protocol addresses a local file instead of a server.
func (p Protocol) FileBased() bool {
	return p == SQLite
}

// LookupScheme returns the protocol whose scheme equals s exactly.
func LookupScheme(s string) (Protocol, bool) {
	for p, scheme := range schemes {
		if scheme == s {
			return p, true
		}
	}
	return Unknown, false
}

// MarshalText lets descriptors and reports encode the protocol by scheme name.
func (p Protocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
