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

import (
	"fmt"
	"strconv"
	"strings"
)

const maskedPassword = "****"

// Descriptor is the parsed form of a database URL.
//
// A Descriptor is a value: Parse builds it once and nothing in this module
// modifies it afterwards.
type Descriptor struct {
	Protocol Protocol `json:"protocol" yaml:"protocol"`
	Scheme   string   `json:"scheme" yaml:"scheme"`
	Username string   `json:"username" yaml:"username"`
	Password string   `json:"password" yaml:"password"`
	Host     string   `json:"hostname" yaml:"hostname"`
	// Port is 0 when the URL does not carry one.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`
	// Authority is the raw text between "://" and the path, credentials included.
	Authority string `json:"netloc" yaml:"netloc"`
	Path      string `json:"path" yaml:"path"`
	Query     string `json:"query,omitempty" yaml:"query,omitempty"`
	// Schema is Path without leading and trailing slashes. Its meaning depends
	// on the protocol: database name, schema name or ODBC/DB2 alias.
	Schema string `json:"schema" yaml:"schema"`
}

// Parse decomposes raw into a Descriptor.
func Parse(raw string) (Descriptor, error) {
	if strings.TrimSpace(raw) == "" {
		return Descriptor{}, &InvalidError{Reason: "empty value"}
	}

	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return Descriptor{}, &InvalidError{Reason: `missing "://" after scheme`}
	}
	if scheme == "" {
		return Descriptor{}, &InvalidError{Reason: "missing scheme"}
	}
	protocol, ok := LookupScheme(scheme)
	if !ok {
		return Descriptor{}, &UnknownProtocolError{Scheme: scheme}
	}

	authority, remainder := rest, ""
	if i := strings.IndexAny(rest, "/?"); i >= 0 {
		authority, remainder = rest[:i], rest[i:]
	}
	path, query, _ := strings.Cut(remainder, "?")

	userinfo, hostport := "", authority
	if i := strings.LastIndex(authority, "@"); i >= 0 {
		userinfo, hostport = authority[:i], authority[i+1:]
	}
	username, password, _ := strings.Cut(userinfo, ":")

	host, port, err := splitHostPort(hostport)
	if err != nil {
		return Descriptor{}, err
	}

	return Descriptor{
		Protocol:  protocol,
		Scheme:    scheme,
		Username:  username,
		Password:  password,
		Host:      host,
		Port:      port,
		Authority: authority,
		Path:      path,
		Query:     query,
		Schema:    strings.Trim(path, "/"),
	}, nil
}

func splitHostPort(hostport string) (string, int, error) {
	host, portText := hostport, ""

	if strings.HasPrefix(hostport, "[") {
		end := strings.Index(hostport, "]")
		if end < 0 {
			return "", 0, &InvalidError{Reason: fmt.Sprintf("unterminated IPv6 host in %q", hostport)}
		}
		host = hostport[:end+1]
		tail := hostport[end+1:]
		switch {
		case tail == "":
		case strings.HasPrefix(tail, ":"):
			portText = tail[1:]
		default:
			return "", 0, &InvalidError{Reason: fmt.Sprintf("unexpected %q after IPv6 host", tail)}
		}
	} else if i := strings.LastIndex(hostport, ":"); i >= 0 {
		host, portText = hostport[:i], hostport[i+1:]
	}

	if portText == "" {
		return host, 0, nil
	}
	port, err := strconv.Atoi(portText)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, &InvalidError{Reason: fmt.Sprintf("port %q is not a number between 1 and 65535", portText)}
	}
	return host, port, nil
}

// Masked returns a copy of d with a non-empty password replaced by "****".
func (d Descriptor) Masked() Descriptor {
	if d.Password == "" {
		return d
	}
	masked := d
	masked.Password = maskedPassword
	masked.Authority = strings.Replace(d.Authority, d.Username+":"+d.Password+"@", d.Username+":"+maskedPassword+"@", 1)
	return masked
}

// Redacted renders d as a URL with the password masked. Use it for logs.
func (d Descriptor) Redacted() string {
	m := d.Masked()
	var b strings.Builder
	b.WriteString(m.Scheme)
	b.WriteString("://")
	b.WriteString(m.Authority)
	b.WriteString(m.Path)
	if m.Query != "" {
		b.WriteString("?")
		b.WriteString(m.Query)
	}
	return b.String()
}

// String implements fmt.Stringer without exposing the password.
func (d Descriptor) String() string {
	return d.Redacted()
}
