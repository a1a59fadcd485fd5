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
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks.
var (
	ErrInvalidConnectionString = errors.New("invalid connection string")
	ErrUnknownProtocol         = errors.New("unknown protocol")
)

// InvalidError reports a connection string that cannot be decomposed.
type InvalidError struct {
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid connection string: %s", e.Reason)
}

// Unwrap returns ErrInvalidConnectionString.
func (e *InvalidError) Unwrap() error {
	return ErrInvalidConnectionString
}

// UnknownProtocolError reports a scheme outside the supported set.
type UnknownProtocolError struct {
	Scheme string
}

func (e *UnknownProtocolError) Error() string {
	return fmt.Sprintf("Unknown protocol: %s", e.Scheme)
}

// Unwrap returns ErrUnknownProtocol.
func (e *UnknownProtocolError) Unwrap() error {
	return ErrUnknownProtocol
}
