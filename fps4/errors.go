// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of vespack.
//
// vespack is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// vespack is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with vespack.  If not, see <https://www.gnu.org/licenses/>.

package fps4

import "errors"

// Errors returned by this package. Callers should use errors.Is against
// these sentinels rather than matching message text.
var (
	ErrFormat      = errors.New("fps4: invalid format")
	ErrMissingData = errors.New("fps4: missing data")
	ErrIO          = errors.New("fps4: io error")
)
