// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package splitstream

import "errors"

var (
	// ErrBadConfig is returned by NewDriver when a caller-supplied
	// configuration value (buffer size, max document size) is out of
	// range. No Driver is constructed when this is returned.
	ErrBadConfig = errors.New("splitstream: invalid configuration")

	// ErrUnknownFormat is returned when a format name passed to
	// scanner.ByName does not name one of the built-in scanners.
	ErrUnknownFormat = errors.New("splitstream: unknown document format")

	// ErrPoolLeaked is the panic value raised by State.Close when
	// documents allocated from its pool are still outstanding. This is
	// a programming error (a Document was never Released), not a
	// recoverable condition -- matching the source library's
	// debug-mode mempool_Destroy(pool, check=1) abort().
	ErrPoolLeaked = errors.New("splitstream: Close called with live documents still outstanding")
)
