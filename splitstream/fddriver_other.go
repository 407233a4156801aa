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

//go:build !unix

package splitstream

import "os"

// NewFileDriver builds a Driver over a raw file descriptor by wrapping
// it in an *os.File; non-unix targets have no direct-syscall read path
// (see fddriver_unix.go).
func NewFileDriver(state *State, scan ScanFunc, fd int, bufSize, max int) (*Driver, error) {
	f := os.NewFile(uintptr(fd), "fd")
	return NewDriver(state, scan, f, bufSize, max)
}
