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

//go:build unix

package splitstream

import (
	"io"

	"golang.org/x/sys/unix"
)

// fdReader adapts a raw file descriptor to io.Reader via a direct
// unix.Read, bypassing the os.File wrapper's buffering and Fd()
// indirection. NewFileDriver uses this on unix targets; see
// fddriver_other.go for the portable fallback.
type fdReader struct {
	fd int
}

func (r fdReader) Read(p []byte) (int, error) {
	n, err := unix.Read(r.fd, p)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// NewFileDriver builds a Driver that reads directly from a raw file
// descriptor (for example one obtained via unix.Open), avoiding the
// allocation and locking overhead of wrapping it in an *os.File first.
func NewFileDriver(state *State, scan ScanFunc, fd int, bufSize, max int) (*Driver, error) {
	return NewDriver(state, scan, fdReader{fd: fd}, bufSize, max)
}
