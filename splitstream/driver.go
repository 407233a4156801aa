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

import (
	"fmt"
	"io"
)

// DefaultBufferSize and MaxBufferSize are the default and the upper
// bound of the read-chunk size a Driver will accept, matching the informative splitfile(...) wrapper's
// defaults in spec.md §6 (default 1024, capped at 100MiB).
const (
	DefaultBufferSize = 1024
	MaxBufferSize     = 100 * 1024 * 1024

	// DefaultMaxDocumentSize and MaxMaxDocumentSize bound the `max`
	// parameter: default 100MiB, capped at 1GiB.
	DefaultMaxDocumentSize = 100 * 1024 * 1024
	MaxMaxDocumentSize     = 1024 * 1024 * 1024
)

// Driver repeatedly pulls bytes from a byte source into an Engine
// until a document emerges or the source is exhausted, implementing
// the "Chunk Driver" component of spec.md §4.5. It never keeps more
// than one chunk's worth of bytes alive outside the Engine: buf is
// reused across calls to Read.
type Driver struct {
	State *State
	Scan  ScanFunc
	Max   int

	src io.Reader
	buf []byte
}

// NewDriver constructs a Driver reading chunks of at most bufSize
// bytes from src, emitting documents capped at max bytes. bufSize of
// 0 defaults to DefaultBufferSize and max of 0 to
// DefaultMaxDocumentSize; otherwise a bufSize outside (0, MaxBufferSize]
// is rejected, as is a max outside (0, MaxMaxDocumentSize].
func NewDriver(state *State, scan ScanFunc, src io.Reader, bufSize, max int) (*Driver, error) {
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	if bufSize < 0 || bufSize > MaxBufferSize {
		return nil, fmt.Errorf("%w: bufsize %d out of range (0,%d]", ErrBadConfig, bufSize, MaxBufferSize)
	}
	if max == 0 {
		max = DefaultMaxDocumentSize
	}
	if max < 0 || max > MaxMaxDocumentSize {
		return nil, fmt.Errorf("%w: max document size %d out of range (0,%d]", ErrBadConfig, max, MaxMaxDocumentSize)
	}
	return &Driver{
		State: state,
		Scan:  scan,
		Max:   max,
		src:   src,
		buf:   make([]byte, bufSize),
	}, nil
}

// Prime feeds preamble through the Engine before any bytes are read
// from the Driver's source, discarding whatever documents it yields.
// This supplements spec.md with the "preamble" resume-from-saved-prefix
// behavior the original Python binding exposed (see SPEC_FULL.md §4):
// the bytes are assumed to have already been processed by an earlier
// run of the pipeline, so Prime exists to resynchronize scanner state,
// not to re-emit documents.
func (d *Driver) Prime(preamble []byte) {
	for len(preamble) > 0 {
		n := len(preamble)
		if n > len(d.buf) {
			n = len(d.buf)
		}
		doc := d.State.Next(d.Max, preamble[:n], d.Scan)
		doc.Release(d.State)
		preamble = preamble[n:]
	}
}

// Next returns the next completed document, or io.EOF once the source
// is exhausted and the Engine has been fully drained (spec.md §4.4
// "Draining"). Any other error is a source read failure; the Driver
// and its Engine are left in a consistent state and Next may be called
// again after the caller addresses the failure.
func (d *Driver) Next() (Document, error) {
	if d.State.DidReturnDocument {
		// the previous chunk may have terminated a second document
		// that is still sitting in Rescan state; probe for it before
		// reading more bytes from the source.
		if doc := d.State.Next(d.Max, nil, d.Scan); doc.Len() > 0 {
			return doc, nil
		}
		d.State.DidReturnDocument = false
	}
	for {
		n, err := d.src.Read(d.buf)
		if n > 0 {
			doc := d.State.Next(d.Max, d.buf[:n], d.Scan)
			if doc.Len() > 0 {
				d.State.DidReturnDocument = true
				return doc, nil
			}
		}
		if err != nil && err != io.EOF {
			return Document{}, fmt.Errorf("splitstream: reading source: %w", err)
		}
		if err == io.EOF || n == 0 {
			d.State.FileEOF = true
			// a Rescan tail can still hold complete documents (for
			// example after a duplicate was dropped): drain it first
			for d.State.Phase == PhaseRescan {
				if doc := d.State.Next(d.Max, nil, d.Scan); doc.Len() > 0 {
					d.State.DidReturnDocument = true
					return doc, nil
				}
			}
			return Document{}, io.EOF
		}
	}
}

// Drain repeatedly calls Next after the source has reached EOF,
// yielding every document still buffered in Rescan state. Callers that
// use Next in a loop until it returns io.EOF never need to call Drain
// separately -- it exists for callers that handle EOF out of band.
func (d *Driver) Drain() ([]Document, error) {
	var docs []Document
	for {
		doc, err := d.Next()
		if err == io.EOF {
			return docs, nil
		}
		if err != nil {
			return docs, err
		}
		docs = append(docs, doc)
	}
}
