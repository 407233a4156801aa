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

// Document is an owned byte buffer handed to the caller once a
// document's terminator has been observed. Ownership transfers on
// emit; callers must call Release (which returns the storage to the
// State's pool, if it came from one) when they are done with it.
type Document struct {
	buf []byte
}

// Bytes returns the document's contents. The slice is only valid
// until Release is called.
func (d *Document) Bytes() []byte {
	return d.buf
}

// Len returns the document's length in bytes.
func (d *Document) Len() int {
	return len(d.buf)
}

// Release returns the document's storage to state's pool and clears
// the document. Calling Release on an already-released (or zero)
// Document is a no-op.
//
// One historical build of the source library set length = 1 on freed
// documents; spec.md calls that out as a bug to not reproduce, so
// Release zeros both buf and its length here.
func (d *Document) Release(state *State) {
	if d.buf == nil {
		return
	}
	if state != nil && state.pool != nil {
		state.pool.Free(d.buf, len(d.buf))
	}
	d.buf = nil
}

// accumulator owns the partially-assembled bytes of the document
// currently being scanned. It is built on top of a State's pool.
type accumulator struct {
	buf []byte
}

// append copies data onto the end of the accumulator, growing its
// backing storage via the state's pool as needed.
func (a *accumulator) append(s *State, data []byte) {
	if len(data) == 0 {
		return
	}
	p := s.ensurePool()
	if a.buf == nil {
		a.buf = p.Alloc(len(data))
		copy(a.buf, data)
		return
	}
	prevLen := len(a.buf)
	grown := p.Realloc(a.buf, prevLen, prevLen+len(data))
	copy(grown[prevLen:], data)
	a.buf = grown
}

// take detaches the accumulator's buffer into a Document, leaving the
// accumulator empty without freeing the storage (ownership transfers
// to the returned Document).
func (a *accumulator) take() Document {
	d := Document{buf: a.buf}
	a.buf = nil
	return d
}

// release frees the accumulator's buffer back to the pool and clears it.
func (a *accumulator) release(s *State) {
	if a.buf == nil {
		return
	}
	if s.pool != nil {
		s.pool.Free(a.buf, len(a.buf))
	}
	a.buf = nil
}
