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

// Package splitstream implements an incremental tokenizer/splitter
// engine: given a byte stream that is a concatenation of self-delimited
// XML, JSON, or UBJSON documents, it emits each complete top-level
// document as a standalone byte slice as soon as its terminator is
// seen, without ever requiring the full stream in memory.
package splitstream

import "github.com/rlyrenius/splitstream-go/pool"

// Phase is the Engine-level view of State's progress. It is kept
// separate from the scanner-private sub-state (State.Sub) rather than
// sharing one combined enum the way the C source does -- the source
// couples State_Init/State_Rescan into the same SplitstreamTokenizerState
// enum as the per-scanner states, which makes it easy to miscompare a
// scanner's own Init value against the engine's Rescan sentinel.
//
// There is no separate "Init" phase: a State is at a document boundary
// with nothing buffered whenever Phase == PhaseScanning and Sub == 0
// (see atInit), which is also the zero value of both fields, so a
// freshly constructed State needs no explicit initialization.
type Phase int

const (
	// PhaseScanning means scan is advancing normally; State.Sub holds
	// the scanner's private resume state, 0 meaning "at a document
	// boundary, nothing accumulated yet".
	PhaseScanning Phase = iota
	// PhaseRescan means State.doc holds a tail of the previous chunk
	// that must be concatenated with the next chunk and rescanned
	// from the top before further progress can be made.
	PhaseRescan
)

// State is the persistent, per-Engine state carried across chunk
// boundaries. It is the only memory a Scanner is permitted to retain
// between invocations; everything else scanners need is passed in on
// each call.
//
// The zero value is ready to use with StartDepth 0; use NewState to
// set a non-zero start depth.
type State struct {
	// StartDepth is the nesting depth at which top-level documents
	// are delimited. Immutable after construction.
	StartDepth int
	// Depth is the current nesting depth, maintained by the scanner.
	Depth int
	// Counter holds scanner-private scratch integers preserved across
	// resumes (dash/bracket runs for XML, backslash run for JSON,
	// remaining-bytes/accumulated-length for UBJSON).
	Counter [4]int
	// Last is the most recent input byte observed, needed by the XML
	// scanner to detect "/>".
	Last byte

	// Phase is the engine's progress marker; see Phase.
	Phase Phase
	// Sub is the scanner-private resume state, meaningful only when
	// Phase == PhaseScanning; 0 is each scanner's own Init state (see
	// atInit).
	Sub int

	// DidReturnDocument and FileEOF replace the source's Flags
	// bitfield (bits 8 and 16) with independent booleans -- the
	// numeric bit values were never persisted across the API boundary,
	// so there is nothing to preserve by keeping them packed.
	DidReturnDocument bool
	FileEOF           bool

	doc  accumulator
	pool *pool.Pool

	dedup *dedupWindow
}

// NewState constructs a State with the given start depth. A startDepth
// of 0 delimits top-level documents; a positive startDepth delimits
// the children of a wrapping container at that nesting depth.
func NewState(startDepth int) *State {
	if startDepth < 0 {
		startDepth = 0
	}
	return &State{StartDepth: startDepth}
}

// ensurePool lazily allocates the buffer pool backing this State's document
// accumulator, mirroring the source's "create mempool on first
// AppendDoc" behavior.
func (s *State) ensurePool() *pool.Pool {
	if s.pool == nil {
		s.pool = pool.New()
	}
	return s.pool
}

// Close tears down the State's buffer pool. It panics if any Document
// handed out by this State is still live (has not been released),
// matching the source's debug-mode mempool_Destroy(pool, check=true)
// abort -- releasing live documents before closing the Engine is the
// caller's responsibility.
func (s *State) Close() {
	s.doc.release(s)
	if s.pool != nil {
		if s.pool.Live() {
			panic(ErrPoolLeaked)
		}
		s.pool.Destroy(true)
		s.pool = nil
	}
}

// EnableDedup configures the State to silently drop documents that are
// byte-identical to the immediately preceding window of emitted
// documents. window is the number of recent document hashes retained;
// a window of 0 disables the feature. See dedup.go.
func (s *State) EnableDedup(window int) {
	if window <= 0 {
		s.dedup = nil
		return
	}
	s.dedup = newDedupWindow(window)
}
