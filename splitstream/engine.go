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

// ScanFunc is the contract a scanner must satisfy (package
// scanner provides XML, JSON, and UBJSON implementations).
//
// Scan examines buf starting from its first byte, mutating st's
// persistent fields (Depth, Counter, Last, Sub) as it goes. It returns
// end > 0 if a document terminated at byte offset end (exclusive)
// within buf; 0 means no document ended in this call. startSet is true
// and start holds the offset of the current document's first byte only
// when that byte occurred within this buf; otherwise the document
// began in an earlier chunk and start/startSet are meaningless (the
// caller must treat startSet == false as "unset", mirroring the
// source's size_t(-1) sentinel for *start).
type ScanFunc func(st *State, buf []byte) (end int, start int, startSet bool)

// atInit reports whether the engine is at a document boundary with
// nothing buffered: Phase is PhaseScanning (not mid-rescan-merge) and
// the scanner's own sub-state is its Init value (0).
func (s *State) atInit() bool {
	return s.Phase == PhaseScanning && s.Sub == 0
}

// Next drives scan over one chunk of input and returns the next
// completed document, or an empty Document if none terminated within
// buf. max bounds the size (in bytes) of any single document; documents
// that would exceed it are silently dropped and scanning resumes at
// the next document start (see spec.md §7 "Oversize document").
//
// Next implements the Rescan protocol: if the previous call left a
// trailing chunk fragment buffered (because a document terminated
// before the end of that chunk), that fragment is transparently
// prepended to buf before scan ever sees it, so scanners never need to
// know about chunk boundaries.
func (s *State) Next(max int, buf []byte, scan ScanFunc) Document {
	var rescanTail accumulator
	if s.Phase == PhaseRescan {
		rescanTail = s.doc
		s.doc = accumulator{}
		if len(buf) > 0 {
			rescanTail.append(s, buf)
		}
		s.Phase = PhaseScanning
		s.Sub = 0
		buf = rescanTail.buf
	}

	end, start, startSet := scan(s, buf)
	if !startSet {
		start = 0
	}

	var completed accumulator
	gotDoc := false
	if end > 0 {
		if startSet {
			// the document began in this chunk, so anything buffered
			// from an earlier chunk is not part of it
			s.doc.release(s)
		}
		completed = s.doc
		s.doc = accumulator{}
		gotDoc = true
		if len(buf) > 0 {
			completed.append(s, buf[start:end])
		}
		if len(completed.buf) > max {
			completed.release(s)
			gotDoc = false
		}
		if end < len(buf) {
			s.Phase = PhaseRescan
		} else {
			// nothing left to rescan: return straight to the
			// scanner's Init sub-state rather than leaving Sub at
			// whatever per-format "inside a document" value scan
			// left behind -- otherwise a document starting at the
			// very first byte of the next call would not be
			// recognized as a fresh start when StartDepth == 0
			// (only StartDepth > 0 sets start_out from a non-Init
			// sub-state). Mirrors the C source's unconditional
			// `s->state = State_Init` on this branch.
			s.Sub = 0
		}
		start = end
	}

	if !s.atInit() && start < len(buf) {
		if startSet {
			s.doc.release(s)
		} else if len(s.doc.buf)+len(buf)-start > max {
			s.doc.release(s)
			s.Phase = PhaseScanning
			s.Sub = 0
		}
		s.doc.append(s, buf[start:])
	}

	rescanTail.release(s)

	if !gotDoc {
		return Document{}
	}
	doc := completed.take()
	if s.dedup != nil && len(doc.buf) > 0 {
		if s.dedup.seen(hashDocument(doc.buf)) {
			doc.Release(s)
			return Document{}
		}
	}
	return doc
}
