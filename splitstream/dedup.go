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
	"github.com/dchest/siphash"
	"golang.org/x/exp/slices"
)

// dedupKey0 and dedupKey1 are fixed SipHash keys. They only need to
// resist accidental collisions between unrelated documents within the
// dedup window, not withstand an adversary, so (unlike an
// authentication use of SipHash) a fixed key pair is fine -- the same
// reasoning sneller's Splitter.partition applies when hashing blob
// ETags to choose a worker.
const (
	dedupKey0 = 0x5d1ec810
	dedupKey1 = 0xfebed702
)

// dedupWindow remembers the SipHash of the last N emitted documents so
// State.Next can silently drop a repeat of any of them. This supplements
// spec.md: back-to-back duplicate records (e.g. heartbeats resent by a
// flaky producer) are common in socket-fed ingest, and the original
// splitstream_py.c Python binding left this entirely to its callers.
type dedupWindow struct {
	hashes []uint64
	cap    int
	next   int
}

func newDedupWindow(window int) *dedupWindow {
	return &dedupWindow{cap: window}
}

// seen reports whether hash was already present in the window, and
// records it (evicting the oldest entry once the window is full).
func (d *dedupWindow) seen(hash uint64) bool {
	if slices.Index(d.hashes, hash) >= 0 {
		return true
	}
	if len(d.hashes) < d.cap {
		d.hashes = append(d.hashes, hash)
	} else {
		d.hashes[d.next] = hash
		d.next = (d.next + 1) % d.cap
	}
	return false
}

func hashDocument(buf []byte) uint64 {
	return siphash.Hash(dedupKey0, dedupKey1, buf)
}
