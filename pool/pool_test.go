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

package pool

import (
	"bytes"
	"testing"
)

func TestAllocZeroAndOnePromoteToOneQuantum(t *testing.T) {
	p := New()
	a := p.Alloc(0)
	if len(a) != 0 {
		t.Fatalf("Alloc(0) should report len 0, got %d", len(a))
	}
	b := p.Alloc(1)
	if len(b) != 1 {
		t.Fatalf("Alloc(1) should report len 1, got %d", len(b))
	}
	// both should have consumed exactly one quantum of the block
	if p.head == nil || p.head.mask != 0b11 {
		t.Fatalf("expected two quanta marked, mask=%b", p.head.mask)
	}
}

func TestAllocWriteIsolation(t *testing.T) {
	p := New()
	a := p.Alloc(Quantum)
	b := p.Alloc(Quantum)
	for i := range a {
		a[i] = 0xAA
	}
	for i := range b {
		b[i] = 0xBB
	}
	if bytes.ContainsRune(a, 0xBB) {
		t.Fatalf("allocation overlap: a contaminated by b's writes")
	}
}

func TestFreeThenReallocReusesQuanta(t *testing.T) {
	p := New()
	a := p.Alloc(Quantum)
	p.Free(a, Quantum)
	if p.Live() {
		t.Fatalf("pool should be empty after freeing the only allocation")
	}
	b := p.Alloc(Quantum)
	if len(b) != Quantum {
		t.Fatalf("got len %d", len(b))
	}
}

func TestBypassAllocation(t *testing.T) {
	p := New()
	big := p.Alloc(BlockSize + 1)
	if len(big) != BlockSize+1 {
		t.Fatalf("bypass alloc returned wrong size")
	}
	// Free on a bypass allocation must not panic or touch pool state
	p.Free(big, BlockSize+1)
	if p.Live() {
		t.Fatalf("bypass free should not mark the pool live")
	}
}

func TestReallocNeverShrinks(t *testing.T) {
	p := New()
	a := p.Alloc(10)
	b := p.Realloc(a, 10, 4)
	if &b[0] != &a[0] || len(b) != 10 {
		t.Fatalf("Realloc to a smaller size must be a no-op, got len %d", len(b))
	}
}

func TestReallocGrowsWithinSameQuantum(t *testing.T) {
	p := New()
	a := p.Alloc(5)
	copy(a, []byte("hello"))
	grown := p.Realloc(a, 5, 200)
	if len(grown) != 200 {
		t.Fatalf("expected len 200, got %d", len(grown))
	}
	if &grown[0] != &a[0] {
		t.Fatalf("growth within the same quantum must reuse the existing storage")
	}
	if string(grown[:5]) != "hello" {
		t.Fatalf("Realloc must preserve old contents, got %q", grown[:5])
	}
	// must actually have room to write the full 200 bytes
	for i := range grown {
		grown[i] = 0x42
	}
	if grown[199] != 0x42 {
		t.Fatalf("expected to be able to write through index 199")
	}
}

func TestReallocGrowsInPlaceWhenAdjacentIsFree(t *testing.T) {
	p := New()
	a := p.Alloc(Quantum)
	a[0] = 1
	grown := p.Realloc(a, Quantum, Quantum*2)
	if &grown[0] != &a[0] {
		t.Fatalf("expected in-place growth, got a new allocation")
	}
	if grown[0] != 1 {
		t.Fatalf("in-place growth must preserve existing bytes")
	}
}

func TestReallocCopiesWhenBlocked(t *testing.T) {
	p := New()
	a := p.Alloc(Quantum)
	blocker := p.Alloc(Quantum) // occupies the quantum right after a
	copy(a, []byte("hello"))
	grown := p.Realloc(a, Quantum, Quantum*2)
	if &grown[0] == &a[0] {
		t.Fatalf("expected a fresh allocation since the adjacent quantum is taken")
	}
	if string(grown[:5]) != "hello" {
		t.Fatalf("Realloc must preserve old contents, got %q", grown[:5])
	}
	_ = blocker
}

func TestDestroyChecksForLeaks(t *testing.T) {
	p := New()
	p.Alloc(Quantum)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Destroy(true) to panic with a live allocation outstanding")
		}
	}()
	p.Destroy(true)
}

func TestDestroyWithoutCheckNeverPanics(t *testing.T) {
	p := New()
	p.Alloc(Quantum)
	p.Destroy(false)
	if p.head != nil {
		t.Fatalf("Destroy should clear all blocks")
	}
}

func TestAllocSpillsToNewBlockWhenFirstIsFull(t *testing.T) {
	p := New()
	for i := 0; i < bitsPerWord; i++ {
		p.Alloc(Quantum)
	}
	if p.head.next != nil {
		t.Fatalf("first block should not have overflowed yet")
	}
	p.Alloc(Quantum)
	if p.head.next == nil {
		t.Fatalf("expected a second block to be chained once the first filled up")
	}
}
