// Copyright 2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package swiss is an open-addressing hash table used as the backing store
// for Avail's hash-array-mapped Map and Set values.
//
// The teacher (buf.build/go/hyperpb's internal/swiss) lays out control
// bytes, keys and values as one contiguous unsafe-cast allocation and probes
// it with an fxhash-derived (h1, h2) split for SIMD-friendly group scans.
// That layout cannot be ported without a compiler to check the pointer
// arithmetic, so this package keeps the same two ideas -- a secondary mixing
// function derived from fxhash's rotate-and-multiply step, and a tombstone
// scheme for deletions under open addressing -- implemented as an ordinary
// Go slice of entries addressed by a quadratic probe sequence.
package swiss

// mix applies a step derived from the teacher's fxhash: rotate the input,
// multiply it by a fixed odd constant as a full 128-bit product, and xor
// the product's high and low halves together. Used
// here to spread an Object's cached int32 hash across the
// full table, since that hash is optimized for aggregate composition, not
// for table placement.
func mix(h uint64) uint64 {
	const (
		rotate = 5
		key    = 0x517cc1b727220a95
	)
	h = (h<<rotate | h>>(64-rotate))
	hi, lo := mul128(h, key)
	return lo ^ hi
}

func mul128(a, b uint64) (hi, lo uint64) {
	const mask = 0xFFFFFFFF
	aLo, aHi := a&mask, a>>32
	bLo, bHi := b&mask, b>>32

	lo = aLo * bLo
	mid := aLo*bHi + aHi*bLo
	hi = aHi*bHi + mid>>32
	lo += mid << 32
	if lo < mid<<32 {
		hi++
	}
	return hi, lo
}

type state int8

const (
	empty state = iota
	full
	tombstone
)

type entry[K any, V any] struct {
	state state
	hash  uint64
	key   K
	value V
}

// Table is a generic open-addressing hash table.
//
// K need not be comparable with ==: callers supply the hash and equality
// functions, because Avail's own equality is not Go's built-in ==.
type Table[K any, V any] struct {
	entries           []entry[K, V]
	count, tombstones int
	hash              func(K) uint64
	eq                func(a, b K) bool
}

// New creates an empty table using hash for placement and eq for collision
// resolution.
func New[K any, V any](hash func(K) uint64, eq func(a, b K) bool) *Table[K, V] {
	return &Table[K, V]{hash: hash, eq: eq}
}

// Len returns the number of live entries.
func (t *Table[K, V]) Len() int { return t.count }

// Get looks up k, reporting whether it was found.
func (t *Table[K, V]) Get(k K) (V, bool) {
	var zero V
	if len(t.entries) == 0 {
		return zero, false
	}
	idx, found := t.find(k)
	if !found {
		return zero, false
	}
	return t.entries[idx].value, true
}

// Put inserts or overwrites k with v, returning the previous value if any.
func (t *Table[K, V]) Put(k K, v V) (old V, had bool) {
	if t.shouldGrow() {
		t.grow()
	}

	idx, found := t.find(k)
	if found {
		old = t.entries[idx].value
		t.entries[idx].value = v
		return old, true
	}

	slot := t.insertionSlot(k)
	if t.entries[slot].state == tombstone {
		t.tombstones--
	}
	t.entries[slot] = entry[K, V]{state: full, hash: mix(t.hash(k)), key: k, value: v}
	t.count++

	var zero V
	return zero, false
}

// Delete removes k, reporting whether it was present.
func (t *Table[K, V]) Delete(k K) bool {
	idx, found := t.find(k)
	if !found {
		return false
	}
	t.entries[idx] = entry[K, V]{state: tombstone}
	t.count--
	t.tombstones++
	return true
}

// All ranges over every live (key, value) pair in unspecified order.
func (t *Table[K, V]) All(yield func(K, V) bool) {
	for _, e := range t.entries {
		if e.state == full {
			if !yield(e.key, e.value) {
				return
			}
		}
	}
}

func (t *Table[K, V]) shouldGrow() bool {
	if len(t.entries) == 0 {
		return true
	}
	// Keep load (including tombstones, which also cost probe length) under
	// 7/8, matching the teacher's swisstable load factor.
	return (t.count+t.tombstones+1)*8 >= len(t.entries)*7
}

func (t *Table[K, V]) grow() {
	newSize := 16
	if len(t.entries) > 0 {
		newSize = len(t.entries) * 2
	}

	old := t.entries
	t.entries = make([]entry[K, V], newSize)
	t.count, t.tombstones = 0, 0

	for _, e := range old {
		if e.state != full {
			continue
		}
		slot := t.insertionSlot(e.key)
		t.entries[slot] = e
		t.count++
	}
}

// find returns the index of k's entry and true, or (_, false) if absent.
func (t *Table[K, V]) find(k K) (int, bool) {
	mask := uint64(len(t.entries) - 1)
	h := mix(t.hash(k))
	i := h & mask

	for step := uint64(1); ; step++ {
		e := &t.entries[i]
		switch e.state {
		case empty:
			return 0, false
		case full:
			if e.hash == h && t.eq(e.key, k) {
				return int(i), true
			}
		}
		i = (i + step) & mask
	}
}

// insertionSlot finds a slot for k, assuming it is known not to be present.
func (t *Table[K, V]) insertionSlot(k K) int {
	mask := uint64(len(t.entries) - 1)
	h := mix(t.hash(k))
	i := h & mask

	for step := uint64(1); ; step++ {
		if t.entries[i].state != full {
			return int(i)
		}
		i = (i + step) & mask
	}
}
