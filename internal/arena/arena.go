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

// Package arena provides a chunked bump allocator that hands out small
// integer handles instead of pointers.
//
// # Design
//
// The teacher's internal/arena (buf.build/go/hyperpb) bump-allocates raw
// bytes and returns unsafe.Pointer-derived *T values, relying on a
// self-referential chunk header to keep the GC from collecting live arena
// memory. That trick only pays off when checked against a compiler; this
// module is built without ever invoking the Go toolchain, so we keep the
// bump-allocation *idea* (grow-only, amortized O(1) allocation, bulk Reset)
// but replace unsafe.Pointer arithmetic with typed slices and small integer
// handles -- the "arena + index handles" substitution the specification's
// own Design Notes call for in place of raw pointer graphs.
//
// A handle ([ID]) is valid only for the [Arena] that produced it; handles
// from different arenas must never be mixed.
package arena

import "github.com/lifehaxmax35/availtrig/internal/dbg"

// ID is a handle into an Arena[T]. The zero ID is never allocated, so it
// doubles as a "no value" sentinel.
type ID uint32

// Valid reports whether id was actually produced by an allocation.
func (id ID) Valid() bool { return id != 0 }

// chunkBits is the number of low bits of an ID reserved for the offset
// within a chunk. 20 bits means a single chunk can hold up to 2^20
// elements before the arena moves on to the next one.
const chunkBits = 20

const defaultChunkSize = 256

// Arena is a grow-only store of T values, indexed by [ID]. It never moves or
// frees an individual element: Reset invalidates every ID at once by
// discarding all chunks, matching the teacher's Arena.Free bulk-release
// semantics.
type Arena[T any] struct {
	chunks    [][]T
	chunkSize int
}

// New creates an Arena whose first chunk holds chunkSize elements (a
// non-positive value selects a sensible default). Later chunks double in
// size, the way the teacher's arena doubles its block size on growth.
func New[T any](chunkSize int) *Arena[T] {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Arena[T]{chunkSize: chunkSize}
}

// Alloc stores value on the arena and returns a handle to it.
func (a *Arena[T]) Alloc(value T) ID {
	if len(a.chunks) == 0 || len(a.chunks[len(a.chunks)-1]) == cap(a.chunks[len(a.chunks)-1]) {
		size := a.chunkSize
		if len(a.chunks) > 0 {
			size = cap(a.chunks[len(a.chunks)-1]) * 2
		}
		a.chunks = append(a.chunks, make([]T, 0, size))
		dbg.Log("arena", "grow", "chunk", len(a.chunks)-1, "cap", size)
	}

	last := len(a.chunks) - 1
	a.chunks[last] = append(a.chunks[last], value)
	return idOf(last, len(a.chunks[last])-1)
}

// Get dereferences a handle previously returned by Alloc. It panics if id is
// invalid or was not produced by this arena.
func (a *Arena[T]) Get(id ID) *T {
	chunk, offset := locate(id)
	return &a.chunks[chunk][offset]
}

// Len returns the number of elements allocated so far.
func (a *Arena[T]) Len() int {
	n := 0
	for _, c := range a.chunks {
		n += len(c)
	}
	return n
}

// Reset discards every chunk, invalidating all handles previously returned
// by Alloc.
func (a *Arena[T]) Reset() {
	a.chunks = nil
}

func idOf(chunk, offset int) ID {
	if offset >= 1<<chunkBits {
		panic("arena: chunk grew past the maximum representable offset")
	}
	return ID(uint32(chunk)<<chunkBits|uint32(offset)) + 1
}

func locate(id ID) (chunk, offset int) {
	if !id.Valid() {
		panic("arena: use of zero ID")
	}
	raw := uint32(id) - 1
	return int(raw >> chunkBits), int(raw & (1<<chunkBits - 1))
}
