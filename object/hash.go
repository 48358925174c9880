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

package object

// preToggle is xored into every element hash before it is folded into an
// aggregate, so that a tuple of all-zero-hash elements does not collapse to
// a zero aggregate.
const preToggle = int32(0x29F5BA83)

// multiplier is the fixed odd multiplier used to combine element hashes
// into one aggregate across every tuple/string representation:
//
//	H = sum_i  multiplier^i * (hash(element_i) xor preToggle)
//
// Every representation of the same abstract sequence must compute this same
// polynomial regardless of physical layout, which is why
// the formula lives here rather than being duplicated per representation.
const multiplier = int32(1664525)

// HashCombiner accumulates a representation-independent polynomial hash one
// element at a time, in order, implementing the P3 formula above without
// requiring callers to materialize multiplier^i themselves.
type HashCombiner struct {
	acc   int32
	power int32
}

// NewHashCombiner starts a fresh accumulation.
func NewHashCombiner() *HashCombiner {
	return &HashCombiner{power: 1}
}

// Append folds in the hash of the next element of the sequence.
func (c *HashCombiner) Append(elementHash int32) {
	c.acc += c.power * (elementHash ^ preToggle)
	c.power *= multiplier
}

// Sum returns the combined hash so far.
func (c *HashCombiner) Sum() int32 {
	return c.acc
}

// CombineHashes is a convenience wrapper around HashCombiner for when every
// element hash is already available as a slice, e.g. when rehashing a
// ObjectTuple's cached per-slot hashes.
func CombineHashes(elementHashes []int32) int32 {
	c := NewHashCombiner()
	for _, h := range elementHashes {
		c.Append(h)
	}
	return c.Sum()
}
