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

package tuple

import (
	"sort"

	"github.com/lifehaxmax35/availtrig/object"
)

// zone is one contiguous run of a SpliceTuple, reading length elements of
// source starting at sourceOffset, placed starting at start in the
// spliced tuple's own index space.
type zone struct {
	start        int
	length       int
	source       *object.Object
	sourceOffset int
}

// splicePayload describes a tuple built by overlaying one or more edited
// zones onto a base, without copying the untouched parts. This is what backs single-element "update at index"
// operations on a large tuple in O(log n + edits) instead of O(n).
type splicePayload struct {
	zones []zone
	size  int
}

type spliceDescriptor struct {
	mut object.Mutability
}

func (d *spliceDescriptor) Representation() string { return "splice-tuple" }
func (d *spliceDescriptor) Mutability() object.Mutability { return d.mut }
func (d *spliceDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &spliceDescriptor{mut: m}
}
func (d *spliceDescriptor) Equals(self, other *object.Object) bool {
	return StructuralEquals(self, other)
}
func (d *spliceDescriptor) Hash(self *object.Object) int32 { return StructuralHash(self) }
func (d *spliceDescriptor) Kind(self *object.Object) *object.Object { return nil }
func (d *spliceDescriptor) Size(self *object.Object) int {
	return self.Payload().(splicePayload).size
}
func (d *spliceDescriptor) ElementAt(self *object.Object, i int) *object.Object {
	p := self.Payload().(splicePayload)
	// Binary search for the last zone whose start is <= i.
	n := sort.Search(len(p.zones), func(k int) bool { return p.zones[k].start > i }) - 1
	z := p.zones[n]
	return rawElementAt(z.source, z.sourceOffset+(i-z.start))
}

// newSplice builds a SpliceTuple directly from an already-computed zone
// list and total size. It is unexported; ReplaceAt is its only caller.
func newSplice(zones []zone, size int) *object.Object {
	return object.New(&spliceDescriptor{mut: object.Mutable}, nil, nil, splicePayload{zones: zones, size: size})
}

// ReplaceAt returns a new tuple equal to base except that position i (0
// indexed) holds value instead. It never mutates base.
func ReplaceAt(base *object.Object, i int, value *object.Object) *object.Object {
	n := Size(base)
	zones := make([]zone, 0, 3)
	if i > 0 {
		zones = append(zones, zone{start: 0, length: i, source: base, sourceOffset: 0})
	}
	zones = append(zones, zone{start: i, length: 1, source: NewObjectTuple([]*object.Object{value}), sourceOffset: 0})
	if i+1 < n {
		zones = append(zones, zone{start: i + 1, length: n - i - 1, source: base, sourceOffset: i + 1})
	}
	return newSplice(zones, n)
}
