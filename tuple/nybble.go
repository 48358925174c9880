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
	"github.com/lifehaxmax35/availtrig/numeric"
	"github.com/lifehaxmax35/availtrig/object"
)

// nybblePayload packs two 4-bit values per byte, the most compact of the
// eight representations -- used for tuples of small integers 0-15, which
// arise constantly as instruction operands and small enumerations.
type nybblePayload struct {
	data   []byte
	length int
}

type nybbleDescriptor struct {
	mut object.Mutability
}

func (d *nybbleDescriptor) Representation() string { return "nybble-tuple" }
func (d *nybbleDescriptor) Mutability() object.Mutability { return d.mut }
func (d *nybbleDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &nybbleDescriptor{mut: m}
}
func (d *nybbleDescriptor) Equals(self, other *object.Object) bool {
	return StructuralEquals(self, other)
}
func (d *nybbleDescriptor) Hash(self *object.Object) int32 { return StructuralHash(self) }
func (d *nybbleDescriptor) Kind(self *object.Object) *object.Object { return nil }
func (d *nybbleDescriptor) Size(self *object.Object) int {
	return self.Payload().(nybblePayload).length
}
func (d *nybbleDescriptor) ElementAt(self *object.Object, i int) *object.Object {
	p := self.Payload().(nybblePayload)
	b := p.data[i/2]
	if i%2 == 0 {
		return numeric.NewSmall(int64(b & 0x0F))
	}
	return numeric.NewSmall(int64(b >> 4))
}

// NewNybbleTuple builds a NybbleTuple from values, each of which must be in
// [0, 15].
func NewNybbleTuple(values []byte) *object.Object {
	data := make([]byte, (len(values)+1)/2)
	for i, v := range values {
		v &= 0x0F
		if i%2 == 0 {
			data[i/2] |= v
		} else {
			data[i/2] |= v << 4
		}
	}
	return object.New(&nybbleDescriptor{mut: object.Mutable}, nil, nil, nybblePayload{data: data, length: len(values)})
}

// fitsInNybbles reports whether every value in values is in [0, 15].
func fitsInNybbles(values []int64) bool {
	for _, v := range values {
		if v < 0 || v > 15 {
			return false
		}
	}
	return true
}
