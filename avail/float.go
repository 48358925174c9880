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

package avail

import (
	"math"

	"github.com/lifehaxmax35/availtrig/object"
)

// float32Descriptor represents a single-precision float as its IEEE-754
// bit pattern in the object's first integer slot.
//
// Comparing two distinct Float32 objects that happen to hold the same bit
// pattern opportunistically coalesces them: the non-canonical one becomes
// a transparent indirection to the other.
type float32Descriptor struct {
	mut object.Mutability
}

func (d *float32Descriptor) Representation() string { return "float32" }
func (d *float32Descriptor) Mutability() object.Mutability { return d.mut }
func (d *float32Descriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &float32Descriptor{mut: m}
}

func (d *float32Descriptor) Equals(self, other *object.Object) bool {
	od, ok := other.Descriptor().(*float32Descriptor)
	if !ok {
		return false
	}
	sameBits := self.IntSlot(0) == other.IntSlot(0)
	if !sameBits {
		return false
	}
	_ = od
	// Coalesce duplicate representations when it is safe to do so. Shared
	// objects must never be rewritten to an indirection outside of their
	// own monitor, so this is skipped for them; the comparison result is
	// unaffected either way.
	if self != other && self.MutabilityState() != object.Shared {
		self.BecomeIndirectionTo(other)
	}
	return true
}

func (d *float32Descriptor) Hash(self *object.Object) int32 {
	bits := self.IntSlot(0)
	h := bits ^ int32(uint32(bits)>>16)
	return h*0x45d9f3b + 1
}

func (d *float32Descriptor) Kind(self *object.Object) *object.Object { return nil }

// NewFloat32 builds a Float32 Object from a Go float32.
func NewFloat32(v float32) *object.Object {
	bits := int32(math.Float32bits(v))
	return object.New(&float32Descriptor{mut: object.Mutable}, nil, []int32{bits}, nil)
}

// AsFloat32 returns o's value as a Go float32, if o is a Float32.
func AsFloat32(o *object.Object) (float32, bool) {
	d, ok := o.Descriptor().(*float32Descriptor)
	if !ok {
		return 0, false
	}
	_ = d
	return math.Float32frombits(uint32(o.IntSlot(0))), true
}
