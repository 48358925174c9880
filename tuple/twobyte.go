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

// twoByteDescriptor backs TwoByteString: text whose code points all fit in
// 16 bits but which contains at least one point above 255, so ByteString
// would not suffice.
type twoByteDescriptor struct {
	mut object.Mutability
}

func (d *twoByteDescriptor) Representation() string { return "two-byte-string" }
func (d *twoByteDescriptor) Mutability() object.Mutability { return d.mut }
func (d *twoByteDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &twoByteDescriptor{mut: m}
}
func (d *twoByteDescriptor) Equals(self, other *object.Object) bool {
	return StructuralEquals(self, other)
}
func (d *twoByteDescriptor) Hash(self *object.Object) int32 { return StructuralHash(self) }
func (d *twoByteDescriptor) Kind(self *object.Object) *object.Object { return nil }
func (d *twoByteDescriptor) Size(self *object.Object) int {
	return len(self.Payload().([]uint16))
}
func (d *twoByteDescriptor) ElementAt(self *object.Object, i int) *object.Object {
	return numeric.NewSmall(int64(self.Payload().([]uint16)[i]))
}

// NewTwoByteString builds a TwoByteString from code points, each of which
// must fit in 16 bits.
func NewTwoByteString(codePoints []uint16) *object.Object {
	buf := make([]uint16, len(codePoints))
	copy(buf, codePoints)
	return object.New(&twoByteDescriptor{mut: object.Mutable}, nil, nil, buf)
}
