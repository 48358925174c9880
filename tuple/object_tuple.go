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

import "github.com/lifehaxmax35/availtrig/object"

// objectTupleDescriptor is the fully general fallback representation: an
// arbitrary sequence of Objects. It is the only representation that uses
// Object's built-in objectSlots directly as its element storage, since an
// ObjectTuple's "slots" and its tuple elements are the same thing.
type objectTupleDescriptor struct {
	mut object.Mutability
}

func (d *objectTupleDescriptor) Representation() string { return "object-tuple" }
func (d *objectTupleDescriptor) Mutability() object.Mutability { return d.mut }
func (d *objectTupleDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &objectTupleDescriptor{mut: m}
}
func (d *objectTupleDescriptor) Equals(self, other *object.Object) bool {
	return StructuralEquals(self, other)
}
func (d *objectTupleDescriptor) Hash(self *object.Object) int32 { return StructuralHash(self) }
func (d *objectTupleDescriptor) Kind(self *object.Object) *object.Object { return nil }
func (d *objectTupleDescriptor) Size(self *object.Object) int { return len(self.ObjectSlots()) }
func (d *objectTupleDescriptor) ElementAt(self *object.Object, i int) *object.Object {
	return self.ObjectSlot(i)
}

// NewObjectTuple builds an ObjectTuple from elements. It copies the slice
// so later mutation of the caller's backing array cannot be observed
// through the tuple.
func NewObjectTuple(elems []*object.Object) *object.Object {
	slots := make([]*object.Object, len(elems))
	copy(slots, elems)
	return object.New(&objectTupleDescriptor{mut: object.Mutable}, slots, nil, nil)
}

func isObjectTuple(o *object.Object) bool {
	_, ok := o.Descriptor().(*objectTupleDescriptor)
	return ok
}
