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

import "github.com/lifehaxmax35/availtrig/numeric"
import "github.com/lifehaxmax35/availtrig/object"

// smallIntervalPayload represents an arithmetic progression whose start and
// step both fit in an int64 -- the overwhelmingly common case (numeric
// ranges written in source as "low to high").
type smallIntervalPayload struct {
	start, step int64
	count       int
}

type smallIntervalDescriptor struct {
	mut object.Mutability
}

func (d *smallIntervalDescriptor) Representation() string { return "small-integer-interval-tuple" }
func (d *smallIntervalDescriptor) Mutability() object.Mutability { return d.mut }
func (d *smallIntervalDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &smallIntervalDescriptor{mut: m}
}
func (d *smallIntervalDescriptor) Equals(self, other *object.Object) bool {
	if od, ok := other.Descriptor().(*smallIntervalDescriptor); ok {
		p, op := self.Payload().(smallIntervalPayload), other.Payload().(smallIntervalPayload)
		_ = od
		if p == op {
			return true
		}
	}
	return StructuralEquals(self, other)
}
func (d *smallIntervalDescriptor) Hash(self *object.Object) int32 { return StructuralHash(self) }
func (d *smallIntervalDescriptor) Kind(self *object.Object) *object.Object { return nil }
func (d *smallIntervalDescriptor) Size(self *object.Object) int {
	return self.Payload().(smallIntervalPayload).count
}
func (d *smallIntervalDescriptor) ElementAt(self *object.Object, i int) *object.Object {
	p := self.Payload().(smallIntervalPayload)
	return numeric.NewSmall(p.start + int64(i)*p.step)
}

// NewSmallIntegerIntervalTuple builds an arithmetic-progression tuple
// start, start+step, start+2*step, ... of the given count (count >= 0).
func NewSmallIntegerIntervalTuple(start, step int64, count int) *object.Object {
	return object.New(&smallIntervalDescriptor{mut: object.Mutable}, nil, nil,
		smallIntervalPayload{start: start, step: step, count: count})
}

// intervalPayload represents an arithmetic progression whose start or step
// exceeds int64 range, falling back to the general Integer representation
// for its two parameters.
type intervalPayload struct {
	start, step *object.Object
	count       int
}

type intervalDescriptor struct {
	mut object.Mutability
}

func (d *intervalDescriptor) Representation() string { return "integer-interval-tuple" }
func (d *intervalDescriptor) Mutability() object.Mutability { return d.mut }
func (d *intervalDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &intervalDescriptor{mut: m}
}
func (d *intervalDescriptor) Equals(self, other *object.Object) bool {
	return StructuralEquals(self, other)
}
func (d *intervalDescriptor) Hash(self *object.Object) int32 { return StructuralHash(self) }
func (d *intervalDescriptor) Kind(self *object.Object) *object.Object { return nil }
func (d *intervalDescriptor) Size(self *object.Object) int {
	return self.Payload().(intervalPayload).count
}
func (d *intervalDescriptor) ElementAt(self *object.Object, i int) *object.Object {
	p := self.Payload().(intervalPayload)
	step, err := numeric.Multiply(p.step, numeric.NewSmall(int64(i)))
	if err != nil {
		panic(err) // unreachable: multiplying by a finite small integer never fails
	}
	sum, err := numeric.Add(p.start, step)
	if err != nil {
		panic(err)
	}
	return sum
}

// NewIntegerIntervalTuple builds an arithmetic-progression tuple whose
// start/step are arbitrary-precision integers.
func NewIntegerIntervalTuple(start, step *object.Object, count int) *object.Object {
	if s, ok := numeric.AsInt64(start); ok {
		if st, ok2 := numeric.AsInt64(step); ok2 {
			return NewSmallIntegerIntervalTuple(s, st, count)
		}
	}
	return object.New(&intervalDescriptor{mut: object.Mutable}, nil, nil,
		intervalPayload{start: start, step: step, count: count})
}
