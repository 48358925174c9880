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

// Package tuple implements Avail's polymorphic tuple/string library: eight
// physical representations of the same abstract "ordered sequence" value,
// chosen automatically for compactness and promoted transparently when an
// operation would overflow the current one.
//
// Every representation's descriptor implements Indexable, so generic code
// (equality, hashing, concatenation, iteration) never needs to know which
// of the eight physical layouts it is holding -- full representation
// transparency. buf.build/go/hyperpb achieves an analogous effect for
// protobuf field storage by picking among several compact physical
// encodings (packed repeated fields, small-int fast paths, pointer-chasing
// for larger messages) behind one Field API; this package is that same
// idea applied to sequences instead of message fields.
package tuple

import (
	"github.com/lifehaxmax35/availtrig/errs"
	"github.com/lifehaxmax35/availtrig/object"
)

// Indexable is implemented by every tuple/string descriptor. Size and
// ElementAt both take the 0-indexed position; Avail source syntax is
// 1-indexed, but that translation belongs to the interpreter/parser layer,
// not this library.
type Indexable interface {
	object.Descriptor
	Size(self *object.Object) int
	ElementAt(self *object.Object, i int) *object.Object
}

// Size returns o's length, or 0 if o is not a tuple representation.
func Size(o *object.Object) int {
	ix, ok := o.Descriptor().(Indexable)
	if !ok {
		return 0
	}
	return ix.Size(o)
}

// IsTuple reports whether o is any representation defined by this package.
func IsTuple(o *object.Object) bool {
	_, ok := o.Descriptor().(Indexable)
	return ok
}

// ElementAt returns the element at 0-indexed position i, or
// errs.SubscriptOutOfBounds if i is out of range, or errs.NoImplementation
// if o is not a tuple representation at all.
func ElementAt(o *object.Object, i int) (*object.Object, error) {
	ix, ok := o.Descriptor().(Indexable)
	if !ok {
		return nil, errs.New(errs.NoImplementation)
	}
	if i < 0 || i >= ix.Size(o) {
		return nil, errs.Newf(errs.SubscriptOutOfBounds, "index %d, size %d", i, ix.Size(o))
	}
	return ix.ElementAt(o, i), nil
}

// All iterates every element of o in order. It is a no-op if o is not a
// tuple representation.
func All(o *object.Object) func(yield func(int, *object.Object) bool) {
	return func(yield func(int, *object.Object) bool) {
		ix, ok := o.Descriptor().(Indexable)
		if !ok {
			return
		}
		n := ix.Size(o)
		for i := 0; i < n; i++ {
			if !yield(i, ix.ElementAt(o, i)) {
				return
			}
		}
	}
}

// StructuralEquals is the generic representation-independent fallback used
// by every descriptor's Equals implementation: two
// tuples of possibly different physical representation are equal iff they
// have the same size and pairwise-equal elements, in order.
func StructuralEquals(a, b *object.Object) bool {
	ai, aok := a.Descriptor().(Indexable)
	bi, bok := b.Descriptor().(Indexable)
	if !aok || !bok {
		return false
	}
	n := ai.Size(a)
	if n != bi.Size(b) {
		return false
	}
	for i := 0; i < n; i++ {
		if !ai.ElementAt(a, i).Equals(bi.ElementAt(b, i)) {
			return false
		}
	}
	return true
}

// StructuralHash computes the representation-independent polynomial hash
// by combining every element's hash in order.
func StructuralHash(o *object.Object) int32 {
	ix := o.Descriptor().(Indexable)
	n := ix.Size(o)
	c := object.NewHashCombiner()
	for i := 0; i < n; i++ {
		c.Append(ix.ElementAt(o, i).Hash())
	}
	return c.Sum()
}

// elements materializes every element of o into a slice, used by
// constructors (Concat, FromElements promotion logic) that need random
// access while deciding on a new representation.
func elements(o *object.Object) []*object.Object {
	ix := o.Descriptor().(Indexable)
	n := ix.Size(o)
	out := make([]*object.Object, n)
	for i := 0; i < n; i++ {
		out[i] = ix.ElementAt(o, i)
	}
	return out
}
