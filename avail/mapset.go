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
	"sync"

	"github.com/lifehaxmax35/availtrig/internal/swiss"
	"github.com/lifehaxmax35/availtrig/object"
)

// objHash/objEq adapt Avail's descriptor-dispatched Object equality/hash
// (not Go's built-in comparisons) to what internal/swiss.Table requires.
func objHash(o *object.Object) uint64 { return uint64(uint32(o.Hash())) }
func objEq(a, b *object.Object) bool  { return a.Equals(b) }

// table is a mutex-guarded swiss table. The mutex is taken unconditionally
// rather than only for Shared objects: contention is impossible for a
// single-owner Mutable map, so the cost is one uncontended lock/unlock per
// operation, and it means a map that later transitions Mutable -> Shared
// needs no representation
// change at all, only its descriptor's Mutability to flip.
type table struct {
	mu sync.RWMutex
	t  *swiss.Table[*object.Object, *object.Object]
}

func newTable() *table {
	return &table{t: swiss.New[*object.Object, *object.Object](objHash, objEq)}
}

type mapDescriptor struct {
	mut object.Mutability
}

func (d *mapDescriptor) Representation() string { return "map" }
func (d *mapDescriptor) Mutability() object.Mutability { return d.mut }
func (d *mapDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &mapDescriptor{mut: m}
}
func (d *mapDescriptor) Equals(self, other *object.Object) bool {
	od, ok := other.Descriptor().(*mapDescriptor)
	if !ok {
		return false
	}
	_ = od
	st, ot := self.Payload().(*table), other.Payload().(*table)
	st.mu.RLock()
	defer st.mu.RUnlock()
	ot.mu.RLock()
	defer ot.mu.RUnlock()
	if st.t.Len() != ot.t.Len() {
		return false
	}
	equal := true
	st.t.All(func(k, v *object.Object) bool {
		ov, found := ot.t.Get(k)
		if !found || !v.Equals(ov) {
			equal = false
			return false
		}
		return true
	})
	return equal
}
func (d *mapDescriptor) Hash(self *object.Object) int32 {
	st := self.Payload().(*table)
	st.mu.RLock()
	defer st.mu.RUnlock()
	// Map hash must not depend on iteration/insertion order, so sum each
	// entry's combined key/value hash rather than folding positionally.
	var sum int32
	st.t.All(func(k, v *object.Object) bool {
		sum += k.Hash()*31 + v.Hash()
		return true
	})
	return sum
}
func (d *mapDescriptor) Kind(self *object.Object) *object.Object { return nil }

// NewMap creates an empty Map.
func NewMap() *object.Object {
	return object.New(&mapDescriptor{mut: object.Mutable}, nil, nil, newTable())
}

// IsMap reports whether o is a Map.
func IsMap(o *object.Object) bool {
	_, ok := o.Descriptor().(*mapDescriptor)
	return ok
}

// MapSize returns the number of entries in a Map.
func MapSize(o *object.Object) int {
	t := o.Payload().(*table)
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.t.Len()
}

// MapAt looks up key, reporting whether it was found.
func MapAt(o *object.Object, key *object.Object) (*object.Object, bool) {
	t := o.Payload().(*table)
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.t.Get(key)
}

// MapAtPuttingCanDestroy returns a Map equal to o but with key mapped to
// value. If canDestroy is true and o is uniquely owned (Mutable), the
// update happens in place; otherwise a fresh copy-on-write Map is built,
// matching Avail's standard "CanDestroy" convention for persistent-looking
// but destructively-updatable collections.
func MapAtPuttingCanDestroy(o *object.Object, key, value *object.Object, canDestroy bool) *object.Object {
	if canDestroy && o.MutabilityState() == object.Mutable {
		t := o.Payload().(*table)
		t.mu.Lock()
		t.t.Put(key, value)
		t.mu.Unlock()
		o.SetPayload(t) // invalidate any cached hash
		return o
	}
	fresh := newTable()
	old := o.Payload().(*table)
	old.mu.RLock()
	old.t.All(func(k, v *object.Object) bool {
		fresh.t.Put(k, v)
		return true
	})
	old.mu.RUnlock()
	fresh.t.Put(key, value)
	return object.New(&mapDescriptor{mut: object.Mutable}, nil, nil, fresh)
}

// MapAll iterates every (key, value) pair of a Map in unspecified order.
func MapAll(o *object.Object, yield func(k, v *object.Object) bool) {
	t := o.Payload().(*table)
	t.mu.RLock()
	defer t.mu.RUnlock()
	t.t.All(yield)
}

// --- Set ---

type setTable struct {
	mu sync.RWMutex
	t  *swiss.Table[*object.Object, struct{}]
}

func newSetTable() *setTable {
	return &setTable{t: swiss.New[*object.Object, struct{}](objHash, objEq)}
}

type setDescriptor struct {
	mut object.Mutability
}

func (d *setDescriptor) Representation() string { return "set" }
func (d *setDescriptor) Mutability() object.Mutability { return d.mut }
func (d *setDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &setDescriptor{mut: m}
}
func (d *setDescriptor) Equals(self, other *object.Object) bool {
	od, ok := other.Descriptor().(*setDescriptor)
	if !ok {
		return false
	}
	_ = od
	st, ot := self.Payload().(*setTable), other.Payload().(*setTable)
	st.mu.RLock()
	defer st.mu.RUnlock()
	ot.mu.RLock()
	defer ot.mu.RUnlock()
	if st.t.Len() != ot.t.Len() {
		return false
	}
	equal := true
	st.t.All(func(k *object.Object, _ struct{}) bool {
		if _, found := ot.t.Get(k); !found {
			equal = false
			return false
		}
		return true
	})
	return equal
}
func (d *setDescriptor) Hash(self *object.Object) int32 {
	st := self.Payload().(*setTable)
	st.mu.RLock()
	defer st.mu.RUnlock()
	var sum int32
	st.t.All(func(k *object.Object, _ struct{}) bool {
		sum += k.Hash()
		return true
	})
	return sum
}
func (d *setDescriptor) Kind(self *object.Object) *object.Object { return nil }

// NewSet creates an empty Set.
func NewSet() *object.Object {
	return object.New(&setDescriptor{mut: object.Mutable}, nil, nil, newSetTable())
}

// SetSize returns the number of elements in a Set.
func SetSize(o *object.Object) int {
	t := o.Payload().(*setTable)
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.t.Len()
}

// SetHasElement reports whether value is a member of the Set.
func SetHasElement(o *object.Object, value *object.Object) bool {
	t := o.Payload().(*setTable)
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, found := t.t.Get(value)
	return found
}

// SetWithElementCanDestroy mirrors MapAtPuttingCanDestroy's update
// convention for set insertion.
func SetWithElementCanDestroy(o *object.Object, value *object.Object, canDestroy bool) *object.Object {
	if canDestroy && o.MutabilityState() == object.Mutable {
		t := o.Payload().(*setTable)
		t.mu.Lock()
		t.t.Put(value, struct{}{})
		t.mu.Unlock()
		o.SetPayload(t) // invalidate any cached hash
		return o
	}
	fresh := newSetTable()
	old := o.Payload().(*setTable)
	old.mu.RLock()
	old.t.All(func(k *object.Object, _ struct{}) bool {
		fresh.t.Put(k, struct{}{})
		return true
	})
	old.mu.RUnlock()
	fresh.t.Put(value, struct{}{})
	return object.New(&setDescriptor{mut: object.Mutable}, nil, nil, fresh)
}
