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

// Package object implements the uniform tagged-object runtime: every Avail value -- integers, tuples, atoms, maps, phrases,
// types, functions -- is a single Object type whose behavior is dispatched
// through a per-object Descriptor.
//
// buf.build/go/hyperpb achieves a similar "one shape, many behaviors"
// effect with its Type/typeHeader pair: a Type is just a pointer into a
// flattened, arena-allocated byte blob, and every operation on it (field
// lookup, parsing, reflection) dispatches through function pointers baked
// into that blob by the compiler. We keep the same idea -- a small fixed Go
// struct whose behavior is entirely delegated to a swappable Descriptor
// value -- but drop the unsafe byte-blob layout in favor of ordinary
// slices, replacing raw pointer graphs with safe, GC-friendly structures.
//
// Classic double-dispatch equality ("this.equals(other) asks
// other.equalsFoo(this)") is collapsed to a single virtual Equals method
// with an internal fast path instead.
package object

import "github.com/lifehaxmax35/availtrig/internal/dbg"

// Mutability is the three-state lattice every descriptor/object pair moves
// through: Mutable -> Immutable -> Shared, never in reverse.
type Mutability uint8

const (
	Mutable Mutability = iota
	Immutable
	Shared
)

// String implements fmt.Stringer.
func (m Mutability) String() string {
	switch m {
	case Mutable:
		return "mutable"
	case Immutable:
		return "immutable"
	case Shared:
		return "shared"
	default:
		return "mutability(?)"
	}
}

// LessMonotone reports whether transitioning from m to next is legal, i.e.
// next is the same state or strictly later in Mutable -> Immutable ->
// Shared.
func (m Mutability) LessMonotone(next Mutability) bool {
	return next >= m
}

// Descriptor is the flyweight that governs one (representation,
// mutability) pair. Every operation on an Object is implemented by asking
// its Descriptor to perform the work, passing the Object as receiver.
//
// Unlike a per-mutability singleton-instance scheme (one descriptor object
// for Mutable, one for Immutable, one for Shared, *per representation*),
// implementations here carry their Mutability as an ordinary field and hand
// back a sibling value from WithMutability -- collapsing the
// N-representations x 3-mutabilities singleton matrix down to one
// descriptor value per representation, each able to report itself at any
// of the three states.
type Descriptor interface {
	// Representation names the concrete physical layout, e.g.
	// "byte-string" or "tree-tuple". Used in diagnostics and by P1-style
	// property tests that must treat two representations of the same
	// abstract value as interchangeable.
	Representation() string

	// Mutability reports this descriptor's current state.
	Mutability() Mutability

	// WithMutability returns the descriptor for the same representation
	// at the given state. Callers are responsible for only ever moving
	// forward in the lattice (Object enforces this).
	WithMutability(Mutability) Descriptor

	// Equals implements the receiver side of object equality. It may
	// assume other is non-nil and already traversed past any indirection.
	// A fast path comparing descriptor representations directly is
	// encouraged; the general case should fall back to whatever
	// structural contract the representation exposes (e.g. tuple
	// element-at, for the tuple representations).
	Equals(self, other *Object) bool

	// Hash computes this object's hash. Object caches the result; Hash is
	// only invoked when the cache holds the sentinel "uncomputed" value.
	Hash(self *Object) int32

	// Kind returns the most general type this object belongs to, itself
	// an *Object. Descriptors for the type-lattice
	// representations (package typesys) return themselves wrapped
	// appropriately; others return a type object where one is modeled
	// for them, and nil otherwise.
	Kind(self *Object) *Object
}

// Object is the single universal value type.
type Object struct {
	descriptor Descriptor

	// objectSlots holds references to other Objects -- the "object
	// slots" every representation is built from.
	objectSlots []*Object

	// intSlots holds raw 32-bit machine words -- the "integer slots"
	// every representation is built from. Representations that need more compact or specialized
	// storage (arbitrary-precision integers, byte strings) keep it in
	// payload instead; intSlots remains the uniform ABI for
	// representations built directly out of small fixed-width fields
	// (phrases, definitions, map/tuple headers).
	intSlots []int32

	// payload is interpreted solely by this Object's own descriptor. It
	// exists so representations with a natural compact Go encoding
	// (big.Int, []byte, map[...]...) are not forced to spell themselves
	// out as object/integer slot arrays; the uniform (descriptor, slots)
	// contract is still what every operation dispatches through.
	payload any

	// hash is the cached hash. Zero means "not yet
	// computed"; the rare actual hash of zero is recomputed every call.
	hash int32

	// indirectTo is non-nil once this Object has become a transparent
	// indirection. Every dispatch resolves
	// through it first.
	indirectTo *Object
}

// New constructs an Object with the given descriptor, object slots,
// integer slots, and representation-specific payload. Any of slots, ints,
// or payload may be nil/zero if the representation does not use them.
func New(d Descriptor, slots []*Object, ints []int32, payload any) *Object {
	return &Object{descriptor: d, objectSlots: slots, intSlots: ints, payload: payload}
}

// Traverse follows the indirection chain to this object's canonical form
//. Eager path compression elsewhere keeps this
// effectively O(1) after the first traversal, but Traverse itself is safe
// to call on an arbitrarily (if pathologically) long chain.
func (o *Object) Traverse() *Object {
	cur := o
	for cur.indirectTo != nil {
		cur = cur.indirectTo
	}
	if cur != o {
		// Path-compress: every object we walked through now points
		// directly at the canonical form, so future traversals are O(1).
		for cur2 := o; cur2 != cur; {
			next := cur2.indirectTo
			cur2.indirectTo = cur
			cur2 = next
		}
	}
	return cur
}

// Descriptor returns the receiver's current descriptor, after resolving
// indirection.
func (o *Object) Descriptor() Descriptor {
	return o.Traverse().descriptor
}

// Representation is a convenience accessor for Descriptor().Representation().
func (o *Object) Representation() string {
	return o.Descriptor().Representation()
}

// ObjectSlots returns the object-slot array of the canonical object.
func (o *Object) ObjectSlots() []*Object {
	return o.Traverse().objectSlots
}

// ObjectSlot returns the i'th object slot (0-indexed).
func (o *Object) ObjectSlot(i int) *Object {
	return o.Traverse().objectSlots[i]
}

// SetObjectSlot destructively updates the i'th object slot. Callers must
// ensure the receiver is Mutable; see MutabilityState.
func (o *Object) SetObjectSlot(i int, v *Object) {
	canon := o.Traverse()
	canon.objectSlots[i] = v
	canon.hash = 0
}

// IntSlots returns the integer-slot array of the canonical object.
func (o *Object) IntSlots() []int32 {
	return o.Traverse().intSlots
}

// IntSlot returns the i'th integer slot (0-indexed).
func (o *Object) IntSlot(i int) int32 {
	return o.Traverse().intSlots[i]
}

// SetIntSlot destructively updates the i'th integer slot.
func (o *Object) SetIntSlot(i int, v int32) {
	canon := o.Traverse()
	canon.intSlots[i] = v
	canon.hash = 0
}

// Payload returns the representation-specific payload of the canonical
// object. Only the object's own descriptor implementation should
// interpret it.
func (o *Object) Payload() any {
	return o.Traverse().payload
}

// SetPayload destructively replaces the payload and invalidates the cached
// hash.
func (o *Object) SetPayload(p any) {
	canon := o.Traverse()
	canon.payload = p
	canon.hash = 0
}

// MutabilityState reports the canonical object's current mutability.
func (o *Object) MutabilityState() Mutability {
	return o.Descriptor().Mutability()
}

// Kind returns the most general type this object belongs to.
func (o *Object) Kind() *Object {
	canon := o.Traverse()
	return canon.descriptor.Kind(canon)
}

// Hash returns this object's cached hash, computing and caching it on
// first use. A computed hash of exactly zero is never cached -- the rare
// actual hash of zero recomputes every call instead.
func (o *Object) Hash() int32 {
	canon := o.Traverse()
	if canon.hash != 0 {
		return canon.hash
	}
	h := canon.descriptor.Hash(canon)
	if h != 0 {
		canon.hash = h
	}
	return h
}

// Equals implements the single virtual equality check. Two Objects are
// equal iff their descriptors agree, after resolving indirection on both
// sides.
func (o *Object) Equals(other *Object) bool {
	a, b := o.Traverse(), other.Traverse()
	if a == b {
		return true
	}
	return a.descriptor.Equals(a, b)
}

// Is reports identity: whether o and other are, after traversal, the exact
// same underlying storage.
func (o *Object) Is(other *Object) bool {
	return o.Traverse() == other.Traverse()
}

// MakeImmutable transitions the receiver (and, transitively, every
// reachable object slot) from Mutable to Immutable. It is a no-op if
// already Immutable or Shared, so a Shared object never moves back down
// the one-way lattice.
func (o *Object) MakeImmutable() {
	canon := o.Traverse()
	switch canon.descriptor.Mutability() {
	case Immutable, Shared:
		return
	}
	canon.descriptor = canon.descriptor.WithMutability(Immutable)
	for _, slot := range canon.objectSlots {
		if slot != nil {
			slot.MakeImmutable()
		}
	}
	dbg.Log("object", "make-immutable", "repr", canon.descriptor.Representation())
}

// MakeShared transitions the receiver (and, transitively, every reachable
// object slot) to Shared, making it safe to hand across goroutines. Unlike
// MakeImmutable, this may be called directly from Mutable (it implies
// MakeImmutable along the way, per the monotone mutability lattice).
func (o *Object) MakeShared() {
	canon := o.Traverse()
	if canon.descriptor.Mutability() == Shared {
		return
	}
	canon.descriptor = canon.descriptor.WithMutability(Shared)
	for _, slot := range canon.objectSlots {
		if slot != nil {
			slot.MakeShared()
		}
	}
	dbg.Log("object", "make-shared", "repr", canon.descriptor.Representation())
}

// BecomeIndirectionTo destructively rewrites the receiver so that every
// future dispatch forwards to target. It is
// illegal -- and panics -- to call this on a Shared object, since Shared
// objects may be concurrently read by other threads that must never
// observe a torn forwarding pointer.
func (o *Object) BecomeIndirectionTo(target *Object) {
	canon := o.Traverse()
	if canon.descriptor.Mutability() == Shared {
		panic("object: cannot become an indirection while Shared")
	}
	if canon == target.Traverse() {
		return
	}
	canon.indirectTo = target
	// Drop references so the old storage can be collected once nothing
	// else holds a direct pointer to it.
	canon.objectSlots = nil
	canon.intSlots = nil
	canon.payload = nil
}
