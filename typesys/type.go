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

// Package typesys implements Avail's type lattice: types are themselves
// ordinary Objects (their Kind() is a metatype one level up), related by
// subtype/union/intersection instead of Go's static type system.
//
// buf.build/go/hyperpb expresses a comparable idea -- a lattice of
// protobuf Kinds/Types related by assignability -- as a fixed enumeration
// with a hand-written compatibility table. Avail's lattice is open-ended
// (users define new types constantly), so instead of a fixed table this
// package uses a handful of type "shapes" (instance, enumeration, integer
// range, function, tuple, phrase, and the union/intersection compound
// shapes used when no closed form exists), each able to answer Contains
// and IsSubtype against any other shape.
package typesys

import (
	"github.com/lifehaxmax35/availtrig/avail"
	"github.com/lifehaxmax35/availtrig/numeric"
	"github.com/lifehaxmax35/availtrig/object"
)

// shape tags which of the type varieties a typeDescriptor instance is.
type shape int8

const (
	shapeAny shape = iota
	shapeNothing
	shapeInstance
	shapeEnumeration
	shapeIntegerRange
	shapeFunction
	shapeTuple
	shapePhrase
	shapeUnion
	shapeIntersection
)

type typeDescriptor struct {
	mut   object.Mutability
	shape shape
}

func (d *typeDescriptor) Representation() string {
	switch d.shape {
	case shapeAny:
		return "any-type"
	case shapeNothing:
		return "nothing-type"
	case shapeInstance:
		return "instance-type"
	case shapeEnumeration:
		return "enumeration-type"
	case shapeIntegerRange:
		return "integer-range-type"
	case shapeFunction:
		return "function-type"
	case shapeTuple:
		return "tuple-type"
	case shapePhrase:
		return "phrase-type"
	case shapeUnion:
		return "union-type"
	case shapeIntersection:
		return "intersection-type"
	default:
		return "type(?)"
	}
}
func (d *typeDescriptor) Mutability() object.Mutability { return d.mut }
func (d *typeDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &typeDescriptor{mut: m, shape: d.shape}
}
func (d *typeDescriptor) Equals(self, other *object.Object) bool {
	return IsSubtype(self, other) && IsSubtype(other, self)
}
func (d *typeDescriptor) Hash(self *object.Object) int32 {
	// Types are compared for equality extensionally (mutual subtyping),
	// so their hash must be a function of membership, not of shape or
	// payload identity. A cheap, always-consistent (if coarse) choice:
	// hash by shape alone, which only costs extra comparisons on
	// collision and is never wrong.
	return int32(d.shape)*0x2545F491 + 1
}
// Kind returns the metatype one level up the lattice: the type whose only
// instance is self, per the type-lattice convention that types answer
// Kind() by wrapping themselves rather than handing back a representation
// type the way ordinary values do.
func (d *typeDescriptor) Kind(self *object.Object) *object.Object {
	return NewInstanceType(self)
}

func init() {
	numeric.SetKindHook(func(numeric.Kind) *object.Object {
		return NewIntegerRangeType(numeric.NegativeInfinity(), true, numeric.PositiveInfinity(), true)
	})
}

func shapeOf(o *object.Object) shape {
	return o.Descriptor().(*typeDescriptor).shape
}

var (
	anyType     = object.New(&typeDescriptor{mut: object.Shared, shape: shapeAny}, nil, nil, nil)
	nothingType = object.New(&typeDescriptor{mut: object.Shared, shape: shapeNothing}, nil, nil, nil)
)

// Any returns the top type, of which every value and every type is a
// subtype.
func Any() *object.Object { return anyType }

// Nothing returns the bottom type, a subtype of every type, with no
// instances.
func Nothing() *object.Object { return nothingType }

// --- Instance / Enumeration ---

type instancePayload struct {
	value *object.Object
}

// NewInstanceType returns the type whose only instance is value.
func NewInstanceType(value *object.Object) *object.Object {
	return object.New(&typeDescriptor{mut: object.Mutable, shape: shapeInstance}, nil, nil, instancePayload{value: value})
}

type enumerationPayload struct {
	instances []*object.Object
}

// NewEnumerationType returns the type whose instances are exactly the
// given (deduplicated) set of values.
func NewEnumerationType(instances []*object.Object) *object.Object {
	deduped := make([]*object.Object, 0, len(instances))
	for _, v := range instances {
		found := false
		for _, d := range deduped {
			if d.Equals(v) {
				found = true
				break
			}
		}
		if !found {
			deduped = append(deduped, v)
		}
	}
	if len(deduped) == 1 {
		return NewInstanceType(deduped[0])
	}
	return object.New(&typeDescriptor{mut: object.Mutable, shape: shapeEnumeration}, nil, nil, enumerationPayload{instances: deduped})
}

// --- Integer range ---

type integerRangePayload struct {
	// low/high are always inclusive after construction: exclusive endpoints are
	// converted by adding/subtracting one when finite.
	low, high *object.Object
}

// NewIntegerRangeType builds the type of integers between low and high,
// converting exclusive endpoints to the equivalent inclusive ones. Use
// numeric.PositiveInfinity()/NegativeInfinity() for an unbounded side.
func NewIntegerRangeType(low *object.Object, lowInclusive bool, high *object.Object, highInclusive bool) *object.Object {
	if !lowInclusive && !numeric.IsInfinity(low) {
		adjusted, err := numeric.Add(low, numeric.NewSmall(1))
		if err == nil {
			low = adjusted
		}
	}
	if !highInclusive && !numeric.IsInfinity(high) {
		adjusted, err := numeric.Subtract(high, numeric.NewSmall(1))
		if err == nil {
			high = adjusted
		}
	}
	switch {
	case numeric.Compare(low, high) > 0:
		return nothingType
	case numeric.Compare(low, high) == 0:
		return NewInstanceType(low)
	}
	return object.New(&typeDescriptor{mut: object.Mutable, shape: shapeIntegerRange}, nil, nil, integerRangePayload{low: low, high: high})
}

// --- Function ---

type functionPayload struct {
	argTypes   []*object.Object
	returnType *object.Object
}

// NewFunctionType builds the type of functions taking exactly the given
// (fixed-arity) parameter types and returning returnType.
func NewFunctionType(argTypes []*object.Object, returnType *object.Object) *object.Object {
	at := make([]*object.Object, len(argTypes))
	copy(at, argTypes)
	return object.New(&typeDescriptor{mut: object.Mutable, shape: shapeFunction}, nil, nil, functionPayload{argTypes: at, returnType: returnType})
}

// FunctionTypeArgTypes returns a function type's parameter types.
func FunctionTypeArgTypes(o *object.Object) []*object.Object {
	return o.Payload().(functionPayload).argTypes
}

// FunctionTypeReturnType returns a function type's return type.
func FunctionTypeReturnType(o *object.Object) *object.Object {
	return o.Payload().(functionPayload).returnType
}

// --- Tuple ---

type tuplePayload struct {
	leadingTypes []*object.Object
	defaultType  *object.Object // type of elements beyond len(leadingTypes)
	sizeRange    *object.Object // an integer-range-type
}

// NewTupleType builds the type of tuples whose first len(leadingTypes)
// elements match leadingTypes positionally, whose remaining elements (if
// any) match defaultType, and whose overall size lies within sizeRange.
func NewTupleType(leadingTypes []*object.Object, defaultType, sizeRange *object.Object) *object.Object {
	lt := make([]*object.Object, len(leadingTypes))
	copy(lt, leadingTypes)
	return object.New(&typeDescriptor{mut: object.Mutable, shape: shapeTuple}, nil, nil, tuplePayload{
		leadingTypes: lt, defaultType: defaultType, sizeRange: sizeRange,
	})
}

// --- Phrase ---

type phraseTypePayload struct {
	kind      avail.PhraseKind
	yieldType *object.Object
}

// NewPhraseType builds the type of phrases of the given kind that yield a
// value matching yieldType when evaluated.
func NewPhraseType(kind avail.PhraseKind, yieldType *object.Object) *object.Object {
	return object.New(&typeDescriptor{mut: object.Mutable, shape: shapePhrase}, nil, nil, phraseTypePayload{kind: kind, yieldType: yieldType})
}

// --- Union / Intersection (fallback compound shapes) ---

type compoundPayload struct {
	members []*object.Object
}

// Union returns a type that is a supertype of both a and b: whichever of
// the two contains the other, or, for two integer ranges, the smallest
// range covering both (which also holds any integers lying between them).
// Otherwise a compound union node is built, flattening nested unions, that
// answers Contains/IsSubtype by deferring to its members.
func Union(a, b *object.Object) *object.Object {
	if IsSubtype(a, b) {
		return b
	}
	if IsSubtype(b, a) {
		return a
	}
	if shapeOf(a) == shapeIntegerRange && shapeOf(b) == shapeIntegerRange {
		pa, pb := a.Payload().(integerRangePayload), b.Payload().(integerRangePayload)
		low := pa.low
		if numeric.Compare(pb.low, low) < 0 {
			low = pb.low
		}
		high := pa.high
		if numeric.Compare(pb.high, high) > 0 {
			high = pb.high
		}
		return NewIntegerRangeType(low, true, high, true)
	}
	members := append(flattenUnion(a), flattenUnion(b)...)
	return object.New(&typeDescriptor{mut: object.Mutable, shape: shapeUnion}, nil, nil, compoundPayload{members: members})
}

func flattenUnion(t *object.Object) []*object.Object {
	if shapeOf(t) == shapeUnion {
		return t.Payload().(compoundPayload).members
	}
	return []*object.Object{t}
}

// Intersect returns a type that is a subtype of both a and b: whichever of
// the two is contained in the other, the overlap of two integer ranges
// (Nothing if they are disjoint), or else a compound intersection node.
// The compound node is built even when a and b share no instance; it is
// then not reported equal to Nothing.
func Intersect(a, b *object.Object) *object.Object {
	if IsSubtype(a, b) {
		return a
	}
	if IsSubtype(b, a) {
		return b
	}
	if shapeOf(a) == shapeIntegerRange && shapeOf(b) == shapeIntegerRange {
		pa, pb := a.Payload().(integerRangePayload), b.Payload().(integerRangePayload)
		low := pa.low
		if numeric.Compare(pb.low, low) > 0 {
			low = pb.low
		}
		high := pa.high
		if numeric.Compare(pb.high, high) < 0 {
			high = pb.high
		}
		if numeric.Compare(low, high) > 0 {
			return nothingType
		}
		return NewIntegerRangeType(low, true, high, true)
	}
	return object.New(&typeDescriptor{mut: object.Mutable, shape: shapeIntersection}, nil, nil, compoundPayload{members: []*object.Object{a, b}})
}
