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

// Package numeric implements Avail's integer tower:
// a small fixed-width immediate representation that silently promotes to
// arbitrary precision on overflow, plus signed positive/negative infinity
// values that participate in ordering and arithmetic like any other
// integer.
//
// This sits below both the tuple package (which boxes interval-tuple
// elements as integers) and the avail package (which exposes the rest of
// the value model), mirroring the way the teacher keeps small leaf
// representations (varint helpers, small-int fast paths) independent of
// its higher-level message/field machinery.
package numeric

import (
	"math/big"

	"github.com/lifehaxmax35/availtrig/errs"
	"github.com/lifehaxmax35/availtrig/object"
)

// Kind distinguishes the four physical representations of an integer
// value.
type Kind int8

const (
	KindSmall Kind = iota
	KindBig
	KindPositiveInfinity
	KindNegativeInfinity
)

type descriptor struct {
	mut  object.Mutability
	kind Kind
}

func (d *descriptor) Representation() string {
	switch d.kind {
	case KindSmall:
		return "small-integer"
	case KindBig:
		return "big-integer"
	case KindPositiveInfinity:
		return "positive-infinity"
	case KindNegativeInfinity:
		return "negative-infinity"
	default:
		return "integer(?)"
	}
}

func (d *descriptor) Mutability() object.Mutability { return d.mut }

func (d *descriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &descriptor{mut: m, kind: d.kind}
}

func (d *descriptor) Equals(self, other *object.Object) bool {
	od, ok := other.Descriptor().(*descriptor)
	if !ok {
		return false
	}
	switch d.kind {
	case KindPositiveInfinity, KindNegativeInfinity:
		return d.kind == od.kind
	default:
		if od.kind == KindPositiveInfinity || od.kind == KindNegativeInfinity {
			return false
		}
		return toBig(self).Cmp(toBig(other)) == 0
	}
}

func (d *descriptor) Hash(self *object.Object) int32 {
	switch d.kind {
	case KindPositiveInfinity:
		return 0x7FFFFFF1
	case KindNegativeInfinity:
		return 0x7FFFFFF3
	default:
		b := toBig(self).Bytes()
		h := int32(1000003)
		for _, c := range b {
			h = h*31 + int32(c)
		}
		if toBig(self).Sign() < 0 {
			h = ^h
		}
		return h
	}
}

func (d *descriptor) Kind(self *object.Object) *object.Object {
	if kindHook == nil {
		return nil
	}
	return kindHook(d.kind)
}

// kindHook answers descriptor.Kind() with the real integer type once the
// type lattice exists. numeric sits below typesys (typesys imports numeric
// for range arithmetic), so it cannot construct a *typesys.Type directly
// without an import cycle; typesys installs this hook from an init
// function instead, the same lazy-binding idiom bundlePayload.splitPlan
// uses to keep avail decoupled from splitter.
var kindHook func(Kind) *object.Object

// SetKindHook installs the function used to answer descriptor.Kind() for
// every integer representation. Called once, by typesys's init.
func SetKindHook(f func(Kind) *object.Object) {
	kindHook = f
}

// NewSmall builds a small-integer Object from a machine int64.
func NewSmall(v int64) *object.Object {
	return object.New(&descriptor{mut: object.Mutable, kind: KindSmall}, nil, nil, v)
}

// NewBig builds an arbitrary-precision integer Object, normalizing down to
// KindSmall when v fits in an int64.
func NewBig(v *big.Int) *object.Object {
	if v.IsInt64() {
		return NewSmall(v.Int64())
	}
	return object.New(&descriptor{mut: object.Mutable, kind: KindBig}, nil, nil, new(big.Int).Set(v))
}

var (
	positiveInfinity = object.New(&descriptor{mut: object.Shared, kind: KindPositiveInfinity}, nil, nil, nil)
	negativeInfinity = object.New(&descriptor{mut: object.Shared, kind: KindNegativeInfinity}, nil, nil, nil)
)

// PositiveInfinity returns the single canonical +infinity object.
func PositiveInfinity() *object.Object { return positiveInfinity }

// NegativeInfinity returns the single canonical -infinity object.
func NegativeInfinity() *object.Object { return negativeInfinity }

// IsInteger reports whether o is any representation handled by this
// package.
func IsInteger(o *object.Object) bool {
	_, ok := o.Descriptor().(*descriptor)
	return ok
}

// IsInfinity reports whether o is either signed infinity.
func IsInfinity(o *object.Object) bool {
	d, ok := o.Descriptor().(*descriptor)
	return ok && (d.kind == KindPositiveInfinity || d.kind == KindNegativeInfinity)
}

// AsInt64 reports o's value as an int64, if it is a finite integer that
// fits.
func AsInt64(o *object.Object) (int64, bool) {
	d, ok := o.Descriptor().(*descriptor)
	if !ok || d.kind == KindPositiveInfinity || d.kind == KindNegativeInfinity {
		return 0, false
	}
	if d.kind == KindSmall {
		return o.Payload().(int64), true
	}
	b := o.Payload().(*big.Int)
	if !b.IsInt64() {
		return 0, false
	}
	return b.Int64(), true
}

// toBig returns the arbitrary-precision value of a finite integer Object.
// Callers must not invoke it on an infinity.
func toBig(o *object.Object) *big.Int {
	d := o.Descriptor().(*descriptor)
	if d.kind == KindSmall {
		return big.NewInt(o.Payload().(int64))
	}
	return o.Payload().(*big.Int)
}

func kindOf(o *object.Object) Kind {
	return o.Descriptor().(*descriptor).kind
}

// Sign returns -1, 0, or 1, treating +/-infinity as having the obvious
// sign.
func Sign(o *object.Object) int {
	switch kindOf(o) {
	case KindPositiveInfinity:
		return 1
	case KindNegativeInfinity:
		return -1
	default:
		return toBig(o).Sign()
	}
}

// Compare implements a total order across finite integers and both
// infinities.
func Compare(a, b *object.Object) int {
	ka, kb := kindOf(a), kindOf(b)
	switch {
	case ka == KindNegativeInfinity && kb == KindNegativeInfinity,
		ka == KindPositiveInfinity && kb == KindPositiveInfinity:
		return 0
	case ka == KindNegativeInfinity, kb == KindPositiveInfinity:
		return -1
	case ka == KindPositiveInfinity, kb == KindNegativeInfinity:
		return 1
	default:
		return toBig(a).Cmp(toBig(b))
	}
}

// Add implements integer addition, including infinity arithmetic (spec
// §7.2, CannotAddUnlikeInfinities: adding +infinity and -infinity is a
// primitive failure).
func Add(a, b *object.Object) (*object.Object, error) {
	ka, kb := kindOf(a), kindOf(b)
	aInf, bInf := ka == KindPositiveInfinity || ka == KindNegativeInfinity, kb == KindPositiveInfinity || kb == KindNegativeInfinity
	switch {
	case aInf && bInf:
		if ka != kb {
			return nil, errs.New(errs.CannotAddUnlikeInfinities)
		}
		return a, nil
	case aInf:
		return a, nil
	case bInf:
		return b, nil
	default:
		return NewBig(new(big.Int).Add(toBig(a), toBig(b))), nil
	}
}

// Subtract implements integer subtraction in terms of Add and Negate.
func Subtract(a, b *object.Object) (*object.Object, error) {
	return Add(a, Negate(b))
}

// Negate returns -o.
func Negate(o *object.Object) *object.Object {
	switch kindOf(o) {
	case KindPositiveInfinity:
		return negativeInfinity
	case KindNegativeInfinity:
		return positiveInfinity
	default:
		return NewBig(new(big.Int).Neg(toBig(o)))
	}
}

// Multiply implements integer multiplication, including the
// CannotMultiplyZeroAndInfinity primitive failure.
func Multiply(a, b *object.Object) (*object.Object, error) {
	ka, kb := kindOf(a), kindOf(b)
	aInf, bInf := ka == KindPositiveInfinity || ka == KindNegativeInfinity, kb == KindPositiveInfinity || kb == KindNegativeInfinity
	switch {
	case aInf && bInf:
		if Sign(a)*Sign(b) < 0 {
			return negativeInfinity, nil
		}
		return positiveInfinity, nil
	case aInf:
		if Sign(b) == 0 {
			return nil, errs.New(errs.CannotMultiplyZeroAndInfinity)
		}
		if Sign(b) < 0 {
			return Negate(a), nil
		}
		return a, nil
	case bInf:
		return Multiply(b, a)
	default:
		return NewBig(new(big.Int).Mul(toBig(a), toBig(b))), nil
	}
}

// FloorDivMod implements floored division: the quotient rounds toward
// negative infinity and the remainder always carries the divisor's sign
// (the Open Question resolution recorded in DESIGN.md). Division by zero
// is a primitive failure.
func FloorDivMod(a, b *object.Object) (quotient, remainder *object.Object, err error) {
	if IsInfinity(b) {
		if IsInfinity(a) {
			// inf / inf is indeterminate; the specification does not resolve
			// it, so this keeps raising the same primitive failure as an
			// ordinary division by zero rather than picking an arbitrary sign.
			return nil, nil, errs.New(errs.CannotDivideByZero)
		}
		return NewSmall(0), a, nil
	}
	bi := toBig(b)
	if bi.Sign() == 0 {
		return nil, nil, errs.New(errs.CannotDivideByZero)
	}
	if IsInfinity(a) {
		if Sign(a)*bi.Sign() < 0 {
			return negativeInfinity, NewSmall(0), nil
		}
		return positiveInfinity, NewSmall(0), nil
	}
	ai := toBig(a)
	q, m := new(big.Int), new(big.Int)
	q.DivMod(ai, bi, m) // big.Int.DivMod is already Euclidean (m always >= 0); adjust for floor semantics below
	if bi.Sign() < 0 && m.Sign() != 0 {
		q.Sub(q, big.NewInt(1))
		m.Add(m, bi)
	}
	return NewBig(q), NewBig(m), nil
}

// TruncatingDivMod implements truncating division (quotient rounds toward
// zero), the separate primitive the specification lists alongside floored
// division.
func TruncatingDivMod(a, b *object.Object) (quotient, remainder *object.Object, err error) {
	if IsInfinity(b) {
		if IsInfinity(a) {
			return nil, nil, errs.New(errs.CannotDivideByZero)
		}
		return NewSmall(0), a, nil
	}
	bi := toBig(b)
	if bi.Sign() == 0 {
		return nil, nil, errs.New(errs.CannotDivideByZero)
	}
	if IsInfinity(a) {
		if Sign(a)*bi.Sign() < 0 {
			return negativeInfinity, NewSmall(0), nil
		}
		return positiveInfinity, NewSmall(0), nil
	}
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(toBig(a), bi, r)
	return NewBig(q), NewBig(r), nil
}
