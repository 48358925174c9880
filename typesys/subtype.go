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

package typesys

import (
	"github.com/lifehaxmax35/availtrig/avail"
	"github.com/lifehaxmax35/availtrig/numeric"
	"github.com/lifehaxmax35/availtrig/object"
	"github.com/lifehaxmax35/availtrig/tuple"
)

// Contains reports whether value is an instance of t.
func Contains(t *object.Object, value *object.Object) bool {
	switch shapeOf(t) {
	case shapeAny:
		return true
	case shapeNothing:
		return false
	case shapeInstance:
		return value.Equals(t.Payload().(instancePayload).value)
	case shapeEnumeration:
		for _, inst := range t.Payload().(enumerationPayload).instances {
			if value.Equals(inst) {
				return true
			}
		}
		return false
	case shapeIntegerRange:
		if !numeric.IsInteger(value) {
			return false
		}
		p := t.Payload().(integerRangePayload)
		return numeric.Compare(value, p.low) >= 0 && numeric.Compare(value, p.high) <= 0
	case shapeFunction:
		if !avail.IsFunction(value) {
			return false
		}
		code := avail.FunctionCode(value)
		p := t.Payload().(functionPayload)
		actualArgs := avail.CompiledCodeArgTypes(code)
		if len(actualArgs) != len(p.argTypes) {
			return false
		}
		for i, want := range p.argTypes {
			// Contravariant: the function must accept at least as much as
			// the type promises callers may pass.
			if !IsSubtype(want, actualArgs[i]) {
				return false
			}
		}
		return IsSubtype(avail.CompiledCodeReturnType(code), p.returnType)
	case shapeTuple:
		if !tuple.IsTuple(value) {
			return false
		}
		p := t.Payload().(tuplePayload)
		n := tuple.Size(value)
		if !Contains(p.sizeRange, numeric.NewSmall(int64(n))) {
			return false
		}
		for i := 0; i < n; i++ {
			elemType := p.defaultType
			if i < len(p.leadingTypes) {
				elemType = p.leadingTypes[i]
			}
			elem, err := tuple.ElementAt(value, i)
			if err != nil {
				return false
			}
			if !Contains(elemType, elem) {
				return false
			}
		}
		return true
	case shapePhrase:
		if !avail.IsPhrase(value) {
			return false
		}
		p := t.Payload().(phraseTypePayload)
		return avail.PhraseKindOf(value) == p.kind
	case shapeUnion:
		for _, m := range t.Payload().(compoundPayload).members {
			if Contains(m, value) {
				return true
			}
		}
		return false
	case shapeIntersection:
		for _, m := range t.Payload().(compoundPayload).members {
			if !Contains(m, value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// IsSubtype reports whether every instance of sub is also an instance of
// super. The union/intersection cases use sound but
// intentionally conservative rules (checking each member rather than
// attempting full lattice simplification), matching how Avail's own type
// system falls back to compound types when no closed-form simplification
// is known.
func IsSubtype(sub, super *object.Object) bool {
	if sub == super {
		return true
	}
	if shapeOf(super) == shapeAny || shapeOf(sub) == shapeNothing {
		return true
	}
	if shapeOf(sub) == shapeAny {
		return shapeOf(super) == shapeAny
	}
	if shapeOf(super) == shapeNothing {
		return shapeOf(sub) == shapeNothing
	}

	switch shapeOf(sub) {
	case shapeUnion:
		for _, m := range sub.Payload().(compoundPayload).members {
			if !IsSubtype(m, super) {
				return false
			}
		}
		return true
	case shapeIntersection:
		for _, m := range sub.Payload().(compoundPayload).members {
			if IsSubtype(m, super) {
				return true
			}
		}
		return false
	case shapeInstance:
		return Contains(super, sub.Payload().(instancePayload).value)
	case shapeEnumeration:
		for _, inst := range sub.Payload().(enumerationPayload).instances {
			if !Contains(super, inst) {
				return false
			}
		}
		return true
	}

	switch shapeOf(super) {
	case shapeUnion:
		for _, m := range super.Payload().(compoundPayload).members {
			if IsSubtype(sub, m) {
				return true
			}
		}
		return false
	case shapeIntersection:
		for _, m := range super.Payload().(compoundPayload).members {
			if !IsSubtype(sub, m) {
				return false
			}
		}
		return true
	}

	if shapeOf(sub) != shapeOf(super) {
		return false
	}

	switch shapeOf(sub) {
	case shapeIntegerRange:
		a, b := sub.Payload().(integerRangePayload), super.Payload().(integerRangePayload)
		return numeric.Compare(a.low, b.low) >= 0 && numeric.Compare(a.high, b.high) <= 0
	case shapeFunction:
		a, b := sub.Payload().(functionPayload), super.Payload().(functionPayload)
		if len(a.argTypes) != len(b.argTypes) {
			return false
		}
		for i := range a.argTypes {
			// Contravariant in argument position.
			if !IsSubtype(b.argTypes[i], a.argTypes[i]) {
				return false
			}
		}
		return IsSubtype(a.returnType, b.returnType)
	case shapeTuple:
		a, b := sub.Payload().(tuplePayload), super.Payload().(tuplePayload)
		if !IsSubtype(a.sizeRange, b.sizeRange) {
			return false
		}
		n := len(a.leadingTypes)
		if len(b.leadingTypes) > n {
			n = len(b.leadingTypes)
		}
		for i := 0; i < n; i++ {
			at, bt := elementTypeAt(a, i), elementTypeAt(b, i)
			if !IsSubtype(at, bt) {
				return false
			}
		}
		return IsSubtype(a.defaultType, b.defaultType)
	case shapePhrase:
		a, b := sub.Payload().(phraseTypePayload), super.Payload().(phraseTypePayload)
		return a.kind == b.kind && IsSubtype(a.yieldType, b.yieldType)
	default:
		return false
	}
}

func elementTypeAt(p tuplePayload, i int) *object.Object {
	if i < len(p.leadingTypes) {
		return p.leadingTypes[i]
	}
	return p.defaultType
}
