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

var empty = NewObjectTuple(nil)

// Empty returns the canonical zero-length tuple.
func Empty() *object.Object { return empty }

// FromElements picks the most compact of the NybbleTuple, ByteTuple,
// TwoByteString and ObjectTuple representations that can hold elems:
// callers never need to know or choose a representation themselves.
func FromElements(elems []*object.Object) *object.Object {
	if len(elems) == 0 {
		return empty
	}

	allSmallInts := true
	values := make([]int64, len(elems))
	for i, e := range elems {
		v, ok := numeric.AsInt64(e)
		if !ok || v < 0 {
			allSmallInts = false
			break
		}
		values[i] = v
	}

	if allSmallInts {
		if fitsInNybbles(values) {
			buf := make([]byte, len(values))
			for i, v := range values {
				buf[i] = byte(v)
			}
			return NewNybbleTuple(buf)
		}
		if fitsInBytes(values) {
			buf := make([]byte, len(values))
			for i, v := range values {
				buf[i] = byte(v)
			}
			return NewByteTuple(buf)
		}
		if fitsInTwoBytes(values) {
			buf := make([]uint16, len(values))
			for i, v := range values {
				buf[i] = uint16(v)
			}
			return NewTwoByteString(buf)
		}
	}

	return NewObjectTuple(elems)
}

func fitsInBytes(values []int64) bool {
	for _, v := range values {
		if v > 255 {
			return false
		}
	}
	return true
}

func fitsInTwoBytes(values []int64) bool {
	for _, v := range values {
		if v > 65535 {
			return false
		}
	}
	return true
}

// Concat concatenates a and b in order, producing a TreeTuple for large
// inputs and a flat representation for small ones, always respecting the
// level invariant.
func Concat(a, b *object.Object) *object.Object {
	an, bn := Size(a), Size(b)
	if an == 0 {
		return b
	}
	if bn == 0 {
		return a
	}
	if an+bn <= treeLeafThreshold {
		merged := make([]*object.Object, 0, an+bn)
		merged = append(merged, elements(a)...)
		merged = append(merged, elements(b)...)
		return FromElements(merged)
	}

	la, lb := levelOf(a), levelOf(b)
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	if diff <= treeBalanceSlack {
		return newTreeNode(a, b)
	}

	// Level invariant would be violated: flatten everything and rebuild a
	// balanced tree from scratch rather than attempting node-local
	// rotations.
	merged := make([]*object.Object, 0, an+bn)
	merged = append(merged, elements(a)...)
	merged = append(merged, elements(b)...)
	return buildBalancedTree(merged)
}
