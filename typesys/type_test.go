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

package typesys_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifehaxmax35/availtrig/numeric"
	"github.com/lifehaxmax35/availtrig/object"
	"github.com/lifehaxmax35/availtrig/tuple"
	"github.com/lifehaxmax35/availtrig/typesys"
)

func TestAnyAndNothingAbsorb(t *testing.T) {
	oneToTen := typesys.NewIntegerRangeType(numeric.NewSmall(1), true, numeric.NewSmall(10), true)
	require.True(t, typesys.IsSubtype(oneToTen, typesys.Any()))
	require.True(t, typesys.IsSubtype(typesys.Nothing(), oneToTen))
	require.False(t, typesys.IsSubtype(typesys.Any(), oneToTen))
}

func TestIntegerRangeCanonicalizesExclusiveBounds(t *testing.T) {
	// (0, 11) exclusive both ends == [1, 10] inclusive.
	exclusive := typesys.NewIntegerRangeType(numeric.NewSmall(0), false, numeric.NewSmall(11), false)
	inclusive := typesys.NewIntegerRangeType(numeric.NewSmall(1), true, numeric.NewSmall(10), true)
	require.True(t, typesys.IsSubtype(exclusive, inclusive))
	require.True(t, typesys.IsSubtype(inclusive, exclusive))
}

func TestIntegerRangeContainsAndSubtype(t *testing.T) {
	wide := typesys.NewIntegerRangeType(numeric.NewSmall(0), true, numeric.NewSmall(100), true)
	narrow := typesys.NewIntegerRangeType(numeric.NewSmall(10), true, numeric.NewSmall(20), true)
	require.True(t, typesys.IsSubtype(narrow, wide))
	require.False(t, typesys.IsSubtype(wide, narrow))
	require.True(t, typesys.Contains(wide, numeric.NewSmall(50)))
	require.False(t, typesys.Contains(narrow, numeric.NewSmall(50)))
}

func TestSingletonRangeBecomesInstanceType(t *testing.T) {
	only5 := typesys.NewIntegerRangeType(numeric.NewSmall(5), true, numeric.NewSmall(5), true)
	require.True(t, typesys.Contains(only5, numeric.NewSmall(5)))
	require.False(t, typesys.Contains(only5, numeric.NewSmall(6)))
}

func TestEnumerationTypeMembership(t *testing.T) {
	e := typesys.NewEnumerationType([]*object.Object{numeric.NewSmall(1), numeric.NewSmall(2), numeric.NewSmall(3)})
	require.True(t, typesys.Contains(e, numeric.NewSmall(2)))
	require.False(t, typesys.Contains(e, numeric.NewSmall(4)))
}

func TestFunctionTypeSubtypeIsContravariantInArgsCovariantInReturn(t *testing.T) {
	smallInt := typesys.NewIntegerRangeType(numeric.NewSmall(0), true, numeric.NewSmall(10), true)
	anyInt := typesys.NewIntegerRangeType(numeric.NegativeInfinity(), true, numeric.PositiveInfinity(), true)

	// (anyInt) -> smallInt is a subtype of (smallInt) -> anyInt:
	// it accepts at least as much and promises at least as little.
	narrow := typesys.NewFunctionType([]*object.Object{anyInt}, smallInt)
	wide := typesys.NewFunctionType([]*object.Object{smallInt}, anyInt)
	require.True(t, typesys.IsSubtype(narrow, wide))
	require.False(t, typesys.IsSubtype(wide, narrow))
}

func TestTupleTypeContainment(t *testing.T) {
	elemType := typesys.NewIntegerRangeType(numeric.NewSmall(0), true, numeric.NewSmall(255), true)
	sizeRange := typesys.NewIntegerRangeType(numeric.NewSmall(0), true, numeric.PositiveInfinity(), true)
	tt := typesys.NewTupleType(nil, elemType, sizeRange)

	bytes := tuple.NewByteTuple([]byte{1, 2, 3})
	require.True(t, typesys.Contains(tt, bytes))

	tooWide := tuple.FromElements([]*object.Object{numeric.NewSmall(9999)})
	require.False(t, typesys.Contains(tt, tooWide))
}

func TestUnionContainsEitherMember(t *testing.T) {
	low := typesys.NewIntegerRangeType(numeric.NewSmall(0), true, numeric.NewSmall(5), true)
	high := typesys.NewIntegerRangeType(numeric.NewSmall(100), true, numeric.NewSmall(105), true)
	u := typesys.Union(low, high)
	require.True(t, typesys.Contains(u, numeric.NewSmall(3)))
	require.True(t, typesys.Contains(u, numeric.NewSmall(103)))
	// The union of two integer ranges is the single range spanning both.
	require.True(t, typesys.Contains(u, numeric.NewSmall(50)))
}

func TestIntersectDisjointRangesIsNothing(t *testing.T) {
	a := typesys.NewIntegerRangeType(numeric.NewSmall(0), true, numeric.NewSmall(5), true)
	b := typesys.NewIntegerRangeType(numeric.NewSmall(10), true, numeric.NewSmall(15), true)
	i := typesys.Intersect(a, b)
	require.True(t, typesys.IsSubtype(i, typesys.Nothing()))
}
