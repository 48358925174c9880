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

package numeric_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifehaxmax35/availtrig/errs"
	"github.com/lifehaxmax35/availtrig/numeric"
)

func TestSmallIntegerEqualityAndHash(t *testing.T) {
	a := numeric.NewSmall(42)
	b := numeric.NewSmall(42)
	require.True(t, a.Equals(b))
	require.Equal(t, a.Hash(), b.Hash())
}

func TestSmallAndBigCompareEqualWhenSameValue(t *testing.T) {
	small := numeric.NewSmall(7)
	big7 := numeric.NewBig(big.NewInt(7))
	require.True(t, small.Equals(big7))
	require.Equal(t, 0, numeric.Compare(small, big7))
}

func TestNewBigNormalizesToSmall(t *testing.T) {
	o := numeric.NewBig(big.NewInt(3))
	v, ok := numeric.AsInt64(o)
	require.True(t, ok)
	require.EqualValues(t, 3, v)
}

func TestAddOverflowsToBigInteger(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 100)
	a := numeric.NewBig(huge)
	b := numeric.NewSmall(1)
	sum, err := numeric.Add(a, b)
	require.NoError(t, err)
	want := new(big.Int).Add(huge, big.NewInt(1))
	require.True(t, sum.Equals(numeric.NewBig(want)))
}

func TestAddUnlikeInfinitiesFails(t *testing.T) {
	_, err := numeric.Add(numeric.PositiveInfinity(), numeric.NegativeInfinity())
	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, errs.CannotAddUnlikeInfinities, code)
}

func TestMultiplyZeroAndInfinityFails(t *testing.T) {
	_, err := numeric.Multiply(numeric.PositiveInfinity(), numeric.NewSmall(0))
	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, errs.CannotMultiplyZeroAndInfinity, code)
}

func TestFloorDivModNegativeDivisor(t *testing.T) {
	// -7 floor-divided by 2 is -4 remainder 1 (remainder carries divisor's sign).
	q, r, err := numeric.FloorDivMod(numeric.NewSmall(-7), numeric.NewSmall(2))
	require.NoError(t, err)
	qv, _ := numeric.AsInt64(q)
	rv, _ := numeric.AsInt64(r)
	require.EqualValues(t, -4, qv)
	require.EqualValues(t, 1, rv)

	// 7 floor-divided by -2 is -4 remainder -1.
	q2, r2, err := numeric.FloorDivMod(numeric.NewSmall(7), numeric.NewSmall(-2))
	require.NoError(t, err)
	qv2, _ := numeric.AsInt64(q2)
	rv2, _ := numeric.AsInt64(r2)
	require.EqualValues(t, -4, qv2)
	require.EqualValues(t, -1, rv2)
}

func TestDivModByInfinityIsZero(t *testing.T) {
	// A finite dividend divided by infinity is 0, in both the floored and
	// truncating primitives (spec: 0 / infinity = 0 for all finite n).
	q, r, err := numeric.FloorDivMod(numeric.NewSmall(5), numeric.PositiveInfinity())
	require.NoError(t, err)
	qv, _ := numeric.AsInt64(q)
	require.EqualValues(t, 0, qv)
	require.True(t, r.Equals(numeric.NewSmall(5)))

	tq, tr, err := numeric.TruncatingDivMod(numeric.NewSmall(-9), numeric.NegativeInfinity())
	require.NoError(t, err)
	tqv, _ := numeric.AsInt64(tq)
	require.EqualValues(t, 0, tqv)
	require.True(t, tr.Equals(numeric.NewSmall(-9)))
}

func TestDivideByZeroFails(t *testing.T) {
	_, _, err := numeric.FloorDivMod(numeric.NewSmall(1), numeric.NewSmall(0))
	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, errs.CannotDivideByZero, code)
}

func TestCompareOrdersInfinitiesCorrectly(t *testing.T) {
	require.Equal(t, -1, numeric.Compare(numeric.NegativeInfinity(), numeric.NewSmall(-1000000)))
	require.Equal(t, 1, numeric.Compare(numeric.PositiveInfinity(), numeric.NewSmall(1000000)))
	require.Equal(t, 0, numeric.Compare(numeric.PositiveInfinity(), numeric.PositiveInfinity()))
}
