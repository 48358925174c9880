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

package errs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifehaxmax35/availtrig/errs"
)

func TestCodeOfRoundTrips(t *testing.T) {
	err := errs.New(errs.KeyNotFound)
	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, errs.KeyNotFound, code)
}

func TestIsMatchesByCodeOnly(t *testing.T) {
	a := errs.Newf(errs.SubscriptOutOfBounds, "index %d", 5)
	b := errs.New(errs.SubscriptOutOfBounds)
	require.True(t, errors.Is(a, b))

	c := errs.New(errs.KeyNotFound)
	require.False(t, errors.Is(a, c))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk exploded")
	err := errs.Wrap(errs.IOError, cause)
	require.ErrorIs(t, err, cause)

	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, errs.IOError, code)
}

func TestFatalClassification(t *testing.T) {
	require.True(t, errs.Fatal(&errs.AssertionFailed{Message: "oops"}))
	require.True(t, errs.Fatal(&errs.EmergencyExit{Message: "bye"}))
	require.False(t, errs.Fatal(&errs.Rejected{Message: "nope"}))
}
