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

package fiber_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifehaxmax35/availtrig/fiber"
	"github.com/lifehaxmax35/availtrig/numeric"
	"github.com/lifehaxmax35/availtrig/object"
)

func TestRunOutermostFunctionSuccess(t *testing.T) {
	f := fiber.New(nil, 0)

	var wg sync.WaitGroup
	wg.Add(1)

	var got *object.Object
	f.SetResultContinuation(func(o *object.Object) {
		got = o
		wg.Done()
	})
	f.SetFailureContinuation(func(error) {
		t.Fatal("unexpected failure continuation")
	})

	f.RunOutermostFunction(func(*fiber.Fiber) (*object.Object, error) {
		return numeric.NewSmall(42), nil
	})

	wg.Wait()
	require.True(t, got.Equals(numeric.NewSmall(42)))
	require.Equal(t, fiber.Succeeded, f.State())
}

func TestRunOutermostFunctionFailure(t *testing.T) {
	f := fiber.New(nil, 0)

	var wg sync.WaitGroup
	wg.Add(1)

	f.SetResultContinuation(func(*object.Object) {
		t.Fatal("unexpected result continuation")
	})
	f.SetFailureContinuation(func(err error) {
		require.Error(t, err)
		wg.Done()
	})

	f.RunOutermostFunction(func(*fiber.Fiber) (*object.Object, error) {
		return nil, errors.New("boom")
	})

	wg.Wait()
	require.Equal(t, fiber.Failed, f.State())
}

func TestPerFiberGlobals(t *testing.T) {
	f := fiber.New(nil, 0)
	key := numeric.NewSmall(1)
	val := numeric.NewSmall(2)

	_, ok := f.Global(key)
	require.False(t, ok)

	f.SetGlobal(key, val)
	got, ok := f.Global(key)
	require.True(t, ok)
	require.True(t, got.Equals(val))
}

func TestCurrentDuringRunSync(t *testing.T) {
	var observed *fiber.Fiber
	result, err := fiber.RunSync(nil, func(f *fiber.Fiber) (*object.Object, error) {
		observed = fiber.Current()
		return numeric.NewSmall(7), nil
	})
	require.NoError(t, err)
	require.True(t, result.Equals(numeric.NewSmall(7)))
	require.NotNil(t, observed)

	require.Nil(t, fiber.Current())
}

func TestRequestCancel(t *testing.T) {
	f := fiber.New(nil, 0)
	require.False(t, f.IsCancelRequested())
	f.RequestCancel()
	require.True(t, f.IsCancelRequested())
}
