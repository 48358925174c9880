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

package avail_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifehaxmax35/availtrig/avail"
	"github.com/lifehaxmax35/availtrig/numeric"
	"github.com/lifehaxmax35/availtrig/object"
)

func TestAtomsWithSameNameAreNotEqual(t *testing.T) {
	a := avail.NewAtom("foo", nil)
	b := avail.NewAtom("foo", nil)
	require.False(t, a.Equals(b))
	require.True(t, a.Equals(a))
	require.Equal(t, "foo", avail.AtomName(a))
}

func TestFloat32EqualityCoalescesIndirection(t *testing.T) {
	a := avail.NewFloat32(3.5)
	b := avail.NewFloat32(3.5)
	require.True(t, a.Equals(b))
	// Equality-driven indirection: a now forwards to b.
	require.True(t, a.Is(b))

	c := avail.NewFloat32(4.5)
	require.False(t, a.Equals(c))
}

func TestFloat32RoundTrips(t *testing.T) {
	o := avail.NewFloat32(1.25)
	v, ok := avail.AsFloat32(o)
	require.True(t, ok)
	require.Equal(t, float32(1.25), v)
}

func TestMapBasicOperations(t *testing.T) {
	m := avail.NewMap()
	k1, v1 := numeric.NewSmall(1), avail.NewAtom("one", nil)
	m = avail.MapAtPuttingCanDestroy(m, k1, v1, true)

	got, ok := avail.MapAt(m, k1)
	require.True(t, ok)
	require.True(t, got.Equals(v1))
	require.Equal(t, 1, avail.MapSize(m))

	_, ok = avail.MapAt(m, numeric.NewSmall(2))
	require.False(t, ok)
}

func TestMapEqualityIgnoresInsertionOrder(t *testing.T) {
	a := avail.NewMap()
	a = avail.MapAtPuttingCanDestroy(a, numeric.NewSmall(1), numeric.NewSmall(10), true)
	a = avail.MapAtPuttingCanDestroy(a, numeric.NewSmall(2), numeric.NewSmall(20), true)

	b := avail.NewMap()
	b = avail.MapAtPuttingCanDestroy(b, numeric.NewSmall(2), numeric.NewSmall(20), true)
	b = avail.MapAtPuttingCanDestroy(b, numeric.NewSmall(1), numeric.NewSmall(10), true)

	require.True(t, a.Equals(b))
	require.Equal(t, a.Hash(), b.Hash())
}

func TestMapAtPuttingCanDestroyFalseLeavesOriginalUntouched(t *testing.T) {
	a := avail.NewMap()
	a = avail.MapAtPuttingCanDestroy(a, numeric.NewSmall(1), numeric.NewSmall(10), true)

	b := avail.MapAtPuttingCanDestroy(a, numeric.NewSmall(2), numeric.NewSmall(20), false)

	require.Equal(t, 1, avail.MapSize(a))
	require.Equal(t, 2, avail.MapSize(b))
}

func TestSetBasicOperations(t *testing.T) {
	s := avail.NewSet()
	s = avail.SetWithElementCanDestroy(s, numeric.NewSmall(7), true)
	require.True(t, avail.SetHasElement(s, numeric.NewSmall(7)))
	require.False(t, avail.SetHasElement(s, numeric.NewSmall(8)))
	require.Equal(t, 1, avail.SetSize(s))
}

func TestMapConcurrentWritesAreSafe(t *testing.T) {
	m := avail.NewMap()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			avail.MapAtPuttingCanDestroy(m, numeric.NewSmall(int64(i)), numeric.NewSmall(int64(i)), true)
		}(i)
	}
	wg.Wait()
	require.Equal(t, 50, avail.MapSize(m))
}

func TestPhraseChildrenAndLeaf(t *testing.T) {
	lit := avail.NewPhrase(avail.LiteralPhrase, nil, numeric.NewSmall(5))
	send := avail.NewPhrase(avail.SendPhrase, []*object.Object{lit}, avail.NewAtom("foo:", nil))

	require.Equal(t, avail.SendPhrase, avail.PhraseKindOf(send))
	require.Len(t, avail.PhraseChildren(send), 1)
	require.True(t, avail.PhraseChildren(send)[0].Equals(lit))
	require.True(t, avail.PhraseLeaf(lit).Equals(numeric.NewSmall(5)))
}

func TestMethodDefinitionsAccumulate(t *testing.T) {
	method := avail.NewMethod("foo:")
	d1 := avail.NewDefinition(avail.MethodDefinitionKind, nil, nil, nil)
	d2 := avail.NewDefinition(avail.MethodDefinitionKind, nil, nil, nil)
	avail.MethodAddDefinition(method, d1)
	avail.MethodAddDefinition(method, d2)
	require.Len(t, avail.MethodDefinitions(method), 2)
}

func TestForwardDefinitionResolution(t *testing.T) {
	forward := avail.NewDefinition(avail.ForwardDefinitionKind, nil, nil, nil)
	require.Equal(t, avail.ForwardDefinitionKind, avail.DefinitionKindOf(forward))

	body := avail.NewAtom("body-placeholder", nil)
	err := avail.DefinitionResolveForward(forward, body)
	require.NoError(t, err)
	require.Equal(t, avail.MethodDefinitionKind, avail.DefinitionKindOf(forward))
	require.True(t, avail.DefinitionBody(forward).Equals(body))
}

func TestModuleAtomAndBundleLifecycle(t *testing.T) {
	m := avail.NewModule("/root/example")
	a := avail.NewAtom("x", m)
	avail.ModuleDefineAtom(m, "x", a)

	got, ok := avail.ModuleLookupAtom(m, "x")
	require.True(t, ok)
	require.True(t, got.Equals(a))

	avail.ModuleUndefineAtom(m, "x")
	_, ok = avail.ModuleLookupAtom(m, "x")
	require.False(t, ok)

	method := avail.NewMethod("foo:")
	bundle := avail.NewBundle(method, "foo:")
	avail.ModuleDefineBundle(m, "foo:", bundle)
	gotBundle, ok := avail.ModuleLookupBundle(m, "foo:")
	require.True(t, ok)
	require.True(t, gotBundle.Equals(bundle))
}
