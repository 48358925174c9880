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

package module_test

import (
	"testing"

	"github.com/lifehaxmax35/availtrig/avail"
	"github.com/lifehaxmax35/availtrig/errs"
	"github.com/lifehaxmax35/availtrig/interp"
	"github.com/lifehaxmax35/availtrig/module"
	"github.com/lifehaxmax35/availtrig/object"
	"github.com/lifehaxmax35/availtrig/parser"
	"github.com/lifehaxmax35/availtrig/splitter"
	"github.com/lifehaxmax35/availtrig/typesys"
	"github.com/stretchr/testify/require"
)

func newLoader(name string) *module.Loader {
	tree := splitter.New()
	in := interp.New()
	return module.New(name, tree, parser.NewEngine(tree, in), in)
}

func TestDefineAtomRejectsRedefinition(t *testing.T) {
	l := newLoader("/test/atoms")
	_, err := l.DefineAtom("x")
	require.NoError(t, err)

	_, err = l.DefineAtom("x")
	require.Error(t, err)
	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, errs.RedefinedName, code)
}

func TestRollbackUndoesAtomAndBundleDefinitions(t *testing.T) {
	l := newLoader("/test/rollback")

	l.Begin()
	_, err := l.DefineAtom("x")
	require.NoError(t, err)
	sig := typesys.NewFunctionType([]*object.Object{typesys.Any()}, typesys.Any())
	def := avail.NewDefinition(avail.MethodDefinitionKind, sig, nil, l.Module())
	_, err = l.DefineMethod("foo_", def)
	require.NoError(t, err)
	l.Rollback()

	_, ok := avail.ModuleLookupAtom(l.Module(), "x")
	require.False(t, ok)
	_, ok = avail.ModuleLookupBundle(l.Module(), "foo_")
	require.False(t, ok)
}

func TestCommitKeepsDefinitions(t *testing.T) {
	l := newLoader("/test/commit")

	l.Begin()
	_, err := l.DefineAtom("x")
	require.NoError(t, err)
	l.Commit()

	_, ok := avail.ModuleLookupAtom(l.Module(), "x")
	require.True(t, ok)
}

// TestForwardDeclarationMustBeResolved exercises scenario S4: a forward
// declaration with no concrete definition fails end-of-module checking
// with a diagnostic naming it; resolving it clears the failure.
func TestForwardDeclarationMustBeResolved(t *testing.T) {
	l := newLoader("/test/forwards")
	sig := typesys.NewFunctionType([]*object.Object{typesys.Any()}, typesys.Any())

	_, err := l.DeclareForward("foo_", sig)
	require.NoError(t, err)

	err = l.CheckForwardsResolved()
	require.Error(t, err)
	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, errs.UnresolvedForwardDeclaration, code)

	body := avail.NewFunction(interp.NewPrimitiveCode(1, []*object.Object{typesys.Any()}, typesys.Any(), "fooPrim"), nil)
	require.NoError(t, l.ResolveForward("foo_", body))
	require.NoError(t, l.CheckForwardsResolved())
}

// TestExtendAppliesRenames exercises scenario S6: extending a module
// whose export is renamed makes it visible under the new name only.
func TestExtendAppliesRenames(t *testing.T) {
	imported := avail.NewModule("/lib/M")
	method := avail.NewMethod("a")
	bundle := avail.NewBundle(method, "a")
	avail.ModuleDefineBundle(imported, "a", bundle)

	l := newLoader("/test/extends")
	l.Extend(imported, map[string]string{"a": "b"})

	_, ok := avail.ModuleLookupBundle(l.Module(), "b")
	require.True(t, ok)
	_, ok = avail.ModuleLookupBundle(l.Module(), "a")
	require.False(t, ok)
}

func TestExtendRollback(t *testing.T) {
	imported := avail.NewModule("/lib/N")
	method := avail.NewMethod("x")
	bundle := avail.NewBundle(method, "x")
	avail.ModuleDefineBundle(imported, "x", bundle)

	l := newLoader("/test/extends-rollback")
	l.Begin()
	l.Extend(imported, nil)
	_, ok := avail.ModuleLookupBundle(l.Module(), "x")
	require.True(t, ok)
	l.Rollback()
	_, ok = avail.ModuleLookupBundle(l.Module(), "x")
	require.False(t, ok)
}

func TestImportOrderTopologicallySortsDependencies(t *testing.T) {
	deps := map[string][]string{
		"A": {"B", "C"},
		"B": {},
		"C": {"B"},
	}
	order, cyclic := module.ImportOrder("A", func(n string) []string { return deps[n] })
	require.False(t, cyclic)

	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	require.Less(t, pos["B"], pos["C"])
	require.Less(t, pos["C"], pos["A"])
}

func TestDumpListsDefinedBundleNames(t *testing.T) {
	l := newLoader("/test/dump")
	sig := typesys.NewFunctionType([]*object.Object{typesys.Any()}, typesys.Any())
	def := avail.NewDefinition(avail.MethodDefinitionKind, sig, nil, l.Module())
	_, err := l.DefineMethod("foo_", def)
	require.NoError(t, err)

	out, err := l.Dump()
	require.NoError(t, err)
	require.Contains(t, out, "/test/dump")
	require.Contains(t, out, "foo_")
}

// TestForwardsResolvedReportsEveryUnresolvedName exercises
// CheckForwardsResolved's aggregation of multiple unresolved forwards into
// one diagnostic rather than only the first.
func TestForwardsResolvedReportsEveryUnresolvedName(t *testing.T) {
	l := newLoader("/test/forwards-multi")
	sig := typesys.NewFunctionType([]*object.Object{typesys.Any()}, typesys.Any())

	_, err := l.DeclareForward("foo_", sig)
	require.NoError(t, err)
	_, err = l.DeclareForward("bar_", sig)
	require.NoError(t, err)

	err = l.CheckForwardsResolved()
	require.Error(t, err)
	require.Contains(t, err.Error(), "foo_")
	require.Contains(t, err.Error(), "bar_")
}

func TestImportOrderDetectsCycle(t *testing.T) {
	deps := map[string][]string{
		"X": {"Y"},
		"Y": {"X"},
	}
	_, cyclic := module.ImportOrder("X", func(n string) []string { return deps[n] })
	require.True(t, cyclic)
}
