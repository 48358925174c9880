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
	"github.com/lifehaxmax35/availtrig/interp"
	"github.com/lifehaxmax35/availtrig/module"
	"github.com/lifehaxmax35/availtrig/numeric"
	"github.com/lifehaxmax35/availtrig/object"
	"github.com/lifehaxmax35/availtrig/parser"
	"github.com/lifehaxmax35/availtrig/splitter"
	"github.com/lifehaxmax35/availtrig/typesys"
	"github.com/stretchr/testify/require"
)

func TestParsePragmaSplitsKindFromValue(t *testing.T) {
	p, err := module.ParsePragma("method=addPrim=_+_")
	require.NoError(t, err)
	require.Equal(t, "method", p.Kind)
	require.Equal(t, "addPrim=_+_", p.Value)
}

func TestParsePragmaRejectsMissingEquals(t *testing.T) {
	_, err := module.ParsePragma("method")
	require.Error(t, err)
}

func TestInstallCheckPragmaAcceptsMatchingVersion(t *testing.T) {
	err := module.InstallCheckPragma("version=1.2.3", "1.2.3")
	require.NoError(t, err)
}

func TestInstallCheckPragmaRejectsUnlistedVersion(t *testing.T) {
	err := module.InstallCheckPragma("version=1.2.3,1.3.0", "9.9.9")
	require.Error(t, err)
}

func TestInstallMethodPragmaDefinesDispatchableMethod(t *testing.T) {
	tree := splitter.New()
	in := interp.New()
	in.RegisterPrimitive("addPrim", func(args []*object.Object) (*object.Object, error) {
		return numeric.Add(args[0], args[1])
	})

	l := module.New("/test/pragma-method", tree, parser.NewEngine(tree, in), in)
	bundle, err := l.InstallMethodPragma("_+_", "addPrim",
		[]*object.Object{typesys.Any(), typesys.Any()}, typesys.Any())
	require.NoError(t, err)

	_, ok := avail.ModuleLookupBundle(l.Module(), "_+_")
	require.True(t, ok)
	require.Equal(t, "_+_", avail.BundleMessageName(bundle))
}

func TestInstallMacroPragmaDefinesMacroDefinition(t *testing.T) {
	tree := splitter.New()
	in := interp.New()
	in.RegisterPrimitive("doublePrim", func(args []*object.Object) (*object.Object, error) {
		leaf := avail.PhraseLeaf(args[0])
		doubled, err := numeric.Add(leaf, leaf)
		if err != nil {
			return nil, err
		}
		return avail.NewPhrase(avail.LiteralPhrase, nil, doubled), nil
	})

	l := module.New("/test/pragma-macro", tree, parser.NewEngine(tree, in), in)
	bundle, err := l.InstallMacroPragma("twice_", nil, "doublePrim",
		[]*object.Object{typesys.Any()}, typesys.Any())
	require.NoError(t, err)

	method := avail.BundleMethod(bundle)
	defs := avail.MethodDefinitions(method)
	require.Len(t, defs, 1)
	require.Equal(t, avail.MacroDefinitionKind, avail.DefinitionKindOf(defs[0]))
}

func TestInstallStringifyPragmaRecordsMethodName(t *testing.T) {
	l := newLoader("/test/pragma-stringify")
	require.Equal(t, "", l.StringifyMethodName())
	l.InstallStringifyPragma("printMe_")
	require.Equal(t, "printMe_", l.StringifyMethodName())
}

func TestInstallStringifyPragmaRollsBack(t *testing.T) {
	l := newLoader("/test/pragma-stringify-rollback")
	l.Begin()
	l.InstallStringifyPragma("printMe_")
	l.Rollback()
	require.Equal(t, "", l.StringifyMethodName())
}

// TestInstallLexerPragmaWiresPrimitivesAsLexer drives the primitiveLexer
// adapter end to end: a filter primitive claims '@' and a body primitive
// consumes a fixed two-rune token, and the installed lexer is handed to
// Tokenize directly via Loader.Lexers (Loader.EvaluateStatement does not
// pass installed lexers to the parser).
func TestInstallLexerPragmaWiresPrimitivesAsLexer(t *testing.T) {
	tree := splitter.New()
	in := interp.New()
	in.RegisterPrimitive("atFilter", func(args []*object.Object) (*object.Object, error) {
		r, _ := numeric.AsInt64(args[0])
		if r == int64('@') {
			return numeric.NewSmall(1), nil
		}
		return numeric.NewSmall(0), nil
	})
	in.RegisterPrimitive("atBody", func(args []*object.Object) (*object.Object, error) {
		pos, _ := numeric.AsInt64(args[0])
		srcLen, _ := numeric.AsInt64(args[1])
		next := pos + 2
		if next > srcLen {
			next = srcLen
		}
		return numeric.NewSmall(next), nil
	})

	l := module.New("/test/pragma-lexer", tree, parser.NewEngine(tree, in), in)
	l.InstallLexerPragma("atFilter", "atBody")
	require.Len(t, l.Lexers(), 1)

	toks, err := parser.Tokenize("@@x", l.Lexers()...)
	require.NoError(t, err)
	require.Equal(t, "@@", toks[0].Text)
	require.Equal(t, "x", toks[1].Text)
}
