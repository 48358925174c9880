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

// TestEvaluateStatementDispatchesOrdinarySend exercises scenarios S1/S2:
// a top-level expression parses to a SendPhrase and evaluating it
// dispatches to the installed primitive.
func TestEvaluateStatementDispatchesOrdinarySend(t *testing.T) {
	tree := splitter.New()
	in := interp.New()
	in.RegisterPrimitive("addPrim", func(args []*object.Object) (*object.Object, error) {
		return numeric.Add(args[0], args[1])
	})

	l := module.New("/test/arith", tree, parser.NewEngine(tree, in), in)
	_, err := l.InstallMethodPragma("_+_", "addPrim",
		[]*object.Object{typesys.Any(), typesys.Any()}, typesys.Any())
	require.NoError(t, err)

	result, err := l.EvaluateStatement(l.Scope(), "1 + 2 + 3")
	require.NoError(t, err)
	require.True(t, result.Equals(numeric.NewSmall(6)))
}

// TestEvaluateStatementMacroSubstitution exercises a macro definition
// whose body primitive produces a replacement phrase from its arguments.
func TestEvaluateStatementMacroSubstitution(t *testing.T) {
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

	l := module.New("/test/macro", tree, parser.NewEngine(tree, in), in)
	_, err := l.InstallMacroPragma("twice_", nil, "doublePrim",
		[]*object.Object{typesys.Any()}, typesys.Any())
	require.NoError(t, err)

	result, err := l.EvaluateStatement(l.Scope(), "twice 21")
	require.NoError(t, err)
	require.True(t, result.Equals(numeric.NewSmall(42)))
}
