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

package parser_test

import (
	"testing"

	"github.com/lifehaxmax35/availtrig/parser"
	"github.com/stretchr/testify/require"
)

func TestTokenizeKeywordsNumbersAndStrings(t *testing.T) {
	toks, err := parser.Tokenize(`x + 42 "hi there"`)
	require.NoError(t, err)

	require.Equal(t, parser.TokKeyword, toks[0].Kind)
	require.Equal(t, "x", toks[0].Text)

	require.Equal(t, parser.TokKeyword, toks[1].Kind)
	require.Equal(t, "+", toks[1].Text)

	require.Equal(t, parser.TokNumber, toks[2].Kind)
	require.Equal(t, "42", toks[2].Text)

	require.Equal(t, parser.TokString, toks[3].Kind)
	require.Equal(t, "hi there", toks[3].Text)

	require.Equal(t, parser.TokEOF, toks[len(toks)-1].Kind)
}

func TestTokenizeSkipsWhitespace(t *testing.T) {
	toks, err := parser.Tokenize("  a   b  ")
	require.NoError(t, err)
	require.Len(t, toks, 3) // "a", "b", EOF
	require.Equal(t, "a", toks[0].Text)
	require.Equal(t, "b", toks[1].Text)
}

func TestTokenizeEmptySourceIsJustEOF(t *testing.T) {
	toks, err := parser.Tokenize("")
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, parser.TokEOF, toks[0].Kind)
}

// installedLexer claims a single leading rune and always produces one
// fixed-width keyword token, to exercise Tokenize's lexer-registry
// extension point independently of the bootstrap rules.
type installedLexer struct {
	lead  rune
	width int
}

func (l installedLexer) Filter(r rune) bool { return r == l.lead }

func (l installedLexer) Body(src []rune, pos int) ([]parser.Token, error) {
	end := pos + l.width
	if end > len(src) {
		end = len(src)
	}
	return []parser.Token{{Kind: parser.TokKeyword, Text: string(src[pos:end]), Pos: end}}, nil
}

func TestTokenizeConsultsInstalledLexersFirst(t *testing.T) {
	toks, err := parser.Tokenize("@@x", installedLexer{lead: '@', width: 2})
	require.NoError(t, err)
	require.Equal(t, "@@", toks[0].Text)
	require.Equal(t, "x", toks[1].Text)
}
