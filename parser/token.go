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

// Package parser implements Component E: the parser engine that walks a
// compiled bundle tree (package splitter) against a token stream,
// producing Phrases (package avail), backtracking over every grammatical
// alternative, and detecting ambiguity via a work-unit completion
// barrier.
//
// The full specification (§4.E "Lexing") describes an extensible lexer
// registry where multiple installable lexers each offer to tokenize the
// same source position, so that which token comes next can itself be
// ambiguous. This package keeps that extension point (the Lexer interface,
// whose implementations are passed to Tokenize) but
// ships one bootstrap lexer covering identifiers/operators, whole-number
// literals, and string literals -- enough to drive every scenario in
// spec §8 -- rather than reproducing Avail's full on-disk token grammar,
// which is explicitly out of scope per spec §1 ("No source-file syntax is
// prescribed beyond what the parser's driving data demand").
package parser

import (
	"strings"
	"unicode"
)

// TokenKind classifies one lexical token.
type TokenKind int8

const (
	TokEOF TokenKind = iota
	TokKeyword
	TokString
	TokNumber
)

// Token is one lexical token: its kind, literal text (unescaped, for
// strings), and a rune offset in the source. The bootstrap rules set Pos to
// the token's first rune; a token from an installed Lexer carries the Pos
// its Body gives it (see Lexer.Body).
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

// Lexer offers to tokenize source starting at pos, given the leading
// rune. It returns the tokens it is willing to produce there (plural,
// since the lexer set is extensible and more than one installed lexer may
// claim the same leading character -- spec §4.E); an ordinary lexer
// returns at most one.
type Lexer interface {
	// Filter reports whether this lexer should be consulted given the
	// leading rune at the current position.
	Filter(lead rune) bool
	// Body produces the token(s) starting at pos in src. Tokenize resumes
	// lexing at the Pos of the last token returned, so that token's Pos is
	// the rune offset just past the lexed text.
	Body(src []rune, pos int) ([]Token, error)
}

// Tokenize runs the bootstrap lexer over src, producing a single
// deterministic token stream terminated by a TokEOF token. Installed
// extra lexers (lexers) are consulted first at each position, in
// registration order; the bootstrap rules apply only where none of them
// claims the leading character.
func Tokenize(src string, lexers ...Lexer) ([]Token, error) {
	runes := []rune(src)
	var out []Token
	i := 0

	for i < len(runes) {
		r := runes[i]
		if unicode.IsSpace(r) {
			i++
			continue
		}

		claimed := false
		for _, lx := range lexers {
			if lx.Filter(r) {
				toks, err := lx.Body(runes, i)
				if err != nil {
					return nil, err
				}
				if len(toks) > 0 {
					out = append(out, toks...)
					i = toks[len(toks)-1].Pos
					claimed = true
					break
				}
			}
		}
		if claimed {
			continue
		}

		switch {
		case unicode.IsDigit(r):
			start := i
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
			out = append(out, Token{Kind: TokNumber, Text: string(runes[start:i]), Pos: start})

		case r == '"':
			start := i
			i++
			var sb strings.Builder
			for i < len(runes) && runes[i] != '"' {
				if runes[i] == '\\' && i+1 < len(runes) {
					i++
				}
				sb.WriteRune(runes[i])
				i++
			}
			i++ // closing quote
			out = append(out, Token{Kind: TokString, Text: sb.String(), Pos: start})

		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			out = append(out, Token{Kind: TokKeyword, Text: string(runes[start:i]), Pos: start})

		default:
			out = append(out, Token{Kind: TokKeyword, Text: string(r), Pos: i})
			i++
		}
	}

	out = append(out, Token{Kind: TokEOF, Text: "", Pos: len(runes)})
	return out, nil
}
