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

package parser

import (
	"github.com/lifehaxmax35/availtrig/object"
)

// Scope is the chain of declarations visible at a point in the source: one
// frame per enclosing block, searched innermost-first, falling back to the
// module loader's module-scope bindings (spec §4.F) through lookupModule.
type Scope struct {
	parent *Scope
	vars   map[string]*object.Object // name -> declared type

	// lookupModule resolves a name against module scope when no block-local
	// declaration shadows it; nil at every scope but the outermost one a
	// module-driving caller constructs.
	lookupModule func(name string) (*object.Object, bool)
}

// NewScope creates a top-level scope backed by a module-scope resolver
// (which may be nil if there is none, e.g. when parsing in a throwaway
// sandbox).
func NewScope(lookupModule func(name string) (*object.Object, bool)) *Scope {
	return &Scope{vars: make(map[string]*object.Object), lookupModule: lookupModule}
}

// Push creates a child scope nested inside s, for a block's local
// declarations.
func (s *Scope) Push() *Scope {
	return &Scope{parent: s, vars: make(map[string]*object.Object)}
}

// Declare records name as a local of declared type typ, visible in s and
// any scope pushed from it.
func (s *Scope) Declare(name string, typ *object.Object) {
	s.vars[name] = typ
}

// Lookup searches s and its ancestors, finally falling back to module
// scope, for name's declared type.
func (s *Scope) Lookup(name string) (*object.Object, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, ok
		}
		if cur.lookupModule != nil {
			if t, ok := cur.lookupModule(name); ok {
				return t, ok
			}
		}
	}
	return nil, false
}

// State is one position in the token stream together with the scope in
// effect there. Parsing never mutates a State; every recursive step
// produces a new one, which is what lets the engine memoize on
// (tree node, position) pairs without scope ever becoming stale.
type State struct {
	Tokens []Token
	Pos    int
	Scope  *Scope
}

// Advance returns the state reached after consuming one token.
func (s State) Advance() State {
	return State{Tokens: s.Tokens, Pos: s.Pos + 1, Scope: s.Scope}
}

// At returns the token at the state's current position (always valid,
// since the token stream is EOF-terminated).
func (s State) At() Token {
	return s.Tokens[s.Pos]
}

// WithScope returns a copy of s parsing against a different scope, used
// when descending into a block phrase's body.
func (s State) WithScope(scope *Scope) State {
	return State{Tokens: s.Tokens, Pos: s.Pos, Scope: scope}
}

// Solution is one complete, unambiguous-with-itself parse of an
// expression: the Phrase it produced and the position just past its last
// consumed token. parseExpressionAt can return more than one Solution at
// the same final Pos -- that is precisely the ambiguity property P8
// exists to detect.
type Solution struct {
	Phrase *object.Object
	Pos    int
}
