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
	"math/big"
	"strconv"

	"github.com/lifehaxmax35/availtrig/avail"
	"github.com/lifehaxmax35/availtrig/errs"
	"github.com/lifehaxmax35/availtrig/interp"
	"github.com/lifehaxmax35/availtrig/internal/sync2"
	"github.com/lifehaxmax35/availtrig/numeric"
	"github.com/lifehaxmax35/availtrig/object"
	"github.com/lifehaxmax35/availtrig/splitter"
	"github.com/lifehaxmax35/availtrig/tuple"
	"github.com/lifehaxmax35/availtrig/typesys"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
)

// foldCaser implements keyword⁇'s case-insensitive matching with full
// Unicode case folding rather than an ASCII-only lowercasing, so a
// case-insensitive keyword part matches non-Latin scripts correctly too.
var foldCaser = cases.Fold()

// Engine drives a bundle tree (package splitter) against a token stream,
// backtracking over every alternative non-deterministically (spec §4.E).
// Macro bodies, prefix functions and semantic restrictions of completed
// sends run through the level-one interpreter (package interp), called
// directly rather than inside a fiber.
type Engine struct {
	tree *splitter.Tree
	in   *interp.Interpreter

	// barrier tracks the work-unit completion property (P10): one unit is
	// enqueued per parseExpressionAt call that is not answered from the memo
	// or the left-recursion seed, and completed when that call returns, so a
	// caller can confirm every alternative at a position has
	// finished by inspecting Counts() once ParseExpression returns.
	barrier *sync2.Barrier

	memo map[memoKey][]Solution
	// inProgress seeds a left-recursive self-reference: a message starting
	// with "_" (an argument in the very first position) asks, as its own
	// first argument, for every expression reachable from the identical
	// tree position and token position it is itself being computed at.
	// Rather than growing a seed across iterations (Warth's algorithm),
	// this engine seeds the self-reference with only the leaf solution
	// already known at entry, so a send can never recurse into itself as
	// its own leftmost argument -- a deliberate simplification documented
	// in DESIGN.md, not full left-recursion support.
	inProgress map[memoKey][]Solution
	// varTypes records the declared type backing a VariableUsePhrase this
	// engine produced -- phrasePayload has no generic type-yield slot for
	// non-send kinds, so this side table fills that gap rather than adding
	// a field only parser would ever set.
	varTypes map[*object.Object]*object.Object
}

type memoKey struct {
	node *splitter.Node
	pos  int
}

// NewEngine creates a parser engine that walks tree and executes completed
// macro bodies / semantic restrictions through in.
func NewEngine(tree *splitter.Tree, in *interp.Interpreter) *Engine {
	return &Engine{
		tree:       tree,
		in:         in,
		barrier:    sync2.NewBarrier(nil),
		memo:       make(map[memoKey][]Solution),
		inProgress: make(map[memoKey][]Solution),
		varTypes:   make(map[*object.Object]*object.Object),
	}
}

// Barrier exposes the engine's work-unit completion counters (property
// P10), for callers driving the module loader's statement-at-a-time
// evaluation loop.
func (e *Engine) Barrier() *sync2.Barrier { return e.barrier }

// ParseExpression tokenizes src and parses exactly one top-level
// expression from it, requiring the parse to consume every token. Zero
// viable parses is NoViableParse; more than one equally-valid full parse
// is AmbiguousParse (property P8).
func (e *Engine) ParseExpression(src string, scope *Scope) (*object.Object, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	// Memo entries are keyed by token position, which only identifies a
	// parse within one token stream, so each call starts from an empty memo.
	e.memo = make(map[memoKey][]Solution)
	st := State{Tokens: toks, Pos: 0, Scope: scope}

	solutions, err := e.parseExpressionAt(st)
	if err != nil {
		return nil, err
	}

	eofPos := len(toks) - 1
	var complete []Solution
	for _, s := range solutions {
		if s.Pos == eofPos {
			complete = append(complete, s)
		}
	}

	switch len(complete) {
	case 0:
		return nil, errs.New(errs.NoViableParse)
	case 1:
		return complete[0].Phrase, nil
	default:
		return nil, errs.New(errs.AmbiguousParse)
	}
}

// parseExpressionAt returns every Solution reachable from st: a leaf
// literal or variable-use, or any send whose bundle-tree walk completes.
// Results are memoized on (tree position, token position) -- the
// rendezvous point a fuller implementation would instead key a shared
// fragment cache on, simplified here to a single-threaded memo table since
// this engine resolves everything synchronously rather than across
// multiple scheduled fibers.
func (e *Engine) parseExpressionAt(st State) ([]Solution, error) {
	key := memoKey{node: e.tree.Root(), pos: st.Pos}
	if cached, ok := e.memo[key]; ok {
		return cached, nil
	}
	if seed, ok := e.inProgress[key]; ok {
		return seed, nil
	}

	e.barrier.Enqueue(1)
	defer e.barrier.Complete()

	var seed []Solution
	if leaf, next, ok := e.parseLeaf(st); ok {
		seed = append(seed, Solution{Phrase: leaf, Pos: next})
	}
	e.inProgress[key] = seed
	defer delete(e.inProgress, key)

	out := append([]Solution(nil), seed...)

	sendSolutions, err := e.walkSend(e.tree.Root(), st, nil, nil)
	if err != nil {
		return nil, err
	}
	out = append(out, sendSolutions...)

	e.memo[key] = out
	return out, nil
}

// parseLeaf recognizes the token-level productions that aren't driven by
// the bundle tree: number/string literals, and uses of an
// already-declared variable.
func (e *Engine) parseLeaf(st State) (phrase *object.Object, next int, ok bool) {
	tok := st.At()
	switch tok.Kind {
	case TokNumber:
		if n, err := strconv.ParseInt(tok.Text, 10, 64); err == nil {
			return avail.NewPhrase(avail.LiteralPhrase, nil, numeric.NewSmall(n)), st.Pos + 1, true
		}
		b, ok2 := new(big.Int).SetString(tok.Text, 10)
		if !ok2 {
			return nil, 0, false
		}
		return avail.NewPhrase(avail.LiteralPhrase, nil, numeric.NewBig(b)), st.Pos + 1, true

	case TokString:
		runes := []rune(tok.Text)
		elems := make([]*object.Object, len(runes))
		for i, r := range runes {
			elems[i] = numeric.NewSmall(int64(r))
		}
		return avail.NewPhrase(avail.LiteralPhrase, nil, tuple.FromElements(elems)), st.Pos + 1, true

	case TokKeyword:
		if st.Scope == nil {
			return nil, 0, false
		}
		if typ, ok2 := st.Scope.Lookup(tok.Text); ok2 {
			name := avail.NewAtom(tok.Text, nil)
			use := avail.NewPhrase(avail.VariableUsePhrase, nil, name)
			e.varTypes[use] = typ
			return use, st.Pos + 1, true
		}
	}
	return nil, 0, false
}

// walkSend recursively walks node against st, accumulating the argument
// phrases and matched keyword tokens collected so far, returning one
// Solution per way a complete send can be formed from this point onward.
func (e *Engine) walkSend(node *splitter.Node, st State, args []*object.Object, tokens []string) ([]Solution, error) {
	var out []Solution

	for _, bundle := range node.Complete() {
		if forbidden(e.tree, bundle, args) {
			continue
		}
		phrase, err := e.completeSend(bundle, args, tokens, st)
		if err != nil {
			if _, rejected := err.(*errs.Rejected); rejected {
				continue
			}
			return nil, err
		}
		out = append(out, Solution{Phrase: phrase, Pos: st.Pos})
	}

	tok := st.At()
	if tok.Kind == TokKeyword {
		if next, ok := node.Keyword(tok.Text); ok {
			sub, err := e.walkSend(next, st.Advance(), args, append(append([]string(nil), tokens...), tok.Text))
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		if next, ok := node.KeywordCaseInsensitive(lower(tok.Text)); ok {
			sub, err := e.walkSend(next, st.Advance(), args, append(append([]string(nil), tokens...), tok.Text))
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
	}

	if next, ok := node.Argument(); ok {
		argSolutions, err := e.parseExpressionAt(st)
		if err != nil {
			return nil, err
		}
		for _, sol := range argSolutions {
			sub, err := e.walkSend(next, st.advanceTo(sol.Pos), append(append([]*object.Object(nil), args...), sol.Phrase), tokens)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
	}

	if next, ok := node.ArgumentTypeChecked(); ok {
		argSolutions, err := e.parseExpressionAt(st)
		if err != nil {
			return nil, err
		}
		for _, sol := range argSolutions {
			sub, err := e.walkSend(next, st.advanceTo(sol.Pos), append(append([]*object.Object(nil), args...), sol.Phrase), tokens)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
	}

	if next, ok := node.VariableReference(); ok && tok.Kind == TokKeyword && st.Scope != nil {
		if _, declared := st.Scope.Lookup(tok.Text); declared {
			name := avail.NewAtom(tok.Text, nil)
			ref := avail.NewPhrase(avail.ReferencePhrase, nil, name)
			sub, err := e.walkSend(next, st.Advance(), append(append([]*object.Object(nil), args...), ref), tokens)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
	}

	if next, ok := node.RawToken(); ok && tok.Kind != TokEOF {
		raw := avail.NewPhrase(avail.LiteralPhrase, nil, tuple.FromElements(rawTokenElements(tok.Text)))
		sub, err := e.walkSend(next, st.Advance(), append(append([]*object.Object(nil), args...), raw), tokens)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}

	if next, ok := node.Checkpoint(); ok {
		// Transparent pass-through: a fuller implementation invokes the
		// owning macro definition's prefix function here (spec §4.E
		// "Prefix functions"); this engine runs prefix functions only at
		// send completion time (see completeSend), a simplification
		// documented in DESIGN.md.
		sub, err := e.walkSend(next, st, args, tokens)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}

	if enter, ok := node.GroupEnter(); ok {
		sub, err := e.walkSend(enter, st, args, tokens)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	if after, ok := node.GroupAfter(); ok {
		sub, err := e.walkSend(after, st, args, tokens)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	if back, ok := node.LoopBack(); ok {
		sub, err := e.walkSend(back, st, args, tokens)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	if exit, ok := node.LoopExit(); ok {
		sub, err := e.walkSend(exit, st, args, tokens)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}

	return out, nil
}

// advanceTo returns a State positioned at pos, keeping the same scope and
// token stream.
func (s State) advanceTo(pos int) State {
	return State{Tokens: s.Tokens, Pos: pos, Scope: s.Scope}
}

// rawTokenElements boxes a raw token's text as a tuple of code-point
// integers, the same representation string literals use.
func rawTokenElements(s string) []*object.Object {
	runes := []rune(s)
	elems := make([]*object.Object, len(runes))
	for i, r := range runes {
		elems[i] = numeric.NewSmall(int64(r))
	}
	return elems
}

func lower(s string) string {
	return foldCaser.String(s)
}

// forbidden reports whether any already-collected argument violates a
// grammatical restriction registered against bundle (property P9): the
// argument at position i is itself a send whose bundle is disallowed
// there.
func forbidden(tree *splitter.Tree, bundle *object.Object, args []*object.Object) bool {
	for i, arg := range args {
		if avail.PhraseKindOf(arg) != avail.SendPhrase {
			continue
		}
		childBundle := avail.PhraseLeaf(arg)
		if tree.IsForbidden(bundle, i, childBundle) {
			return true
		}
	}
	return false
}

// completeSend finishes a send of bundle with the collected args/tokens:
// a macro invokes its replacement-phrase body immediately (spec §4.E
// "macro expansion"); an ordinary method send computes its yield type from
// the intersection of applicable definitions' return types, refined by any
// matching semantic restriction.
func (e *Engine) completeSend(bundle *object.Object, args []*object.Object, tokens []string, st State) (*object.Object, error) {
	method := avail.BundleMethod(bundle)
	defs := avail.MethodDefinitions(method)

	argTypes := make([]*object.Object, len(args))
	for i, a := range args {
		argTypes[i] = e.phraseType(a)
	}

	var macros, ordinary []*object.Object
	for _, def := range defs {
		if !definitionApplicable(def, argTypes) {
			continue
		}
		switch avail.DefinitionKindOf(def) {
		case avail.MacroDefinitionKind:
			macros = append(macros, def)
		case avail.MethodDefinitionKind:
			ordinary = append(ordinary, def)
		}
	}

	if len(macros) > 0 {
		def := macros[0]
		for _, prefix := range avail.DefinitionPrefixFunctions(def) {
			if _, err := e.in.Execute(prefix, args); err != nil {
				return nil, err
			}
		}
		body := avail.DefinitionBody(def)
		replacement, err := e.in.Execute(body, args)
		if err != nil {
			return nil, err
		}
		return avail.NewPhrase(avail.MacroSubstitutionPhrase, []*object.Object{replacement}, bundle), nil
	}

	if len(ordinary) == 0 {
		return nil, errs.NewRejected("no visible definition of %s accepts these argument types", avail.MethodName(method))
	}

	yieldType := typesys.Nothing()
	for _, def := range ordinary {
		sig := avail.DefinitionSignatureType(def)
		yieldType = typesys.Union(yieldType, typesys.FunctionTypeReturnType(sig))
	}

	restrictions := avail.MethodSemanticRestrictions(method)
	if len(restrictions) > 0 {
		refinements := make([]*object.Object, len(restrictions))
		var g errgroup.Group
		for i, restriction := range restrictions {
			g.Go(func() error {
				refined, err := e.in.Execute(restriction, argTypes)
				if err != nil {
					return err
				}
				refinements[i] = refined
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, refined := range refinements {
			yieldType = typesys.Intersect(yieldType, refined)
		}
	}

	return avail.NewSendPhrase(bundle, args, yieldType, tokens), nil
}

// definitionApplicable reports whether def's declared parameter types
// could possibly accept args of the given static types (spec §4.E
// "Message parsing": applicability at parse time is judged on declared
// argument *types*, not runtime values, since the send hasn't executed
// yet).
func definitionApplicable(def *object.Object, argTypes []*object.Object) bool {
	sig := avail.DefinitionSignatureType(def)
	if sig == nil {
		return true
	}
	declared := typesys.FunctionTypeArgTypes(sig)
	if len(declared) != len(argTypes) {
		return false
	}
	for i, d := range declared {
		if typesys.Intersect(d, argTypes[i]).Equals(typesys.Nothing()) {
			return false
		}
	}
	return true
}

// phraseType computes the static type an expression phrase yields when
// evaluated, used to judge definition/semantic-restriction applicability
// during parsing.
func (e *Engine) phraseType(p *object.Object) *object.Object {
	switch avail.PhraseKindOf(p) {
	case avail.LiteralPhrase:
		return typesys.NewInstanceType(avail.PhraseLeaf(p))
	case avail.SendPhrase:
		if yt := avail.PhraseYieldType(p); yt != nil {
			return yt
		}
		return typesys.Any()
	case avail.VariableUsePhrase:
		if t, ok := e.varTypes[p]; ok {
			return t
		}
		return typesys.Any()
	case avail.MacroSubstitutionPhrase:
		children := avail.PhraseChildren(p)
		if len(children) == 1 {
			return e.phraseType(children[0])
		}
		return typesys.Any()
	default:
		return typesys.Any()
	}
}
