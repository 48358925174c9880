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

package avail

import "github.com/lifehaxmax35/availtrig/object"

// PhraseKind tags the variety of syntax tree node a Phrase represents
//. The parser engine (package parser) builds these as
// the output of a successful parse; the interpreter (package interp)
// consumes them.
type PhraseKind int32

const (
	LiteralPhrase PhraseKind = iota
	VariableUsePhrase
	SendPhrase
	BlockPhrase
	SequencePhrase
	AssignmentPhrase
	DeclarationPhrase
	MacroSubstitutionPhrase
	ListPhrase
	ReferencePhrase
)

func (k PhraseKind) String() string {
	switch k {
	case LiteralPhrase:
		return "literal"
	case VariableUsePhrase:
		return "variable-use"
	case SendPhrase:
		return "send"
	case BlockPhrase:
		return "block"
	case SequencePhrase:
		return "sequence"
	case AssignmentPhrase:
		return "assignment"
	case DeclarationPhrase:
		return "declaration"
	case MacroSubstitutionPhrase:
		return "macro-substitution"
	case ListPhrase:
		return "list"
	case ReferencePhrase:
		return "reference"
	default:
		return "phrase(?)"
	}
}

// phrasePayload carries kind-specific leaf data that doesn't fit the
// generic object-slot children array: a literal's value, a variable-use's
// name, a send's target Bundle, and so on.
type phrasePayload struct {
	kind PhraseKind
	// literalValue holds LiteralPhrase's value, or SendPhrase's Bundle,
	// or DeclarationPhrase/VariableUsePhrase's declared name atom.
	literalValue *object.Object
	// yieldType holds a SendPhrase's computed yield type (spec §3's
	// "send (bundle, arguments-list, yield type, tokens)"), strengthened
	// by semantic restrictions at send-completion time; nil for phrase
	// kinds that don't carry one.
	yieldType *object.Object
	// tokens holds a SendPhrase's consumed keyword tokens, in the order
	// the message name's instructions matched them.
	tokens []string
}

type phraseDescriptor struct {
	mut object.Mutability
}

func (d *phraseDescriptor) Representation() string { return "phrase" }
func (d *phraseDescriptor) Mutability() object.Mutability { return d.mut }
func (d *phraseDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &phraseDescriptor{mut: m}
}
func (d *phraseDescriptor) Equals(self, other *object.Object) bool { return self == other }
func (d *phraseDescriptor) Hash(self *object.Object) int32 {
	p := self.Payload().(phrasePayload)
	h := int32(p.kind)*-0x61C8864F + 1
	for _, child := range self.ObjectSlots() {
		h = h*31 + child.Hash()
	}
	return h
}
func (d *phraseDescriptor) Kind(self *object.Object) *object.Object { return nil }

// NewPhrase builds a phrase node of the given kind with the given children
// (in evaluation order) and kind-specific leaf payload (nil where not
// applicable).
func NewPhrase(kind PhraseKind, children []*object.Object, leaf *object.Object) *object.Object {
	slots := make([]*object.Object, len(children))
	copy(slots, children)
	return object.New(&phraseDescriptor{mut: object.Mutable}, slots, nil, phrasePayload{kind: kind, literalValue: leaf})
}

// NewSendPhrase builds a SendPhrase: bundle is the target Bundle, args are
// the parsed argument phrases in order, yieldType is the type this send
// has been determined to produce (after applying any semantic
// restrictions), and tokens are the message's matched keyword tokens.
func NewSendPhrase(bundle *object.Object, args []*object.Object, yieldType *object.Object, tokens []string) *object.Object {
	slots := make([]*object.Object, len(args))
	copy(slots, args)
	toks := make([]string, len(tokens))
	copy(toks, tokens)
	return object.New(&phraseDescriptor{mut: object.Mutable}, slots, nil, phrasePayload{
		kind: SendPhrase, literalValue: bundle, yieldType: yieldType, tokens: toks,
	})
}

// PhraseKindOf returns a phrase's kind.
func PhraseKindOf(o *object.Object) PhraseKind {
	return o.Payload().(phrasePayload).kind
}

// PhraseChildren returns a phrase's sub-phrases, in evaluation order.
func PhraseChildren(o *object.Object) []*object.Object {
	return o.ObjectSlots()
}

// PhraseLeaf returns a phrase's kind-specific leaf value (a literal's
// value, a send's Bundle, a declaration's name), or nil.
func PhraseLeaf(o *object.Object) *object.Object {
	return o.Payload().(phrasePayload).literalValue
}

// PhraseYieldType returns a SendPhrase's computed yield type, or nil for
// phrase kinds that don't carry one.
func PhraseYieldType(o *object.Object) *object.Object {
	return o.Payload().(phrasePayload).yieldType
}

// PhraseTokens returns a SendPhrase's matched keyword tokens.
func PhraseTokens(o *object.Object) []string {
	return o.Payload().(phrasePayload).tokens
}

// IsPhrase reports whether o is a Phrase.
func IsPhrase(o *object.Object) bool {
	_, ok := o.Descriptor().(*phraseDescriptor)
	return ok
}
