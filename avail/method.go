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

import (
	"sync"
	"sync/atomic"

	"github.com/lifehaxmax35/availtrig/errs"
	"github.com/lifehaxmax35/availtrig/object"
)

// methodState is a Method's mutable state: every Definition ever installed
// for one message name, guarded by a mutex because multiple fibers may be
// compiling modules that add definitions to the same Method concurrently
//.
type methodState struct {
	mu                   sync.RWMutex
	name                 string
	definitions          []*object.Object // Definition objects
	semanticRestrictions []*object.Object // Function objects: (argTypes...) -> refined return type
	id                   uint64
}

var methodIDCounter atomic.Uint64

type methodDescriptor struct {
	mut object.Mutability
}

func (d *methodDescriptor) Representation() string { return "method" }
func (d *methodDescriptor) Mutability() object.Mutability { return d.mut }
func (d *methodDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &methodDescriptor{mut: m}
}
func (d *methodDescriptor) Equals(self, other *object.Object) bool { return self == other }
func (d *methodDescriptor) Hash(self *object.Object) int32 {
	return int32(self.Payload().(*methodState).id)
}
func (d *methodDescriptor) Kind(self *object.Object) *object.Object { return nil }

// NewMethod creates an empty Method for the given (already name-split)
// message name.
func NewMethod(name string) *object.Object {
	st := &methodState{name: name, id: methodIDCounter.Add(1)}
	return object.New(&methodDescriptor{mut: object.Mutable}, nil, nil, st)
}

// MethodName returns a Method's message name.
func MethodName(o *object.Object) string {
	return o.Payload().(*methodState).name
}

// MethodAddDefinition installs definition under method. It is safe to call
// from multiple fibers compiling different modules concurrently (spec
// §5).
func MethodAddDefinition(method, definition *object.Object) {
	st := method.Payload().(*methodState)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.definitions = append(st.definitions, definition)
}

// MethodDefinitions returns a snapshot of method's current definitions.
func MethodDefinitions(method *object.Object) []*object.Object {
	st := method.Payload().(*methodState)
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*object.Object, len(st.definitions))
	copy(out, st.definitions)
	return out
}

// MethodAddSemanticRestriction installs fn as one of method's semantic
// restrictions: a compile-time function from argument types to a refined
// return type, evaluated alongside every other applicable definition's
// declared return type and combined by intersection (spec §4.E "send
// completion").
func MethodAddSemanticRestriction(method, fn *object.Object) {
	st := method.Payload().(*methodState)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.semanticRestrictions = append(st.semanticRestrictions, fn)
}

// MethodSemanticRestrictions returns a snapshot of method's installed
// semantic restriction functions.
func MethodSemanticRestrictions(method *object.Object) []*object.Object {
	st := method.Payload().(*methodState)
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*object.Object, len(st.semanticRestrictions))
	copy(out, st.semanticRestrictions)
	return out
}

// IsMethod reports whether o is a Method.
func IsMethod(o *object.Object) bool {
	_, ok := o.Descriptor().(*methodDescriptor)
	return ok
}

// --- Definition ---

// DefinitionKind distinguishes the four kinds of Method definition:
// ordinary method, macro, forward declaration, and abstract.
type DefinitionKind int8

const (
	MethodDefinitionKind DefinitionKind = iota
	MacroDefinitionKind
	ForwardDefinitionKind
	AbstractDefinitionKind
)

type definitionPayload struct {
	kind           DefinitionKind
	signatureType  *object.Object // a typesys function type
	body           *object.Object // a Function, or nil for Forward/Abstract
	definingModule *object.Object
	// prefixFunctions holds a macro Definition's "§" checkpoint bodies, in
	// message-name order; empty for non-macro definitions.
	prefixFunctions []*object.Object
}

type definitionDescriptor struct {
	mut object.Mutability
}

func (d *definitionDescriptor) Representation() string { return "definition" }
func (d *definitionDescriptor) Mutability() object.Mutability { return d.mut }
func (d *definitionDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &definitionDescriptor{mut: m}
}
func (d *definitionDescriptor) Equals(self, other *object.Object) bool { return self == other }
func (d *definitionDescriptor) Hash(self *object.Object) int32 {
	p := self.Payload().(definitionPayload)
	h := int32(p.kind) * 0x2545F491
	if p.signatureType != nil {
		h = h*31 + p.signatureType.Hash()
	}
	return h
}
func (d *definitionDescriptor) Kind(self *object.Object) *object.Object { return nil }

// NewDefinition builds a Definition with the given kind, parameter
// signature type, body function (nil for Forward/Abstract), and defining
// module.
func NewDefinition(kind DefinitionKind, signatureType, body, definingModule *object.Object) *object.Object {
	return object.New(&definitionDescriptor{mut: object.Mutable}, nil, nil, definitionPayload{
		kind: kind, signatureType: signatureType, body: body, definingModule: definingModule,
	})
}

// DefinitionKindOf returns a Definition's kind.
func DefinitionKindOf(o *object.Object) DefinitionKind {
	return o.Payload().(definitionPayload).kind
}

// DefinitionSignatureType returns a Definition's declared parameter
// signature type.
func DefinitionSignatureType(o *object.Object) *object.Object {
	return o.Payload().(definitionPayload).signatureType
}

// DefinitionBody returns a Definition's body Function, or nil if it is a
// Forward or Abstract definition with no body yet.
func DefinitionBody(o *object.Object) *object.Object {
	return o.Payload().(definitionPayload).body
}

// NewMacroDefinition builds a macro Definition: a body function (the
// macro's replacement-phrase generator) plus its "§"-checkpoint prefix
// functions in message-name order.
func NewMacroDefinition(signatureType, body, definingModule *object.Object, prefixFunctions []*object.Object) *object.Object {
	pf := make([]*object.Object, len(prefixFunctions))
	copy(pf, prefixFunctions)
	return object.New(&definitionDescriptor{mut: object.Mutable}, nil, nil, definitionPayload{
		kind: MacroDefinitionKind, signatureType: signatureType, body: body,
		definingModule: definingModule, prefixFunctions: pf,
	})
}

// DefinitionPrefixFunctions returns a macro Definition's prefix functions.
func DefinitionPrefixFunctions(o *object.Object) []*object.Object {
	return o.Payload().(definitionPayload).prefixFunctions
}

// DefinitionDefiningModule returns the module that installed a Definition.
func DefinitionDefiningModule(o *object.Object) *object.Object {
	return o.Payload().(definitionPayload).definingModule
}

// DefinitionResolveForward replaces a Forward definition's placeholder
// with a real body once the matching concrete definition is parsed (spec
// §4.F forward-declaration resolution, scenario S4).
func DefinitionResolveForward(forward *object.Object, body *object.Object) error {
	p := forward.Payload().(definitionPayload)
	if p.kind != ForwardDefinitionKind {
		return errs.New(errs.PermissionDenied)
	}
	p.kind = MethodDefinitionKind
	p.body = body
	forward.SetPayload(p)
	return nil
}

// --- Bundle ---

// bundlePayload wraps a Method with the specific (possibly aliased)
// message name and compiled parsing-instruction plan used to recognize
// sends of it; the instruction plan itself is
// produced by package splitter and attached by the module loader, so this
// struct only needs to hold a slot for it as an opaque value.
type bundlePayload struct {
	method      *object.Object
	messageName string
	splitPlan   any // *splitter.Plan, attached lazily; kept as `any` here to avoid an import cycle (splitter depends on avail for Bundle/Method shapes).
}

type bundleDescriptor struct {
	mut object.Mutability
}

func (d *bundleDescriptor) Representation() string { return "bundle" }
func (d *bundleDescriptor) Mutability() object.Mutability { return d.mut }
func (d *bundleDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &bundleDescriptor{mut: m}
}
func (d *bundleDescriptor) Equals(self, other *object.Object) bool { return self == other }
func (d *bundleDescriptor) Hash(self *object.Object) int32 {
	p := self.Payload().(*bundlePayload)
	h := int32(1000003)
	for _, c := range p.messageName {
		h = h*31 + int32(c)
	}
	return h
}
func (d *bundleDescriptor) Kind(self *object.Object) *object.Object { return nil }

// NewBundle creates a Bundle naming method via messageName.
func NewBundle(method *object.Object, messageName string) *object.Object {
	return object.New(&bundleDescriptor{mut: object.Mutable}, nil, nil, &bundlePayload{
		method: method, messageName: messageName,
	})
}

// BundleMethod returns a Bundle's underlying Method.
func BundleMethod(o *object.Object) *object.Object {
	return o.Payload().(*bundlePayload).method
}

// BundleMessageName returns a Bundle's message name string.
func BundleMessageName(o *object.Object) string {
	return o.Payload().(*bundlePayload).messageName
}

// BundleSetSplitPlan attaches the compiled parsing-instruction plan
// (package splitter's output) to a Bundle.
func BundleSetSplitPlan(o *object.Object, plan any) {
	o.Payload().(*bundlePayload).splitPlan = plan
}

// BundleSplitPlan returns a Bundle's compiled parsing-instruction plan, or
// nil if it has not yet been attached.
func BundleSplitPlan(o *object.Object) any {
	return o.Payload().(*bundlePayload).splitPlan
}

// IsBundle reports whether o is a Bundle.
func IsBundle(o *object.Object) bool {
	_, ok := o.Descriptor().(*bundleDescriptor)
	return ok
}
