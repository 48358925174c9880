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

// compiledCodePayload is the static, shareable part of a function: its
// parameter/return shape and its level-one instruction stream (spec
// §4.G). The instruction encoding itself is owned and interpreted by
// package interp; avail only stores it opaquely so that neither package
// needs to import the other.
type compiledCodePayload struct {
	numArgs      int
	argTypes     []*object.Object
	returnType   *object.Object
	literals     []*object.Object
	instructions any // interp-specific: []interp.Instr or a primitive name; see interp.Interpreter.Execute
}

type compiledCodeDescriptor struct {
	mut object.Mutability
}

func (d *compiledCodeDescriptor) Representation() string { return "compiled-code" }
func (d *compiledCodeDescriptor) Mutability() object.Mutability { return d.mut }
func (d *compiledCodeDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &compiledCodeDescriptor{mut: m}
}
func (d *compiledCodeDescriptor) Equals(self, other *object.Object) bool { return self == other }
func (d *compiledCodeDescriptor) Hash(self *object.Object) int32 {
	p := self.Payload().(compiledCodePayload)
	return int32(p.numArgs)*0x2545F491 + int32(len(p.literals))
}
func (d *compiledCodeDescriptor) Kind(self *object.Object) *object.Object { return nil }

// NewCompiledCode builds the static code object for a function.
// instructions is opaque to this package; package interp both produces and
// consumes it.
func NewCompiledCode(numArgs int, argTypes []*object.Object, returnType *object.Object, literals []*object.Object, instructions any) *object.Object {
	at := make([]*object.Object, len(argTypes))
	copy(at, argTypes)
	lits := make([]*object.Object, len(literals))
	copy(lits, literals)
	return object.New(&compiledCodeDescriptor{mut: object.Shared}, nil, nil, compiledCodePayload{
		numArgs: numArgs, argTypes: at, returnType: returnType, literals: lits, instructions: instructions,
	})
}

// CompiledCodeNumArgs returns a code object's declared argument count.
func CompiledCodeNumArgs(o *object.Object) int { return o.Payload().(compiledCodePayload).numArgs }

// CompiledCodeArgTypes returns a code object's declared argument types.
func CompiledCodeArgTypes(o *object.Object) []*object.Object {
	return o.Payload().(compiledCodePayload).argTypes
}

// CompiledCodeReturnType returns a code object's declared return type.
func CompiledCodeReturnType(o *object.Object) *object.Object {
	return o.Payload().(compiledCodePayload).returnType
}

// CompiledCodeLiterals returns a code object's literal pool.
func CompiledCodeLiterals(o *object.Object) []*object.Object {
	return o.Payload().(compiledCodePayload).literals
}

// CompiledCodeInstructions returns a code object's opaque instruction
// stream, to be interpreted by package interp.
func CompiledCodeInstructions(o *object.Object) any {
	return o.Payload().(compiledCodePayload).instructions
}

// functionPayload is a closure: a CompiledCode plus the outer variables it
// captured at creation time.
type functionPayload struct {
	code     *object.Object
	captured []*object.Object
}

type functionDescriptor struct {
	mut object.Mutability
}

func (d *functionDescriptor) Representation() string { return "function" }
func (d *functionDescriptor) Mutability() object.Mutability { return d.mut }
func (d *functionDescriptor) WithMutability(m object.Mutability) object.Descriptor {
	return &functionDescriptor{mut: m}
}
func (d *functionDescriptor) Equals(self, other *object.Object) bool { return self == other }
func (d *functionDescriptor) Hash(self *object.Object) int32 {
	return self.Payload().(functionPayload).code.Hash()
}
func (d *functionDescriptor) Kind(self *object.Object) *object.Object { return nil }

// NewFunction closes code over captured (the outer variables referenced
// by non-local access within it).
func NewFunction(code *object.Object, captured []*object.Object) *object.Object {
	c := make([]*object.Object, len(captured))
	copy(c, captured)
	return object.New(&functionDescriptor{mut: object.Mutable}, nil, nil, functionPayload{code: code, captured: c})
}

// FunctionCode returns a function's code object.
func FunctionCode(o *object.Object) *object.Object {
	return o.Payload().(functionPayload).code
}

// FunctionCaptured returns a function's captured outer variables.
func FunctionCaptured(o *object.Object) []*object.Object {
	return o.Payload().(functionPayload).captured
}

// IsFunction reports whether o is a Function.
func IsFunction(o *object.Object) bool {
	_, ok := o.Descriptor().(*functionDescriptor)
	return ok
}

// IsCompiledCode reports whether o is a CompiledCode.
func IsCompiledCode(o *object.Object) bool {
	_, ok := o.Descriptor().(*compiledCodeDescriptor)
	return ok
}
