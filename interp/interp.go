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

// Package interp implements Component G: the minimal level-one
// interpreter used to evaluate compile-time phrases and bootstrap
// functions (spec §4.G). A small stack machine -- push-literal,
// push-local, pop, call-method (full polymorphic lookup), get/set
// variable, return -- is enough for the core to self-host its own
// parser, the same way the teacher needs only a handful of primitive
// kinds (varint, length-delimited, fixed32/64) to drive its entire
// dynamic message interpreter loop.
package interp

import (
	"sort"

	"github.com/lifehaxmax35/availtrig/avail"
	"github.com/lifehaxmax35/availtrig/errs"
	"github.com/lifehaxmax35/availtrig/object"
	"github.com/lifehaxmax35/availtrig/typesys"
)

// Opcode enumerates the level-one stack machine's instructions (spec
// §4.G).
type Opcode int8

const (
	// PushLiteral pushes CompiledCode's literal pool entry at Operand.
	PushLiteral Opcode = iota
	// PushLocal pushes the value of local slot Operand (arguments first,
	// then the function's captured values, then any slots SetVariable adds).
	PushLocal
	// Pop discards the top of the value stack.
	Pop
	// CallMethod pops Operand argument values, performs full polymorphic
	// lookup against the instruction's Method, and pushes the result.
	CallMethod
	// GetVariable reads the current value of local slot Operand, raising
	// CannotReadUnassignedVariable if it has never been set.
	GetVariable
	// SetVariable pops a value and stores it into local slot Operand.
	SetVariable
	// Return pops the top of the value stack and ends execution with it.
	Return
)

// Instr is one decoded instruction. Method is only meaningful for
// CallMethod; Execute reads no opcode's Operand2.
type Instr struct {
	Op       Opcode
	Operand  int
	Operand2 int
	Method   *object.Object // avail Method, for CallMethod
}

// Primitive is a bootstrap primitive implemented directly in Go --
// arithmetic, tuple construction, map lookup, atom creation, fiber spawn,
// and I/O stubs delegated to an injected interface (spec §4.G, §1's
// "fiber runtime" external-collaborator boundary).
type Primitive func(args []*object.Object) (*object.Object, error)

// Interpreter runs CompiledCode against a registry of bootstrap
// primitives. Each primitive is addressed by the name given to the
// `primName` half of a `method=PRIM_NAME=name` pragma (spec §6).
type Interpreter struct {
	primitives map[string]Primitive
}

// New creates an interpreter with no primitives registered.
func New() *Interpreter {
	return &Interpreter{primitives: make(map[string]Primitive)}
}

// RegisterPrimitive installs fn under name, for later invocation from
// CompiledCode whose instruction stream is that bare name string (the
// convention NewPrimitiveCode relies on).
func (in *Interpreter) RegisterPrimitive(name string, fn Primitive) {
	in.primitives[name] = fn
}

// NewPrimitiveCode builds a CompiledCode object whose "instructions" are
// simply the primitive's registered name -- Execute recognizes a string
// instruction stream and dispatches straight to the registry instead of
// running the stack machine.
func NewPrimitiveCode(numArgs int, argTypes []*object.Object, returnType *object.Object, primitiveName string) *object.Object {
	return avail.NewCompiledCode(numArgs, argTypes, returnType, nil, primitiveName)
}

// Execute invokes fn (an avail Function) with args, running either the
// stack machine over its bytecode or, if its CompiledCode wraps a bare
// primitive name, the registered Go primitive.
func (in *Interpreter) Execute(fn *object.Object, args []*object.Object) (*object.Object, error) {
	code := avail.FunctionCode(fn)
	if len(args) != avail.CompiledCodeNumArgs(code) {
		return nil, errs.New(errs.IncorrectNumberOfArguments)
	}

	switch instrs := avail.CompiledCodeInstructions(code).(type) {
	case string:
		prim, ok := in.primitives[instrs]
		if !ok {
			return nil, errs.Newf(errs.NoImplementation, "primitive %q not registered", instrs)
		}
		return prim(args)
	case []Instr:
		return in.run(fn, code, instrs, args)
	default:
		return nil, errs.Newf(errs.NoImplementation, "unrecognized instruction stream of type %T", instrs)
	}
}

// run executes a bytecode CompiledCode's instruction stream.
func (in *Interpreter) run(fn, code *object.Object, instrs []Instr, args []*object.Object) (*object.Object, error) {
	captured := avail.FunctionCaptured(fn)
	locals := make([]*object.Object, len(args)+len(captured))
	copy(locals, args)
	copy(locals[len(args):], captured)

	literals := avail.CompiledCodeLiterals(code)
	var stack []*object.Object

	for _, ins := range instrs {
		switch ins.Op {
		case PushLiteral:
			stack = append(stack, literals[ins.Operand])

		case PushLocal:
			if ins.Operand >= len(locals) || locals[ins.Operand] == nil {
				return nil, errs.New(errs.CannotReadUnassignedVariable)
			}
			stack = append(stack, locals[ins.Operand])

		case Pop:
			stack = stack[:len(stack)-1]

		case GetVariable:
			if ins.Operand >= len(locals) || locals[ins.Operand] == nil {
				return nil, errs.New(errs.CannotReadUnassignedVariable)
			}
			stack = append(stack, locals[ins.Operand])

		case SetVariable:
			v := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for len(locals) <= ins.Operand {
				locals = append(locals, nil)
			}
			locals[ins.Operand] = v

		case CallMethod:
			n := ins.Operand
			callArgs := append([]*object.Object(nil), stack[len(stack)-n:]...)
			stack = stack[:len(stack)-n]
			result, err := in.Dispatch(ins.Method, callArgs)
			if err != nil {
				return nil, err
			}
			stack = append(stack, result)

		case Return:
			return stack[len(stack)-1], nil
		}
	}

	if len(stack) == 0 {
		return nil, nil
	}
	return stack[len(stack)-1], nil
}

// Dispatch performs full polymorphic method lookup: among method's
// concrete (non-forward, non-abstract) definitions, find the most
// specific one whose parameter types accept args' runtime kinds, and
// invoke its body. Multiple equally-specific applicable definitions is
// AmbiguousMethodDefinition; none is NoMethodDefinition (spec §7.2).
func (in *Interpreter) Dispatch(method *object.Object, args []*object.Object) (*object.Object, error) {
	defs := avail.MethodDefinitions(method)

	var applicable []*object.Object
	for _, def := range defs {
		kind := avail.DefinitionKindOf(def)
		if kind != avail.MethodDefinitionKind && kind != avail.MacroDefinitionKind {
			continue
		}
		if applicableTo(def, args) {
			applicable = append(applicable, def)
		}
	}

	switch len(applicable) {
	case 0:
		return nil, errs.New(errs.NoMethodDefinition)
	case 1:
		body := avail.DefinitionBody(applicable[0])
		if body == nil {
			return nil, errs.New(errs.NoMethodDefinition)
		}
		return in.Execute(body, args)
	default:
		mostSpecific := mostSpecificDefinitions(applicable)
		if len(mostSpecific) != 1 {
			return nil, errs.New(errs.AmbiguousMethodDefinition)
		}
		body := avail.DefinitionBody(mostSpecific[0])
		if body == nil {
			return nil, errs.New(errs.NoMethodDefinition)
		}
		return in.Execute(body, args)
	}
}

func applicableTo(def *object.Object, args []*object.Object) bool {
	sig := avail.DefinitionSignatureType(def)
	if sig == nil {
		return true
	}
	argTypes := typesys.FunctionTypeArgTypes(sig)
	if len(argTypes) != len(args) {
		return false
	}
	for i, at := range argTypes {
		if !typesys.Contains(at, args[i]) {
			return false
		}
	}
	return true
}

// mostSpecificDefinitions returns the subset of defs whose parameter
// types are not a strict supertype of any other def's parameter types,
// position-wise.
func mostSpecificDefinitions(defs []*object.Object) []*object.Object {
	type scored struct {
		def   *object.Object
		types []*object.Object
	}
	scoredDefs := make([]scored, len(defs))
	for i, d := range defs {
		scoredDefs[i] = scored{d, typesys.FunctionTypeArgTypes(avail.DefinitionSignatureType(d))}
	}

	moreSpecific := func(a, b scored) bool {
		allSubOrEqual := true
		strictlyLess := false
		for i := range a.types {
			if typesys.IsSubtype(a.types[i], b.types[i]) && !a.types[i].Equals(b.types[i]) {
				strictlyLess = true
			} else if !typesys.IsSubtype(a.types[i], b.types[i]) {
				allSubOrEqual = false
			}
		}
		return allSubOrEqual && strictlyLess
	}

	var winners []*object.Object
	for _, candidate := range scoredDefs {
		dominated := false
		for _, other := range scoredDefs {
			if other.def == candidate.def {
				continue
			}
			if moreSpecific(other, candidate) {
				dominated = true
				break
			}
		}
		if !dominated {
			winners = append(winners, candidate.def)
		}
	}

	sort.Slice(winners, func(i, j int) bool { return winners[i].Hash() < winners[j].Hash() })
	return winners
}
