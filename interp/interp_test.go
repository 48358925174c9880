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

package interp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifehaxmax35/availtrig/avail"
	"github.com/lifehaxmax35/availtrig/errs"
	"github.com/lifehaxmax35/availtrig/interp"
	"github.com/lifehaxmax35/availtrig/numeric"
	"github.com/lifehaxmax35/availtrig/object"
	"github.com/lifehaxmax35/availtrig/typesys"
)

func integerType() *object.Object {
	return typesys.NewIntegerRangeType(numeric.NegativeInfinity(), true, numeric.PositiveInfinity(), true)
}

func addPrimitive(args []*object.Object) (*object.Object, error) {
	return numeric.Add(args[0], args[1])
}

func TestDispatchSinglePrimitiveDefinition(t *testing.T) {
	in := interp.New()
	in.RegisterPrimitive("Prim_IntegerAdd", addPrimitive)

	method := avail.NewMethod("_+_")
	sig := typesys.NewFunctionType([]*object.Object{integerType(), integerType()}, integerType())
	code := interp.NewPrimitiveCode(2, []*object.Object{integerType(), integerType()}, integerType(), "Prim_IntegerAdd")
	fn := avail.NewFunction(code, nil)
	def := avail.NewDefinition(avail.MethodDefinitionKind, sig, fn, nil)
	avail.MethodAddDefinition(method, def)

	result, err := in.Dispatch(method, []*object.Object{numeric.NewSmall(1), numeric.NewSmall(2)})
	require.NoError(t, err)
	require.True(t, result.Equals(numeric.NewSmall(3)))
}

func TestDispatchNoApplicableDefinition(t *testing.T) {
	in := interp.New()
	method := avail.NewMethod("_+_")

	_, err := in.Dispatch(method, []*object.Object{numeric.NewSmall(1), numeric.NewSmall(2)})
	require.Error(t, err)
	code, ok := errs.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, errs.NoMethodDefinition, code)
}

func TestExecuteBytecodeStackMachine(t *testing.T) {
	in := interp.New()
	in.RegisterPrimitive("Prim_IntegerAdd", addPrimitive)

	addMethod := avail.NewMethod("_+_")
	addSig := typesys.NewFunctionType([]*object.Object{integerType(), integerType()}, integerType())
	addCode := interp.NewPrimitiveCode(2, []*object.Object{integerType(), integerType()}, integerType(), "Prim_IntegerAdd")
	addFn := avail.NewFunction(addCode, nil)
	avail.MethodAddDefinition(addMethod, avail.NewDefinition(avail.MethodDefinitionKind, addSig, addFn, nil))

	// fn(a, b) = a + b, compiled as: push-local 0, push-local 1,
	// call-method(_+_, 2 args), return.
	instrs := []interp.Instr{
		{Op: interp.PushLocal, Operand: 0},
		{Op: interp.PushLocal, Operand: 1},
		{Op: interp.CallMethod, Operand: 2, Method: addMethod},
		{Op: interp.Return},
	}
	code := avail.NewCompiledCode(2, []*object.Object{integerType(), integerType()}, integerType(), nil, instrs)
	fn := avail.NewFunction(code, nil)

	result, err := in.Execute(fn, []*object.Object{numeric.NewSmall(10), numeric.NewSmall(32)})
	require.NoError(t, err)
	require.True(t, result.Equals(numeric.NewSmall(42)))
}

func TestExecuteWrongArgCount(t *testing.T) {
	in := interp.New()
	code := avail.NewCompiledCode(2, []*object.Object{integerType(), integerType()}, integerType(), nil, []interp.Instr{{Op: interp.Return}})
	fn := avail.NewFunction(code, nil)

	_, err := in.Execute(fn, []*object.Object{numeric.NewSmall(1)})
	require.Error(t, err)
	code2, ok := errs.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, errs.IncorrectNumberOfArguments, code2)
}

func TestDispatchMostSpecificWins(t *testing.T) {
	in := interp.New()
	in.RegisterPrimitive("general", func(args []*object.Object) (*object.Object, error) {
		return numeric.NewSmall(1), nil
	})
	in.RegisterPrimitive("specific", func(args []*object.Object) (*object.Object, error) {
		return numeric.NewSmall(2), nil
	})

	method := avail.NewMethod("_widen_")
	anyArgType := typesys.Any()
	oneType := typesys.NewInstanceType(numeric.NewSmall(5))

	generalSig := typesys.NewFunctionType([]*object.Object{anyArgType}, anyArgType)
	generalCode := interp.NewPrimitiveCode(1, []*object.Object{anyArgType}, anyArgType, "general")
	avail.MethodAddDefinition(method, avail.NewDefinition(avail.MethodDefinitionKind, generalSig, avail.NewFunction(generalCode, nil), nil))

	specificSig := typesys.NewFunctionType([]*object.Object{oneType}, oneType)
	specificCode := interp.NewPrimitiveCode(1, []*object.Object{oneType}, oneType, "specific")
	avail.MethodAddDefinition(method, avail.NewDefinition(avail.MethodDefinitionKind, specificSig, avail.NewFunction(specificCode, nil), nil))

	result, err := in.Dispatch(method, []*object.Object{numeric.NewSmall(5)})
	require.NoError(t, err)
	require.True(t, result.Equals(numeric.NewSmall(2)))
}
