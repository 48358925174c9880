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

package module

import (
	"github.com/lifehaxmax35/availtrig/avail"
	"github.com/lifehaxmax35/availtrig/errs"
	"github.com/lifehaxmax35/availtrig/interp"
	"github.com/lifehaxmax35/availtrig/object"
	"github.com/lifehaxmax35/availtrig/parser"
	"github.com/lifehaxmax35/availtrig/typesys"
)

// Scope returns a parser.Scope whose module-level fallback resolves
// against this loader's module-scope bindings (spec §4.F "declaration
// hoisting"): a local-variable/local-constant declaration parsed at top
// level becomes visible to every later top-level statement the same way a
// module-scope binding would.
func (l *Loader) Scope() *parser.Scope {
	return parser.NewScope(func(name string) (*object.Object, bool) {
		return avail.ModuleBindingType(l.mod, name)
	})
}

// EvaluateStatement parses one top-level statement from src against
// scope, evaluates it, and -- if it is a DeclarationPhrase -- hoists the
// declared name into module scope instead of returning a value, matching
// spec §4.F's "a top-level declaration becomes a module variable/constant"
// rule.
func (l *Loader) EvaluateStatement(scope *parser.Scope, src string) (*object.Object, error) {
	phrase, err := l.eng.ParseExpression(src, scope)
	if err != nil {
		return nil, err
	}

	if avail.PhraseKindOf(phrase) == avail.DeclarationPhrase {
		name := avail.AtomName(avail.PhraseLeaf(phrase))
		children := avail.PhraseChildren(phrase)
		declType := avail.PhraseYieldType(phrase)
		if declType == nil {
			declType = typesys.Any()
		}
		avail.ModuleDeclareBinding(l.mod, name, declType, false)
		l.record(func() { avail.ModuleUndeclareBinding(l.mod, name) })
		if len(children) > 0 {
			value, err := Evaluate(children[0], l.mod, l.in)
			if err != nil {
				return nil, err
			}
			if err := avail.ModuleInitializeBinding(l.mod, name, value); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	return Evaluate(phrase, l.mod, l.in)
}

// Evaluate walks phrase and produces its runtime value, dispatching
// SendPhrase arguments through in.Dispatch and resolving
// VariableUsePhrase against module's module-scope bindings. It is the
// small tree-walking counterpart to package interp's bytecode
// interpreter, needed because top-level statements and macro expansions
// are phrases, not yet-compiled CompiledCode.
func Evaluate(phrase *object.Object, module *object.Object, in *interp.Interpreter) (*object.Object, error) {
	switch avail.PhraseKindOf(phrase) {
	case avail.LiteralPhrase:
		return avail.PhraseLeaf(phrase), nil

	case avail.VariableUsePhrase:
		name := avail.AtomName(avail.PhraseLeaf(phrase))
		return avail.ModuleBindingValue(module, name)

	case avail.MacroSubstitutionPhrase:
		children := avail.PhraseChildren(phrase)
		if len(children) != 1 {
			return nil, errs.New(errs.NoImplementation)
		}
		return Evaluate(children[0], module, in)

	case avail.SendPhrase:
		children := avail.PhraseChildren(phrase)
		args := make([]*object.Object, len(children))
		for i, c := range children {
			v, err := Evaluate(c, module, in)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		bundle := avail.PhraseLeaf(phrase)
		return in.Dispatch(avail.BundleMethod(bundle), args)

	case avail.SequencePhrase:
		var result *object.Object
		for _, c := range avail.PhraseChildren(phrase) {
			v, err := Evaluate(c, module, in)
			if err != nil {
				return nil, err
			}
			result = v
		}
		return result, nil

	case avail.AssignmentPhrase:
		children := avail.PhraseChildren(phrase)
		if len(children) != 1 {
			return nil, errs.New(errs.NoImplementation)
		}
		name := avail.AtomName(avail.PhraseLeaf(phrase))
		value, err := Evaluate(children[0], module, in)
		if err != nil {
			return nil, err
		}
		if avail.ModuleBindingIsConstant(module, name) {
			return nil, errs.New(errs.CannotModifyFinalField)
		}
		if err := avail.ModuleInitializeBinding(module, name, value); err != nil {
			return nil, err
		}
		return value, nil

	default:
		return nil, errs.Newf(errs.NoImplementation, "evaluation of phrase kind %v", avail.PhraseKindOf(phrase))
	}
}
