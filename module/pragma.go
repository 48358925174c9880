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
	"strings"

	"github.com/lifehaxmax35/availtrig/avail"
	"github.com/lifehaxmax35/availtrig/errs"
	"github.com/lifehaxmax35/availtrig/interp"
	"github.com/lifehaxmax35/availtrig/numeric"
	"github.com/lifehaxmax35/availtrig/object"
	"github.com/lifehaxmax35/availtrig/parser"
	"github.com/lifehaxmax35/availtrig/typesys"
	"github.com/stoewer/go-strcase"
	"golang.org/x/mod/semver"
)

// Pragma is one parsed `Pragma` section entry (spec §6 "Pragma forms"):
// `"check=version=1.2.3"`, `"method=PRIM_NAME=name"`,
// `"macro=PRIM1,PRIM2=name"`, `"stringify=name"`, `"lexer=FILTER,BODY=name"`.
type Pragma struct {
	Kind  string
	Value string
}

// ParsePragma splits a pragma string literal's content on its first `=`
// into a kind and the remaining value. The kind is canonicalized to
// snake_case, so "Method" and "method" both yield the kind "method", while
// "method-name" yields "method_name".
func ParsePragma(s string) (Pragma, error) {
	kind, value, ok := strings.Cut(s, "=")
	if !ok {
		return Pragma{}, errs.Newf(errs.NoImplementation, "malformed pragma %q", s)
	}
	return Pragma{Kind: strcase.SnakeCase(kind), Value: value}, nil
}

// InstallCheckPragma verifies the running implementation's version
// intersects the comma-separated version list named by the pragma's
// `version=<csv>` value, using golang.org/x/mod/semver the way the
// teacher's descriptor builder validates a FileDescriptorProto's
// declared syntax/edition string before trusting the rest of the file.
func InstallCheckPragma(value, runtimeVersion string) error {
	_, rest, ok := strings.Cut(value, "=")
	if !ok {
		return errs.Newf(errs.NoImplementation, "malformed check pragma %q", value)
	}
	want := "v" + strings.TrimPrefix(runtimeVersion, "v")
	if !semver.IsValid(want) {
		return errs.Newf(errs.NoImplementation, "invalid runtime version %q", runtimeVersion)
	}
	for _, v := range strings.Split(rest, ",") {
		v = "v" + strings.TrimPrefix(strings.TrimSpace(v), "v")
		if semver.IsValid(v) && semver.Compare(v, want) == 0 {
			return nil
		}
	}
	return errs.Newf(errs.NoImplementation, "runtime version %s not in accepted set %q", runtimeVersion, rest)
}

// InstallMethodPragma bootstrap-installs a primitive as an ordinary
// method definition under availName (spec §6 `method=<primName>=<name>`).
// argTypes/returnType come from the module's own Names/Entries section
// context, which this package does not parse; the caller supplies them.
func (l *Loader) InstallMethodPragma(availName, primName string, argTypes []*object.Object, returnType *object.Object) (*object.Object, error) {
	sig := typesys.NewFunctionType(argTypes, returnType)
	code := interp.NewPrimitiveCode(len(argTypes), argTypes, returnType, primName)
	fn := avail.NewFunction(code, nil)
	def := avail.NewDefinition(avail.MethodDefinitionKind, sig, fn, l.mod)
	return l.DefineMethod(availName, def)
}

// InstallMacroPragma bootstrap-installs a macro definition under
// availName: bodyPrimName's primitive produces the replacement phrase,
// and each of prefixPrimNames runs, in order, at the macro's "§"
// checkpoints (spec §6 `macro=PRIM1,PRIM2=name`, the last primitive being
// the body and any preceding ones its prefix functions).
func (l *Loader) InstallMacroPragma(availName string, prefixPrimNames []string, bodyPrimName string, argTypes []*object.Object, returnType *object.Object) (*object.Object, error) {
	sig := typesys.NewFunctionType(argTypes, returnType)
	bodyCode := interp.NewPrimitiveCode(len(argTypes), argTypes, returnType, bodyPrimName)
	body := avail.NewFunction(bodyCode, nil)

	prefixFns := make([]*object.Object, len(prefixPrimNames))
	for i, name := range prefixPrimNames {
		code := interp.NewPrimitiveCode(len(argTypes), argTypes, typesys.Any(), name)
		prefixFns[i] = avail.NewFunction(code, nil)
	}

	def := avail.NewMacroDefinition(sig, body, l.mod, prefixFns)
	return l.DefineMethod(availName, def)
}

// InstallStringifyPragma records availName as this module's printer
// method (spec §6 `stringify=<name>`).
func (l *Loader) InstallStringifyPragma(availName string) {
	l.stringifyMethod = availName
	l.record(func() { l.stringifyMethod = "" })
}

// StringifyMethodName returns the name most recently installed by a
// stringify pragma, or "" if none has been.
func (l *Loader) StringifyMethodName() string { return l.stringifyMethod }

// InstallLexerPragma wires two registered primitives as a bootstrap
// lexer (spec §6 `lexer=<filter>,<body>=<name>`): filterPrimName decides
// whether this lexer claims a given leading rune, and bodyPrimName
// produces the token(s) starting at a position. Both run through the
// loader's interpreter, the same collaborator boundary prefix functions
// and semantic restrictions cross.
func (l *Loader) InstallLexerPragma(filterPrimName, bodyPrimName string) {
	lex := &primitiveLexer{in: l.in, filterPrim: filterPrimName, bodyPrim: bodyPrimName}
	l.lexers = append(l.lexers, lex)
}

// Lexers returns the bootstrap lexers installed by lexer pragmas, for
// passing to parser.Tokenize alongside the module's source.
func (l *Loader) Lexers() []parser.Lexer { return l.lexers }

// primitiveLexer adapts a pair of registered Go primitives to the
// parser.Lexer interface.
type primitiveLexer struct {
	in         *interp.Interpreter
	filterPrim string
	bodyPrim   string
}

func (p *primitiveLexer) Filter(lead rune) bool {
	code := interp.NewPrimitiveCode(1, []*object.Object{typesys.Any()}, typesys.Any(), p.filterPrim)
	fn := avail.NewFunction(code, nil)
	result, err := p.in.Execute(fn, []*object.Object{numeric.NewSmall(int64(lead))})
	if err != nil {
		return false
	}
	v, ok := numeric.AsInt64(result)
	return ok && v != 0
}

func (p *primitiveLexer) Body(src []rune, pos int) ([]parser.Token, error) {
	code := interp.NewPrimitiveCode(2, []*object.Object{typesys.Any(), typesys.Any()}, typesys.Any(), p.bodyPrim)
	fn := avail.NewFunction(code, nil)
	result, err := p.in.Execute(fn, []*object.Object{numeric.NewSmall(int64(pos)), numeric.NewSmall(int64(len(src)))})
	if err != nil {
		return nil, err
	}
	next, ok := numeric.AsInt64(result)
	if !ok || int(next) <= pos {
		return nil, nil
	}
	return []parser.Token{{Kind: parser.TokKeyword, Text: string(src[pos:next]), Pos: int(next)}}, nil
}
