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

// Package errs holds the primitive-failure taxonomy Avail raises during
// execution, plus the compilation-driving control-flow signals
// (parse rejection, forced acceptance, assertion failure, emergency exit)
// re-expressed as ordinary Go error types rather than exceptions used for
// control flow.
//
// buf.build/go/hyperpb's error.go keeps a small fixed enumeration (errCode)
// with a parallel array of sentinel errors and a wrapping type that records
// where in the input the failure happened (errParse.offset). This package
// follows the same shape: a Code enumeration, a table of sentinel errors,
// and wrapping types that attach position/context, using
// github.com/pkg/errors for stack-aware wrapping where hyperpb uses a bare
// fmt.Errorf.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is a stable small-integer error-taxonomy entry.
type Code int

const (
	Ok Code = iota
	CannotAddUnlikeInfinities
	CannotDivideByZero
	CannotMultiplyZeroAndInfinity
	CannotReadUnassignedVariable
	CannotStoreIncorrectlyTypedValue
	SubscriptOutOfBounds
	IncorrectNumberOfArguments
	KeyNotFound
	IOError
	InvalidHandle
	PermissionDenied
	NoMethodDefinition
	AmbiguousMethodDefinition
	FiberIsTerminated
	CannotModifyFinalField
	SpecialAtom
	NoImplementation
	NoViableParse
	AmbiguousParse
	UnresolvedForwardDeclaration
	RedefinedName
)

var messages = [...]string{
	Ok:                                "ok",
	CannotAddUnlikeInfinities:         "cannot add unlike infinities",
	CannotDivideByZero:                "cannot divide by zero",
	CannotMultiplyZeroAndInfinity:     "cannot multiply zero and infinity",
	CannotReadUnassignedVariable:      "cannot read unassigned variable",
	CannotStoreIncorrectlyTypedValue:  "cannot store incorrectly typed value",
	SubscriptOutOfBounds:              "subscript out of bounds",
	IncorrectNumberOfArguments:        "incorrect number of arguments",
	KeyNotFound:                       "key not found",
	IOError:                           "I/O error",
	InvalidHandle:                     "invalid handle",
	PermissionDenied:                  "permission denied",
	NoMethodDefinition:                "no method definition",
	AmbiguousMethodDefinition:         "ambiguous method definition",
	FiberIsTerminated:                 "fiber is terminated",
	CannotModifyFinalField:            "cannot modify final field",
	SpecialAtom:                       "special atom",
	NoImplementation:                  "operation not implemented by descriptor",
	NoViableParse:                     "no viable parse at this position",
	AmbiguousParse:                    "ambiguous parse: more than one equally valid expression",
	UnresolvedForwardDeclaration:      "unresolved forward declaration at end of module",
	RedefinedName:                     "name already defined in this module",
}

// String implements fmt.Stringer.
func (c Code) String() string {
	if int(c) < 0 || int(c) >= len(messages) {
		return fmt.Sprintf("errs.Code(%d)", int(c))
	}
	return messages[c]
}

// Primitive is a primitive failure: a stable error code with
// optional human-readable detail, delivered to a fiber's failure
// continuation or to an in-language failure variable.
type Primitive struct {
	Code   Code
	Detail string
	cause  error
}

// New creates a Primitive failure with no further detail.
func New(code Code) error {
	return &Primitive{Code: code}
}

// Newf creates a Primitive failure with a formatted detail message.
func Newf(code Code, format string, args ...any) error {
	return &Primitive{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// Wrap attaches a stable Code to an underlying cause, preserving it for
// errors.Unwrap / errors.Is / errors.As.
func Wrap(code Code, cause error) error {
	return &Primitive{Code: code, cause: errors.WithStack(cause)}
}

func (e *Primitive) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Detail)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.cause)
	}
	return e.Code.String()
}

func (e *Primitive) Unwrap() error { return e.cause }

// Is reports whether target is a Primitive with the same Code, so that
// errors.Is(err, errs.New(errs.KeyNotFound)) works without needing the
// exact Detail/cause to match.
func (e *Primitive) Is(target error) bool {
	var p *Primitive
	if !errors.As(target, &p) {
		return false
	}
	return p.Code == e.Code
}

// CodeOf extracts the Code of err, if it (or something it wraps) is a
// *Primitive.
func CodeOf(err error) (Code, bool) {
	var p *Primitive
	if errors.As(err, &p) {
		return p.Code, true
	}
	return Ok, false
}
