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

package errs

import "fmt"

// Rejected is returned by a macro body, prefix function, or semantic
// restriction to prune the current parse path. It carries a human-readable description of
// why the path is wrong; the parser attaches it to the ParserState it was
// raised at and reports it only if every path through that position fails.
type Rejected struct {
	Message string
}

func (e *Rejected) Error() string { return e.Message } //nolint:govet

// NewRejected builds a Rejected with a formatted message.
func NewRejected(format string, args ...any) *Rejected {
	return &Rejected{Message: fmt.Sprintf(format, args...)}
}

// Accepted forces acceptance of the current parse path, skipping any
// further grammatical checks at this site.
type Accepted struct{}

func (e *Accepted) Error() string { return "parse forcibly accepted" }

// AssertionFailed is fatal: it aborts the enclosing module transaction and
// surfaces to the client.
type AssertionFailed struct {
	Message string
}

func (e *AssertionFailed) Error() string { return "assertion failed: " + e.Message }

// EmergencyExit is fatal in the same way as AssertionFailed, but indicates
// a deliberate abort requested by running Avail code rather than a broken invariant.
type EmergencyExit struct {
	Message string
}

func (e *EmergencyExit) Error() string { return "emergency exit: " + e.Message }

// Fatal reports whether err is one of the two fatal compilation-driving
// exceptions that abort the current module transaction.
func Fatal(err error) bool {
	switch err.(type) {
	case *AssertionFailed, *EmergencyExit:
		return true
	default:
		return false
	}
}
