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

// Package fiber implements the minimal fiber contract the specification
// treats as an external collaborator (§1, §5): a schedulable task that can
// be started, runs to either a result or a throwable failure, and carries
// per-fiber globals addressable from anywhere the fiber's call stack
// reaches -- without threading an explicit context parameter through every
// call, the same way the teacher's internal/debug locates "which goroutine
// is this log line from" via github.com/timandy/routine's goroutine-local
// storage instead of a parameter.
//
// Semantic restrictions, prefix functions, and macro bodies (package
// parser) and the level-one interpreter (package interp) all run inside a
// Fiber; its result/failure continuations are how their completions feed
// back into parser work units (spec §4.E "Prefix functions", §5 "Fiber
// interface").
package fiber

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/timandy/routine"

	"github.com/lifehaxmax35/availtrig/internal/dbg"
	"github.com/lifehaxmax35/availtrig/object"
)

// State is a Fiber's lifecycle state.
type State int32

const (
	Unstarted State = iota
	Running
	Suspended
	Succeeded
	Failed
	Aborted
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Running:
		return "running"
	case Suspended:
		return "suspended"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Aborted:
		return "aborted"
	default:
		return "state(?)"
	}
}

// Fiber is a schedulable task carrying a result type, a priority, a set of
// per-fiber global bindings, and the continuations the embedding runtime
// calls when the task completes. It corresponds directly to the "fiber
// runtime" external-collaborator contract in spec §1/§5: newFiber,
// setResultContinuation, setFailureContinuation, runOutermostFunction,
// per-fiber globals, and a cancellation request flag.
type Fiber struct {
	id         uuid.UUID
	resultType *object.Object
	priority   int

	mu    sync.RWMutex
	state State

	onResult  func(*object.Object)
	onFailure func(error)

	globals map[*object.Object]*object.Object

	cancelRequested atomic.Bool
}

// current associates the running goroutine with the Fiber it is executing
// on behalf of, so that deeply nested calls (a macro body calling into the
// interpreter calling back into the parser) can find "my fiber" without an
// explicit parameter -- mirroring the teacher's use of routine.Goid() to
// tag trace lines by goroutine without threading an identifier through
// every call.
var current = routine.NewThreadLocal[*Fiber]()

// New creates an unstarted fiber with the given declared result type and
// scheduling priority (higher runs first when an embedding scheduler
// chooses among ready fibers; this package does not itself prioritize).
func New(resultType *object.Object, priority int) *Fiber {
	return &Fiber{
		id:         uuid.New(),
		resultType: resultType,
		priority:   priority,
		state:      Unstarted,
		globals:    make(map[*object.Object]*object.Object),
	}
}

// ID returns the fiber's process-unique identifier, used for debug tracing
// and serialization-free correlation.
func (f *Fiber) ID() uuid.UUID { return f.id }

// Priority returns the fiber's scheduling priority.
func (f *Fiber) Priority() int { return f.priority }

// ResultType returns the fiber's declared result type.
func (f *Fiber) ResultType() *object.Object { return f.resultType }

// State returns the fiber's current lifecycle state.
func (f *Fiber) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// SetResultContinuation registers the callback invoked with the fiber's
// return value once RunOutermostFunction's body completes successfully.
func (f *Fiber) SetResultContinuation(k func(*object.Object)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onResult = k
}

// SetFailureContinuation registers the callback invoked with the throwable
// once RunOutermostFunction's body fails.
func (f *Fiber) SetFailureContinuation(k func(error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onFailure = k
}

// RequestCancel sets the fiber's cancellation flag. Cancellation is
// cooperative (spec §5): run must poll IsCancelRequested itself.
func (f *Fiber) RequestCancel() { f.cancelRequested.Store(true) }

// IsCancelRequested reports whether RequestCancel has been called.
func (f *Fiber) IsCancelRequested() bool { return f.cancelRequested.Load() }

// Global reads a per-fiber global binding, e.g. the parser's current
// client-data scope chain while compiling a prefix function's body.
func (f *Fiber) Global(key *object.Object) (*object.Object, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.globals[key]
	return v, ok
}

// SetGlobal installs a per-fiber global binding.
func (f *Fiber) SetGlobal(key, value *object.Object) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.globals[key] = value
}

// Current returns the Fiber the calling goroutine is running on behalf
// of, or nil if the calling goroutine was not started by RunOutermostFunction.
func Current() *Fiber {
	return current.Get()
}

// RunOutermostFunction starts the fiber's outermost call, synchronously
// invoking run on a freshly spawned goroutine and feeding its result or
// error to the registered continuations. It returns immediately; the
// caller observes completion only through the continuations, matching the
// spec's "runOutermostFunction" contract and the parser engine's
// never-block work-unit discipline (spec §5: "any operation that would
// block ... schedules a completion callback and returns").
func (f *Fiber) RunOutermostFunction(run func(*Fiber) (*object.Object, error)) {
	f.mu.Lock()
	f.state = Running
	f.mu.Unlock()

	go func() {
		current.Set(f)
		defer current.Remove()

		dbg.Log("fiber", "run-outermost", "fiber", f.id.String())

		result, err := run(f)

		f.mu.Lock()
		defer f.mu.Unlock()

		if f.cancelRequested.Load() {
			f.state = Aborted
		} else if err != nil {
			f.state = Failed
		} else {
			f.state = Succeeded
		}

		switch {
		case err != nil && f.onFailure != nil:
			f.onFailure(err)
		case err == nil && f.onResult != nil:
			f.onResult(result)
		}
	}()
}

// RunSync runs fn synchronously to completion on the current goroutine,
// associating it with a fresh fiber for the duration, for callers that
// need the result immediately rather than via a continuation, while still
// wanting Current() and per-fiber globals to work inside fn.
func RunSync(resultType *object.Object, fn func(*Fiber) (*object.Object, error)) (*object.Object, error) {
	f := New(resultType, 0)
	prior := current.Get()
	current.Set(f)
	defer func() {
		if prior != nil {
			current.Set(prior)
		} else {
			current.Remove()
		}
	}()

	f.mu.Lock()
	f.state = Running
	f.mu.Unlock()

	result, err := fn(f)

	f.mu.Lock()
	if err != nil {
		f.state = Failed
	} else {
		f.state = Succeeded
	}
	f.mu.Unlock()

	return result, err
}
