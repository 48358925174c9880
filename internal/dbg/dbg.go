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

// Package dbg is the debug-gated logging façade shared by every component of
// the compiler and runtime. It plays the same role as the teacher's
// internal/debug: a package-level Enabled flag that gates expensive tracing,
// plus a Log entry point that every subsystem calls unconditionally and pays
// no cost for when disabled.
package dbg

import (
	"os"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"
)

// Enabled reports whether verbose tracing is turned on. It starts out keyed
// off the AVAIL_DEBUG environment variable, but can be flipped at runtime
// (tests do this to capture a trace for a single failing case).
var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("AVAIL_DEBUG") != "")
}

// Enabled reports whether debug logging is currently turned on.
func Enabled() bool { return enabled.Load() }

// SetEnabled turns debug logging on or off for the remainder of the process.
func SetEnabled(v bool) { enabled.Store(v) }

var logger atomic.Pointer[hclog.Logger]

func init() {
	l := hclog.New(&hclog.LoggerOptions{
		Name:  "avail",
		Level: hclog.Trace,
	})
	logger.Store(&l)
}

// Logger returns the shared root logger. Components derive named children
// from it with Named, the way hclog consumers conventionally do.
func Logger() hclog.Logger { return *logger.Load() }

// SetLogger replaces the shared root logger, e.g. so a test can inject one
// that writes to t.Log.
func SetLogger(l hclog.Logger) { logger.Store(&l) }

// Log records one debug-gated trace event. context is a short slice of
// key/value pairs (interleaved) identifying the operation's subject; it
// costs nothing when debugging is disabled since the arguments are only
// formatted by hclog when the Trace level is actually emitted.
func Log(component string, msg string, context ...any) {
	if !Enabled() {
		return
	}
	Logger().Named(component).Trace(msg, context...)
}
