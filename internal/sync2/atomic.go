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

package sync2

import "sync/atomic"

// Barrier is the parser engine's work-unit completion barrier: two atomic counters, queued and completed. A
// registered callback fires exactly once, the moment completed catches up
// to queued and both are positive.
//
// The invariant from §5 holds by construction: Queued is always
// incremented before the corresponding unit of work is scheduled (so
// queued >= completed at every observation once a statement begins), and
// Completed is only incremented after the work unit's user code has run to
// completion.
type Barrier struct {
	queued    atomic.Int64
	completed atomic.Int64
	fired     atomic.Bool
	onDone    func()
}

// NewBarrier creates a barrier that calls onDone the first time the queued
// and completed counters become equal while both are positive.
func NewBarrier(onDone func()) *Barrier {
	return &Barrier{onDone: onDone}
}

// Enqueue records that one more work unit has been scheduled. Must be
// called before the work unit is actually submitted to an executor, so
// that a racing Complete can never observe completed > queued.
func (b *Barrier) Enqueue(n int64) {
	b.queued.Add(n)
}

// Complete records that one work unit has finished running its user code.
// If this call causes queued == completed > 0, onDone fires exactly once,
// even if multiple goroutines call Complete concurrently at the
// crossing point.
func (b *Barrier) Complete() {
	completed := b.completed.Add(1)
	queued := b.queued.Load()

	// Re-read queued after completed to match the §5-mandated read order
	// (completed, then queued); a concurrent Enqueue can only ever move
	// queued up, so if we observe completed == queued here, no further
	// Enqueue can make them equal again without also calling Complete
	// enough times to pass this point once more -- and fired latches that
	// out.
	if completed == queued && completed > 0 && b.fired.CompareAndSwap(false, true) {
		if b.onDone != nil {
			b.onDone()
		}
	}
}

// Counts returns a snapshot of (queued, completed), for tests and
// diagnostics.
func (b *Barrier) Counts() (queued, completed int64) {
	return b.queued.Load(), b.completed.Load()
}

// Fired reports whether onDone has already run.
func (b *Barrier) Fired() bool {
	return b.fired.Load()
}
