/*
   Copyright 2026 The Flagforge Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package executor provides the bounded-concurrency Executor the
// BatchingProcessor dispatches closed batches through.
package executor

import (
	"context"
	"sync/atomic"

	aexec "flagforge.dev/eventpipe/apis/executor"
	"golang.org/x/sync/semaphore"
)

// Bounded runs submitted work on its own goroutines, gated by a weighted
// semaphore so no more than the configured weight of tasks execute at once.
// It implements apis/executor.Executor and apis/executor.Observer.
type Bounded struct {
	sem       *semaphore.Weighted
	active    atomic.Int64
	submitted atomic.Int64
}

var (
	_ aexec.Executor = (*Bounded)(nil)
	_ aexec.Observer = (*Bounded)(nil)
)

// NewBounded constructs a Bounded executor that runs at most concurrency
// submissions simultaneously. concurrency <= 0 is treated as 1.
func NewBounded(concurrency int) *Bounded {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Bounded{sem: semaphore.NewWeighted(int64(concurrency))}
}

// Submit blocks until a concurrency slot is available, then runs fn on a new
// goroutine and returns. It never returns before fn has been accepted.
func (b *Bounded) Submit(fn func()) {
	// Submit has no caller-supplied context to honor for cancellation; the
	// batching engine treats a full executor as transient back-pressure, not
	// a condition to abandon the batch on.
	_ = b.sem.Acquire(context.Background(), 1)
	b.submitted.Add(1)
	b.active.Add(1)
	go func() {
		defer b.sem.Release(1)
		defer b.active.Add(-1)
		fn()
	}()
}

// Active returns the number of submissions currently executing.
func (b *Bounded) Active() int64 { return b.active.Load() }

// Submitted returns the total number of submissions accepted so far.
func (b *Bounded) Submitted() int64 { return b.submitted.Load() }

// Inline runs submitted work synchronously on the calling goroutine. It is
// meant for tests and for callers that want the batching engine's own
// inflight gate to be the only concurrency control in play.
type Inline struct {
	active    atomic.Int64
	submitted atomic.Int64
}

var (
	_ aexec.Executor = (*Inline)(nil)
	_ aexec.Observer = (*Inline)(nil)
)

// Submit runs fn before returning.
func (i *Inline) Submit(fn func()) {
	i.submitted.Add(1)
	i.active.Add(1)
	defer i.active.Add(-1)
	fn()
}

// Active returns the number of submissions currently executing (0 or 1).
func (i *Inline) Active() int64 { return i.active.Load() }

// Submitted returns the total number of submissions accepted so far.
func (i *Inline) Submitted() int64 { return i.submitted.Load() }
