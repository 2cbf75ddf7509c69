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

// Package batch implements the BatchingProcessor: the Buffer/Batch stage of
// the pipeline that coalesces items into bounded groups and hands closed
// groups to a downstream Sink for concurrent, inflight-capped dispatch.
//
// Processor is generic over the item type E so the same engine instantiates
// for event.Event (the pipeline's concrete use) without tying the batching
// algorithm itself to any one payload shape.
package batch

import (
	"context"
	"sync"
	"time"

	"flagforge.dev/eventpipe/apis"
	"flagforge.dev/eventpipe/apis/executor"
	"flagforge.dev/eventpipe/apis/field"
	"flagforge.dev/eventpipe/apis/lifecycle"
	"flagforge.dev/eventpipe/apis/sink/policy"
	"flagforge.dev/eventpipe/apis/stage"
)

// Sink is the downstream collaborator a Processor dispatches closed batches
// to. In the staged pipeline this is the Merge stage; in tests it is
// whatever captures the emitted groups.
type Sink[E any] interface {
	ProcessBatch(ctx context.Context, items []E) error
}

// Processor is the BatchingProcessor described by the pipeline's component
// design: it coalesces Process/ProcessBatch submissions into batches bounded
// by size and age, and dispatches closed batches through an Executor up to a
// configured inflight concurrency cap.
//
// A zero Processor is not usable; construct one with New.
type Processor[E any] struct {
	cfg  policy.Batch
	exec executor.Executor
	sink Sink[E]
	log  apis.Logger

	mu      sync.Mutex
	notFull sync.Cond

	state      lifecycle.State
	openBatch  []E
	openedAt   time.Time
	inflight   int
	timer      *time.Timer
	timerEpoch uint64
}

var _ stage.Lifecycle = (*Processor[struct{}])(nil)

// New constructs a Processor. When non-positive, cfg.MaxBatchSize defaults
// to 50 and cfg.MaxInflightBatches to 1, matching apis/sink/policy.Batch's
// documented zero-value behavior. log may be nil, in which case the
// Processor logs nothing.
func New[E any](cfg policy.Batch, exec executor.Executor, sink Sink[E], log apis.Logger) *Processor[E] {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 50
	}
	if cfg.MaxInflightBatches <= 0 {
		cfg.MaxInflightBatches = 1
	}
	p := &Processor[E]{
		cfg:   cfg,
		exec:  exec,
		sink:  sink,
		log:   log,
		state: lifecycle.New,
	}
	p.notFull.L = &p.mu
	return p
}

// Start transitions the Processor from New to Running. It never blocks and
// never fails under normal use; it returns an error only if called more
// than once. It does not call Start on its Sink.
func (p *Processor[E]) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != lifecycle.New {
		return errAlreadyStarted
	}
	p.state = lifecycle.Running
	return nil
}

// Stop transitions the Processor to Stopping, refusing further submissions,
// flushes the open batch, and waits for inflight dispatches to drain or for
// timeout to elapse, whichever comes first. It returns true iff the drain
// completed within timeout. Stop is idempotent. It does not call Stop on its
// Sink.
func (p *Processor[E]) Stop(ctx context.Context, timeout time.Duration) bool {
	p.mu.Lock()
	switch p.state {
	case lifecycle.Stopped:
		p.mu.Unlock()
		return true
	case lifecycle.New:
		p.state = lifecycle.Stopped
		p.mu.Unlock()
		return true
	}
	p.state = lifecycle.Stopping
	p.mu.Unlock()

	p.Flush(ctx)

	drainCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	stop := context.AfterFunc(drainCtx, func() {
		p.mu.Lock()
		p.notFull.Broadcast()
		p.mu.Unlock()
	})
	defer stop()

	for p.inflight > 0 {
		if drainCtx.Err() != nil {
			p.state = lifecycle.Stopped
			p.logf(ctx, apis.Logger.Warn, "batch: stop timed out waiting for inflight drain",
				field.New("inflight", p.inflight))
			return false
		}
		p.notFull.Wait()
	}
	p.state = lifecycle.Stopped
	return true
}

// State returns the Processor's current lifecycle state, for health
// reporting (see runtime/health). It is safe for concurrent use.
func (p *Processor[E]) State() lifecycle.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Inflight returns the number of batches currently dispatched but not yet
// settled, for health reporting.
func (p *Processor[E]) Inflight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inflight
}

// Process submits a single item, non-blocking in the fast path and blocking
// only while the batch it closes waits for inflight capacity. It never
// returns an error for valid input and silently drops the item, with a log
// line, once the Processor is no longer Running.
func (p *Processor[E]) Process(ctx context.Context, item E) {
	p.ProcessBatch(ctx, []E{item})
}

// ProcessBatch submits an ordered group of items. It is observably
// equivalent to calling Process once per item, but fills the already-open
// batch before slicing the remainder into full-size batches, leaving any
// tail open for later items or an explicit Flush.
func (p *Processor[E]) ProcessBatch(ctx context.Context, items []E) {
	p.mu.Lock()
	if p.state != lifecycle.Running {
		p.mu.Unlock()
		p.logf(ctx, apis.Logger.Debug, "batch: process called outside running state, dropping",
			field.New("count", len(items)), field.New("state", p.state.String()))
		return
	}

	locked := true
	for len(items) > 0 {
		if !locked {
			p.mu.Lock()
			locked = true
		}

		room := p.cfg.MaxBatchSize - len(p.openBatch)
		if room > len(items) {
			room = len(items)
		}

		wasEmpty := len(p.openBatch) == 0
		p.openBatch = append(p.openBatch, items[:room]...)
		items = items[room:]

		if wasEmpty && p.cfg.MaxBatchOpen > 0 {
			p.openedAt = time.Now()
			p.armTimerLocked()
		}

		if len(p.openBatch) < p.cfg.MaxBatchSize {
			continue
		}

		ready := p.detachLocked()
		for p.inflight >= p.cfg.MaxInflightBatches {
			p.notFull.Wait()
		}
		p.inflight++
		p.mu.Unlock()
		locked = false
		p.dispatch(ready)
	}
	if locked {
		p.mu.Unlock()
	}
}

// Flush forces the open batch closed regardless of its size or age, and
// hands it to the executor. It returns once the batch has been submitted to
// the executor, not once the sink has actually dispatched it. Flush is
// idempotent: calling it with no open batch is a no-op.
func (p *Processor[E]) Flush(ctx context.Context) {
	p.mu.Lock()
	if len(p.openBatch) == 0 {
		p.mu.Unlock()
		return
	}
	ready := p.detachLocked()
	for p.inflight >= p.cfg.MaxInflightBatches {
		p.notFull.Wait()
	}
	p.inflight++
	p.mu.Unlock()
	p.dispatch(ready)
}

// detachLocked removes and returns the current open batch, resetting
// openedAt and cancelling any armed timer. p.mu must be held.
func (p *Processor[E]) detachLocked() []E {
	ready := p.openBatch
	p.openBatch = nil
	p.openedAt = time.Time{}
	p.cancelTimerLocked()
	return ready
}

// armTimerLocked schedules the current open batch to force-flush after
// MaxBatchOpen. p.mu must be held.
func (p *Processor[E]) armTimerLocked() {
	p.timerEpoch++
	epoch := p.timerEpoch
	p.timer = time.AfterFunc(p.cfg.MaxBatchOpen, func() { p.onTimerFire(epoch) })
}

// cancelTimerLocked stops the armed timer, if any, and bumps the epoch so a
// fire already in flight recognizes itself as stale. p.mu must be held.
func (p *Processor[E]) cancelTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.timerEpoch++
}

// onTimerFire is the scheduled flush task. A timer that fires after its
// batch was already detached (by a size-trigger, an explicit Flush, or a
// newer timer replacing it) recognizes itself as stale via epoch and the
// empty-batch check, and no-ops; whichever side acquires the lock first
// wins the race, per the documented timer/size-trigger semantics.
func (p *Processor[E]) onTimerFire(epoch uint64) {
	p.mu.Lock()
	if epoch != p.timerEpoch || len(p.openBatch) == 0 {
		p.mu.Unlock()
		return
	}
	ready := p.detachLocked()
	for p.inflight >= p.cfg.MaxInflightBatches {
		p.notFull.Wait()
	}
	p.inflight++
	p.mu.Unlock()
	p.dispatch(ready)
}

// dispatch hands ready to the executor. The submitted task invokes the
// sink outside the lock, and unconditionally releases the inflight slot
// afterward regardless of success, panic, or error. Dispatch uses a
// background context: a batch is composed from many producers' calls, none
// of which should have their deadline or cancellation govern a flush they
// may not even be waiting on.
func (p *Processor[E]) dispatch(ready []E) {
	p.exec.Submit(func() {
		defer p.release()
		defer p.recoverSink(ready)
		if err := p.sink.ProcessBatch(context.Background(), ready); err != nil {
			p.logf(context.Background(), apis.Logger.Error, "batch: sink returned error",
				field.New("count", len(ready)), field.New("error", err.Error()))
		}
	})
}

func (p *Processor[E]) release() {
	p.mu.Lock()
	p.inflight--
	p.notFull.Broadcast()
	p.mu.Unlock()
}

func (p *Processor[E]) recoverSink(ready []E) {
	if r := recover(); r != nil {
		p.logf(context.Background(), apis.Logger.Error, "batch: sink panicked, swallowing",
			field.New("count", len(ready)), field.New("panic", r))
	}
}

func (p *Processor[E]) logf(ctx context.Context, fn func(apis.Logger, context.Context, string, ...field.Field), msg string, fields ...field.Field) {
	if p.log == nil {
		return
	}
	fn(p.log, ctx, msg, fields...)
}
