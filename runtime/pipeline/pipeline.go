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

// Package pipeline assembles the six staged collaborators in runtime/stage
// and runtime/batch into one Transform -> Convert -> Intercept ->
// Buffer/Batch -> Merge -> Sink chain and exposes them as a single facade.
//
// Assembly happens tail-first: the Sink stage is built before Merge, Merge
// before the BatchingProcessor, and so on up to Transform, because each
// stage's constructor takes its already-built downstream collaborator.
// Lifecycle (Start/Stop) is forwarded head-to-tail at run time: Transform,
// Convert and Intercept each pass Start and Stop on to their downstream
// stage, and the BatchingProcessor, the only stage with lifecycle state of
// its own, ends the chain. It does not forward them to Merge or the Sink
// stage.
package pipeline

import (
	"context"
	"time"

	"flagforge.dev/eventpipe/apis"
	"flagforge.dev/eventpipe/apis/callback"
	"flagforge.dev/eventpipe/apis/event"
	aexec "flagforge.dev/eventpipe/apis/executor"
	"flagforge.dev/eventpipe/apis/lifecycle"
	asink "flagforge.dev/eventpipe/apis/sink"
	"flagforge.dev/eventpipe/apis/sink/policy"
	astage "flagforge.dev/eventpipe/apis/stage"
	rbatch "flagforge.dev/eventpipe/runtime/batch"
	"flagforge.dev/eventpipe/runtime/stage"
)

// Pipeline is the fully-assembled, ready-to-run processing chain for items
// of type T. T is the caller's raw submission type (an HTTP request body, an
// SDK call's arguments, ...); everything downstream of Convert operates on
// the pipeline's own event.Event and request.Request types.
type Pipeline[T any] struct {
	head    *stage.Transform[T]
	batcher *rbatch.Processor[event.Event]
}

// Config collects everything needed to assemble a Pipeline. Handler and
// Factory are the two collaborators left to the caller; everything else
// configures the core's own behavior.
type Config[T any] struct {
	// Convert maps one T to an Event. Required.
	Convert stage.ConvertFunc[T]

	// Intercepts run, in order, on every Event after conversion. May be empty.
	Intercepts []stage.InterceptFunc

	// Transforms run, in order, on every T before conversion. May be empty.
	Transforms []stage.TransformFunc[T]

	// Batch configures the BatchingProcessor's coalescing behavior.
	Batch policy.Batch

	// Executor runs closed-batch dispatch. Required.
	Executor aexec.Executor

	// Factory builds a Request from one mergeable group of Events. Required.
	Factory stage.EventFactory

	// Callbacks is replayed once per Event once its Request has settled.
	Callbacks callback.List

	// Handler delivers a Request. Required.
	Handler asink.EventHandler

	// Exception optionally observes dispatch failures centrally. May be nil.
	Exception asink.ExceptionHandler

	// Log receives diagnostics from every stage. May be nil.
	Log apis.Logger
}

// New assembles a Pipeline from cfg, wiring stages tail-first: Sink, then
// Merge, then the BatchingProcessor, then Intercept, then Convert, then
// Transform.
func New[T any](cfg Config[T]) *Pipeline[T] {
	sink := stage.NewSinkAdapter(cfg.Handler, cfg.Exception, cfg.Log)
	merge := stage.NewMerge(sink, cfg.Factory, cfg.Callbacks, cfg.Log)
	batcher := rbatch.New[event.Event](cfg.Batch, cfg.Executor, merge, cfg.Log)
	intercept := stage.NewIntercept(batcher, cfg.Log, cfg.Intercepts...)
	convert := stage.NewConvert[T](intercept, cfg.Convert)
	transform := stage.NewTransform[T](convert, cfg.Log, cfg.Transforms...)

	return &Pipeline[T]{head: transform, batcher: batcher}
}

// Process pushes a single item through Transform, Convert, Intercept, and
// into the BatchingProcessor.
func (p *Pipeline[T]) Process(ctx context.Context, item T) {
	p.head.Process(ctx, item)
}

// ProcessBatch pushes a slice of items through the same chain as Process,
// preserving order and batching internally where each stage supports it.
func (p *Pipeline[T]) ProcessBatch(ctx context.Context, items []T) {
	p.head.ProcessBatch(ctx, items)
}

// Flush forces the BatchingProcessor to close and dispatch its currently
// open batch, if any, without waiting for MaxBatchSize or MaxBatchOpen.
func (p *Pipeline[T]) Flush(ctx context.Context) {
	p.batcher.Flush(ctx)
}

// Start forwards Start down the chain and brings the BatchingProcessor to
// Running.
func (p *Pipeline[T]) Start(ctx context.Context) error {
	return p.head.Start(ctx)
}

// Stop forwards Stop down the chain to the BatchingProcessor, which flushes
// its open batch and drains to Stopped, returning false if
// timeout elapsed before the BatchingProcessor's inflight dispatches
// finished draining.
func (p *Pipeline[T]) Stop(ctx context.Context, timeout time.Duration) bool {
	return p.head.Stop(ctx, timeout)
}

// State returns the BatchingProcessor's current lifecycle state, for
// runtime/health to report on.
func (p *Pipeline[T]) State() lifecycle.State {
	return p.batcher.State()
}

// Inflight returns the number of batches currently dispatched but not yet
// settled, for runtime/health to report on.
func (p *Pipeline[T]) Inflight() int {
	return p.batcher.Inflight()
}

var _ astage.Lifecycle = (*Pipeline[struct{}])(nil)
