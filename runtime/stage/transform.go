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

// Package stage holds the concrete, non-batching stages of the pipeline:
// Transform, Convert, Intercept, Merge and the Sink adapter. The Buffer/Batch
// stage lives in runtime/batch since its algorithm is large enough to
// deserve its own package; everything else lives here.
package stage

import (
	"context"
	"time"

	"flagforge.dev/eventpipe/apis"
	"flagforge.dev/eventpipe/apis/field"
	astage "flagforge.dev/eventpipe/apis/stage"
)

// TransformFunc is a side-effecting enrichment function applied to each item
// passing through the Transform stage. It must not replace the item; it
// annotates shared mutable state on it (tagging, timestamping) instead.
type TransformFunc[T any] func(ctx context.Context, item T)

// transformDownstream is the narrow capability the Transform stage needs
// from whatever follows it.
type transformDownstream[T any] interface {
	Process(ctx context.Context, item T)
	ProcessBatch(ctx context.Context, items []T)
}

// Transform applies N ordered TransformFuncs to each input item, in order,
// then forwards the unchanged item downstream. A function that panics is
// recovered, logged at warn, and skipped — one faulty transformer never
// poisons the item or the pipeline.
type Transform[T any] struct {
	fns  []TransformFunc[T]
	next transformDownstream[T]
	log  apis.Logger
}

// NewTransform constructs a Transform stage wired to next, applying fns in
// order to every item.
func NewTransform[T any](next transformDownstream[T], log apis.Logger, fns ...TransformFunc[T]) *Transform[T] {
	return &Transform[T]{fns: fns, next: next, log: log}
}

// Process applies every transform function to item, then forwards it.
func (t *Transform[T]) Process(ctx context.Context, item T) {
	t.apply(ctx, item)
	t.next.Process(ctx, item)
}

// ProcessBatch applies every transform function to each item, then forwards
// the whole batch.
func (t *Transform[T]) ProcessBatch(ctx context.Context, items []T) {
	for _, item := range items {
		t.apply(ctx, item)
	}
	t.next.ProcessBatch(ctx, items)
}

func (t *Transform[T]) apply(ctx context.Context, item T) {
	for _, fn := range t.fns {
		t.applyOne(ctx, fn, item)
	}
}

func (t *Transform[T]) applyOne(ctx context.Context, fn TransformFunc[T], item T) {
	defer func() {
		if r := recover(); r != nil {
			t.warn(ctx, "stage: transform function panicked, item still forwarded", field.New("panic", r))
		}
	}()
	fn(ctx, item)
}

func (t *Transform[T]) warn(ctx context.Context, msg string, fields ...field.Field) {
	if t.log != nil {
		t.log.Warn(ctx, msg, fields...)
	}
}

// Start recurses to the downstream stage, if it participates in lifecycle.
func (t *Transform[T]) Start(ctx context.Context) error {
	if lc, ok := any(t.next).(astage.Lifecycle); ok {
		return lc.Start(ctx)
	}
	return nil
}

// Stop recurses to the downstream stage, if it participates in lifecycle.
func (t *Transform[T]) Stop(ctx context.Context, timeout time.Duration) bool {
	if lc, ok := any(t.next).(astage.Lifecycle); ok {
		return lc.Stop(ctx, timeout)
	}
	return true
}

var _ astage.Lifecycle = (*Transform[struct{}])(nil)
