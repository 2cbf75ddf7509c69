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

package stage

import (
	"context"
	"time"

	"flagforge.dev/eventpipe/apis"
	"flagforge.dev/eventpipe/apis/event"
	"flagforge.dev/eventpipe/apis/field"
	astage "flagforge.dev/eventpipe/apis/stage"
)

// InterceptFunc inspects or mutates an Event and decides whether it should
// continue downstream. Returning astage.Drop discards e without invoking any
// callback — interceptors are policy filters, not dispatch failures.
type InterceptFunc func(ctx context.Context, e event.Event) (event.Event, astage.Decision)

type interceptDownstream interface {
	Process(ctx context.Context, item event.Event)
	ProcessBatch(ctx context.Context, items []event.Event)
}

// Intercept runs N ordered InterceptFuncs over each Event. A function that
// panics drops the Event and logs a warning; later items are unaffected.
type Intercept struct {
	fns  []InterceptFunc
	next interceptDownstream
	log  apis.Logger
}

// NewIntercept constructs an Intercept stage wired to next.
func NewIntercept(next interceptDownstream, log apis.Logger, fns ...InterceptFunc) *Intercept {
	return &Intercept{fns: fns, next: next, log: log}
}

// Process runs e through every interceptor and forwards it if none dropped it.
func (i *Intercept) Process(ctx context.Context, e event.Event) {
	if out, ok := i.run(ctx, e); ok {
		i.next.Process(ctx, out)
	}
}

// ProcessBatch runs every item through every interceptor, forwarding only
// the survivors as one batch, preserving relative order.
func (i *Intercept) ProcessBatch(ctx context.Context, items []event.Event) {
	kept := make([]event.Event, 0, len(items))
	for _, e := range items {
		if out, ok := i.run(ctx, e); ok {
			kept = append(kept, out)
		}
	}
	if len(kept) > 0 {
		i.next.ProcessBatch(ctx, kept)
	}
}

func (i *Intercept) run(ctx context.Context, e event.Event) (event.Event, bool) {
	for _, fn := range i.fns {
		next, decision, ok := i.runOne(ctx, fn, e)
		if !ok || decision == astage.Drop {
			return event.Event{}, false
		}
		e = next
	}
	return e, true
}

func (i *Intercept) runOne(ctx context.Context, fn InterceptFunc, e event.Event) (out event.Event, decision astage.Decision, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			if i.log != nil {
				i.log.Warn(ctx, "stage: interceptor panicked, dropping event", field.New("panic", r), field.New("event_id", e.ID))
			}
		}
	}()
	out, decision = fn(ctx, e)
	return out, decision, true
}

// Start recurses to the downstream stage, if it participates in lifecycle.
func (i *Intercept) Start(ctx context.Context) error {
	if lc, ok := i.next.(astage.Lifecycle); ok {
		return lc.Start(ctx)
	}
	return nil
}

// Stop recurses to the downstream stage, if it participates in lifecycle.
func (i *Intercept) Stop(ctx context.Context, timeout time.Duration) bool {
	if lc, ok := i.next.(astage.Lifecycle); ok {
		return lc.Stop(ctx, timeout)
	}
	return true
}

var _ astage.Lifecycle = (*Intercept)(nil)
