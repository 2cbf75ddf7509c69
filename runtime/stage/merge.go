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
	"flagforge.dev/eventpipe/apis/callback"
	"flagforge.dev/eventpipe/apis/event"
	"flagforge.dev/eventpipe/apis/field"
	"flagforge.dev/eventpipe/apis/request"
	astage "flagforge.dev/eventpipe/apis/stage"
	rbatch "flagforge.dev/eventpipe/runtime/batch"
)

// EventFactory builds the wire-ready Request for one mergeable group of
// Events. A false second return drops the group silently, same as Convert's
// "null result" rule.
//
// EventFactory is the injected collaborator responsible for payload
// construction and endpoint selection: the core only guarantees it is
// called exactly once per group.
type EventFactory func(ctx context.Context, group []event.Event) (*request.Request, bool)

type mergeDownstream interface {
	Process(ctx context.Context, r *request.Request)
	ProcessBatch(ctx context.Context, items []*request.Request)
}

// Merge groups consecutive mergeable Events within a closed batch and turns
// each group into one Request via the injected EventFactory, attaching the
// aggregate Callbacks list so dispatch outcomes route back to every Event
// that contributed to the group.
//
// Merge implements runtime/batch.Sink[event.Event]: it is the collaborator
// the BatchingProcessor dispatches closed batches to.
type Merge struct {
	factory   EventFactory
	callbacks callback.List
	next      mergeDownstream
	log       apis.Logger
}

var _ rbatch.Sink[event.Event] = (*Merge)(nil)

// NewMerge constructs a Merge stage wired to next. callbacks is replayed,
// once per Event, for every Request the factory produces.
func NewMerge(next mergeDownstream, factory EventFactory, callbacks callback.List, log apis.Logger) *Merge {
	return &Merge{factory: factory, callbacks: callbacks, next: next, log: log}
}

// Process merges a single Event as a degenerate one-item batch.
func (m *Merge) Process(ctx context.Context, e event.Event) {
	_ = m.ProcessBatch(ctx, []event.Event{e})
}

// ProcessBatch groups consecutive mergeable items, builds one Request per group, and
// forwards the survivors downstream. It never returns an error: factory
// failures are drops, not dispatch failures.
func (m *Merge) ProcessBatch(ctx context.Context, items []event.Event) error {
	groups := groupMergeable(items)
	reqs := make([]*request.Request, 0, len(groups))
	for _, g := range groups {
		if r, ok := m.build(ctx, g); ok {
			reqs = append(reqs, r)
		}
	}
	if len(reqs) > 0 {
		m.next.ProcessBatch(ctx, reqs)
	}
	return nil
}

func (m *Merge) build(ctx context.Context, group []event.Event) (*request.Request, bool) {
	r, ok := m.factory(ctx, group)
	if !ok || r == nil {
		if m.log != nil {
			m.log.Debug(ctx, "stage: merge factory dropped group", field.New("group_size", len(group)))
		}
		return nil, false
	}
	// Events/Callbacks are owned by Merge; any value the factory set on r is
	// overwritten here.
	r.Events = group
	r.Callbacks = m.callbacks
	return r, true
}

// groupMergeable partitions items into maximal runs of consecutive
// Mergeable Events, preserving order.
func groupMergeable(items []event.Event) [][]event.Event {
	if len(items) == 0 {
		return nil
	}
	groups := make([][]event.Event, 0, 1)
	current := []event.Event{items[0]}
	for _, e := range items[1:] {
		if event.Mergeable(current[len(current)-1], e) {
			current = append(current, e)
			continue
		}
		groups = append(groups, current)
		current = []event.Event{e}
	}
	return append(groups, current)
}

// Start recurses to the downstream stage, if it participates in lifecycle.
func (m *Merge) Start(ctx context.Context) error {
	if lc, ok := m.next.(astage.Lifecycle); ok {
		return lc.Start(ctx)
	}
	return nil
}

// Stop recurses to the downstream stage, if it participates in lifecycle.
func (m *Merge) Stop(ctx context.Context, timeout time.Duration) bool {
	if lc, ok := m.next.(astage.Lifecycle); ok {
		return lc.Stop(ctx, timeout)
	}
	return true
}

var _ astage.Lifecycle = (*Merge)(nil)
