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
	"flagforge.dev/eventpipe/apis/field"
	"flagforge.dev/eventpipe/apis/request"
	asink "flagforge.dev/eventpipe/apis/sink"
	astage "flagforge.dev/eventpipe/apis/stage"
)

// SinkAdapter is the terminal stage: it hands each Request to the
// out-of-scope EventHandler and routes the outcome to the Request's
// Callbacks, once per originating Event.
type SinkAdapter struct {
	handler   asink.EventHandler
	exception asink.ExceptionHandler
	log       apis.Logger
}

// NewSinkAdapter constructs a SinkAdapter. exception may be nil, in which
// case dispatch failures are only logged, not separately reported.
func NewSinkAdapter(handler asink.EventHandler, exception asink.ExceptionHandler, log apis.Logger) *SinkAdapter {
	return &SinkAdapter{handler: handler, exception: exception, log: log}
}

// Process dispatches r.
func (s *SinkAdapter) Process(ctx context.Context, r *request.Request) {
	s.dispatch(ctx, r)
}

// ProcessBatch dispatches each Request in items in order.
func (s *SinkAdapter) ProcessBatch(ctx context.Context, items []*request.Request) {
	for _, r := range items {
		s.dispatch(ctx, r)
	}
}

func (s *SinkAdapter) dispatch(ctx context.Context, r *request.Request) {
	if r == nil {
		return
	}
	if err := s.handler.Dispatch(ctx, r); err != nil {
		s.handleFailure(ctx, r, err)
		return
	}
	for _, e := range r.Events {
		r.Callbacks.Success(e)
	}
}

func (s *SinkAdapter) handleFailure(ctx context.Context, r *request.Request, err error) {
	if s.log != nil {
		s.log.Error(ctx, "stage: dispatch failed", field.New("error", err.Error()), field.New("event_count", len(r.Events)))
	}
	if s.exception != nil {
		s.exception.HandleException(ctx, r, err)
	}
	for _, e := range r.Events {
		r.Callbacks.Failure(e, err)
	}
}

// Start is a no-op: SinkAdapter is the terminal stage and has no downstream.
func (s *SinkAdapter) Start(ctx context.Context) error { return nil }

// Stop is a no-op: dispatch is synchronous within Process/ProcessBatch, so
// there is nothing internal left to drain once those calls have returned.
func (s *SinkAdapter) Stop(ctx context.Context, timeout time.Duration) bool { return true }

var _ astage.Lifecycle = (*SinkAdapter)(nil)
