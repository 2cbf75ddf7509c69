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

// Package breaker wraps an EventHandler with a circuit breaker so a
// downstream that has started failing stops receiving new Requests for a
// cooldown window instead of soaking up every inflight dispatch slot with a
// doomed call. This is additive to the core: the BatchingProcessor itself
// has no opinion on dispatch reliability, this package is where that policy
// lives.
package breaker

import (
	"context"
	"time"

	"flagforge.dev/eventpipe/apis"
	"flagforge.dev/eventpipe/apis/field"
	"flagforge.dev/eventpipe/apis/request"
	asink "flagforge.dev/eventpipe/apis/sink"
	"flagforge.dev/eventpipe/apis/sink/policy"
	"github.com/sony/gobreaker"
)

// Handler wraps a downstream EventHandler with a sony/gobreaker circuit
// breaker built from a policy.Retry: Max sets the breaker's open-state
// cooldown (default 30s) and MaxRetries its consecutive-failure trip
// threshold (default 5). Initial and Multiplier are not used, and a failed
// Dispatch is not retried.
type Handler struct {
	name string
	next asink.EventHandler
	cb   *gobreaker.CircuitBreaker
	log  apis.Logger
}

var _ asink.EventHandler = (*Handler)(nil)

// New wraps next with a circuit breaker configured from retry. log may be
// nil.
func New(name string, next asink.EventHandler, retry policy.Retry, log apis.Logger) *Handler {
	maxFailures := uint32(retry.MaxRetries)
	if maxFailures == 0 {
		maxFailures = 5
	}
	timeout := retry.Max
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	h := &Handler{name: name, next: next, log: log}
	h.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			h.logStateChange(from, to)
		},
	})
	return h
}

// Dispatch runs next.Dispatch through the breaker. A tripped breaker returns
// gobreaker.ErrOpenState without calling next at all.
func (h *Handler) Dispatch(ctx context.Context, r *request.Request) error {
	_, err := h.cb.Execute(func() (any, error) {
		return nil, h.next.Dispatch(ctx, r)
	})
	return err
}

func (h *Handler) logStateChange(from, to gobreaker.State) {
	if h.log == nil {
		return
	}
	h.log.Warn(context.Background(), "breaker: state changed",
		field.New("handler", h.name), field.New("from", from.String()), field.New("to", to.String()))
}
