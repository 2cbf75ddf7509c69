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

	"flagforge.dev/eventpipe/apis/event"
	astage "flagforge.dev/eventpipe/apis/stage"
	"github.com/google/uuid"
)

// ConvertFunc maps one caller-supplied item to an Event. A false second
// return value drops the item silently: conversion failure is treated as
// "not an event yet", not as a dispatch failure.
type ConvertFunc[T any] func(ctx context.Context, item T) (event.Event, bool)

type convertDownstream interface {
	Process(ctx context.Context, item event.Event)
	ProcessBatch(ctx context.Context, items []event.Event)
}

// Convert is the one-shot T -> Event mapping stage. It stamps a fresh ID on
// every successfully-converted Event whose ID is empty before forwarding it.
type Convert[T any] struct {
	fn   ConvertFunc[T]
	next convertDownstream
}

// NewConvert constructs a Convert stage wired to next.
func NewConvert[T any](next convertDownstream, fn ConvertFunc[T]) *Convert[T] {
	return &Convert[T]{fn: fn, next: next}
}

// Process converts item and forwards it, unless the ConvertFunc dropped it.
func (c *Convert[T]) Process(ctx context.Context, item T) {
	e, ok := c.convert(ctx, item)
	if !ok {
		return
	}
	c.next.Process(ctx, e)
}

// ProcessBatch converts every item, forwarding only the survivors as one
// batch. An all-dropped input batch forwards nothing.
func (c *Convert[T]) ProcessBatch(ctx context.Context, items []T) {
	converted := make([]event.Event, 0, len(items))
	for _, item := range items {
		if e, ok := c.convert(ctx, item); ok {
			converted = append(converted, e)
		}
	}
	if len(converted) > 0 {
		c.next.ProcessBatch(ctx, converted)
	}
}

func (c *Convert[T]) convert(ctx context.Context, item T) (event.Event, bool) {
	e, ok := c.fn(ctx, item)
	if !ok {
		return event.Event{}, false
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return e, true
}

// Start recurses to the downstream stage, if it participates in lifecycle.
func (c *Convert[T]) Start(ctx context.Context) error {
	if lc, ok := c.next.(astage.Lifecycle); ok {
		return lc.Start(ctx)
	}
	return nil
}

// Stop recurses to the downstream stage, if it participates in lifecycle.
func (c *Convert[T]) Stop(ctx context.Context, timeout time.Duration) bool {
	if lc, ok := c.next.(astage.Lifecycle); ok {
		return lc.Stop(ctx, timeout)
	}
	return true
}

var _ astage.Lifecycle = (*Convert[struct{}])(nil)
