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

// Package stage defines the minimal contracts shared by every stage of the
// pipeline (Transform, Convert, Intercept, Buffer/Batch, Merge, Sink).
//
// Unlike a single-type processing chain, this pipeline changes the payload
// type as it flows downstream (T -> Event -> Request), so there is no single
// generic Stage[T] interface threading all six stages together. Instead each
// concrete stage in runtime/stage and runtime/batch exposes Process/
// ProcessBatch methods shaped for its own input type, and all of them
// implement Lifecycle uniformly.
package stage

import (
	"context"
	"time"
)

// Decision tells a calling stage what to do with the item it just handed to
// an Interceptor. The pipeline owns control flow; interceptors only return
// one of these.
type Decision uint8

const (
	// Continue means the item should be passed to the next interceptor (or,
	// if this was the last one, to the Buffer/Batch stage).
	Continue Decision = iota

	// Drop means the item should be discarded without invoking callbacks.
	// Interceptors are policy filters, not dispatch failures.
	Drop
)

// Lifecycle is the cooperative start/stop contract every stage participates
// in. Start calls recurse to the downstream stage first so a stage can rely
// on its downstream being ready before it begins emitting; Stop calls
// recurse last so a stage can rely on its downstream still being alive while
// it drains.
type Lifecycle interface {
	// Start transitions the stage (and its downstream) from New to Running.
	Start(ctx context.Context) error

	// Stop transitions the stage (and its downstream) to Stopping, drains
	// outstanding work for up to timeout, and settles at Stopped. It returns
	// true iff the drain completed within timeout; it never panics or
	// returns an error, surfacing failure as a boolean instead.
	Stop(ctx context.Context, timeout time.Duration) bool
}
