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

// Package callback defines the success/failure handler contract that the
// pipeline invokes once per dispatched Request.
package callback

import "flagforge.dev/eventpipe/apis/event"

// Handlers is a single registered success/failure pair.
//
// Either field may be nil; a nil handler is simply skipped. Both are called
// with every Event that was part of the Request the outcome pertains to.
type Handlers struct {
	// OnSuccess fires once per Event after a successful dispatch.
	OnSuccess func(e event.Event)

	// OnFailure fires once per Event after a failed dispatch. Items
	// submitted after Stop has begun are dropped without any callback.
	OnFailure func(e event.Event, err error)
}

// List is an ordered collection of Handlers. The pipeline keeps one List per
// registration set and replays it, in registration order, for every
// dispatched Request. A single misbehaving handler (one that panics) must
// not prevent the remaining handlers from running.
type List []Handlers

// Success invokes every registered OnSuccess handler, in order, for e.
// A handler that panics is recovered and swallowed so the remaining handlers
// still run; the panic is neither logged nor reported anywhere.
func (l List) Success(e event.Event) {
	for _, h := range l {
		invokeSuccess(h, e)
	}
}

// Failure invokes every registered OnFailure handler, in order, for e and
// err, with the same panic-isolation guarantee as Success.
func (l List) Failure(e event.Event, err error) {
	for _, h := range l {
		invokeFailure(h, e, err)
	}
}

func invokeSuccess(h Handlers, e event.Event) {
	if h.OnSuccess == nil {
		return
	}
	defer func() { _ = recover() }()
	h.OnSuccess(e)
}

func invokeFailure(h Handlers, e event.Event, err error) {
	if h.OnFailure == nil {
		return
	}
	defer func() { _ = recover() }()
	h.OnFailure(e, err)
}
