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

// Package request defines Request, the wire-ready artifact produced by the
// Merge stage and handed to the Sink stage for dispatch.
package request

import (
	"flagforge.dev/eventpipe/apis/callback"
	"flagforge.dev/eventpipe/apis/event"
)

// Request is a fully-prepared artifact for one merged group of Events.
//
// The core never constructs the Method/URL/Headers/Body itself — those come
// from the injected event factory. The core's only obligation is to
// guarantee exactly one Sink.Dispatch call per Request, and to route the
// outcome to Callbacks.
type Request struct {
	// Method is the HTTP method to use, e.g. "POST".
	Method string

	// URL is the fully-qualified destination endpoint.
	URL string

	// Headers are additional wire headers (e.g. Content-Type, auth tokens).
	Headers map[string]string

	// Body is the already-serialized wire payload.
	Body []byte

	// Events is the merged group this Request was built from. The Sink
	// stage replays Callbacks once per Event here, not once per Request,
	// so every originally-submitted Event gets its own success/failure
	// notification even though many of them share one wire call.
	Events []event.Event

	// Callbacks is the ordered list of success/failure handlers to invoke,
	// once per Event in Events, once this Request has been dispatched (or
	// has failed dispatch).
	Callbacks callback.List
}
