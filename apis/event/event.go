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

// Package event defines Event, the canonical internal record that flows
// through the staged pipeline after conversion. Event is immutable once it
// leaves the Convert stage: later stages may replace it wholesale (an
// Interceptor may return a mutated copy) but never mutate it in place.
package event

// Identity is the pair of fields that determines whether two Events may be
// merged into a single outbound Request. Two Events are mergeable iff their
// Identity values are equal.
type Identity struct {
	// AccountID is the experimentation account that owns the event.
	AccountID string
	// ProjectID is the project/environment the event was recorded against.
	ProjectID string
}

// Event is the canonical internal record produced by the Convert stage and
// consumed by the Buffer/Batch and Merge stages.
//
// Event is a plain value type. Once built it should be treated as read-only;
// code that wants to change it (an Interceptor, for example) should build
// and return a new Event rather than mutating fields in place.
type Event struct {
	// ID uniquely identifies this event for diagnostics/tracing. It plays no
	// role in merge eligibility or ordering.
	ID string

	// Identity is the account/project pair used for merge grouping.
	Identity Identity

	// VisitorID is the visitor/session entry this event describes.
	VisitorID string

	// Entry is the domain payload (impression, conversion, ...). The core
	// treats it as opaque; only the injected eventFactory (see
	// runtime/stage.MergeFunc) interprets it.
	Entry any
}

// Mergeable reports whether a and b may be combined into a single Request by
// the Merge stage. Only Identity participates in the comparison: differing
// VisitorID or Entry never blocks a merge, because the wire format groups by
// account/project, not by individual visitor.
func Mergeable(a, b Event) bool {
	return a.Identity == b.Identity
}
