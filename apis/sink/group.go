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

package sink

// Group represents a fan-out EventHandler that forwards every Request to
// multiple named handlers.
//
// This is useful when the same event stream should be delivered to a
// primary ingestion endpoint and a secondary audit/mirroring endpoint at the
// same time. A Group counts as dispatch-failed only if every member fails;
// callers that need per-member success/failure should instead register
// distinct Callbacks per logical destination.
type Group interface {
	EventHandler

	// Name returns a human-friendly identifier for diagnostics.
	Name() string

	// Add registers a new handler in the group under name.
	// If a handler with the same name already exists, implementations
	// should return an error.
	Add(name string, h EventHandler) error

	// Remove unregisters a handler by its name.
	Remove(name string) error

	// List returns the names of all handlers currently registered.
	List() []string
}
