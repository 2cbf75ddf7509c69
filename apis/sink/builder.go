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

import "context"

// Builder constructs an EventHandler instance from a stable Specification.
// This interface is a contract only; implementations and registries live in
// runtime (see runtime/httpdispatch).
type Builder interface {
	// Kind returns the canonical handler kind identifier (e.g., "https", "noop").
	Kind() string

	// Build constructs an EventHandler for the given logical name and
	// configuration. Implementations should treat spec as immutable input.
	Build(ctx context.Context, name string, spec *Specification) (EventHandler, error)
}
