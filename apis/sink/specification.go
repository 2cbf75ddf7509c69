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

import "flagforge.dev/eventpipe/apis/sink/policy"

// Specification is an immutable snapshot of EventHandler configuration.
//
// It is produced by config providers (see runtime/config) and consumed by
// EventHandler builders to construct a concrete handler. This type
// intentionally stays generic: endpoint-specific parameters (URL, auth
// headers) are carried in a separate, handler-specific config.
type Specification struct {
	// Name is the unique identifier of the handler.
	Name string

	// Retry carries the knobs runtime/breaker derives its trip threshold and
	// cooldown from. A failed dispatch is not re-attempted.
	Retry policy.Retry

	// Batch describes the BatchingProcessor's own coalescing behavior
	// (MaxBatchSize/MaxBatchOpen), carried here so a single config document
	// can describe an entire pipeline.
	Batch *policy.Batch

	// Labels is an optional set of key/value labels used for diagnostics
	// and metrics attribution (for example: {"kind":"https"}).
	Labels map[string]string
}
