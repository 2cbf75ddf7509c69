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

package policy

import "time"

// Batch describes the BatchingProcessor's coalescing behavior.
type Batch struct {
	// MaxBatchSize is the maximal number of items to accumulate in a
	// single batch before it is closed and handed off for dispatch.
	// Zero or negative means 50 for the BatchingProcessor
	// (runtime/batch.New); runtime/auditlog.Queue treats it as unbounded
	// by size.
	MaxBatchSize int

	// MaxBatchOpen is how long a batch may stay open before it is
	// force-flushed even if MaxBatchSize was not reached. Zero means
	// "no time-based flush".
	MaxBatchOpen time.Duration

	// MaxInflightBatches bounds how many batches may be dispatched
	// concurrently. Submissions beyond this bound block until an
	// inflight batch completes. Zero or negative means "1".
	MaxInflightBatches int
}
