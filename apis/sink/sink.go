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

import (
	"context"

	"flagforge.dev/eventpipe/apis/request"
)

// EventHandler is the injected collaborator that the Sink stage invokes for
// every merged Request.
//
// Notes:
//   - The core never constructs or interprets the wire payload; it only
//     guarantees one Dispatch call per merged Request.
//   - EventHandler should be safe to call from multiple goroutines: the
//     BatchingProcessor dispatches up to maxInflightBatches requests
//     concurrently via the injected executor.
//   - EventHandler should avoid panicking: it is the end of the pipeline.
type EventHandler interface {
	// Dispatch delivers r synchronously. Any error is treated as a dispatch
	// failure.
	Dispatch(ctx context.Context, r *request.Request) error
}

// ExceptionHandler receives dispatch failures the Sink stage caught, for
// implementations that want centralized logging/alerting in addition to the
// per-Request callbacks. It must not panic and must not block indefinitely;
// the Sink stage treats it as best-effort.
type ExceptionHandler interface {
	HandleException(ctx context.Context, r *request.Request, err error)
}

// ExceptionHandlerFunc adapts a plain function to ExceptionHandler.
type ExceptionHandlerFunc func(ctx context.Context, r *request.Request, err error)

// HandleException calls f(ctx, r, err).
func (f ExceptionHandlerFunc) HandleException(ctx context.Context, r *request.Request, err error) {
	f(ctx, r, err)
}
