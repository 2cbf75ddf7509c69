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

// Package auditlog is a write-once diagnostic trail of Requests the Sink
// stage failed to dispatch. It is not durable pending-event persistence:
// entries here are already-failed/dropped, kept only so operators can
// inspect what was lost.
package auditlog

import (
	"context"
	"encoding/json"
	"time"

	"flagforge.dev/eventpipe/apis/request"
)

// entry is the on-disk JSON-lines record shape.
type entry struct {
	Time   time.Time         `json:"time"`
	Method string            `json:"method"`
	URL    string            `json:"url"`
	Error  string            `json:"error"`
	Bytes  int               `json:"bytes"`
	Labels map[string]string `json:"labels,omitempty"`
}

// Log records failed dispatches as newline-delimited JSON, optionally
// buffered through a Queue before reaching a rotating file.
type Log struct {
	writer Writer
	labels map[string]string
}

// New builds a Log that writes directly through w (no async buffering).
// Pass a *Queue as w to buffer writes off the dispatch goroutine.
func New(w Writer, labels map[string]string) *Log {
	return &Log{writer: w, labels: labels}
}

// HandleException implements sink.ExceptionHandler: it serializes the
// failed Request and error as one JSON line. Write failures are swallowed —
// the audit log is best-effort diagnostics, not a delivery guarantee.
func (l *Log) HandleException(ctx context.Context, r *request.Request, err error) {
	e := entry{
		Time:   time.Now().UTC(),
		Method: r.Method,
		URL:    r.URL,
		Error:  err.Error(),
		Bytes:  len(r.Body),
		Labels: l.labels,
	}
	line, merr := json.Marshal(e)
	if merr != nil {
		return
	}
	line = append(line, '\n')

	if q, ok := l.writer.(*Queue); ok {
		_ = q.Enqueue(ctx, line)
		return
	}
	_ = l.writer.Write(ctx, line)
}

// Close flushes and closes the underlying writer.
func (l *Log) Close(ctx context.Context) error {
	return l.writer.Close(ctx)
}
