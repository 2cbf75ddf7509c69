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

// Package httpdispatch is the reference EventHandler: it delivers a
// request.Request over HTTP using net/http. It registers itself with
// runtime/sink under the "https" kind so config-driven assembly can select
// it without importing this package directly.
package httpdispatch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"flagforge.dev/eventpipe/apis/request"
	asink "flagforge.dev/eventpipe/apis/sink"
	rsink "flagforge.dev/eventpipe/runtime/sink"
)

// Handler dispatches Requests over HTTP using client.
type Handler struct {
	name   string
	client *http.Client
}

var _ asink.EventHandler = (*Handler)(nil)

// New constructs a Handler. A nil client gets a default with a 10s timeout,
// matching the conservative default a batching pipeline should ship with:
// a hung downstream must not hold an inflight slot forever.
func New(name string, client *http.Client) *Handler {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Handler{name: name, client: client}
}

// Dispatch issues one HTTP request built from r. A non-2xx response is
// treated as a dispatch failure.
func (h *Handler) Dispatch(ctx context.Context, r *request.Request) error {
	method := r.Method
	if method == "" {
		method = http.MethodPost
	}
	req, err := http.NewRequestWithContext(ctx, method, r.URL, bytes.NewReader(r.Body))
	if err != nil {
		return fmt.Errorf("httpdispatch[%s]: build request: %w", h.name, err)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("httpdispatch[%s]: do request: %w", h.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("httpdispatch[%s]: unexpected status %d", h.name, resp.StatusCode)
	}
	return nil
}

// builder constructs Handlers from asink.Specification for the registry.
type builder struct{}

func (builder) Kind() string { return "https" }

func (builder) Build(ctx context.Context, name string, spec *asink.Specification) (asink.EventHandler, error) {
	return New(name, nil), nil
}

func init() {
	rsink.Register(builder{})
}
