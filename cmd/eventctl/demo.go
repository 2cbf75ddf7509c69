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

package main

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"flagforge.dev/eventpipe/apis/event"
	"flagforge.dev/eventpipe/apis/request"
	"flagforge.dev/eventpipe/apis/sink/policy"
	"flagforge.dev/eventpipe/runtime/executor"
	"flagforge.dev/eventpipe/runtime/logging"
	"flagforge.dev/eventpipe/runtime/pipeline"

	"github.com/spf13/cobra"
)

// loggingHandler is a standalone EventHandler that just counts dispatches,
// standing in for a real network sink in the demo.
type loggingHandler struct {
	dispatched atomic.Int64
}

func (h *loggingHandler) Dispatch(ctx context.Context, r *request.Request) error {
	h.dispatched.Add(1)
	return nil
}

func demoCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Push a batch of synthetic events through an in-process pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), count)
		},
	}
	cmd.Flags().IntVar(&count, "count", 100, "number of synthetic events to push")
	return cmd
}

func runDemo(ctx context.Context, count int) error {
	handler := &loggingHandler{}
	log := logging.NewNop()

	p := pipeline.New(pipeline.Config[string]{
		Convert: func(ctx context.Context, item string) (event.Event, bool) {
			return event.Event{Identity: event.Identity{AccountID: "demo"}, VisitorID: item}, true
		},
		Batch:    policy.Batch{MaxBatchSize: 10, MaxBatchOpen: 100 * time.Millisecond, MaxInflightBatches: 4},
		Executor: executor.NewBounded(4),
		Factory: func(ctx context.Context, group []event.Event) (*request.Request, bool) {
			return &request.Request{Method: "POST", URL: "demo://sink"}, true
		},
		Handler: handler,
		Log:     log,
	})

	if err := p.Start(ctx); err != nil {
		return fmt.Errorf("eventctl: start demo pipeline: %w", err)
	}

	for i := 0; i < count; i++ {
		p.Process(ctx, strconv.Itoa(i))
	}
	p.Flush(ctx)

	if !p.Stop(ctx, 5*time.Second) {
		return fmt.Errorf("eventctl: demo pipeline did not drain")
	}

	fmt.Printf("dispatched %d requests for %d events\n", handler.dispatched.Load(), count)
	return nil
}
