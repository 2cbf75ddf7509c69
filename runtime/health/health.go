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

// Package health adapts apis/health's Checker/Aggregator to report on a
// running pipeline: whether its BatchingProcessor is accepting work, and how
// many dispatches are currently inflight.
package health

import (
	"context"

	aexec "flagforge.dev/eventpipe/apis/executor"
	ahealth "flagforge.dev/eventpipe/apis/health"
	"flagforge.dev/eventpipe/apis/lifecycle"
)

// StateProvider is the minimal capability a pipeline stage exposes for
// health reporting: its own lifecycle.State. runtime/batch.Processor and
// runtime/pipeline.Pipeline both have a State method of this shape;
// PipelineChecker is built against an explicit function the caller supplies
// (see NewPipelineChecker) rather than a concrete pipeline type, keeping
// this package decoupled from runtime/pipeline.
type StateProvider func() lifecycle.State

// NewPipelineChecker returns a Checker reporting StatusHealthy while state
// reports lifecycle.Running, StatusDegraded while Stopping, and
// StatusUnhealthy otherwise (New, not yet started, or Stopped).
func NewPipelineChecker(name string, state StateProvider) ahealth.Checker {
	return ahealth.CheckFunc(func(ctx context.Context) (ahealth.Result, error) {
		s := state()
		res := ahealth.Result{Name: name, Details: map[string]any{"state": s.String()}}
		switch s {
		case lifecycle.Running:
			res.Status = ahealth.StatusHealthy
		case lifecycle.Stopping:
			res.Status = ahealth.StatusDegraded
		default:
			res.Status = ahealth.StatusUnhealthy
		}
		return res, nil
	})
}

// NewExecutorChecker reports StatusDegraded once an instrumented executor's
// active task count reaches or exceeds highWaterMark, a cheap proxy for "the
// downstream sink is slow and dispatches are piling up".
func NewExecutorChecker(name string, obs aexec.Observer, highWaterMark int64) ahealth.Checker {
	return ahealth.CheckFunc(func(ctx context.Context) (ahealth.Result, error) {
		active := obs.Active()
		res := ahealth.Result{
			Name:   name,
			Status: ahealth.StatusHealthy,
			Details: map[string]any{
				"active":    active,
				"submitted": obs.Submitted(),
			},
		}
		if active >= highWaterMark {
			res.Status = ahealth.StatusDegraded
		}
		return res, nil
	})
}
