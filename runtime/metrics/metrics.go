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

// Package metrics exposes Prometheus instrumentation for the pipeline's
// executor layer. It wraps an apis/executor.Executor rather than reaching
// into runtime/batch internals, so any executor implementation (Bounded,
// Inline, a future worker pool) gets the same counters for free.
package metrics

import (
	"context"

	aexec "flagforge.dev/eventpipe/apis/executor"
	rbatch "flagforge.dev/eventpipe/runtime/batch"
	"github.com/prometheus/client_golang/prometheus"
)

// Executor wraps an aexec.Executor, recording submission counts and active
// concurrency as Prometheus metrics.
type Executor struct {
	next      aexec.Executor
	submitted prometheus.Counter
	active    prometheus.Gauge
	completed prometheus.Counter
}

var _ aexec.Executor = (*Executor)(nil)

// NewExecutor wraps next and registers its metrics with reg. name
// disambiguates multiple instrumented executors in the same process (e.g.
// one per sink).
func NewExecutor(reg prometheus.Registerer, name string, next aexec.Executor) *Executor {
	e := &Executor{
		next: next,
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "eventpipe_executor_submitted_total",
			Help:        "Total number of tasks submitted to the executor.",
			ConstLabels: prometheus.Labels{"executor": name},
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "eventpipe_executor_active",
			Help:        "Number of tasks currently executing.",
			ConstLabels: prometheus.Labels{"executor": name},
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "eventpipe_executor_completed_total",
			Help:        "Total number of tasks that finished executing.",
			ConstLabels: prometheus.Labels{"executor": name},
		}),
	}
	if reg != nil {
		reg.MustRegister(e.submitted, e.active, e.completed)
	}
	return e
}

// Submit records the submission, then delegates to next.
func (e *Executor) Submit(fn func()) {
	e.submitted.Inc()
	e.active.Inc()
	next := e.next
	next.Submit(func() {
		defer e.active.Dec()
		defer e.completed.Inc()
		fn()
	})
}

// BatchObserver exposes a closed-batch's size as a Prometheus histogram. The
// BatchingProcessor has no metrics hook of its own; callers that want
// batch-size histograms wrap their Sink with NewObservedSink before handing it to
// runtime/batch.New.
type BatchObserver struct {
	size prometheus.Histogram
}

// NewBatchObserver registers and returns a BatchObserver.
func NewBatchObserver(reg prometheus.Registerer, name string) *BatchObserver {
	b := &BatchObserver{
		size: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "eventpipe_batch_size",
			Help:        "Size of batches dispatched to the sink.",
			ConstLabels: prometheus.Labels{"sink": name},
			Buckets:     prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	if reg != nil {
		reg.MustRegister(b.size)
	}
	return b
}

// Observe records len(items) as a data point.
func (b *BatchObserver) Observe(items int) {
	b.size.Observe(float64(items))
}

// ObservedSink wraps a rbatch.Sink[E], recording each dispatched batch's
// size on a BatchObserver before forwarding to next.
type ObservedSink[E any] struct {
	next rbatch.Sink[E]
	obs  *BatchObserver
}

var _ rbatch.Sink[struct{}] = (*ObservedSink[struct{}])(nil)

// NewObservedSink wraps next, recording batch sizes on obs.
func NewObservedSink[E any](next rbatch.Sink[E], obs *BatchObserver) *ObservedSink[E] {
	return &ObservedSink[E]{next: next, obs: obs}
}

// ProcessBatch records len(items), then delegates to next.
func (s *ObservedSink[E]) ProcessBatch(ctx context.Context, items []E) error {
	s.obs.Observe(len(items))
	return s.next.ProcessBatch(ctx, items)
}
