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

// Package config loads a pipeline's static configuration from YAML. It is a
// one-shot loader, not a watcher: callers that need hot reload should poll
// Load on their own schedule and rebuild the runtime/pipeline.Pipeline it
// describes.
package config

import (
	"fmt"
	"os"
	"time"

	"flagforge.dev/eventpipe/apis/sink"
	"flagforge.dev/eventpipe/apis/sink/policy"
	"gopkg.in/yaml.v3"
)

// Document is the top-level shape of an eventpipe config file.
type Document struct {
	// Batch configures the BatchingProcessor.
	Batch BatchSpec `yaml:"batch"`

	// Sink configures the EventHandler the Sink stage dispatches to.
	Sink SinkSpec `yaml:"sink"`

	// LogLevel is the minimum level the process logger emits, e.g. "info".
	// Empty means "info".
	LogLevel string `yaml:"log_level"`

	// Observability configures metrics/health exposure and diagnostic log
	// sampling. Zero value disables all of it.
	Observability ObservabilitySpec `yaml:"observability"`

	// AuditLog configures the on-disk trail of failed dispatches. Zero
	// value (empty Path) disables it.
	AuditLog AuditLogSpec `yaml:"audit_log"`

	// Stages toggles the optional, named Transform/Intercept functions
	// cmd/eventctl knows how to build.
	Stages StagesSpec `yaml:"stages"`
}

// StagesSpec names which of cmd/eventctl's built-in, named Transform and
// Intercept functions are enabled, by Registration.Kind. An unlisted kind is
// disabled.
type StagesSpec struct {
	Transforms []string `yaml:"transforms"`
	Intercepts []string `yaml:"intercepts"`
}

// TransformEnabled reports whether kind appears in Transforms.
func (s StagesSpec) TransformEnabled(kind string) bool {
	for _, k := range s.Transforms {
		if k == kind {
			return true
		}
	}
	return false
}

// InterceptEnabled reports whether kind appears in Intercepts.
func (s StagesSpec) InterceptEnabled(kind string) bool {
	for _, k := range s.Intercepts {
		if k == kind {
			return true
		}
	}
	return false
}

// ObservabilitySpec configures the optional HTTP server exposing
// Prometheus metrics and health checks, and diagnostic log sampling.
type ObservabilitySpec struct {
	// Addr, if non-empty, is the listen address (e.g. ":9090") for
	// /metrics and /healthz.
	Addr string `yaml:"addr"`

	// LogSampleRate, if > 0, caps non-fatal log lines per second.
	LogSampleRate float64 `yaml:"log_sample_rate"`

	// LogSampleBurst is the token bucket burst size backing LogSampleRate.
	// If <= 0 and LogSampleRate > 0, a default of 1 is used.
	LogSampleBurst int `yaml:"log_sample_burst"`

	// ExecutorHighWaterMark is the active-dispatch count at or above which
	// the executor health check reports degraded. If <= 0, a default of
	// 64 is used.
	ExecutorHighWaterMark int64 `yaml:"executor_high_water_mark"`
}

// AuditLogSpec configures the rotating file that records dispatch failures.
type AuditLogSpec struct {
	// Path is the active audit-log file path. Empty disables audit logging.
	Path string `yaml:"path"`

	// QueueSize buffers entries off the dispatch goroutine. 0 disables
	// buffering (writes happen synchronously on the failing goroutine).
	QueueSize int `yaml:"queue_size"`
}

// BatchSpec is policy.Batch with YAML-friendly duration strings.
type BatchSpec struct {
	MaxBatchSize       int    `yaml:"max_batch_size"`
	MaxBatchOpen       string `yaml:"max_batch_open"`
	MaxInflightBatches int    `yaml:"max_inflight_batches"`
}

// ToPolicy converts the spec into apis/sink/policy.Batch, parsing
// MaxBatchOpen as a Go duration string (e.g. "500ms", "2s").
func (b BatchSpec) ToPolicy() (policy.Batch, error) {
	var open time.Duration
	if b.MaxBatchOpen != "" {
		d, err := time.ParseDuration(b.MaxBatchOpen)
		if err != nil {
			return policy.Batch{}, fmt.Errorf("config: batch.max_batch_open: %w", err)
		}
		open = d
	}
	return policy.Batch{
		MaxBatchSize:       b.MaxBatchSize,
		MaxBatchOpen:       open,
		MaxInflightBatches: b.MaxInflightBatches,
	}, nil
}

// SinkSpec names the registered sink.Builder kind to use and carries its
// retry/labels configuration. Mirror names additional sinks that receive a
// copy of every dispatch alongside the primary, via runtime/fanout.
type SinkSpec struct {
	Kind   string            `yaml:"kind"`
	Name   string            `yaml:"name"`
	Retry  RetrySpec         `yaml:"retry"`
	Labels map[string]string `yaml:"labels"`
	Mirror []SinkSpec        `yaml:"mirror"`
}

// RetrySpec is policy.Retry with YAML-friendly duration strings.
type RetrySpec struct {
	Enable     bool    `yaml:"enable"`
	MaxRetries int     `yaml:"max_retries"`
	Initial    string  `yaml:"initial"`
	Max        string  `yaml:"max"`
	Multiplier float64 `yaml:"multiplier"`
}

// ToPolicy converts the spec into apis/sink/policy.Retry.
func (r RetrySpec) ToPolicy() (policy.Retry, error) {
	initial, err := parseOptionalDuration(r.Initial)
	if err != nil {
		return policy.Retry{}, fmt.Errorf("config: sink.retry.initial: %w", err)
	}
	maxDelay, err := parseOptionalDuration(r.Max)
	if err != nil {
		return policy.Retry{}, fmt.Errorf("config: sink.retry.max: %w", err)
	}
	return policy.Retry{
		Enable:     r.Enable,
		MaxRetries: r.MaxRetries,
		Initial:    initial,
		Max:        maxDelay,
		Multiplier: r.Multiplier,
	}, nil
}

func parseOptionalDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// ToSpecification converts the spec into an apis/sink.Specification, ready
// to pass to a sink.Builder via runtime/sink.Build.
func (s SinkSpec) ToSpecification(batch *policy.Batch) (sink.Specification, error) {
	retry, err := s.Retry.ToPolicy()
	if err != nil {
		return sink.Specification{}, err
	}
	return sink.Specification{
		Name:   s.Name,
		Retry:  retry,
		Batch:  batch,
		Labels: s.Labels,
	}, nil
}

// Load reads and parses the YAML document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &doc, nil
}
