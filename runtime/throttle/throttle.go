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

// Package throttle rate-limits diagnostic logging for high-volume stages.
// A pipeline processing thousands of events per second cannot afford a log
// line per event; SampledLogger caps emission at a configured rate and drops
// the rest, leaving the pipeline's own Process/ProcessBatch semantics
// (which never drop on the throttle's account) untouched.
package throttle

import (
	"context"

	"flagforge.dev/eventpipe/apis"
	"flagforge.dev/eventpipe/apis/field"
	"flagforge.dev/eventpipe/apis/level"
	"golang.org/x/time/rate"
)

// SampledLogger wraps an apis.Logger and drops log calls once the
// configured rate is exceeded. Enabled-checks and the level threshold are
// unaffected; only the Log/Debug/Info/Warn/Error entry points sample. Fatal
// is always passed through.
type SampledLogger struct {
	next    apis.Logger
	limiter *rate.Limiter
}

var _ apis.Logger = (*SampledLogger)(nil)

// New wraps next with a token-bucket limiter allowing up to burst log calls
// immediately and ratePerSecond thereafter.
func New(next apis.Logger, ratePerSecond float64, burst int) *SampledLogger {
	return &SampledLogger{next: next, limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

// Enabled delegates to the wrapped logger; sampling never hides that a level
// is statically disabled.
func (s *SampledLogger) Enabled(lvl level.Level) bool {
	return s.next.Enabled(lvl)
}

func (s *SampledLogger) Debug(ctx context.Context, msg string, fields ...field.Field) {
	s.Log(ctx, level.Debug, msg, fields...)
}

func (s *SampledLogger) Info(ctx context.Context, msg string, fields ...field.Field) {
	s.Log(ctx, level.Info, msg, fields...)
}

func (s *SampledLogger) Warn(ctx context.Context, msg string, fields ...field.Field) {
	s.Log(ctx, level.Warn, msg, fields...)
}

func (s *SampledLogger) Error(ctx context.Context, msg string, fields ...field.Field) {
	s.Log(ctx, level.Error, msg, fields...)
}

// Fatal is never sampled: a fatal log line precedes process termination and
// dropping it would leave no trace of why the process exited.
func (s *SampledLogger) Fatal(ctx context.Context, msg string, fields ...field.Field) {
	s.next.Fatal(ctx, msg, fields...)
}

// Log samples lvl/msg/fields through the limiter before forwarding, except
// at level.Fatal which always passes through.
func (s *SampledLogger) Log(ctx context.Context, lvl level.Level, msg string, fields ...field.Field) {
	if lvl == level.Fatal || s.limiter.Allow() {
		s.next.Log(ctx, lvl, msg, fields...)
	}
}
