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

// Package logging is the concrete, zap-backed implementation of apis.Logger
// used throughout the pipeline (runtime/batch, runtime/stage, runtime/breaker
// and friends all take an apis.Logger, never a *zap.Logger directly).
package logging

import (
	"context"

	"flagforge.dev/eventpipe/apis"
	dctx "flagforge.dev/eventpipe/apis/context"
	"flagforge.dev/eventpipe/apis/field"
	"flagforge.dev/eventpipe/apis/field/fields"
	"flagforge.dev/eventpipe/apis/level"
	"flagforge.dev/eventpipe/runtime/encoder/internalzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger adapts *zap.Logger to apis.FieldLogger/apis.ContextLogger.
type Logger struct {
	z         *zap.Logger
	extractor dctx.Extractor
	fields    []field.Field
}

var (
	_ apis.Logger        = (*Logger)(nil)
	_ apis.FieldLogger   = (*Logger)(nil)
	_ apis.ContextLogger = (*Logger)(nil)
)

// New wraps an existing *zap.Logger. extractor may be nil, in which case no
// context.Pack is attached to records.
func New(z *zap.Logger, extractor dctx.Extractor) *Logger {
	return &Logger{z: z, extractor: extractor}
}

// NewProduction builds a Logger using zap's production JSON configuration.
func NewProduction() (*Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return New(z, nil), nil
}

// NewNop builds a Logger that discards everything, for tests.
func NewNop() *Logger {
	return New(zap.NewNop(), nil)
}

// Enabled reports whether lvl would currently be logged.
func (l *Logger) Enabled(lvl level.Level) bool {
	return l.z.Core().Enabled(internalzap.MapAPIsLevel(lvl))
}

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, fields ...field.Field) {
	l.Log(ctx, level.Debug, msg, fields...)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, fields ...field.Field) {
	l.Log(ctx, level.Info, msg, fields...)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, fields ...field.Field) {
	l.Log(ctx, level.Warn, msg, fields...)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, fields ...field.Field) {
	l.Log(ctx, level.Error, msg, fields...)
}

// Fatal logs at fatal level. zap.Logger.Fatal terminates the process after
// writing the entry.
func (l *Logger) Fatal(ctx context.Context, msg string, fields ...field.Field) {
	l.Log(ctx, level.Fatal, msg, fields...)
}

// Log emits one structured record at lvl.
func (l *Logger) Log(ctx context.Context, lvl level.Level, msg string, fields ...field.Field) {
	zl := internalzap.MapAPIsLevel(lvl)
	if !l.z.Core().Enabled(zl) {
		return
	}

	merged := make(map[string]any, len(l.fields)+len(fields))
	for _, f := range l.fields {
		merged[f.Key] = f.Value
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}
	zfields := internalzap.ToZapFields(merged)

	if l.extractor != nil {
		if pack := l.extractor.Extract(ctx); !pack.IsZero() {
			zfields = append(zfields, packField(pack))
		}
	}

	if ce := l.z.Check(zl, msg); ce != nil {
		ce.Write(zfields...)
	}
}

// WithFields returns a derived Logger that always includes fields.
func (l *Logger) WithFields(fields ...field.Field) apis.Logger {
	merged := make([]field.Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &Logger{z: l.z, extractor: l.extractor, fields: merged}
}

// WithContext returns a derived Logger that attaches the Pack extracted from
// ctx now to every later record; the ctx passed to later calls is no longer
// consulted for context fields. A Logger without an extractor is returned
// unchanged.
func (l *Logger) WithContext(ctx context.Context) apis.Logger {
	if l.extractor == nil {
		return l
	}
	return &Logger{z: l.z, extractor: dctx.Static(l.extractor.Extract(ctx)), fields: l.fields}
}

func packField(p dctx.Pack) zap.Field {
	return zap.Inline(zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddString(fields.CorrelationID, p.CorrelationID)
		enc.AddString(fields.TraceID, p.TraceID)
		enc.AddString(fields.SpanID, p.SpanID)
		enc.AddString(fields.Service, p.Service)
		enc.AddString(fields.Component, p.Component)
		enc.AddString(fields.Operation, p.Operation)
		return nil
	}))
}
