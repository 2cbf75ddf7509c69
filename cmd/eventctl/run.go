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
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flagforge.dev/eventpipe/apis"
	"flagforge.dev/eventpipe/apis/event"
	aexec "flagforge.dev/eventpipe/apis/executor"
	"flagforge.dev/eventpipe/apis/field"
	ahealth "flagforge.dev/eventpipe/apis/health"
	"flagforge.dev/eventpipe/apis/level"
	"flagforge.dev/eventpipe/apis/request"
	asink "flagforge.dev/eventpipe/apis/sink"
	"flagforge.dev/eventpipe/apis/sink/policy"
	astage "flagforge.dev/eventpipe/apis/stage"

	"flagforge.dev/eventpipe/runtime/auditlog"
	"flagforge.dev/eventpipe/runtime/breaker"
	"flagforge.dev/eventpipe/runtime/config"
	"flagforge.dev/eventpipe/runtime/encoder/internalzap"
	"flagforge.dev/eventpipe/runtime/executor"
	"flagforge.dev/eventpipe/runtime/fanout"
	"flagforge.dev/eventpipe/runtime/health"
	_ "flagforge.dev/eventpipe/runtime/httpdispatch"
	"flagforge.dev/eventpipe/runtime/logging"
	"flagforge.dev/eventpipe/runtime/metrics"
	"flagforge.dev/eventpipe/runtime/pipeline"
	rsink "flagforge.dev/eventpipe/runtime/sink"
	rstage "flagforge.dev/eventpipe/runtime/stage"
	"flagforge.dev/eventpipe/runtime/throttle"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rawRequest is the ingestion-side payload eventctl's demo HTTP source would
// hand to the pipeline; real embedders define their own T.
type rawRequest struct {
	AccountID string
	ProjectID string
	VisitorID string
	Payload   []byte
}

func runCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start a pipeline from a config file and block until signaled",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "eventpipe.yaml", "path to the pipeline config file")
	return cmd
}

func runPipeline(ctx context.Context, configPath string) error {
	doc, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("eventctl: %w", err)
	}
	logLevel := level.Info
	if doc.LogLevel != "" {
		if logLevel, err = level.ParseLevel(doc.LogLevel); err != nil {
			return fmt.Errorf("eventctl: %w", err)
		}
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(internalzap.MapAPIsLevel(logLevel))
	z, err := zapCfg.Build()
	if err != nil {
		return fmt.Errorf("eventctl: build logger: %w", err)
	}
	var log apis.Logger = logging.New(z, nil)
	if rate := doc.Observability.LogSampleRate; rate > 0 {
		burst := doc.Observability.LogSampleBurst
		if burst <= 0 {
			burst = 1
		}
		log = throttle.New(log, rate, burst)
	}

	batchPolicy, err := doc.Batch.ToPolicy()
	if err != nil {
		return fmt.Errorf("eventctl: %w", err)
	}

	spec, err := doc.Sink.ToSpecification(&batchPolicy)
	if err != nil {
		return fmt.Errorf("eventctl: %w", err)
	}

	rsink.Seal()
	handler, err := rsink.Build(ctx, doc.Sink.Kind, doc.Sink.Name, &spec)
	if err != nil {
		return fmt.Errorf("eventctl: build sink: %w", err)
	}
	if doc.Sink.Retry.Enable {
		handler = breaker.New(doc.Sink.Name, handler, spec.Retry, log)
	}
	if len(doc.Sink.Mirror) > 0 {
		handler, err = buildMirrorGroup(ctx, doc.Sink, handler, &batchPolicy, log)
		if err != nil {
			return fmt.Errorf("eventctl: %w", err)
		}
	}

	var exception asink.ExceptionHandler
	if doc.AuditLog.Path != "" {
		auditLog, err := buildAuditLog(doc.AuditLog)
		if err != nil {
			return fmt.Errorf("eventctl: %w", err)
		}
		defer auditLog.Close(ctx)
		exception = auditLog
	}

	reg := prometheus.NewRegistry()
	rawExec := executor.NewBounded(4)
	exec := metrics.NewExecutor(reg, doc.Sink.Name, rawExec)

	p := pipeline.New(pipeline.Config[rawRequest]{
		Convert: func(ctx context.Context, item rawRequest) (event.Event, bool) {
			return event.Event{
				Identity:  event.Identity{AccountID: item.AccountID, ProjectID: item.ProjectID},
				VisitorID: item.VisitorID,
				Entry:     item.Payload,
			}, true
		},
		Transforms: rstage.EnabledTransforms(builtinTransforms(doc.Stages, log)),
		Intercepts: rstage.EnabledIntercepts(builtinIntercepts(doc.Stages, log)),
		Batch:      batchPolicy,
		Executor:   exec,
		Factory: func(ctx context.Context, group []event.Event) (*request.Request, bool) {
			return &request.Request{Method: "POST", URL: doc.Sink.Name}, true
		},
		Handler:   handler,
		Exception: exception,
		Log:       log,
	})

	if err := p.Start(ctx); err != nil {
		return fmt.Errorf("eventctl: start pipeline: %w", err)
	}
	log.Info(ctx, "eventctl: pipeline started", field.New("sink_kind", doc.Sink.Kind))

	var httpServer *http.Server
	if doc.Observability.Addr != "" {
		httpServer = serveObservability(ctx, doc, reg, p, rawExec, log)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	if httpServer != nil {
		_ = httpServer.Close()
	}
	if !p.Stop(ctx, 30*time.Second) {
		return fmt.Errorf("eventctl: pipeline did not drain within timeout")
	}
	return nil
}

// builtinTransforms lists every named Transform cmd/eventctl knows how to
// build, enabled according to spec.Transforms.
func builtinTransforms(spec config.StagesSpec, log apis.Logger) []rstage.NamedTransform[rawRequest] {
	entries := []rstage.NamedTransform[rawRequest]{
		{
			Registration: astage.Registration{Kind: "log_empty_payload"},
			Fn: func(ctx context.Context, item rawRequest) {
				if len(item.Payload) == 0 {
					log.Warn(ctx, "eventctl: ingested event with empty payload", field.New("account_id", item.AccountID))
				}
			},
		},
	}
	for i := range entries {
		entries[i].Enabled = spec.TransformEnabled(entries[i].Kind)
	}
	return entries
}

// builtinIntercepts lists every named Intercept cmd/eventctl knows how to
// build, enabled according to spec.Intercepts.
func builtinIntercepts(spec config.StagesSpec, log apis.Logger) []rstage.NamedIntercept {
	entries := []rstage.NamedIntercept{
		{
			Registration: astage.Registration{Kind: "require_account_id"},
			Fn: func(ctx context.Context, e event.Event) (event.Event, astage.Decision) {
				if e.Identity.AccountID == "" {
					log.Warn(ctx, "eventctl: dropping event with no account id", field.New("event_id", e.ID))
					return e, astage.Drop
				}
				return e, astage.Continue
			},
		},
	}
	for i := range entries {
		entries[i].Enabled = spec.InterceptEnabled(entries[i].Kind)
	}
	return entries
}

// buildMirrorGroup wraps primary in a fanout.Group alongside every
// configured mirror sink, so a failed mirror dispatch never fails the
// primary delivery path (the group only reports failure if every member
// fails).
func buildMirrorGroup(ctx context.Context, spec config.SinkSpec, primary asink.EventHandler, batch *policy.Batch, log apis.Logger) (asink.EventHandler, error) {
	group := fanout.New(spec.Name)
	if err := group.Add(spec.Name, primary); err != nil {
		return nil, err
	}
	for _, mirror := range spec.Mirror {
		mirrorSpec, err := mirror.ToSpecification(batch)
		if err != nil {
			return nil, fmt.Errorf("mirror %q: %w", mirror.Name, err)
		}
		mirrorHandler, err := rsink.Build(ctx, mirror.Kind, mirror.Name, &mirrorSpec)
		if err != nil {
			return nil, fmt.Errorf("mirror %q: build sink: %w", mirror.Name, err)
		}
		if mirror.Retry.Enable {
			mirrorHandler = breaker.New(mirror.Name, mirrorHandler, mirrorSpec.Retry, log)
		}
		if err := group.Add(mirror.Name, mirrorHandler); err != nil {
			return nil, err
		}
	}
	return group, nil
}

// buildAuditLog turns an AuditLogSpec into a ready-to-use Log, buffering
// writes through a Queue when QueueSize is configured.
func buildAuditLog(spec config.AuditLogSpec) (*auditlog.Log, error) {
	file, err := auditlog.NewRotatingFile(auditlog.FileOptions{
		Path:   spec.Path,
		Policy: policy.Rotation{MaxSizeMB: 100, MaxBackups: 5, Compress: true},
	})
	if err != nil {
		return nil, fmt.Errorf("audit log: %w", err)
	}
	if spec.QueueSize <= 0 {
		return auditlog.New(file, nil), nil
	}
	q := auditlog.NewQueue(file, auditlog.QueueOptions{
		Size:  spec.QueueSize,
		Batch: policy.Batch{MaxBatchSize: 64, MaxBatchOpen: time.Second},
	})
	return auditlog.New(q, nil), nil
}

// serveObservability starts a background HTTP server exposing Prometheus
// metrics and an aggregated health report, returning the server so the
// caller can close it on shutdown.
func serveObservability(ctx context.Context, doc *config.Document, reg *prometheus.Registry, p *pipeline.Pipeline[rawRequest], exec aexec.Observer, log apis.Logger) *http.Server {
	highWaterMark := doc.Observability.ExecutorHighWaterMark
	if highWaterMark <= 0 {
		highWaterMark = 64
	}
	aggregator := ahealth.NewAggregator()
	aggregator.Add("pipeline", health.NewPipelineChecker(doc.Sink.Name, p.State))
	aggregator.Add("executor", health.NewExecutorChecker(doc.Sink.Name, exec, highWaterMark))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		report := aggregator.Run(r.Context())
		if report.Status != ahealth.StatusHealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		fmt.Fprintf(w, "%s\n", report.Status)
	})

	srv := &http.Server{Addr: doc.Observability.Addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(ctx, "eventctl: observability server stopped", field.New("error", err.Error()))
		}
	}()
	log.Info(ctx, "eventctl: observability server listening", field.New("addr", doc.Observability.Addr))
	return srv
}
