package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sampleYAML = `
log_level: info
batch:
  max_batch_size: 50
  max_batch_open: 250ms
  max_inflight_batches: 4
sink:
  kind: https
  name: primary
  retry:
    enable: true
    max_retries: 3
    initial: 100ms
    max: 5s
    multiplier: 2.0
  labels:
    env: staging
observability:
  addr: ":9090"
  log_sample_rate: 5
  log_sample_burst: 2
audit_log:
  path: /var/log/eventpipe/audit.log
  queue_size: 1024
stages:
  transforms:
    - log_empty_payload
  intercepts:
    - require_account_id
`

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "eventpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_ParsesDocument(t *testing.T) {
	path := writeTempConfig(t, sampleYAML)

	doc, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "info", doc.LogLevel)
	require.Equal(t, 50, doc.Batch.MaxBatchSize)
	require.Equal(t, "https", doc.Sink.Kind)
	require.Equal(t, "staging", doc.Sink.Labels["env"])
	require.Equal(t, ":9090", doc.Observability.Addr)
	require.Equal(t, 5.0, doc.Observability.LogSampleRate)
	require.Equal(t, "/var/log/eventpipe/audit.log", doc.AuditLog.Path)
	require.Equal(t, 1024, doc.AuditLog.QueueSize)
	require.True(t, doc.Stages.TransformEnabled("log_empty_payload"))
	require.False(t, doc.Stages.TransformEnabled("unknown"))
	require.True(t, doc.Stages.InterceptEnabled("require_account_id"))
	require.False(t, doc.Stages.InterceptEnabled("unknown"))
}

func TestBatchSpec_ToPolicy(t *testing.T) {
	spec := BatchSpec{MaxBatchSize: 10, MaxBatchOpen: "1s", MaxInflightBatches: 2}

	p, err := spec.ToPolicy()
	require.NoError(t, err)
	require.Equal(t, 10, p.MaxBatchSize)
	require.Equal(t, time.Second, p.MaxBatchOpen)
	require.Equal(t, 2, p.MaxInflightBatches)
}

func TestBatchSpec_ToPolicyInvalidDuration(t *testing.T) {
	spec := BatchSpec{MaxBatchOpen: "not-a-duration"}

	_, err := spec.ToPolicy()
	require.Error(t, err)
}

func TestRetrySpec_ToPolicy(t *testing.T) {
	spec := RetrySpec{Enable: true, MaxRetries: 3, Initial: "100ms", Max: "5s", Multiplier: 2}

	p, err := spec.ToPolicy()
	require.NoError(t, err)
	require.True(t, p.Enable)
	require.Equal(t, 100*time.Millisecond, p.Initial)
	require.Equal(t, 5*time.Second, p.Max)
}

func TestSinkSpec_ToSpecification(t *testing.T) {
	spec := SinkSpec{Kind: "https", Name: "primary", Labels: map[string]string{"a": "b"}}

	s, err := spec.ToSpecification(nil)
	require.NoError(t, err)
	require.Equal(t, "primary", s.Name)
	require.Equal(t, "b", s.Labels["a"])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
