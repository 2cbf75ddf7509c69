package metrics

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type syncExecutor struct {
	mu    sync.Mutex
	calls int
}

func (s *syncExecutor) Submit(fn func()) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	fn()
}

func TestExecutor_WrapsSubmitAndCountsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	base := &syncExecutor{}
	e := NewExecutor(reg, "test", base)

	var ran bool
	e.Submit(func() { ran = true })

	require.True(t, ran)
	require.Equal(t, 1, base.calls)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

type captureSink struct {
	batches [][]string
}

func (c *captureSink) ProcessBatch(ctx context.Context, items []string) error {
	c.batches = append(c.batches, items)
	return nil
}

func TestObservedSink_RecordsSizeAndForwards(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewBatchObserver(reg, "test")
	next := &captureSink{}
	sink := NewObservedSink[string](next, obs)

	err := sink.ProcessBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, next.batches, 1)
	require.Len(t, next.batches[0], 3)
}
