package batch

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"flagforge.dev/eventpipe/apis/sink/policy"
	"flagforge.dev/eventpipe/runtime/executor"
)

type captureSink[E any] struct {
	mu      sync.Mutex
	batches [][]E
}

func (c *captureSink[E]) ProcessBatch(ctx context.Context, items []E) error {
	cp := make([]E, len(items))
	copy(cp, items)
	c.mu.Lock()
	c.batches = append(c.batches, cp)
	c.mu.Unlock()
	return nil
}

func (c *captureSink[E]) snapshot() [][]E {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]E, len(c.batches))
	copy(out, c.batches)
	return out
}

func newTestProcessor(cfg policy.Batch, sink Sink[string]) (*Processor[string], *executor.Inline) {
	exec := &executor.Inline{}
	p := New(cfg, exec, sink, nil)
	_ = p.Start(context.Background())
	return p, exec
}

func TestProcessor_SizeOneBatches(t *testing.T) {
	sink := &captureSink[string]{}
	p, _ := newTestProcessor(policy.Batch{MaxBatchSize: 1, MaxBatchOpen: 24 * time.Hour}, sink)

	p.Process(context.Background(), "one")
	p.Process(context.Background(), "two")
	p.Process(context.Background(), "three")

	got := sink.snapshot()
	want := [][]string{{"one"}, {"two"}, {"three"}}
	assertBatchesEqual(t, want, got)
}

func TestProcessor_SizeTwoPacking(t *testing.T) {
	sink := &captureSink[string]{}
	p, _ := newTestProcessor(policy.Batch{MaxBatchSize: 2, MaxBatchOpen: 24 * time.Hour}, sink)

	for _, item := range []string{"one", "two", "three", "four"} {
		p.Process(context.Background(), item)
	}

	got := sink.snapshot()
	want := [][]string{{"one", "two"}, {"three", "four"}}
	assertBatchesEqual(t, want, got)
}

func TestProcessor_TimeFlush(t *testing.T) {
	sink := &captureSink[string]{}
	// Inline executor would run the time-triggered batch synchronously inside
	// the timer goroutine; use Bounded here so the timer fire is observed
	// independently of the test goroutine's own call stack.
	exec := executor.NewBounded(4)
	p := New(policy.Batch{MaxBatchSize: 10, MaxBatchOpen: 50 * time.Millisecond}, exec, sink, nil)
	_ = p.Start(context.Background())

	p.Process(context.Background(), "0")
	time.Sleep(150 * time.Millisecond)

	for i := 1; i <= 10; i++ {
		p.Process(context.Background(), strconv.Itoa(i))
	}
	time.Sleep(50 * time.Millisecond)

	got := sink.snapshot()
	if len(got) != 2 {
		t.Fatalf("expected 2 batches, got %d: %v", len(got), got)
	}
	assertBatchEqual(t, []string{"0"}, got[0])
	want := []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}
	assertBatchEqual(t, want, got[1])
}

func TestProcessor_BulkSubmissionSizeTwo(t *testing.T) {
	sink := &captureSink[string]{}
	exec := executor.NewBounded(4)
	p := New(policy.Batch{MaxBatchSize: 2, MaxBatchOpen: 200 * time.Millisecond}, exec, sink, nil)
	_ = p.Start(context.Background())

	p.ProcessBatch(context.Background(), []string{"one", "two", "three"})
	time.Sleep(50 * time.Millisecond)

	got := sink.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected 1 batch before the timer fires, got %d: %v", len(got), got)
	}
	assertBatchEqual(t, []string{"one", "two"}, got[0])

	time.Sleep(250 * time.Millisecond)
	got = sink.snapshot()
	if len(got) != 2 {
		t.Fatalf("expected 2 batches after the timer fires, got %d: %v", len(got), got)
	}
	assertBatchEqual(t, []string{"three"}, got[1])
}

func TestProcessor_ExplicitFlushBeforeBounds(t *testing.T) {
	sink := &captureSink[string]{}
	p, _ := newTestProcessor(policy.Batch{MaxBatchSize: 100, MaxBatchOpen: time.Hour}, sink)

	for i := 0; i < 10; i++ {
		p.Process(context.Background(), strconv.Itoa(i))
	}
	p.Flush(context.Background())
	p.Flush(context.Background())

	got := sink.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected exactly one flushed batch, got %d: %v", len(got), got)
	}
	if len(got[0]) != 10 {
		t.Fatalf("expected batch of size 10, got %d", len(got[0]))
	}
}

func TestProcessor_InflightCap(t *testing.T) {
	var (
		active   atomic.Int64
		peak     atomic.Int64
		batches  atomic.Int64
	)
	sink := sinkFunc[string](func(ctx context.Context, items []string) error {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(250 * time.Millisecond)
		active.Add(-1)
		batches.Add(1)
		return nil
	})

	exec := executor.NewBounded(8)
	p := New(policy.Batch{MaxBatchSize: 10, MaxInflightBatches: 3}, exec, sink, nil)
	_ = p.Start(context.Background())

	var wg sync.WaitGroup
	for producer := 0; producer < 3; producer++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				p.Process(context.Background(), strconv.Itoa(base*10+i))
			}
		}(producer)
	}
	wg.Wait()
	p.Flush(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for batches.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if got := batches.Load(); got != 3 {
		t.Fatalf("expected exactly 3 batches emitted, got %d", got)
	}
	if got := peak.Load(); got != 3 {
		t.Fatalf("expected peak concurrent dispatches == 3, got %d", got)
	}
	if got := active.Load(); got != 0 {
		t.Fatalf("expected final concurrent dispatches == 0, got %d", got)
	}
}

func TestProcessor_ZeroDeadline(t *testing.T) {
	sink := &captureSink[string]{}
	p, _ := newTestProcessor(policy.Batch{MaxBatchSize: 1000, MaxBatchOpen: 0}, sink)

	p.Process(context.Background(), "a")
	p.Process(context.Background(), "b")
	p.Process(context.Background(), "c")
	time.Sleep(100 * time.Millisecond)

	if got := sink.snapshot(); len(got) != 0 {
		t.Fatalf("expected no emission before flush, got %v", got)
	}

	p.Flush(context.Background())

	got := sink.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected exactly one flushed batch, got %d: %v", len(got), got)
	}
	assertBatchEqual(t, []string{"a", "b", "c"}, got[0])
}

func TestProcessor_StopDrainsInflight(t *testing.T) {
	sink := &captureSink[string]{}
	exec := executor.NewBounded(4)
	p := New(policy.Batch{MaxBatchSize: 5, MaxBatchOpen: time.Hour}, exec, sink, nil)
	_ = p.Start(context.Background())

	for i := 0; i < 3; i++ {
		p.Process(context.Background(), strconv.Itoa(i))
	}

	ok := p.Stop(context.Background(), time.Second)
	if !ok {
		t.Fatal("expected Stop to report a clean drain")
	}
	if got := sink.snapshot(); len(got) != 1 || len(got[0]) != 3 {
		t.Fatalf("expected one flushed batch of 3 on stop, got %v", got)
	}

	// Submissions after Stop are silently dropped, never panicking.
	p.Process(context.Background(), "late")
	if got := sink.snapshot(); len(got) != 1 {
		t.Fatalf("expected no additional batch after stop, got %v", got)
	}
}

type sinkFunc[E any] func(ctx context.Context, items []E) error

func (f sinkFunc[E]) ProcessBatch(ctx context.Context, items []E) error { return f(ctx, items) }

func assertBatchesEqual(t *testing.T, want, got [][]string) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("expected %d batches, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		assertBatchEqual(t, want[i], got[i])
	}
}

func assertBatchEqual(t *testing.T, want, got []string) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("batch length mismatch: want %v got %v", want, got)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("batch mismatch at %d: want %v got %v", i, want, got)
		}
	}
}
