package stage

import (
	"context"
	"testing"

	"flagforge.dev/eventpipe/runtime/logging"
	"github.com/stretchr/testify/require"
)

type captureItems[T any] struct {
	single []T
	batch  [][]T
}

func (c *captureItems[T]) Process(ctx context.Context, item T) {
	c.single = append(c.single, item)
}

func (c *captureItems[T]) ProcessBatch(ctx context.Context, items []T) {
	cp := make([]T, len(items))
	copy(cp, items)
	c.batch = append(c.batch, cp)
}

func TestTransform_AppliesInOrderAndForwards(t *testing.T) {
	var order []string
	next := &captureItems[string]{}
	tr := NewTransform[string](next, nil,
		func(ctx context.Context, item string) { order = append(order, "a:"+item) },
		func(ctx context.Context, item string) { order = append(order, "b:"+item) },
	)

	tr.Process(context.Background(), "x")

	require.Equal(t, []string{"a:x", "b:x"}, order)
	require.Equal(t, []string{"x"}, next.single)
}

func TestTransform_PanicIsSwallowed(t *testing.T) {
	next := &captureItems[string]{}
	tr := NewTransform[string](next, logging.NewNop(),
		func(ctx context.Context, item string) { panic("boom") },
	)

	require.NotPanics(t, func() { tr.Process(context.Background(), "x") })
	require.Equal(t, []string{"x"}, next.single)
}

func TestTransform_ProcessBatchForwardsWhole(t *testing.T) {
	next := &captureItems[string]{}
	tr := NewTransform[string](next, nil)

	tr.ProcessBatch(context.Background(), []string{"a", "b", "c"})

	require.Len(t, next.batch, 1)
	require.Equal(t, []string{"a", "b", "c"}, next.batch[0])
}
