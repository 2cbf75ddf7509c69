package stage

import (
	"context"
	"testing"

	"flagforge.dev/eventpipe/apis/event"
	astage "flagforge.dev/eventpipe/apis/stage"
	"flagforge.dev/eventpipe/runtime/logging"
	"github.com/stretchr/testify/require"
)

func TestIntercept_DropStopsChain(t *testing.T) {
	next := &captureItems[event.Event]{}
	var secondCalled bool
	ic := NewIntercept(next, nil,
		func(ctx context.Context, e event.Event) (event.Event, astage.Decision) {
			return e, astage.Drop
		},
		func(ctx context.Context, e event.Event) (event.Event, astage.Decision) {
			secondCalled = true
			return e, astage.Continue
		},
	)

	ic.Process(context.Background(), event.Event{ID: "e1"})

	require.Empty(t, next.single)
	require.False(t, secondCalled)
}

func TestIntercept_ContinueMutatesAndForwards(t *testing.T) {
	next := &captureItems[event.Event]{}
	ic := NewIntercept(next, nil,
		func(ctx context.Context, e event.Event) (event.Event, astage.Decision) {
			e.VisitorID = "mutated"
			return e, astage.Continue
		},
	)

	ic.Process(context.Background(), event.Event{ID: "e1"})

	require.Len(t, next.single, 1)
	require.Equal(t, "mutated", next.single[0].VisitorID)
}

func TestIntercept_PanicDropsEvent(t *testing.T) {
	next := &captureItems[event.Event]{}
	ic := NewIntercept(next, logging.NewNop(),
		func(ctx context.Context, e event.Event) (event.Event, astage.Decision) {
			panic("boom")
		},
	)

	require.NotPanics(t, func() { ic.Process(context.Background(), event.Event{ID: "e1"}) })
	require.Empty(t, next.single)
}

func TestIntercept_ProcessBatchPreservesOrderOfSurvivors(t *testing.T) {
	next := &captureItems[event.Event]{}
	ic := NewIntercept(next, nil,
		func(ctx context.Context, e event.Event) (event.Event, astage.Decision) {
			if e.ID == "drop-me" {
				return e, astage.Drop
			}
			return e, astage.Continue
		},
	)

	ic.ProcessBatch(context.Background(), []event.Event{
		{ID: "a"}, {ID: "drop-me"}, {ID: "b"},
	})

	require.Len(t, next.batch, 1)
	require.Len(t, next.batch[0], 2)
	require.Equal(t, "a", next.batch[0][0].ID)
	require.Equal(t, "b", next.batch[0][1].ID)
}

func TestIntercept_ProcessBatchAllDroppedForwardsNothing(t *testing.T) {
	next := &captureItems[event.Event]{}
	ic := NewIntercept(next, nil,
		func(ctx context.Context, e event.Event) (event.Event, astage.Decision) {
			return e, astage.Drop
		},
	)

	ic.ProcessBatch(context.Background(), []event.Event{{ID: "a"}, {ID: "b"}})

	require.Empty(t, next.batch)
}
