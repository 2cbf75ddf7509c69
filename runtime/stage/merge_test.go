package stage

import (
	"context"
	"sync"
	"testing"

	"flagforge.dev/eventpipe/apis/callback"
	"flagforge.dev/eventpipe/apis/event"
	"flagforge.dev/eventpipe/apis/request"
	"github.com/stretchr/testify/require"
)

type captureRequests struct {
	single []*request.Request
	batch  [][]*request.Request
}

func (c *captureRequests) Process(ctx context.Context, r *request.Request) {
	c.single = append(c.single, r)
}

func (c *captureRequests) ProcessBatch(ctx context.Context, items []*request.Request) {
	cp := make([]*request.Request, len(items))
	copy(cp, items)
	c.batch = append(c.batch, cp)
}

func identityFactory(ctx context.Context, group []event.Event) (*request.Request, bool) {
	return &request.Request{Body: []byte("ok")}, true
}

func TestMerge_GroupsConsecutiveMergeableEvents(t *testing.T) {
	next := &captureRequests{}
	m := NewMerge(next, identityFactory, nil, nil)

	idA := event.Identity{AccountID: "a"}
	idB := event.Identity{AccountID: "b"}

	err := m.ProcessBatch(context.Background(), []event.Event{
		{ID: "1", Identity: idA},
		{ID: "2", Identity: idA},
		{ID: "3", Identity: idB},
		{ID: "4", Identity: idA},
	})

	require.NoError(t, err)
	require.Len(t, next.batch, 1)
	require.Len(t, next.batch[0], 3)
	require.Len(t, next.batch[0][0].Events, 2)
	require.Len(t, next.batch[0][1].Events, 1)
	require.Len(t, next.batch[0][2].Events, 1)
}

func TestMerge_FactoryDropSkipsGroup(t *testing.T) {
	next := &captureRequests{}
	m := NewMerge(next, func(ctx context.Context, group []event.Event) (*request.Request, bool) {
		return nil, false
	}, nil, nil)

	err := m.ProcessBatch(context.Background(), []event.Event{{ID: "1"}})

	require.NoError(t, err)
	require.Empty(t, next.batch)
}

func TestMerge_AttachesCallbacksAndReplaysPerEvent(t *testing.T) {
	next := &captureRequests{}
	var mu sync.Mutex
	var successes []string
	cbs := callback.List{{
		OnSuccess: func(e event.Event) {
			mu.Lock()
			defer mu.Unlock()
			successes = append(successes, e.ID)
		},
	}}
	m := NewMerge(next, identityFactory, cbs, nil)

	id := event.Identity{AccountID: "a"}
	err := m.ProcessBatch(context.Background(), []event.Event{
		{ID: "1", Identity: id},
		{ID: "2", Identity: id},
	})
	require.NoError(t, err)
	require.Len(t, next.batch[0], 1)

	r := next.batch[0][0]
	require.Equal(t, cbs, r.Callbacks)
	for _, e := range r.Events {
		r.Callbacks.Success(e)
	}
	require.ElementsMatch(t, []string{"1", "2"}, successes)
}

func TestMerge_ProcessSingleEvent(t *testing.T) {
	next := &captureRequests{}
	m := NewMerge(next, identityFactory, nil, nil)

	m.Process(context.Background(), event.Event{ID: "solo"})

	require.Len(t, next.batch, 1)
	require.Len(t, next.batch[0], 1)
	require.Equal(t, "solo", next.batch[0][0].Events[0].ID)
}
