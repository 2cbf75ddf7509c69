package stage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"flagforge.dev/eventpipe/apis/callback"
	"flagforge.dev/eventpipe/apis/event"
	"flagforge.dev/eventpipe/apis/request"
	asink "flagforge.dev/eventpipe/apis/sink"
	"flagforge.dev/eventpipe/runtime/logging"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	err error
}

func (s *stubHandler) Dispatch(ctx context.Context, r *request.Request) error {
	return s.err
}

func newTrackingRequest(ids ...string) (*request.Request, *sync.Mutex, *[]string, *[]string) {
	var mu sync.Mutex
	var successes, failures []string
	evs := make([]event.Event, len(ids))
	for i, id := range ids {
		evs[i] = event.Event{ID: id}
	}
	r := &request.Request{
		Events: evs,
		Callbacks: callback.List{{
			OnSuccess: func(e event.Event) {
				mu.Lock()
				defer mu.Unlock()
				successes = append(successes, e.ID)
			},
			OnFailure: func(e event.Event, err error) {
				mu.Lock()
				defer mu.Unlock()
				failures = append(failures, e.ID)
			},
		}},
	}
	return r, &mu, &successes, &failures
}

func TestSinkAdapter_SuccessFiresPerEvent(t *testing.T) {
	r, _, successes, failures := newTrackingRequest("1", "2")
	s := NewSinkAdapter(&stubHandler{}, nil, nil)

	s.Process(context.Background(), r)

	require.ElementsMatch(t, []string{"1", "2"}, *successes)
	require.Empty(t, *failures)
}

func TestSinkAdapter_FailureFiresPerEventAndException(t *testing.T) {
	r, _, successes, failures := newTrackingRequest("1", "2")
	dispatchErr := errors.New("dispatch boom")

	var exceptionCalls int
	var exceptionErr error
	exception := func(ctx context.Context, r *request.Request, err error) {
		exceptionCalls++
		exceptionErr = err
	}

	s := NewSinkAdapter(&stubHandler{err: dispatchErr}, asink.ExceptionHandlerFunc(exception), logging.NewNop())

	s.Process(context.Background(), r)

	require.Empty(t, *successes)
	require.ElementsMatch(t, []string{"1", "2"}, *failures)
	require.Equal(t, 1, exceptionCalls)
	require.Equal(t, dispatchErr, exceptionErr)
}

func TestSinkAdapter_ProcessBatchDispatchesEachRequest(t *testing.T) {
	r1, _, s1, _ := newTrackingRequest("a")
	r2, _, s2, _ := newTrackingRequest("b")
	s := NewSinkAdapter(&stubHandler{}, nil, nil)

	s.ProcessBatch(context.Background(), []*request.Request{r1, r2})

	require.Equal(t, []string{"a"}, *s1)
	require.Equal(t, []string{"b"}, *s2)
}

func TestSinkAdapter_NilExceptionHandlerDoesNotPanic(t *testing.T) {
	r, _, _, failures := newTrackingRequest("1")
	s := NewSinkAdapter(&stubHandler{err: errors.New("boom")}, nil, nil)

	require.NotPanics(t, func() { s.Process(context.Background(), r) })
	require.Equal(t, []string{"1"}, *failures)
}
