package fanout

import (
	"context"
	"errors"
	"testing"

	"flagforge.dev/eventpipe/apis/request"
	"github.com/stretchr/testify/require"
)

type countingHandler struct {
	calls int
	err   error
}

func (h *countingHandler) Dispatch(ctx context.Context, r *request.Request) error {
	h.calls++
	return h.err
}

func TestGroup_DispatchesToEveryMember(t *testing.T) {
	g := New("mirror")
	primary := &countingHandler{}
	secondary := &countingHandler{}
	require.NoError(t, g.Add("primary", primary))
	require.NoError(t, g.Add("secondary", secondary))

	err := g.Dispatch(context.Background(), &request.Request{})
	require.NoError(t, err)
	require.Equal(t, 1, primary.calls)
	require.Equal(t, 1, secondary.calls)
}

func TestGroup_SucceedsIfAnyMemberSucceeds(t *testing.T) {
	g := New("mirror")
	require.NoError(t, g.Add("broken", &countingHandler{err: errors.New("boom")}))
	require.NoError(t, g.Add("healthy", &countingHandler{}))

	err := g.Dispatch(context.Background(), &request.Request{})
	require.NoError(t, err)
}

func TestGroup_FailsOnlyIfEveryMemberFails(t *testing.T) {
	g := New("mirror")
	require.NoError(t, g.Add("a", &countingHandler{err: errors.New("a failed")}))
	require.NoError(t, g.Add("b", &countingHandler{err: errors.New("b failed")}))

	err := g.Dispatch(context.Background(), &request.Request{})
	require.Error(t, err)
}

func TestGroup_AddDuplicateErrors(t *testing.T) {
	g := New("mirror")
	require.NoError(t, g.Add("a", &countingHandler{}))
	require.Error(t, g.Add("a", &countingHandler{}))
}

func TestGroup_RemoveAndList(t *testing.T) {
	g := New("mirror")
	require.NoError(t, g.Add("a", &countingHandler{}))
	require.NoError(t, g.Add("b", &countingHandler{}))
	require.Equal(t, []string{"a", "b"}, g.List())

	require.NoError(t, g.Remove("a"))
	require.Equal(t, []string{"b"}, g.List())
	require.Error(t, g.Remove("a"))
}

func TestGroup_DispatchWithNoMembersErrors(t *testing.T) {
	g := New("empty")
	err := g.Dispatch(context.Background(), &request.Request{})
	require.Error(t, err)
}
