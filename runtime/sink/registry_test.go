package sink

import (
	"context"
	"testing"

	"flagforge.dev/eventpipe/apis/request"
	asink "flagforge.dev/eventpipe/apis/sink"
	"github.com/stretchr/testify/require"
)

type stubEventHandler struct{}

func (stubEventHandler) Dispatch(ctx context.Context, r *request.Request) error { return nil }

type stubBuilder struct {
	kind string
}

func (b stubBuilder) Kind() string { return b.kind }

func (b stubBuilder) Build(ctx context.Context, name string, spec *asink.Specification) (asink.EventHandler, error) {
	return stubEventHandler{}, nil
}

func TestRegisterAndBuild(t *testing.T) {
	Register(stubBuilder{kind: "test-registry-build"})

	h, err := Build(context.Background(), "TEST-REGISTRY-BUILD", "primary", &asink.Specification{})
	require.NoError(t, err)
	require.NotNil(t, h)
}

func TestBuild_UnknownKind(t *testing.T) {
	_, err := Build(context.Background(), "does-not-exist", "x", &asink.Specification{})
	require.Error(t, err)
}

func TestRegister_PanicsOnDuplicate(t *testing.T) {
	Register(stubBuilder{kind: "test-registry-dup"})
	require.Panics(t, func() {
		Register(stubBuilder{kind: "test-registry-dup"})
	})
}
