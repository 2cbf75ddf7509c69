package stage

import (
	"context"
	"testing"

	"flagforge.dev/eventpipe/apis/event"
	astage "flagforge.dev/eventpipe/apis/stage"
	"github.com/stretchr/testify/require"
)

func TestEnabledTransforms_SkipsDisabled(t *testing.T) {
	var ran []string
	entries := []NamedTransform[string]{
		{Registration: astage.Registration{Kind: "a", Enabled: true}, Fn: func(ctx context.Context, item string) { ran = append(ran, "a") }},
		{Registration: astage.Registration{Kind: "b", Enabled: false}, Fn: func(ctx context.Context, item string) { ran = append(ran, "b") }},
		{Registration: astage.Registration{Kind: "c", Enabled: true}, Fn: func(ctx context.Context, item string) { ran = append(ran, "c") }},
	}

	fns := EnabledTransforms(entries)
	require.Len(t, fns, 2)
	for _, fn := range fns {
		fn(context.Background(), "x")
	}
	require.Equal(t, []string{"a", "c"}, ran)
}

func TestEnabledIntercepts_SkipsDisabled(t *testing.T) {
	entries := []NamedIntercept{
		{
			Registration: astage.Registration{Kind: "drop-all", Enabled: false},
			Fn: func(ctx context.Context, e event.Event) (event.Event, astage.Decision) {
				panic("should not run")
			},
		},
		{
			Registration: astage.Registration{Kind: "keep", Enabled: true},
			Fn: func(ctx context.Context, e event.Event) (event.Event, astage.Decision) {
				return e, astage.Continue
			},
		},
	}

	fns := EnabledIntercepts(entries)
	require.Len(t, fns, 1)
}
