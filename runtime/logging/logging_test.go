package logging

import (
	"context"
	"testing"

	"flagforge.dev/eventpipe/apis/field"
	"flagforge.dev/eventpipe/apis/level"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_EnabledGating(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	l := New(zap.New(core), nil)
	require.False(t, l.Enabled(level.Info))
	require.True(t, l.Enabled(level.Error))

	l.Info(context.Background(), "ignored")
	l.Error(context.Background(), "boom", field.New("code", 500))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	require.Equal(t, "boom", entry.Message)
	require.Equal(t, int64(500), entry.ContextMap()["code"])
}

func TestLogger_WithFieldsMerges(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := New(zap.New(core), nil)
	derived := base.WithFields(field.New("component", "batch"))

	derived.Info(context.Background(), "started")

	require.Equal(t, 1, logs.Len())
	require.Equal(t, "batch", logs.All()[0].ContextMap()["component"])
}
