package throttle

import (
	"context"
	"testing"

	"flagforge.dev/eventpipe/apis/field"
	"flagforge.dev/eventpipe/apis/level"
	"github.com/stretchr/testify/require"
)

type countingLogger struct {
	calls int
}

func (c *countingLogger) Enabled(lvl level.Level) bool { return true }
func (c *countingLogger) Debug(ctx context.Context, msg string, fields ...field.Field) {
	c.calls++
}
func (c *countingLogger) Info(ctx context.Context, msg string, fields ...field.Field)  { c.calls++ }
func (c *countingLogger) Warn(ctx context.Context, msg string, fields ...field.Field)  { c.calls++ }
func (c *countingLogger) Error(ctx context.Context, msg string, fields ...field.Field) { c.calls++ }
func (c *countingLogger) Fatal(ctx context.Context, msg string, fields ...field.Field) { c.calls++ }
func (c *countingLogger) Log(ctx context.Context, lvl level.Level, msg string, fields ...field.Field) {
	c.calls++
}

func TestSampledLogger_DropsBeyondBurst(t *testing.T) {
	next := &countingLogger{}
	s := New(next, 0, 3)

	for i := 0; i < 10; i++ {
		s.Info(context.Background(), "hit")
	}

	require.Equal(t, 3, next.calls)
}

func TestSampledLogger_FatalNeverDropped(t *testing.T) {
	next := &countingLogger{}
	s := New(next, 0, 0)

	s.Fatal(context.Background(), "dying")

	require.Equal(t, 1, next.calls)
}

func TestSampledLogger_EnabledDelegates(t *testing.T) {
	next := &countingLogger{}
	s := New(next, 1, 1)

	require.True(t, s.Enabled(level.Debug))
}
