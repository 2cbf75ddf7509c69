package health

import (
	"context"
	"testing"

	ahealth "flagforge.dev/eventpipe/apis/health"
	"flagforge.dev/eventpipe/apis/lifecycle"
	"flagforge.dev/eventpipe/runtime/executor"
	"github.com/stretchr/testify/require"
)

func TestPipelineChecker_MapsStates(t *testing.T) {
	cases := []struct {
		state lifecycle.State
		want  ahealth.Status
	}{
		{lifecycle.New, ahealth.StatusUnhealthy},
		{lifecycle.Running, ahealth.StatusHealthy},
		{lifecycle.Stopping, ahealth.StatusDegraded},
		{lifecycle.Stopped, ahealth.StatusUnhealthy},
	}

	for _, c := range cases {
		checker := NewPipelineChecker("pipeline", func() lifecycle.State { return c.state })
		res, err := checker.Check(context.Background())
		require.NoError(t, err)
		require.Equal(t, c.want, res.Status)
		require.Equal(t, "pipeline", res.Name)
	}
}

func TestExecutorChecker_DegradesAtHighWaterMark(t *testing.T) {
	exec := &executor.Inline{}
	checker := NewExecutorChecker("exec", exec, 0)

	res, err := checker.Check(context.Background())
	require.NoError(t, err)
	require.Equal(t, ahealth.StatusDegraded, res.Status)
}

func TestExecutorChecker_HealthyBelowHighWaterMark(t *testing.T) {
	exec := &executor.Inline{}
	checker := NewExecutorChecker("exec", exec, 100)

	res, err := checker.Check(context.Background())
	require.NoError(t, err)
	require.Equal(t, ahealth.StatusHealthy, res.Status)
}
