package statemachine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMetricsMachine(t *testing.T, name string) (*Machine[string, string], *prometheus.Registry) {
	t.Helper()

	registry := prometheus.NewRegistry()

	errBoom := errors.New("boom")

	machine, err := NewBuilder[string, string]("idle").
		Transition("idle", "START", "running").
		Transition("running", "STOP", "idle").
		Transition("running", "CRASH", "broken").
		State("broken").
		OnEnter("running", func(context.Context) error { return nil }).
		OnEnter("broken", func(context.Context) error { return errBoom }).
		Machine(WithName(name), WithMetrics(NewMetrics(registry)))
	require.NoError(t, err)

	return machine, registry
}

func TestTransitionMetrics(t *testing.T) {
	t.Parallel()

	machine, _ := newMetricsMachine(t, "job")

	require.NoError(t, machine.Send(t.Context(), "START"))
	require.NoError(t, machine.Send(t.Context(), "STOP"))
	require.NoError(t, machine.Send(t.Context(), "START"))
	require.ErrorIs(t, machine.Send(t.Context(), "START"), ErrInvalidTransition)

	transitions := machine.metrics.transitionsTotal
	assert.InDelta(t, 2, testutil.ToFloat64(transitions.WithLabelValues("job", "idle", "START", "running")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(transitions.WithLabelValues("job", "running", "STOP", "idle")), 0)

	rejected := machine.metrics.rejectedTotal
	assert.InDelta(t, 1, testutil.ToFloat64(rejected.WithLabelValues("job", "running", "START")), 0)

	machine.Reset()
	assert.InDelta(t, 1, testutil.ToFloat64(machine.metrics.resetsTotal.WithLabelValues("job")), 0)
}

func TestHookDurationMetric(t *testing.T) {
	t.Parallel()

	machine, registry := newMetricsMachine(t, "")

	require.NoError(t, machine.Send(t.Context(), "START"))
	require.Error(t, machine.Send(t.Context(), "CRASH"))

	assert.Equal(t, 2, testutil.CollectAndCount(machine.metrics.hookDuration))

	expected := `
# HELP statemachine_transitions_total Total number of state transitions by machine, from_state, event, and to_state
# TYPE statemachine_transitions_total counter
statemachine_transitions_total{event="CRASH",from_state="running",machine="unnamed",to_state="broken"} 1
statemachine_transitions_total{event="START",from_state="idle",machine="unnamed",to_state="running"} 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"statemachine_transitions_total"))

	count, err := testutil.GatherAndCount(registry, "statemachine_hook_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per state and outcome")
}

func TestNewMetricsWithoutRegisterer(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics(nil)
	metrics.resetsTotal.WithLabelValues("x").Inc()

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.resetsTotal.WithLabelValues("x")), 0)
}

func TestSanitizeMachine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unnamed", sanitizeMachine(""))
	assert.Equal(t, "auth", sanitizeMachine("auth"))
}
