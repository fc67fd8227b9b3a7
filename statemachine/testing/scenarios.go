package testing

import (
	"testing"

	"github.com/amp-labs/amp-fsm/statemachine"
	"github.com/stretchr/testify/require"
)

// Step is one event in a scenario and what should happen after it.
type Step struct {
	Event string
	// Want is the state expected after the event.
	Want string
	// WantErr, if set, must match the Send error with errors.Is.
	WantErr error
}

// Scenario is a sequence of events sent to a fresh machine.
type Scenario struct {
	Name  string
	Steps []Step
	// Matchers are checked after the last step.
	Matchers []Matcher
}

// RunScenario sends each step's event to the instance built by newInstance
// and checks the resulting state.
func RunScenario(t *testing.T, newInstance func(t *testing.T) statemachine.Instance, scenario Scenario) {
	t.Helper()

	t.Run(scenario.Name, func(t *testing.T) {
		t.Helper()

		instance := newInstance(t)

		for idx, step := range scenario.Steps {
			err := instance.Fire(t.Context(), step.Event)
			if step.WantErr != nil {
				require.ErrorIs(t, err, step.WantErr, "step %d (%s)", idx, step.Event)
			} else {
				require.NoError(t, err, "step %d (%s)", idx, step.Event)
			}

			require.Equal(t, step.Want, instance.Current(), "step %d (%s)", idx, step.Event)
		}

		AssertThat(t, instance, scenario.Matchers...)
	})
}

// RequireSend fires event and fails the test unless the machine ends up in want.
func RequireSend(t *testing.T, instance statemachine.Instance, event, want string) {
	t.Helper()

	require.NoError(t, instance.Fire(t.Context(), event))
	require.Equal(t, want, instance.Current())
}
