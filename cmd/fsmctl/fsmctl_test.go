package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.ExecuteContext(t.Context())

	return out.String(), err
}

func TestValidateCommand(t *testing.T) { //nolint:paralleltest
	out, err := execute(t, "validate", "testdata/machines.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "auth is valid")
	assert.Contains(t, out, "player is valid")

	out, err = execute(t, "validate", "testdata/broken.yaml")
	require.ErrorIs(t, err, errValidationFailed)
	assert.Contains(t, out, "UNKNOWN_TARGET")
	assert.Contains(t, out, "UNKNOWN_HOOK_TYPE")
	assert.Contains(t, out, "UNREACHABLE_STATE")

	out, err = execute(t, "validate", "testdata/machines.yaml", "testdata/broken.yaml")
	require.ErrorIs(t, err, errValidationFailed)
	assert.Less(t, strings.Index(out, "auth is valid"), strings.Index(out, "broken has"), "output follows argument order")

	_, err = execute(t, "validate", "testdata/does-not-exist.yaml")
	require.Error(t, err)
}

func TestGraphCommand(t *testing.T) { //nolint:paralleltest
	out, err := execute(t, "graph", "testdata/machines.yaml", "--machine", "player", "--direction", "LR", "--fenced=false")
	require.NoError(t, err)
	assert.Contains(t, out, "stateDiagram-v2\n")
	assert.Contains(t, out, "direction LR")
	assert.Contains(t, out, "playing --> paused: PAUSE")
	assert.NotContains(t, out, "loggedIn")

	_, err = execute(t, "graph", "testdata/machines.yaml", "--machine", "nope")
	require.ErrorIs(t, err, errMachineNotInFile)
}

func TestRunCommandScripted(t *testing.T) { //nolint:paralleltest
	out, err := execute(t, "run", "testdata/machines.yaml", "--machine", "player",
		"--events", "PLAY,PAUSE,PLAY,STOP")
	require.NoError(t, err)

	assert.Equal(t, "player: stopped (previous: -)\n"+
		"player: playing (previous: stopped)\n"+
		"player: paused (previous: playing)\n"+
		"player: playing (previous: paused)\n"+
		"player: stopped (previous: playing)\n", out)
}

func TestRunCommandRejectedAndReset(t *testing.T) { //nolint:paralleltest
	out, err := execute(t, "run", "testdata/machines.yaml", "--events", "LOGOUT,LOGIN,reset", "--metrics")
	require.ErrorIs(t, err, errEventsRejected)

	assert.Contains(t, out, `rejected: invalid transition from "loggedOut" with "LOGOUT"`)
	assert.Contains(t, out, "auth: loggedIn (previous: loggedOut)")
	assert.Contains(t, out, "auth: loggedOut (previous: loggedIn)")
	assert.Contains(t, out, `statemachine_transitions_total{event="LOGIN",from_state="loggedOut",machine="auth",to_state="loggedIn"} 1`)
	assert.Contains(t, out, `statemachine_resets_total{machine="player"} 1`)
}

func TestRunCommandErrors(t *testing.T) { //nolint:paralleltest
	_, err := execute(t, "run", "testdata/machines.yaml", "--machine", "missing", "--events", "X")
	require.Error(t, err)

	_, err = execute(t, "run", "testdata/broken.yaml", "--events", "GO")
	require.Error(t, err)

	_, err = execute(t, "run", "testdata/machines.yaml", "--log-level", "shouty", "--events", "X")
	require.Error(t, err)
}
