package testing

import (
	"github.com/amp-labs/amp-fsm/statemachine"
)

// Fixture states and events.
const (
	Idle    = "idle"
	Running = "running"
	Start   = "START"
	Stop    = "STOP"
)

// IdleRunning returns a two-state machine config, idle -START-> running
// -STOP-> idle, whose hooks record "exit:<state>" and "enter:<state>" into
// rec. A nil recorder leaves the hooks unset.
func IdleRunning(rec *Recorder) *statemachine.Config[string, string] {
	builder := statemachine.NewBuilder[string, string](Idle).
		Transition(Idle, Start, Running).
		Transition(Running, Stop, Idle)

	if rec != nil {
		for _, state := range []string{Idle, Running} {
			builder.OnEnter(state, rec.Hook("enter:"+state))
			builder.OnExit(state, rec.Hook("exit:"+state))
		}
	}

	config, err := builder.Build()
	if err != nil {
		panic(err)
	}

	return config
}

// AuthDocument is a login/logout machine in document form.
func AuthDocument() *statemachine.Document {
	return &statemachine.Document{
		Name:    "auth",
		Initial: "loggedOut",
		States: map[string]statemachine.StateDocument{
			"loggedOut": {On: map[string]string{"LOGIN": "loggedIn"}},
			"loggedIn":  {On: map[string]string{"LOGOUT": "loggedOut"}},
		},
	}
}

// PlayerDocument is a media player machine in document form.
func PlayerDocument() *statemachine.Document {
	return &statemachine.Document{
		Name:    "player",
		Initial: "stopped",
		States: map[string]statemachine.StateDocument{
			"stopped": {On: map[string]string{"PLAY": "playing"}},
			"playing": {On: map[string]string{"PAUSE": "paused", "STOP": "stopped"}},
			"paused":  {On: map[string]string{"PLAY": "playing", "STOP": "stopped"}},
		},
	}
}
