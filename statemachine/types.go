package statemachine

import "context"

// Hook is a side effect attached to entering or leaving a state.
// It may block; Send waits for it to return before continuing.
type Hook func(ctx context.Context) error

// StateDefinition describes a single state: the events it accepts and
// the hooks that run when the machine enters or leaves it.
type StateDefinition[S, E ~string] struct {
	// On maps an accepted event to its destination state. An event with
	// no entry is not valid from this state.
	On      map[E]S
	OnEnter Hook
	OnExit  Hook
}

// Config is the static description of a machine. Machines keep a reference
// to it, so it must not be mutated once a machine has been built from it.
type Config[S, E ~string] struct {
	Initial S
	States  map[S]StateDefinition[S, E]
}

// Instance is the type-erased view of a Machine. It lets collections hold
// machines with differing state and event types.
type Instance interface {
	Name() string
	Current() string
	Last() (string, bool)
	Events() []string
	Fire(ctx context.Context, event string) error
	Reset()
}
