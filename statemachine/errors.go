package statemachine

import (
	"errors"
	"fmt"
)

// Predefined error types.
var (
	// ErrInvalidTransition indicates that the current state has no destination for an event.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrStateNotFound indicates that a state is missing from the configuration.
	ErrStateNotFound = errors.New("state not found")
	// ErrInvalidConfig indicates that a configuration cannot be used to build a machine.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfigRequired indicates that a nil configuration was supplied.
	ErrConfigRequired = errors.New("config is required")
	// ErrInitialStateRequired indicates that an initial state is required.
	ErrInitialStateRequired = errors.New("initial state is required")
	// ErrStateRequired indicates that at least one state is required.
	ErrStateRequired = errors.New("at least one state is required")
	// ErrInitialStateNotFound indicates that the initial state does not exist.
	ErrInitialStateNotFound = errors.New("initial state does not exist")
	// ErrTransitionTargetNotFound indicates that an event points at a state that does not exist.
	ErrTransitionTargetNotFound = errors.New("transition target does not exist")
	// ErrEventNameRequired indicates that an event key is empty.
	ErrEventNameRequired = errors.New("event name is required")
	// ErrDocumentNameRequired indicates that a document name is required.
	ErrDocumentNameRequired = errors.New("document name is required")

	// ErrUnknownHookType indicates that a hook type has no registered builder.
	ErrUnknownHookType = errors.New("unknown hook type")
	// ErrHookTypeRequired indicates that a hook config has no type.
	ErrHookTypeRequired = errors.New("hook type is required")
	// ErrInvalidHookParameter indicates that a hook parameter has the wrong shape.
	ErrInvalidHookParameter = errors.New("invalid hook parameter")
)

// TransitionError reports an event that the current state does not accept.
type TransitionError struct {
	From  string
	Event string
	Err   error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%v from %q with %q", e.Err, e.From, e.Event)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// StateError wraps an error with state context.
type StateError struct {
	State string
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state %s: %v", e.State, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// WrapStateError wraps an error with state context.
func WrapStateError(state string, err error) error {
	if err == nil {
		return nil
	}

	return &StateError{
		State: state,
		Err:   err,
	}
}

func invalidTransition(from, event string) error {
	return &TransitionError{
		From:  from,
		Event: event,
		Err:   ErrInvalidTransition,
	}
}
