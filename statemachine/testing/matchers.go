package testing

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/amp-labs/amp-fsm/statemachine"
)

// Matcher errors.
var (
	ErrWrongState         = errors.New("machine is in the wrong state")
	ErrWrongPrevious      = errors.New("machine has the wrong previous state")
	ErrUnexpectedPrevious = errors.New("machine has a previous state")
	ErrWrongEvents        = errors.New("machine accepts the wrong events")
	ErrEventNotAccepted   = errors.New("event is not accepted")
	ErrNoMatchersPassed   = errors.New("no matchers passed")
)

// Matcher defines an assertion over a machine instance.
type Matcher interface {
	Match(instance statemachine.Instance) (bool, error)
	Description() string
}

// InState matches when the machine's current state is state.
func InState(state string) Matcher {
	return &inStateMatcher{state: state}
}

type inStateMatcher struct {
	state string
}

func (m *inStateMatcher) Match(instance statemachine.Instance) (bool, error) {
	if current := instance.Current(); current != m.state {
		return false, fmt.Errorf("%w: %q, expected %q", ErrWrongState, current, m.state)
	}

	return true, nil
}

func (m *inStateMatcher) Description() string {
	return fmt.Sprintf("machine should be in state %q", m.state)
}

// PreviousWas matches when the machine's previous state is state.
func PreviousWas(state string) Matcher {
	return &previousMatcher{state: state}
}

type previousMatcher struct {
	state string
}

func (m *previousMatcher) Match(instance statemachine.Instance) (bool, error) {
	last, ok := instance.Last()
	if !ok {
		return false, fmt.Errorf("%w: none, expected %q", ErrWrongPrevious, m.state)
	}

	if last != m.state {
		return false, fmt.Errorf("%w: %q, expected %q", ErrWrongPrevious, last, m.state)
	}

	return true, nil
}

func (m *previousMatcher) Description() string {
	return fmt.Sprintf("previous state should be %q", m.state)
}

// NoPrevious matches a machine that has never transitioned or been reset.
func NoPrevious() Matcher {
	return noPreviousMatcher{}
}

type noPreviousMatcher struct{}

func (noPreviousMatcher) Match(instance statemachine.Instance) (bool, error) {
	if last, ok := instance.Last(); ok {
		return false, fmt.Errorf("%w: %q", ErrUnexpectedPrevious, last)
	}

	return true, nil
}

func (noPreviousMatcher) Description() string {
	return "machine should have no previous state"
}

// HasEvents matches when the machine accepts exactly events, in order.
func HasEvents(events ...string) Matcher {
	return &eventsMatcher{events: events}
}

type eventsMatcher struct {
	events []string
}

func (m *eventsMatcher) Match(instance statemachine.Instance) (bool, error) {
	actual := instance.Events()
	if len(actual) == 0 && len(m.events) == 0 {
		return true, nil
	}

	if !slices.Equal(actual, m.events) {
		return false, fmt.Errorf("%w: [%s], expected [%s]", ErrWrongEvents,
			strings.Join(actual, ", "), strings.Join(m.events, ", "))
	}

	return true, nil
}

func (m *eventsMatcher) Description() string {
	return fmt.Sprintf("machine should accept [%s]", strings.Join(m.events, ", "))
}

// Accepts matches when event is among the machine's available events.
func Accepts(event string) Matcher {
	return &acceptsMatcher{event: event}
}

type acceptsMatcher struct {
	event string
}

func (m *acceptsMatcher) Match(instance statemachine.Instance) (bool, error) {
	if !slices.Contains(instance.Events(), m.event) {
		return false, fmt.Errorf("%w: %q in state %q", ErrEventNotAccepted, m.event, instance.Current())
	}

	return true, nil
}

func (m *acceptsMatcher) Description() string {
	return fmt.Sprintf("machine should accept %q", m.event)
}

// All creates a matcher that requires all sub-matchers to pass.
func All(matchers ...Matcher) Matcher {
	return &allMatcher{matchers: matchers}
}

type allMatcher struct {
	matchers []Matcher
}

func (m *allMatcher) Match(instance statemachine.Instance) (bool, error) {
	for _, matcher := range m.matchers {
		matched, err := matcher.Match(instance)
		if !matched || err != nil {
			return false, err
		}
	}

	return true, nil
}

func (m *allMatcher) Description() string {
	return "all matchers should pass"
}

// Any creates a matcher that requires at least one sub-matcher to pass.
func Any(matchers ...Matcher) Matcher {
	return &anyMatcher{matchers: matchers}
}

type anyMatcher struct {
	matchers []Matcher
}

func (m *anyMatcher) Match(instance statemachine.Instance) (bool, error) {
	for _, matcher := range m.matchers {
		matched, err := matcher.Match(instance)
		if matched && err == nil {
			return true, nil
		}
	}

	return false, ErrNoMatchersPassed
}

func (m *anyMatcher) Description() string {
	return "at least one matcher should pass"
}

// AssertThat reports a test error for every matcher that does not pass.
func AssertThat(t *testing.T, instance statemachine.Instance, matchers ...Matcher) bool {
	t.Helper()

	ok := true

	for _, matcher := range matchers {
		matched, err := matcher.Match(instance)
		if !matched || err != nil {
			t.Errorf("%s: %v", matcher.Description(), err)

			ok = false
		}
	}

	return ok
}
