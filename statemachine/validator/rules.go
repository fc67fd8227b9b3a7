package validator

import (
	"fmt"

	"github.com/amp-labs/amp-fsm/statemachine"
)

// Issue codes.
const (
	CodeMissingName      = "MISSING_NAME"
	CodeNoStates         = "NO_STATES"
	CodeMissingInitial   = "MISSING_INITIAL"
	CodeEmptyEvent       = "EMPTY_EVENT"
	CodeUnknownTarget    = "UNKNOWN_TARGET"
	CodeUnknownHookType  = "UNKNOWN_HOOK_TYPE"
	CodeUnreachableState = "UNREACHABLE_STATE"
	CodeDeadEndState     = "DEAD_END_STATE"
)

// RuleResult contains both errors and warnings from a rule check.
type RuleResult struct {
	Errors   []Issue
	Warnings []Issue
}

// Rule checks a document for one kind of problem.
type Rule interface {
	Name() string
	Check(doc *statemachine.Document) RuleResult
}

// DefaultRules returns the standard rule set. The hook type rule is only
// included when factory is non-nil.
func DefaultRules(factory *statemachine.HookFactory) []Rule {
	rules := []Rule{
		&structureRule{},
		&missingInitialRule{},
		&unknownTargetRule{},
		&unreachableStateRule{},
		&deadEndStateRule{},
	}

	if factory != nil {
		rules = append(rules, &hookTypeRule{factory: factory})
	}

	return rules
}

// structureRule checks the document has a name and at least one state.
type structureRule struct{}

func (r *structureRule) Name() string {
	return "Structure"
}

func (r *structureRule) Check(doc *statemachine.Document) RuleResult {
	var result RuleResult

	if doc.Name == "" {
		result.Errors = append(result.Errors, Issue{
			Code:    CodeMissingName,
			Message: "Document has no name",
		})
	}

	if len(doc.States) == 0 {
		result.Errors = append(result.Errors, Issue{
			Code:    CodeNoStates,
			Message: "Document declares no states",
		})
	}

	return result
}

// missingInitialRule checks the initial state is set and declared.
type missingInitialRule struct{}

func (r *missingInitialRule) Name() string {
	return "MissingInitial"
}

func (r *missingInitialRule) Check(doc *statemachine.Document) RuleResult {
	if doc.Initial == "" {
		return RuleResult{Errors: []Issue{{
			Code:    CodeMissingInitial,
			Message: "Initial state is not set",
		}}}
	}

	if _, ok := doc.States[doc.Initial]; !ok {
		return RuleResult{Errors: []Issue{{
			Code:     CodeMissingInitial,
			Message:  fmt.Sprintf("Initial state '%s' is not declared", doc.Initial),
			Location: Location{State: doc.Initial},
		}}}
	}

	return RuleResult{}
}

// unknownTargetRule checks every event maps to a declared state.
type unknownTargetRule struct{}

func (r *unknownTargetRule) Name() string {
	return "UnknownTarget"
}

func (r *unknownTargetRule) Check(doc *statemachine.Document) RuleResult {
	var errs []Issue

	for _, name := range sortedStates(doc) {
		on := doc.States[name].On

		for _, event := range sortedEvents(on) {
			if event == "" {
				errs = append(errs, Issue{
					Code:     CodeEmptyEvent,
					Message:  fmt.Sprintf("State '%s' maps an empty event name", name),
					Location: Location{State: name},
				})

				continue
			}

			target := on[event]
			if _, ok := doc.States[target]; !ok {
				errs = append(errs, Issue{
					Code:     CodeUnknownTarget,
					Message:  fmt.Sprintf("Event '%s' in state '%s' targets undeclared state '%s'", event, name, target),
					Location: Location{State: name, Event: event},
				})
			}
		}
	}

	return RuleResult{Errors: errs}
}

// hookTypeRule checks every hook reference can be built by the factory.
type hookTypeRule struct {
	factory *statemachine.HookFactory
}

func (r *hookTypeRule) Name() string {
	return "HookType"
}

func (r *hookTypeRule) Check(doc *statemachine.Document) RuleResult {
	var errs []Issue

	check := func(state, phase string, hook *statemachine.HookConfig) {
		if hook == nil {
			return
		}

		_, err := r.factory.Create(*hook)
		if err != nil {
			errs = append(errs, Issue{
				Code:     CodeUnknownHookType,
				Message:  fmt.Sprintf("%s hook of state '%s': %v", phase, state, err),
				Location: Location{State: state},
			})
		}
	}

	for _, name := range sortedStates(doc) {
		state := doc.States[name]
		check(name, "onEnter", state.OnEnter)
		check(name, "onExit", state.OnExit)
	}

	return RuleResult{Errors: errs}
}

// unreachableStateRule warns about states no event sequence can reach.
type unreachableStateRule struct{}

func (r *unreachableStateRule) Name() string {
	return "UnreachableState"
}

func (r *unreachableStateRule) Check(doc *statemachine.Document) RuleResult {
	if _, ok := doc.States[doc.Initial]; !ok {
		return RuleResult{}
	}

	reachable := map[string]bool{doc.Initial: true}
	queue := []string{doc.Initial}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, target := range doc.States[current].On {
			if _, declared := doc.States[target]; declared && !reachable[target] {
				reachable[target] = true
				queue = append(queue, target)
			}
		}
	}

	var warnings []Issue

	for _, name := range sortedStates(doc) {
		if !reachable[name] {
			warnings = append(warnings, Issue{
				Code:     CodeUnreachableState,
				Message:  fmt.Sprintf("State '%s' cannot be reached from initial state '%s'", name, doc.Initial),
				Location: Location{State: name},
			})
		}
	}

	return RuleResult{Warnings: warnings}
}

// deadEndStateRule warns about states with no outgoing events. A machine
// can only leave them through Reset.
type deadEndStateRule struct{}

func (r *deadEndStateRule) Name() string {
	return "DeadEndState"
}

func (r *deadEndStateRule) Check(doc *statemachine.Document) RuleResult {
	var warnings []Issue

	for _, name := range sortedStates(doc) {
		if len(doc.States[name].On) == 0 {
			warnings = append(warnings, Issue{
				Code:     CodeDeadEndState,
				Message:  fmt.Sprintf("State '%s' has no outgoing events", name),
				Location: Location{State: name},
			})
		}
	}

	return RuleResult{Warnings: warnings}
}
