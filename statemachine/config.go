package statemachine

import (
	"errors"
	"fmt"
	"sort"

	"facette.io/natsort"
)

// Validate checks that the configuration describes a usable machine: there
// is at least one state, the initial state exists, and every event leads to
// a state that exists. All problems found are joined into one error.
func (c *Config[S, E]) Validate() error {
	if c == nil {
		return ErrConfigRequired
	}

	if len(c.States) == 0 {
		return ErrStateRequired
	}

	var problems []error

	if c.Initial == "" {
		problems = append(problems, ErrInitialStateRequired)
	} else if _, ok := c.States[c.Initial]; !ok {
		problems = append(problems, fmt.Errorf("%w: %s", ErrInitialStateNotFound, c.Initial))
	}

	for _, state := range sortedKeys(c.States) {
		def := c.States[state]

		for _, event := range sortedKeys(def.On) {
			if event == "" {
				problems = append(problems, fmt.Errorf("state %s: %w", state, ErrEventNameRequired))

				continue
			}

			target := def.On[event]
			if _, ok := c.States[target]; !ok {
				problems = append(problems,
					fmt.Errorf("state %s, event %s: %w: %s", state, event, ErrTransitionTargetNotFound, target))
			}
		}
	}

	return errors.Join(problems...)
}

// sortNatural sorts identifiers in natural order ("S2" before "S10").
func sortNatural[T ~string](items []T) {
	sort.Slice(items, func(i, j int) bool {
		return natsort.Compare(string(items[i]), string(items[j]))
	})
}

// sortedKeys returns the keys of m in natural order.
func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sortNatural(keys)

	return keys
}
