// Package cli holds small terminal helpers for interactive commands.
package cli

import (
	"errors"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrNoChoices is returned by Select when there is nothing to choose from.
var ErrNoChoices = errors.New("no choices available")

// Select shows choices in order and returns the picked index and value.
// Typing filters the list by prefix.
func Select(label string, choices ...string) (int, string, error) {
	if len(choices) == 0 {
		return -1, "", ErrNoChoices
	}

	sel := &promptui.Select{
		Label: label,
		Items: choices,
		Size:  min(len(choices), maxVisibleChoices),
		Searcher: func(input string, index int) bool {
			return strings.HasPrefix(strings.ToLower(choices[index]), strings.ToLower(input))
		},
	}

	return sel.Run()
}

const maxVisibleChoices = 10
