package cli

import (
	"errors"
	"os"

	"github.com/manifoldco/promptui"
)

var errEmptyInput = errors.New("you must enter something")

// PromptConfirm asks a yes/no question. Answering no is not an error.
func PromptConfirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
	}

	_, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// PromptString asks for a non-empty line of text.
func PromptString(label string) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Validate: NonEmpty,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
	}

	return prompt.Run()
}

// NonEmpty is a promptui validator that rejects empty input.
func NonEmpty(s string) error {
	if len(s) == 0 {
		return errEmptyInput
	}

	return nil
}

// IsInterrupt reports whether err means the user pressed ctrl-c or ctrl-d.
func IsInterrupt(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF)
}
