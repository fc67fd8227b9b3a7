package main

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/alitto/pond/v2"
	"github.com/amp-labs/amp-fsm/statemachine"
	"github.com/amp-labs/amp-fsm/statemachine/validator"
	"github.com/spf13/cobra"
)

var errValidationFailed = errors.New("validation failed")

func newValidateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check machine documents for errors",
		Long:  `Reports undeclared states, unknown hook types, unreachable states and dead ends for every document in each file.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			opts := validator.Options{
				Factory: statemachine.NewHookFactory(),
				Strict:  strict,
			}

			perFile, err := validateFiles(args, opts)
			if err != nil {
				return err
			}

			failed := 0

			for _, results := range perFile {
				for _, result := range results {
					fmt.Fprint(out, result.String())

					if !result.Valid {
						failed++
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d machine(s) with errors", errValidationFailed, failed)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")

	return cmd
}

// validateFiles validates the files concurrently. Results keep the order of paths.
func validateFiles(paths []string, opts validator.Options) ([][]validator.Result, error) {
	pool := pond.NewResultPool[[]validator.Result](min(len(paths), runtime.NumCPU()))
	defer pool.StopAndWait()

	group := pool.NewGroup()

	for _, path := range paths {
		group.SubmitErr(func() ([]validator.Result, error) {
			return validator.ValidateFile(path, opts)
		})
	}

	return group.Wait()
}
