package main

import (
	"errors"
	"fmt"

	"github.com/amp-labs/amp-fsm/statemachine"
	"github.com/amp-labs/amp-fsm/statemachine/visualizer"
	"github.com/spf13/cobra"
)

var errMachineNotInFile = errors.New("machine not found in file")

func newGraphCmd() *cobra.Command {
	var (
		machine string
		opts    = visualizer.DefaultOptions()
	)

	cmd := &cobra.Command{
		Use:   "graph FILE",
		Short: "Print a Mermaid state diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := statemachine.LoadDocuments(args[0])
			if err != nil {
				return err
			}

			selected, err := selectDocuments(docs, machine)
			if err != nil {
				return err
			}

			for idx, doc := range selected {
				diagram, err := visualizer.GenerateMermaidWithOptions(doc, opts)
				if err != nil {
					return fmt.Errorf("machine %s: %w", doc.Name, err)
				}

				if idx > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}

				fmt.Fprint(cmd.OutOrStdout(), diagram)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&machine, "machine", "", "only draw the named machine")
	cmd.Flags().StringVar(&opts.Direction, "direction", "", "diagram direction (TB, BT, LR, RL)")
	cmd.Flags().StringVar(&opts.Highlight, "highlight", "", "state to highlight")
	cmd.Flags().BoolVar(&opts.ShowHooks, "hooks", opts.ShowHooks, "annotate states with their hooks")
	cmd.Flags().BoolVar(&opts.Fenced, "fenced", opts.Fenced, "wrap the diagram in a markdown code fence")

	return cmd
}

// selectDocuments returns every document, or only the one called name.
func selectDocuments(docs []*statemachine.Document, name string) ([]*statemachine.Document, error) {
	if name == "" {
		return docs, nil
	}

	for _, doc := range docs {
		if doc.Name == name {
			return []*statemachine.Document{doc}, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", errMachineNotInFile, name)
}
