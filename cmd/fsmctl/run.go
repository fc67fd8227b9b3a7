package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/amp-labs/amp-fsm/cli"
	"github.com/amp-labs/amp-fsm/logger"
	"github.com/amp-labs/amp-fsm/statemachine"
	"github.com/amp-labs/amp-fsm/statemachine/registry"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

// Scripted and interactive commands that are not events.
const (
	resetCommand  = "reset"
	switchCommand = "[switch machine]"
	resetChoice   = "[reset all]"
	quitChoice    = "[quit]"
)

var errEventsRejected = errors.New("some events were rejected")

type runOptions struct {
	machine string
	events  []string
	metrics bool
	verbose bool
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Send events to the machines in a file",
		Long: `Registers every machine in FILE and sends events to one of them.

With --events the events are applied in order and "reset" resets every
machine. Without it, events are chosen interactively.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMachines(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.machine, "machine", "", "machine to drive (default: first in file)")
	cmd.Flags().StringSliceVar(&opts.events, "events", nil, "comma separated events to send; disables prompting")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "print transition metrics when done")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "log every transition")

	return cmd
}

// session holds one run's registry and the machine being driven.
type session struct {
	out      io.Writer
	registry *registry.Registry
	current  statemachine.Instance
}

func runMachines(ctx context.Context, out io.Writer, path string, opts runOptions) error {
	docs, err := statemachine.LoadDocuments(path)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		return fmt.Errorf("%w: %s contains no documents", errMachineNotInFile, path)
	}

	promRegistry := prometheus.NewRegistry()

	machineOpts := []statemachine.Option{
		statemachine.WithMetrics(statemachine.NewMetrics(promRegistry)),
	}

	if opts.verbose {
		machineOpts = append(machineOpts, statemachine.WithLogger(statemachine.NewDefaultLogger()))
	}

	reg := registry.New(machineOpts...)

	err = reg.Load(docs, statemachine.NewHookFactory())
	if err != nil {
		return err
	}

	name := opts.machine
	if name == "" {
		name = docs[0].Name
	}

	instance, err := reg.Lookup(name)
	if err != nil {
		return err
	}

	ctx = logger.With(ctx, "session", uuid.NewString())
	logger.Get(ctx).Debug("session started", "file", path, "machines", reg.Names())

	sess := &session{out: out, registry: reg, current: instance}

	if opts.events != nil {
		err = sess.script(ctx, opts.events)
	} else {
		err = sess.interactive(ctx)
	}

	if opts.metrics {
		metricsErr := writeMetrics(out, promRegistry)
		if metricsErr != nil {
			return errors.Join(err, metricsErr)
		}
	}

	return err
}

// script applies events in order. Rejected events are reported and skipped.
func (s *session) script(ctx context.Context, events []string) error {
	rejected := 0

	s.printStatus()

	for _, event := range events {
		event = strings.TrimSpace(event)
		if event == "" {
			continue
		}

		err := s.apply(ctx, event)
		if err != nil {
			if !errors.Is(err, statemachine.ErrInvalidTransition) {
				return err
			}

			fmt.Fprintf(s.out, "rejected: %v\n", err)

			rejected++

			continue
		}

		s.printStatus()
	}

	if rejected > 0 {
		return fmt.Errorf("%w: %d of %d", errEventsRejected, rejected, len(events))
	}

	return nil
}

func (s *session) apply(ctx context.Context, event string) error {
	if event == resetCommand {
		s.registry.ResetAll()

		return nil
	}

	return s.current.Fire(ctx, event)
}

func (s *session) interactive(ctx context.Context) error {
	for {
		fmt.Fprint(s.out, cli.Banner(ctx, s.status(), cli.DefaultWidth, cli.AlignCenter))

		choices := append(s.current.Events(), resetChoice)
		if s.registry.Len() > 1 {
			choices = append(choices, switchCommand)
		}

		choices = append(choices, quitChoice)

		_, choice, err := cli.Select("Event for "+s.current.Name(), choices...)
		if err != nil {
			if cli.IsInterrupt(err) {
				return nil
			}

			return err
		}

		switch choice {
		case quitChoice:
			return nil
		case resetChoice:
			s.registry.ResetAll()
		case switchCommand:
			err = s.switchMachine()
		default:
			err = s.current.Fire(ctx, choice)
		}

		if err != nil {
			if cli.IsInterrupt(err) {
				return nil
			}

			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

func (s *session) switchMachine() error {
	_, name, err := cli.Select("Machine", s.registry.Names()...)
	if err != nil {
		return err
	}

	instance, err := s.registry.Lookup(name)
	if err != nil {
		return err
	}

	s.current = instance

	return nil
}

func (s *session) status() string {
	previous, ok := s.current.Last()
	if !ok {
		previous = "-"
	}

	return fmt.Sprintf("%s: %s (previous: %s)", s.current.Name(), s.current.Current(), previous)
}

func (s *session) printStatus() {
	fmt.Fprintln(s.out, s.status())
}

func writeMetrics(out io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	for _, family := range families {
		_, err = expfmt.MetricFamilyToText(out, family)
		if err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	return nil
}
