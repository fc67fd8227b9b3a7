package main

import (
	"fmt"

	"github.com/amp-labs/amp-fsm/envutil"
	"github.com/amp-labs/amp-fsm/logger"
	"github.com/amp-labs/amp-fsm/telemetry"
	"github.com/spf13/cobra"
)

const appName = "fsmctl"

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           appName,
		Short:         "Work with declarative state machines",
		Long:          `fsmctl loads state machine documents from YAML, checks them, renders them as Mermaid diagrams and runs events through them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var opts []logger.Option

			if logLevel != "" {
				level, err := envutil.ParseSlogLevel(logLevel)
				if err != nil {
					return fmt.Errorf("--log-level: %w", err)
				}

				opts = append(opts, logger.WithMinLevel(level))
			}

			_, err := logger.ConfigureLogging(ctx, appName, opts...)
			if err != nil {
				return err
			}

			config, err := telemetry.LoadConfigFromEnv(ctx, envutil.String(ctx, "FSM_ENV").ValueOrElse("local"))
			if err != nil {
				return err
			}

			handler, err := telemetry.Initialize(ctx, config)
			if err != nil {
				return err
			}

			if handler != nil {
				_, err = logger.ConfigureLogging(ctx, appName, append(opts, logger.WithTee(handler))...)
				if err != nil {
					return err
				}
			}

			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return telemetry.Shutdown(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"minimum log level (debug, info, warn, error); overrides LOG_LEVEL")

	root.AddCommand(newValidateCmd(), newGraphCmd(), newRunCmd())

	return root
}
