package statemachine

import (
	"context"
	"log/slog"
	"time"

	"github.com/amp-labs/amp-fsm/logger"
)

// Logger is notified about what a machine does. It is purely observational:
// errors are always returned to the caller whether or not a Logger is set.
type Logger interface {
	TransitionRejected(ctx context.Context, machine, state, event string)
	StateExited(ctx context.Context, machine, state string, duration time.Duration, err error)
	TransitionExecuted(ctx context.Context, machine, from, event, to string)
	StateEntered(ctx context.Context, machine, state string, duration time.Duration, err error)
	MachineReset(ctx context.Context, machine, from, to string)
}

// DefaultLogger implements Logger using slog.
type DefaultLogger struct {
	logger *slog.Logger
}

// NewDefaultLogger creates a logger that writes through logger.Get, so the
// subsystem and any values attached with logger.With are included.
func NewDefaultLogger() *DefaultLogger {
	return &DefaultLogger{}
}

// NewSlogLogger creates a logger that writes to l.
func NewSlogLogger(l *slog.Logger) *DefaultLogger {
	return &DefaultLogger{
		logger: l,
	}
}

func (l *DefaultLogger) get(ctx context.Context) *slog.Logger {
	if l.logger != nil {
		return l.logger
	}

	return logger.Get(ctx)
}

func (l *DefaultLogger) TransitionRejected(ctx context.Context, machine, state, event string) {
	l.get(ctx).WarnContext(ctx, "Transition rejected",
		"machine", machine,
		"state", state,
		"event", event,
	)
}

func (l *DefaultLogger) StateExited(ctx context.Context, machine, state string, duration time.Duration, err error) {
	l.hookFinished(ctx, "State exited", machine, state, duration, err)
}

func (l *DefaultLogger) TransitionExecuted(ctx context.Context, machine, from, event, to string) {
	l.get(ctx).InfoContext(ctx, "Transition executed",
		"machine", machine,
		"from", from,
		"event", event,
		"to", to,
	)
}

func (l *DefaultLogger) StateEntered(ctx context.Context, machine, state string, duration time.Duration, err error) {
	l.hookFinished(ctx, "State entered", machine, state, duration, err)
}

func (l *DefaultLogger) MachineReset(ctx context.Context, machine, from, to string) {
	l.get(ctx).InfoContext(ctx, "Machine reset",
		"machine", machine,
		"from", from,
		"to", to,
	)
}

func (l *DefaultLogger) hookFinished(
	ctx context.Context,
	msg, machine, state string,
	duration time.Duration,
	err error,
) {
	fields := []any{
		"machine", machine,
		"state", state,
		"duration_ms", duration.Milliseconds(),
	}

	if err != nil {
		l.get(ctx).ErrorContext(ctx, msg+" with error", append(fields, "error", err)...)
	} else {
		l.get(ctx).DebugContext(ctx, msg, fields...)
	}
}
