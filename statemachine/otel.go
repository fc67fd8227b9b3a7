package statemachine

import (
	"context"
	"log/slog"

	"github.com/amp-labs/amp-fsm/envutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "statemachine"

// startSendSpan creates the span covering one Send call.
// Uses the global tracer initialized by github.com/amp-labs/amp-fsm/telemetry.
// The caller is responsible for calling finishSpan.
//
//nolint:spancheck // Span lifecycle managed by caller
func startSendSpan(ctx context.Context, machine, from, event string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "statemachine.send")
	span.SetAttributes(
		attribute.String("machine", machine),
		attribute.String("from_state", from),
		attribute.String("event", event),
	)
	logSpanDebug(ctx, "statemachine.send", span)

	return ctx, span
}

// startHookSpan creates a child span for an on-enter or on-exit hook.
//
//nolint:spancheck // Span lifecycle managed by caller
func startHookSpan(ctx context.Context, machine, state, phase string) (context.Context, trace.Span) {
	spanName := "hook." + phase
	ctx, span := otel.Tracer(tracerName).Start(ctx, spanName)
	span.SetAttributes(
		attribute.String("machine", machine),
		attribute.String("state", state),
		attribute.String("phase", phase),
	)
	logSpanDebug(ctx, spanName, span)

	return ctx, span
}

// finishSpan records the outcome and ends the span.
func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "completed")
	}

	span.End()
}

// logSpanDebug logs span creation when FSM_TRACE_DEBUG is set.
func logSpanDebug(ctx context.Context, spanName string, span trace.Span) {
	if !envutil.Bool(ctx, "FSM_TRACE_DEBUG", envutil.Default(false)).ValueOrElse(false) {
		return
	}

	spanCtx := span.SpanContext()
	slog.DebugContext(ctx, "OTEL Span started",
		"span_name", spanName,
		"trace_id", spanCtx.TraceID().String(),
		"span_id", spanCtx.SpanID().String(),
	)
}
