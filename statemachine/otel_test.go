package statemachine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer creates a test tracer with an in-memory exporter.
func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
	)

	oldProvider := otel.GetTracerProvider()

	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		otel.SetTracerProvider(oldProvider)
	})

	return exporter
}

func spanAttr(span tracetest.SpanStub, key string) string {
	for _, kv := range span.Attributes {
		if kv.Key == attribute.Key(key) {
			return kv.Value.AsString()
		}
	}

	return ""
}

// Cannot use t.Parallel() because setupTestTracer modifies the global tracer provider.
//
//nolint:paralleltest
func TestSendSpans(t *testing.T) {
	exporter := setupTestTracer(t)

	errEnter := errors.New("enter failed")

	machine, err := NewBuilder[string, string]("idle").
		Transition("idle", "START", "running").
		OnExit("idle", func(context.Context) error { return nil }).
		OnEnter("running", func(context.Context) error { return errEnter }).
		Machine(WithName("job"))
	require.NoError(t, err)

	require.ErrorIs(t, machine.Send(t.Context(), "START"), errEnter)

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)

	// Children end first.
	exitSpan, enterSpan, sendSpan := spans[0], spans[1], spans[2]

	assert.Equal(t, "hook.exit", exitSpan.Name)
	assert.Equal(t, "idle", spanAttr(exitSpan, "state"))
	assert.Equal(t, codes.Ok, exitSpan.Status.Code)

	assert.Equal(t, "hook.enter", enterSpan.Name)
	assert.Equal(t, "running", spanAttr(enterSpan, "state"))
	assert.Equal(t, codes.Error, enterSpan.Status.Code)

	assert.Equal(t, "statemachine.send", sendSpan.Name)
	assert.Equal(t, "job", spanAttr(sendSpan, "machine"))
	assert.Equal(t, "idle", spanAttr(sendSpan, "from_state"))
	assert.Equal(t, "START", spanAttr(sendSpan, "event"))
	assert.Equal(t, codes.Error, sendSpan.Status.Code)

	assert.Equal(t, sendSpan.SpanContext.SpanID(), exitSpan.Parent.SpanID())
	assert.Equal(t, sendSpan.SpanContext.SpanID(), enterSpan.Parent.SpanID())
}

//nolint:paralleltest // Modifies the global tracer provider
func TestRejectedSendSpan(t *testing.T) {
	exporter := setupTestTracer(t)

	machine := MustNew(&Config[string, string]{
		Initial: "idle",
		States:  map[string]StateDefinition[string, string]{"idle": {}},
	})

	require.ErrorIs(t, machine.Send(t.Context(), "START"), ErrInvalidTransition)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	require.Len(t, spans[0].Events, 1, "the error is recorded as a span event")
}
