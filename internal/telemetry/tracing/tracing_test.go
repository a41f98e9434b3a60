package tracing

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestEndSpanWithErrCheck(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	_, ok := tracer.Start(context.Background(), "ok")
	EndSpanWithErrCheck(ok, nil)
	_, failed := tracer.Start(context.Background(), "failed")
	EndSpanWithErrCheck(failed, errors.New("boom"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Empty(t, spans[0].Events())
	assert.Equal(t, "boom", spans[1].Status().Description)
	require.Len(t, spans[1].Events(), 1)
}

func TestSetupDisabledIsNoop(t *testing.T) {
	before := otel.GetTracerProvider()
	shutdown, err := Setup(false, "test", &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, before, otel.GetTracerProvider())
	assert.NoError(t, shutdown(context.Background()))
}
