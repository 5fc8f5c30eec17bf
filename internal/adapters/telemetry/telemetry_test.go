package telemetry_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/thingsgate/internal/adapters/telemetry"
	"go.trai.ch/thingsgate/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func setupMonitor(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return sr
}

func TestOTelTracer_RecordsAttributes(t *testing.T) {
	sr := setupMonitor(t)
	tracer := telemetry.NewOTelTracer("test-tracer")

	_, span := tracer.Start(context.Background(), "cache.execute")
	span.SetAttribute("operation", "list_devices")
	span.SetAttribute("cache.hit", true)
	span.SetAttribute("size", 3)
	span.SetAttribute("total", int64(7))
	span.SetAttribute("rate", 66.67)
	span.SetAttribute("targets", []string{"a", "b"})
	span.SetAttribute("other", struct{ N int }{N: 1})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "cache.execute", spans[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "list_devices", attrs["operation"].AsString())
	assert.True(t, attrs["cache.hit"].AsBool())
	assert.Equal(t, int64(3), attrs["size"].AsInt64())
	assert.Equal(t, int64(7), attrs["total"].AsInt64())
	assert.InDelta(t, 66.67, attrs["rate"].AsFloat64(), 0.0001)
	assert.Equal(t, []string{"a", "b"}, attrs["targets"].AsStringSlice())
	assert.Equal(t, "{1}", attrs["other"].AsString())
}

func TestOTelTracer_RecordError(t *testing.T) {
	sr := setupMonitor(t)
	tracer := telemetry.NewOTelTracer("test-tracer")

	_, span := tracer.Start(context.Background(), "cache.execute")
	span.RecordError(errors.New("upstream down"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "upstream down", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestNoOpTracer(t *testing.T) {
	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	got, span := tracer.Start(ctx, "noop")
	assert.Equal(t, ctx, got)
	assert.NotPanics(t, func() {
		span.SetAttribute("k", "v")
		span.RecordError(errors.New("ignored"))
		span.End()
	})
}

func TestBridge_LogsEndedSpans(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	var infos, warns []string
	log.EXPECT().Info(gomock.Any()).Do(func(msg string) { infos = append(infos, msg) })
	log.EXPECT().Warn(gomock.Any()).Do(func(msg string) { warns = append(warns, msg) })

	tp := trace.NewTracerProvider(trace.WithSpanProcessor(telemetry.NewBridge(log)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, ok := tp.Tracer("test").Start(context.Background(), "cache.execute")
	ok.SetAttributes(attribute.String("operation", "get_device"), attribute.Bool("cache.hit", true))
	ok.End()

	_, failed := tp.Tracer("test").Start(context.Background(), "cache.execute")
	failed.SetStatus(codes.Error, "boom")
	failed.End()

	require.Len(t, infos, 1)
	assert.True(t, strings.HasPrefix(infos[0], "trace cache.execute "))
	assert.Contains(t, infos[0], "cache.hit=true operation=get_device")

	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "error=boom")
}

func TestInstall_RegistersGlobalProvider(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).Times(1)

	prev := otel.GetTracerProvider()
	shutdown := telemetry.Install(log)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := telemetry.NewOTelTracer("test").Start(context.Background(), "noop-check")
	span.End()

	require.NoError(t, shutdown(context.Background()))
}
