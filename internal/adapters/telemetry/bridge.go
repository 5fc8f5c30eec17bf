package telemetry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/thingsgate/internal/core/ports"
)

// Bridge implements sdktrace.SpanProcessor and writes every ended span as a log line.
type Bridge struct {
	logger ports.Logger
}

// NewBridge returns a new Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// OnStart is called when a span starts.
func (b *Bridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd is called when a span ends.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || !s.SpanContext().IsValid() {
		return
	}

	attrs := make([]string, 0, len(s.Attributes()))
	for _, kv := range s.Attributes() {
		attrs = append(attrs, string(kv.Key)+"="+kv.Value.Emit())
	}
	sort.Strings(attrs)

	line := fmt.Sprintf("trace %s %s", s.Name(), s.EndTime().Sub(s.StartTime()))
	if len(attrs) > 0 {
		line += " " + strings.Join(attrs, " ")
	}
	if s.Status().Code == codes.Error {
		line += " error=" + s.Status().Description
		b.logger.Warn(line)
		return
	}
	b.logger.Info(line)
}

// Shutdown is called when the SDK shuts down.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

// ForceFlush exports all ended spans that have not yet been exported.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Install registers a global tracer provider that feeds the bridge.
// The returned function shuts the provider down.
func Install(logger ports.Logger) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewBridge(logger)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}
