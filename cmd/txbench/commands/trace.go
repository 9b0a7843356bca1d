package commands

import (
	"context"

	"github.com/sirupsen/logrus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// spanLogger writes every finished span to the log, with its attributes as
// fields.
type spanLogger struct {
	logger *logrus.Entry
}

func (s *spanLogger) OnStart(parent context.Context, span sdktrace.ReadWriteSpan) {}

func (s *spanLogger) OnEnd(span sdktrace.ReadOnlySpan) {
	fields := logrus.Fields{
		"span":     span.Name(),
		"duration": span.EndTime().Sub(span.StartTime()),
	}
	if parent := span.Parent(); parent.IsValid() {
		fields["parent"] = parent.SpanID().String()
	}
	for _, kv := range span.Attributes() {
		fields[string(kv.Key)] = kv.Value.Emit()
	}

	entry := s.logger.WithFields(fields)
	if status := span.Status(); status.Description != "" {
		entry.WithField("status", status.Description).Error("Span failed")
		return
	}
	entry.Info("Span")
}

func (s *spanLogger) Shutdown(ctx context.Context) error {
	return nil
}

func (s *spanLogger) ForceFlush(ctx context.Context) error {
	return nil
}

// newTracer returns the tracer the benchmarker records its phases with, and a
// function releasing it. Without --trace spans are dropped.
func newTracer(name string, enabled bool, logger *logrus.Entry) (trace.Tracer, func()) {
	if !enabled {
		return noop.NewTracerProvider().Tracer(name), func() {}
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(&spanLogger{logger: logger.WithField("prefix", "trace")}),
	)

	return provider.Tracer(name), func() {
		_ = provider.Shutdown(context.Background())
	}
}
