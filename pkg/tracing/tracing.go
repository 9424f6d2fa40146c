package tracing

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Init installs a global tracer provider that batches spans to stdout.
// Callers own the returned provider and must Shutdown it on exit.
func Init(_ context.Context, service string, log *slog.Logger) (*sdktrace.TracerProvider, error) {
	exp, err := stdouttrace.New()
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	log.Info("tracing initialized", "service", service)
	return tp, nil
}
