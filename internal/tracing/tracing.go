// Package tracing configures OpenTelemetry for the HTTP server.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/iwvelando/payment-plan"

// Tracer creates spans. It uses the global provider, which is a no-op until
// Init runs.
var Tracer trace.Tracer = otel.Tracer(instrumentationName)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(ctx context.Context) error

// Init installs a tracer provider. Spans go to the OTLP HTTP endpoint when one
// is given and are discarded otherwise.
func Init(ctx context.Context, logger *zap.Logger, serviceName, version, endpoint string) (ShutdownFunc, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdktrace.SpanExporter
	if endpoint != "" {
		exporter, err = otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(endpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		logger.Info("exporting traces over OTLP",
			zap.String("op", "tracing.Init"),
			zap.String("endpoint", endpoint),
		)
	} else {
		exporter = noopExporter{}
		logger.Debug("no tracing endpoint configured, spans are discarded",
			zap.String("op", "tracing.Init"),
		)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	Tracer = tp.Tracer(instrumentationName)

	return tp.Shutdown, nil
}

type noopExporter struct{}

func (noopExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	return nil
}

func (noopExporter) Shutdown(ctx context.Context) error {
	return nil
}
