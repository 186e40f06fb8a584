// Package telemetry installs the OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/nonibytes/patientstore/internal/config"
)

const tracerName = "github.com/nonibytes/patientstore"

// Shutdown flushes and stops the installed provider.
type Shutdown func(context.Context) error

func noop(context.Context) error { return nil }

// Setup installs a global tracer provider and the W3C propagators. With
// tracing disabled or exporter "none" it returns a no-op Shutdown. Spans are
// written to w, or stdout when w is nil.
func Setup(ctx context.Context, cfg config.TracingConfig, w io.Writer, log *zap.Logger) (Shutdown, error) {
	if !cfg.Enabled || cfg.Exporter == "none" {
		return noop, nil
	}
	if w == nil {
		w = os.Stdout
	}

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("resource init: %w", err)
	}

	opts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if cfg.Pretty {
		opts = append(opts, stdouttrace.WithPrettyPrint())
	}
	exp, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("trace exporter init: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info("tracing started",
		zap.String("exporter", cfg.Exporter),
		zap.Float64("sample_ratio", cfg.SampleRatio),
		zap.String("service_name", cfg.ServiceName),
	)

	return func(c context.Context) error {
		c2, cancel := context.WithTimeout(c, 5*time.Second)
		defer cancel()
		return tp.Shutdown(c2)
	}, nil
}

// Tracer returns the service tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// TraceID returns the hex trace id of the span in ctx, or "".
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
