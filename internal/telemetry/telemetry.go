// Package telemetry installs the global OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"fmt"
	"io"

	"github.com/fjod/go_cart/merchant-api/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceVersion = "1.0.0"

// ShutdownFunc flushes pending spans and releases the exporter.
type ShutdownFunc func(context.Context) error

// Options selects the exporter. Stdout is only used by the stdout exporter.
type Options struct {
	ServiceName string
	Exporter    string
	Endpoint    string
	Stdout      io.Writer
}

// OptionsFrom maps service configuration onto telemetry options.
func OptionsFrom(cfg *config.Config, stdout io.Writer) Options {
	return Options{
		ServiceName: cfg.ServiceName,
		Exporter:    cfg.OTelExporter,
		Endpoint:    cfg.OTelEndpoint,
		Stdout:      stdout,
	}
}

// Setup builds a tracer provider, registers it globally together with the
// W3C trace context propagator and returns its shutdown function.
func Setup(ctx context.Context, opts Options) (*sdktrace.TracerProvider, ShutdownFunc, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", opts.ServiceName),
		attribute.String("service.version", serviceVersion),
	)

	providerOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	switch opts.Exporter {
	case config.ExporterNone, "":
		// spans are still created so trace ids reach the logs
	case config.ExporterStdout:
		w := opts.Stdout
		if w == nil {
			w = io.Discard
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	case config.ExporterOTLP:
		exporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(opts.Endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	default:
		return nil, nil, fmt.Errorf("unknown trace exporter %q", opts.Exporter)
	}

	tp := sdktrace.NewTracerProvider(providerOpts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp, tp.Shutdown, nil
}
