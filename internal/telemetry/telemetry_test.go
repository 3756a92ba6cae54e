package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/fjod/go_cart/merchant-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_StdoutExporterWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	tp, shutdown, err := Setup(context.Background(), Options{
		ServiceName: "merchant-api-test",
		Exporter:    config.ExporterStdout,
		Stdout:      &buf,
	})
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "checkout")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"checkout"`)
	assert.Contains(t, buf.String(), "merchant-api-test")
}

func TestSetup_NoneStillProducesValidSpans(t *testing.T) {
	tp, shutdown, err := Setup(context.Background(), Options{ServiceName: "svc", Exporter: config.ExporterNone})
	require.NoError(t, err)
	defer shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "noop")
	defer span.End()
	assert.True(t, span.SpanContext().IsValid())
}

func TestSetup_UnknownExporter(t *testing.T) {
	_, _, err := Setup(context.Background(), Options{Exporter: "zipkin"})
	assert.ErrorContains(t, err, "zipkin")
}

func TestOptionsFrom(t *testing.T) {
	cfg := &config.Config{ServiceName: "merchant-api", OTelExporter: config.ExporterOTLP, OTelEndpoint: "collector:4317"}
	opts := OptionsFrom(cfg, nil)
	assert.Equal(t, Options{ServiceName: "merchant-api", Exporter: config.ExporterOTLP, Endpoint: "collector:4317"}, opts)
}
