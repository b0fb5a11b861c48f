package observability

import (
	"context"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// SetupTracing installs a global tracer provider that writes spans to stdout.
// The returned function flushes and shuts it down.
func SetupTracing(serviceName string) (func(context.Context) error, error) {
	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize stdouttrace exporter: %w", err)
	}
	provider := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(serviceResource(serviceName)),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}

func serviceResource(serviceName string) *resource.Resource {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return resource.Default()
	}
	return res
}

// Metrics records persona generation through the otel Prometheus exporter
type Metrics struct {
	provider    *metric.MeterProvider
	generated   otelmetric.Int64Counter
	runDuration otelmetric.Float64Histogram
}

// SetupMetrics registers the exporter with reg, or with the default
// Prometheus registry when reg is nil, so promhttp.Handler serves it.
func SetupMetrics(serviceName string, reg promclient.Registerer) (*Metrics, error) {
	var opts []prometheus.Option
	if reg != nil {
		opts = append(opts, prometheus.WithRegisterer(reg))
	}
	exp, err := prometheus.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize prometheus exporter: %w", err)
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(exp),
		metric.WithResource(serviceResource(serviceName)),
	)
	meter := mp.Meter("multiverse-identity")

	generated, err := meter.Int64Counter("personas_generated",
		otelmetric.WithDescription("Personas generated, by universe"))
	if err != nil {
		return nil, err
	}
	runDuration, err := meter.Float64Histogram("persona_run_duration",
		otelmetric.WithDescription("Time to generate a full run of personas"),
		otelmetric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &Metrics{provider: mp, generated: generated, runDuration: runDuration}, nil
}

func (m *Metrics) PersonaGenerated(ctx context.Context, universe string) {
	m.generated.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("theme", universe)))
}

func (m *Metrics) RunCompleted(ctx context.Context, elapsed time.Duration) {
	m.runDuration.Record(ctx, elapsed.Seconds())
}

func (m *Metrics) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}
