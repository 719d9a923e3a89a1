package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"matchcast-backend/lib/configutil"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// exporterConfig points at an otlp collector, an empty endpoint disables
// exporting for that signal.
type exporterConfig struct {
	Endpoint string `json:"endpoint"`
	// "grpc" (default) or "http"
	Protocol string            `json:"protocol"`
	Headers  map[string]string `json:"headers"`
}

func (c exporterConfig) protocol() (string, error) {
	switch c.Protocol {
	case "", "grpc":
		return "grpc", nil
	case "http":
		return "http", nil
	default:
		return "", fmt.Errorf("unknown otlp protocol %q", c.Protocol)
	}
}

// config is the shape of telemetry.json5.
type config struct {
	// reported as deployment.environment, ex. "dev"
	Environment string         `json:"environment"`
	Traces      exporterConfig `json:"traces"`
	Metrics     exporterConfig `json:"metrics"`
	// fraction of root traces kept, 0 keeps all of them
	SampleRatio    float64             `json:"sample_ratio"`
	MetricInterval configutil.Duration `json:"metric_interval"`
}

const exporterConnectTimeout = time.Second * 3

func newResource(serviceName string, c config) (*resource.Resource, error) {
	attrs := []resource.Option{
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	}
	if c.Environment != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.DeploymentEnvironment(c.Environment)))
	}
	custom, err := resource.New(context.Background(), attrs...)
	if err != nil {
		return nil, err
	}
	return resource.Merge(resource.Default(), custom)
}

func newTraceProvider(ctx context.Context, r *resource.Resource, c config) (*trace.TracerProvider, error) {
	opts := []trace.TracerProviderOption{trace.WithResource(r)}
	if c.SampleRatio > 0 && c.SampleRatio < 1 {
		opts = append(opts, trace.WithSampler(
			trace.ParentBased(trace.TraceIDRatioBased(c.SampleRatio)),
		))
	}
	if c.Traces.Endpoint == "" {
		slog.Debug("no trace exporter configured")
		return trace.NewTracerProvider(opts...), nil
	}

	exporter, err := newSpanExporter(ctx, c.Traces)
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}
	opts = append(opts, trace.WithBatcher(exporter))
	return trace.NewTracerProvider(opts...), nil
}

func newSpanExporter(ctx context.Context, c exporterConfig) (trace.SpanExporter, error) {
	protocol, err := c.protocol()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, exporterConnectTimeout)
	defer cancel()

	slog.Info("exporting traces", "protocol", protocol, "endpoint", c.Endpoint)
	if protocol == "http" {
		return otlptracehttp.New(
			ctx,
			otlptracehttp.WithEndpointURL(c.Endpoint),
			otlptracehttp.WithHeaders(c.Headers),
		)
	}
	return otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpointURL(c.Endpoint),
		otlptracegrpc.WithHeaders(c.Headers),
	)
}

func newMeterProvider(ctx context.Context, r *resource.Resource, c config) (*metric.MeterProvider, error) {
	if c.Metrics.Endpoint == "" {
		slog.Debug("no metric exporter configured")
		return metric.NewMeterProvider(metric.WithResource(r)), nil
	}

	exporter, err := newMetricExporter(ctx, c.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}
	reader := metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(c.MetricInterval.Or(time.Second*15)),
	)
	return metric.NewMeterProvider(
		metric.WithReader(reader),
		metric.WithResource(r),
	), nil
}

func newMetricExporter(ctx context.Context, c exporterConfig) (metric.Exporter, error) {
	protocol, err := c.protocol()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, exporterConnectTimeout)
	defer cancel()

	slog.Info("exporting metrics", "protocol", protocol, "endpoint", c.Endpoint)
	if protocol == "http" {
		return otlpmetrichttp.New(
			ctx,
			otlpmetrichttp.WithEndpointURL(c.Endpoint),
			otlpmetrichttp.WithHeaders(c.Headers),
		)
	}
	return otlpmetricgrpc.New(
		ctx,
		otlpmetricgrpc.WithEndpointURL(c.Endpoint),
		otlpmetricgrpc.WithHeaders(c.Headers),
	)
}
