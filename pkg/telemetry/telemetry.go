// Package telemetry configures OpenTelemetry tracing and metrics.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/abgdnv/observatory/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// Providers holds the installed providers. Shutdown flushes and stops them.
type Providers struct {
	tracer *tracesdk.TracerProvider
	meter  *sdkmetric.MeterProvider
	// MetricsHandler serves the Prometheus exposition format. Nil when metrics are disabled.
	MetricsHandler http.Handler
}

// Setup installs global tracer and meter providers according to cfg.
// Disabled signals fall back to the OpenTelemetry no-op implementations.
func Setup(ctx context.Context, serviceName string, cfg config.TelemetryConfig) (*Providers, error) {
	p := &Providers{}
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)
	if cfg.Traces.Enabled {
		tp, err := NewTracerProvider(ctx, res, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create tracer provider: %w", err)
		}
		p.tracer = tp
	}
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		mp, err := NewMeterProvider(res, registry)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("failed to create meter provider: %w", err), p.Shutdown(ctx))
		}
		p.meter = mp
		p.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}
	return p, nil
}

// NewTracerProvider creates an OTLP/HTTP tracer provider and installs it globally.
func NewTracerProvider(ctx context.Context, res *resource.Resource, cfg config.TelemetryConfig) (*tracesdk.TracerProvider, error) {
	collectorOpts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Traces.OtlpHttp.Endpoint),
		otlptracehttp.WithTimeout(cfg.Traces.OtlpHttp.Timeout),
	}
	if cfg.Traces.OtlpHttp.Insecure {
		collectorOpts = append(collectorOpts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(ctx, collectorOpts...)
	if err != nil {
		return nil, err
	}
	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exporter),
		tracesdk.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp, nil
}

// NewMeterProvider creates a meter provider exporting to registry and installs it globally.
func NewMeterProvider(res *resource.Resource, registry *prometheus.Registry) (*sdkmetric.MeterProvider, error) {
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, err
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	return mp, nil
}

// Shutdown flushes pending telemetry and releases the providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	if p.tracer != nil {
		errs = append(errs, p.tracer.Shutdown(ctx))
	}
	if p.meter != nil {
		errs = append(errs, p.meter.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
