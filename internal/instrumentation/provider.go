package instrumentation

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"net/http"
)

// Provider owns the OpenTelemetry meter provider and its Prometheus
// exporter.
type Provider struct {
	config        Config
	meterProvider *metric.MeterProvider
	metrics       *Metrics
	enabled       bool
}

// NewProvider creates the metrics provider. A disabled config yields a
// provider whose Metrics recorder is a no-op.
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	if !config.Enabled {
		return &Provider{config: config, metrics: &Metrics{}}, nil
	}

	resourceAttrs := []attribute.KeyValue{
		semconv.ServiceName(config.ServiceName),
		semconv.ServiceVersion(config.ServiceVersion),
	}
	if hostname, err := os.Hostname(); err == nil {
		resourceAttrs = append(resourceAttrs, semconv.ServiceInstanceID(hostname))
	}
	res, err := resource.New(ctx, resource.WithAttributes(resourceAttrs...))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// The Prometheus exporter doubles as the metric reader.
	promExporter, err := otelprom.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(promExporter),
	)
	otel.SetMeterProvider(mp)

	metrics, err := NewMetrics(mp.Meter(config.ServiceName))
	if err != nil {
		if shutdownErr := mp.Shutdown(ctx); shutdownErr != nil {
			err = fmt.Errorf("%w (meter provider shutdown also failed: %v)", err, shutdownErr)
		}
		return nil, fmt.Errorf("failed to create metrics recorder: %w", err)
	}

	return &Provider{
		config:        config,
		meterProvider: mp,
		metrics:       metrics,
		enabled:       true,
	}, nil
}

// Metrics returns the metrics recorder. Never nil.
func (p *Provider) Metrics() *Metrics {
	return p.metrics
}

// Enabled reports whether metrics collection is active.
func (p *Provider) Enabled() bool {
	return p.enabled
}

// Handler returns the HTTP handler serving the Prometheus scrape
// endpoint, or nil when the provider is disabled.
func (p *Provider) Handler() http.Handler {
	if !p.enabled {
		return nil
	}
	return promhttp.Handler()
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.enabled || p.meterProvider == nil {
		return nil
	}
	return p.meterProvider.Shutdown(ctx)
}
