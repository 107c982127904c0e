package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Provider bundles the meter provider with the HTTP handler serving its Prometheus exposition.
type Provider struct {
	MeterProvider metric.MeterProvider
	Handler       http.Handler

	shutdown func(context.Context) error
}

// Shutdown flushes and stops the meter provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.shutdown == nil {
		return nil
	}
	return p.shutdown(ctx)
}

// NewProvider creates a meter provider exported through a dedicated Prometheus registry.
// When disabled it returns a no-op provider and a handler answering 404.
func NewProvider(enabled bool, logger *slog.Logger) (*Provider, error) {
	if !enabled {
		logger.Info("Metrics disabled, using no-op meter provider")
		return &Provider{
			MeterProvider: noop.NewMeterProvider(),
			Handler:       http.NotFoundHandler(),
		}, nil
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	logger.Info("Metrics initialized", "exporter", "prometheus")

	return &Provider{
		MeterProvider: mp,
		Handler:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		shutdown:      mp.Shutdown,
	}, nil
}
