// Package metrics records reviewer assignment metrics with OpenTelemetry.
// Without an exporter endpoint the global no-op provider is used.
package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

const name = "github.com/codeGROOVE-dev/random-reviewer/pkg/metrics"

// Metric names.
const (
	Selections    = "reviewer.selections"
	Assigned      = "reviewer.assigned"
	Notifications = "reviewer.notifications"
)

// Init installs a meter provider exporting to the OTLP/HTTP endpoint.
// The returned function flushes and stops the provider.
func Init(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, err
	}

	reader := metric.NewPeriodicReader(exporter)
	res := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName("random-reviewer"))
	provider := metric.NewMeterProvider(metric.WithReader(reader), metric.WithResource(res))

	otel.SetMeterProvider(provider)
	return provider.Shutdown, nil
}

// RecordSelection counts a selection by its outcome.
func RecordSelection(ctx context.Context, outcome string) {
	incrementCounter(ctx, Selections, 1, attribute.String("outcome", outcome))
}

// RecordAssigned counts reviewers assigned to a pull request.
func RecordAssigned(ctx context.Context, n int) {
	incrementCounter(ctx, Assigned, int64(n))
}

// RecordNotification counts notification attempts by status.
func RecordNotification(ctx context.Context, ok bool) {
	status := "sent"
	if !ok {
		status = "failed"
	}
	incrementCounter(ctx, Notifications, 1, attribute.String("status", status))
}

func incrementCounter(ctx context.Context, counterName string, incr int64, attrs ...attribute.KeyValue) {
	meter := otel.GetMeterProvider().Meter(name)
	counter, err := meter.Int64Counter(counterName)
	if err != nil {
		slog.Error("failed to create metric counter", "component", "metrics", "name", counterName, "error", err)
		return
	}
	counter.Add(ctx, incr, otelmetric.WithAttributes(attrs...))
}
