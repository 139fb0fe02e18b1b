// Package metrics wires OpenTelemetry instruments into the Prometheus registry
// served on the metrics endpoint.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// BatchBuckets covers whole-batch durations, which run from milliseconds for a
// handful of rows to several minutes for large uploads.
var BatchBuckets = []float64{.1, .5, 1, 5, 15, 30, 60, 120, 300, 600} //nolint: gochecknoglobals

// Setup registers an OpenTelemetry Prometheus exporter with reg and installs
// a global meter provider backed by it. Instruments created through otel.Meter
// after Setup are exposed alongside the native Prometheus collectors.
func Setup(reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exp),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "verifier.batch.duration"},
			sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: BatchBuckets}},
		)),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "verifier.mx.lookup.duration"},
			sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: DefaultBuckets}},
		)),
	)
	otel.SetMeterProvider(mp)

	return mp, nil
}
