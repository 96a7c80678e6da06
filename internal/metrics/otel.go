package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	api "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Recorder mirrors Collector's primitives into an external metrics
// backend. Collector calls it on every recording operation so the
// in-process Summary() snapshot and OTel export stay consistent
// without a second code path.
type Recorder interface {
	RecordCounter(name string, value int64, attrs map[string]string)
	RecordHistogram(name string, value float64, attrs map[string]string)
	RecordGauge(name string, value float64, attrs map[string]string)
}

type noopRecorder struct{}

func (noopRecorder) RecordCounter(string, int64, map[string]string)    {}
func (noopRecorder) RecordHistogram(string, float64, map[string]string) {}
func (noopRecorder) RecordGauge(string, float64, map[string]string)     {}

// NoopRecorder discards every recording; the default when no OTel
// wiring is configured.
func NoopRecorder() Recorder { return noopRecorder{} }

// otelRecorder lazily creates one instrument per metric name the first
// time it's recorded, caching it for subsequent calls.
type otelRecorder struct {
	meter      api.Meter
	counters   map[string]api.Int64Counter
	histograms map[string]api.Float64Histogram
	gauges     map[string]api.Float64Gauge
}

// NewOTelRecorder builds a Recorder backed by an OTel meter provider
// with a stdout exporter — no collector dependency, suitable for local
// or offline use (spec's core has no network requirement; this is
// strictly additive export). Returns the recorder and a shutdown func
// the caller should invoke on orchestrator teardown to flush.
func NewOTelRecorder(meterName string) (Recorder, func(context.Context) error, error) {
	exporter, err := stdoutmetric.New(stdoutmetric.WithoutTimestamps())
	if err != nil {
		return nil, nil, fmt.Errorf("metrics: stdout exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	meter := provider.Meter(meterName)

	return &otelRecorder{
		meter:      meter,
		counters:   map[string]api.Int64Counter{},
		histograms: map[string]api.Float64Histogram{},
		gauges:     map[string]api.Float64Gauge{},
	}, provider.Shutdown, nil
}

// NewOTLPRecorder builds a Recorder that pushes metrics to an OTLP/HTTP
// collector endpoint (e.g. an otel-collector sidecar), for deployments
// that want the project's own metrics alongside their existing
// observability stack rather than stdout. endpoint is a host:port pair;
// empty uses the exporter's default (localhost:4318).
func NewOTLPRecorder(ctx context.Context, meterName, endpoint string) (Recorder, func(context.Context) error, error) {
	opts := []otlpmetrichttp.Option{}
	if endpoint != "" {
		opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics: otlp exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	meter := provider.Meter(meterName)

	return &otelRecorder{
		meter:      meter,
		counters:   map[string]api.Int64Counter{},
		histograms: map[string]api.Float64Histogram{},
		gauges:     map[string]api.Float64Gauge{},
	}, provider.Shutdown, nil
}

func (r *otelRecorder) RecordCounter(name string, value int64, attrs map[string]string) {
	c, ok := r.counters[name]
	if !ok {
		var err error
		c, err = r.meter.Int64Counter(name)
		if err != nil {
			return
		}
		r.counters[name] = c
	}
	c.Add(context.Background(), value, api.WithAttributes(attributesOf(attrs)...))
}

func (r *otelRecorder) RecordHistogram(name string, value float64, attrs map[string]string) {
	h, ok := r.histograms[name]
	if !ok {
		var err error
		h, err = r.meter.Float64Histogram(name)
		if err != nil {
			return
		}
		r.histograms[name] = h
	}
	h.Record(context.Background(), value, api.WithAttributes(attributesOf(attrs)...))
}

func (r *otelRecorder) RecordGauge(name string, value float64, attrs map[string]string) {
	g, ok := r.gauges[name]
	if !ok {
		var err error
		g, err = r.meter.Float64Gauge(name)
		if err != nil {
			return
		}
		r.gauges[name] = g
	}
	g.Record(context.Background(), value, api.WithAttributes(attributesOf(attrs)...))
}

func attributesOf(attrs map[string]string) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		out = append(out, attribute.String(k, v))
	}
	return out
}
