package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "dicteeclash"

// Metrics holds every instrument the server records.
type Metrics struct {
	// HTTPRequestDuration is recorded with method, path and status attributes.
	HTTPRequestDuration metric.Float64Histogram
	HTTPRequests        metric.Int64Counter

	// Imports counts document imports by format and status.
	Imports metric.Int64Counter

	// Synthesis counts generated dictations by source (remote or local).
	Synthesis metric.Int64Counter

	// SynthesisFallbacks counts remote requests that ended in local text.
	SynthesisFallbacks metric.Int64Counter

	// TTSRequests counts audio requests by status.
	TTSRequests metric.Int64Counter
}

var latencyBuckets = []float64{
	0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15,
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.HTTPRequestDuration, err = m.Float64Histogram("dicteeclash.http.request.duration",
		metric.WithDescription("HTTP request latency by method, path and status."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequests, err = m.Int64Counter("dicteeclash.http.requests",
		metric.WithDescription("Total HTTP requests by method, path and status."),
	); err != nil {
		return nil, err
	}
	if met.Imports, err = m.Int64Counter("dicteeclash.imports",
		metric.WithDescription("Document imports by format and status."),
	); err != nil {
		return nil, err
	}
	if met.Synthesis, err = m.Int64Counter("dicteeclash.synthesis",
		metric.WithDescription("Generated dictation texts by source."),
	); err != nil {
		return nil, err
	}
	if met.SynthesisFallbacks, err = m.Int64Counter("dicteeclash.synthesis.fallbacks",
		metric.WithDescription("Remote synthesis requests answered with local text."),
	); err != nil {
		return nil, err
	}
	if met.TTSRequests, err = m.Int64Counter("dicteeclash.tts.requests",
		metric.WithDescription("Audio dictation requests by status."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// Noop returns instruments that discard everything. Used when metrics are
// disabled and in tests that do not inspect them.
func Noop() *Metrics {
	m, err := NewMetrics(noop.NewMeterProvider())
	if err != nil {
		panic(err)
	}
	return m
}

// RecordImport counts one import attempt.
func (m *Metrics) RecordImport(ctx context.Context, format, status string) {
	m.Imports.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("status", status),
	))
}

// RecordSynthesis counts one generated text. fallback marks a remote request
// that was served locally.
func (m *Metrics) RecordSynthesis(ctx context.Context, source string, fallback bool) {
	m.Synthesis.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
	if fallback {
		m.SynthesisFallbacks.Add(ctx, 1)
	}
}

// RecordTTS counts one audio request.
func (m *Metrics) RecordTTS(ctx context.Context, status string) {
	m.TTSRequests.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
