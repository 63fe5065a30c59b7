package observe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// counterValue sums the data points of name whose attributes include every kv.
func counterValue(t *testing.T, rm metricdata.ResourceMetrics, name string, kvs ...attribute.KeyValue) int64 {
	t.Helper()
	m := findMetric(rm, name)
	if m == nil {
		t.Fatalf("metric %q not found", name)
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %q is %T, want Sum[int64]", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		match := true
		for _, kv := range kvs {
			v, found := dp.Attributes.Value(kv.Key)
			if !found || v != kv.Value {
				match = false
				break
			}
		}
		if match {
			total += dp.Value
		}
	}
	return total
}

func TestNewMetricsCreatesWithoutError(t *testing.T) {
	m, _ := newTestMetrics(t)
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
}

func TestRecordHelpers(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordImport(ctx, "docx", "ok")
	m.RecordImport(ctx, "docx", "ok")
	m.RecordImport(ctx, "pdf", "invalid")
	m.RecordSynthesis(ctx, "remote", false)
	m.RecordSynthesis(ctx, "local", true)
	m.RecordSynthesis(ctx, "local", false)
	m.RecordTTS(ctx, "ok")

	rm := collect(t, reader)

	tests := []struct {
		name   string
		metric string
		attrs  []attribute.KeyValue
		want   int64
	}{
		{"docx imports", "dicteeclash.imports", []attribute.KeyValue{attribute.String("format", "docx"), attribute.String("status", "ok")}, 2},
		{"invalid pdf", "dicteeclash.imports", []attribute.KeyValue{attribute.String("format", "pdf"), attribute.String("status", "invalid")}, 1},
		{"all imports", "dicteeclash.imports", nil, 3},
		{"remote texts", "dicteeclash.synthesis", []attribute.KeyValue{attribute.String("source", "remote")}, 1},
		{"local texts", "dicteeclash.synthesis", []attribute.KeyValue{attribute.String("source", "local")}, 2},
		{"fallbacks", "dicteeclash.synthesis.fallbacks", nil, 1},
		{"tts", "dicteeclash.tts.requests", []attribute.KeyValue{attribute.String("status", "ok")}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := counterValue(t, rm, tt.metric, tt.attrs...); got != tt.want {
				t.Errorf("%s = %d, want %d", tt.metric, got, tt.want)
			}
		})
	}
}

func TestMiddlewareRecordsPattern(t *testing.T) {
	m, reader := newTestMetrics(t)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/lists/{code}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	handler := Middleware(m)(mux)

	for _, path := range []string{"/api/lists/ABC123", "/api/lists/XYZ789", "/nowhere"} {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	}

	rm := collect(t, reader)

	if got := counterValue(t, rm, "dicteeclash.http.requests",
		attribute.String("path", "GET /api/lists/{code}"),
		attribute.String("status", "404"),
	); got != 2 {
		t.Errorf("pattern requests = %d, want 2", got)
	}
	if got := counterValue(t, rm, "dicteeclash.http.requests", attribute.String("path", "unmatched")); got != 1 {
		t.Errorf("unmatched requests = %d, want 1", got)
	}

	hist := findMetric(rm, "dicteeclash.http.request.duration")
	if hist == nil {
		t.Fatal("duration histogram not found")
	}
	data, ok := hist.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("duration is %T, want Histogram[float64]", hist.Data)
	}
	var count uint64
	for _, dp := range data.DataPoints {
		count += dp.Count
	}
	if count != 3 {
		t.Errorf("histogram count = %d, want 3", count)
	}
}

func TestNoopDiscards(t *testing.T) {
	m := Noop()
	m.RecordImport(context.Background(), "txt", "ok")
	m.RecordTTS(context.Background(), "error")
}
