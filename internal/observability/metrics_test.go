package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestMiddlewareRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewSceneCollector(reg)
	if err != nil {
		t.Fatalf("NewSceneCollector: %v", err)
	}

	handler := collector.Middleware("scene", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/scene", nil))

	if got := testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("scene", "GET", "200")); got != 1 {
		t.Fatalf("scene_http_requests_total = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "scene_http_request_duration_seconds", map[string]string{
		"handler": "scene",
		"method":  "GET",
	}); count != 1 {
		t.Fatalf("scene_http_request_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestMiddlewareRecordsErrorStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewSceneCollector(reg)
	if err != nil {
		t.Fatalf("NewSceneCollector: %v", err)
	}

	handler := collector.Middleware("surface", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad wind speed", http.StatusBadRequest)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/surface", nil))

	if got := testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("surface", "GET", "400")); got != 1 {
		t.Fatalf("scene_http_requests_total error label = %v, want 1", got)
	}
}

func TestMetricsHandlerExposesCatalogGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewSceneCollector(reg)
	if err != nil {
		t.Fatalf("NewSceneCollector: %v", err)
	}
	collector.SetCatalogSize(2)
	collector.HTTPRequests.WithLabelValues("scene", "GET", "200").Inc()
	collector.HTTPDurations.WithLabelValues("scene", "GET").Observe(0.01)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"scene_http_requests_total",
		"scene_http_request_duration_seconds",
		"catalog_spacecraft",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
	if !strings.Contains(body, "catalog_spacecraft 2") {
		t.Fatalf("/metrics output missing catalog gauge value: %s", body)
	}
}

func TestEphemCollectorObservations(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewEphemCollector(reg)
	if err != nil {
		t.Fatalf("NewEphemCollector: %v", err)
	}

	collector.ObserveFetch("horizons", "psp", OutcomeOK, 120*time.Millisecond)
	collector.ObserveFetch("cdaweb", "mms1", OutcomeError, 30*time.Millisecond)
	collector.ObserveCompute("parker", 2*time.Millisecond)
	collector.IncScenes()

	if got := testutil.ToFloat64(collector.FetchesTotal.WithLabelValues("horizons", "psp", OutcomeOK)); got != 1 {
		t.Fatalf("ephem_fetches_total ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.FetchesTotal.WithLabelValues("cdaweb", "mms1", OutcomeError)); got != 1 {
		t.Fatalf("ephem_fetches_total error = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "ephem_fetch_duration_seconds", map[string]string{
		"source": "horizons",
	}); count != 1 {
		t.Fatalf("ephem_fetch_duration_seconds sample_count = %d, want 1", count)
	}
	if count := histogramSampleCount(t, reg, "surface_compute_duration_seconds", map[string]string{
		"model": "parker",
	}); count != 1 {
		t.Fatalf("surface_compute_duration_seconds sample_count = %d, want 1", count)
	}
	if got := testutil.ToFloat64(collector.ScenesTotal); got != 1 {
		t.Fatalf("scenes_built_total = %v, want 1", got)
	}
}

// Registering twice against one registry must hand back the existing
// collectors instead of failing.
func TestCollectorsReRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewSceneCollector(reg)
	if err != nil {
		t.Fatalf("first NewSceneCollector: %v", err)
	}
	second, err := NewSceneCollector(reg)
	if err != nil {
		t.Fatalf("second NewSceneCollector: %v", err)
	}
	if first.HTTPRequests != second.HTTPRequests {
		t.Fatalf("re-registration returned a different counter vec")
	}

	if _, err := NewEphemCollector(reg); err != nil {
		t.Fatalf("first NewEphemCollector: %v", err)
	}
	if _, err := NewEphemCollector(reg); err != nil {
		t.Fatalf("second NewEphemCollector: %v", err)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
