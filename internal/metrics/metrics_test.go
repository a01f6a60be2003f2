package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()
	m.ChartComputed(true)
	m.ChartComputed(true)
	m.ChartComputed(false)
	m.ReadingGenerated("reading")
	m.CreditsCharged("porondam", 3)
	m.CreditsCharged("porondam", 0)
	m.Failed("generate_reading", "upstream")

	if got := testutil.ToFloat64(m.charts.WithLabelValues("ok")); got != 2 {
		t.Errorf("charts ok = %v", got)
	}
	if got := testutil.ToFloat64(m.charts.WithLabelValues("error")); got != 1 {
		t.Errorf("charts error = %v", got)
	}
	if got := testutil.ToFloat64(m.readings.WithLabelValues("reading")); got != 1 {
		t.Errorf("readings = %v", got)
	}
	if got := testutil.ToFloat64(m.credits.WithLabelValues("porondam")); got != 3 {
		t.Errorf("credits = %v", got)
	}
	if got := testutil.ToFloat64(m.errors.WithLabelValues("generate_reading", "upstream")); got != 1 {
		t.Errorf("errors = %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ChartComputed(true)
	m.ReadingGenerated("reading")
	m.CreditsCharged("pdf", 1)
	m.Failed("x", "y")
	m.Observe("x", 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ChartComputed(true)
	m.Observe("calculate_charts", 0.01)

	srv := httptest.NewServer(m.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{
		`daivaya_charts_computed_total{result="ok"} 1`,
		`daivaya_operation_duration_seconds_count{op="calculate_charts"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("missing %q", want)
		}
	}
}
