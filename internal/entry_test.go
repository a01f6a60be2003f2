package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	nominatim := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !strings.EqualFold(r.URL.Query().Get("q"), "colombo") {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"lat":"6.9271","lon":"79.8612","display_name":"Colombo, Sri Lanka"}]`))
	}))
	t.Cleanup(nominatim.Close)

	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Geocoder.BaseURL = nominatim.URL
	cfg.Geocoder.Timeout = 2 * time.Second
	cfg.Auth = AuthConfig{Mode: AuthModeToken, Token: "secret"}
	cfg.Ledger.DSN = filepath.Join(dir, "ledger.db")
	cfg.Ledger.SignupGrant = 2
	cfg.Archive.Path = filepath.Join(dir, "readings")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := Build(context.Background(), testConfig(t), logger)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	srv := httptest.NewServer(NewHTTPHandler(c, "test"))
	t.Cleanup(func() {
		srv.Close()
		c.Close()
	})
	return srv
}

func do(t *testing.T, method, url, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func TestHealthEndpoints(t *testing.T) {
	srv := testServer(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		resp, body := do(t, http.MethodGet, srv.URL+path, "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status = %d", path, resp.StatusCode)
		}
		var got map[string]string
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatal(err)
		}
		if got["status"] != "ok" || got["version"] != "test" {
			t.Errorf("%s: body = %v", path, got)
		}
	}
}

func TestChartThenReadingEndToEnd(t *testing.T) {
	srv := testServer(t)

	resp, chartBody := do(t, http.MethodPost, srv.URL+"/calculate_charts", "", map[string]string{
		"date": "1990-06-15", "time": "08:30", "place": "Colombo",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("calculate_charts: status = %d, body = %s", resp.StatusCode, chartBody)
	}
	var charts map[string]json.RawMessage
	if err := json.Unmarshal(chartBody, &charts); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"d1_chart", "d9_chart", "astro_details"} {
		if _, ok := charts[k]; !ok {
			t.Errorf("chart response lacks %s", k)
		}
	}

	resp, _ = do(t, http.MethodPost, srv.URL+"/generate_reading", "", charts)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("reading without token: status = %d, want 401", resp.StatusCode)
	}

	resp, readingBody := do(t, http.MethodPost, srv.URL+"/generate_reading", "secret", charts)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate_reading: status = %d, body = %s", resp.StatusCode, readingBody)
	}
	var out struct {
		Reading   string `json:"reading"`
		ReadingID string `json:"reading_id"`
		Balance   int    `json:"balance"`
	}
	if err := json.Unmarshal(readingBody, &out); err != nil {
		t.Fatal(err)
	}
	if out.Reading == "" || out.ReadingID == "" {
		t.Errorf("reading response = %+v", out)
	}
	if out.Balance != 1 {
		t.Errorf("balance = %d, want signup grant minus one", out.Balance)
	}

	resp, page := do(t, http.MethodGet, srv.URL+"/readings", "secret", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(page), out.ReadingID) {
		t.Errorf("readings: status = %d, body = %s", resp.StatusCode, page)
	}
}

func TestUnknownPlaceIsBadRequest(t *testing.T) {
	srv := testServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/calculate_charts", "", map[string]string{
		"date": "1990-06-15", "time": "08:30", "place": "Atlantis",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(string(body), "could not find location") {
		t.Errorf("body = %s", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := testServer(t)

	do(t, http.MethodPost, srv.URL+"/calculate_charts", "", map[string]string{
		"date": "1990-06-15", "time": "08:30", "place": "Colombo",
	})
	resp, body := do(t, http.MethodGet, srv.URL+"/metrics", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `daivaya_charts_computed_total{result="ok"} 1`) {
		t.Errorf("metrics lack chart counter:\n%s", body)
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Fatal("Run without config should fail")
	}
}
