package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/mosaicnetworks/txbench/src/common"
	"github.com/mosaicnetworks/txbench/src/metrics"
)

type fixedStats map[string]string

func (f fixedStats) GetStats() map[string]string {
	return f
}

func TestStats(t *testing.T) {
	stats := fixedStats{"phase": "transfer", "tps": "12.50"}
	s := NewService("127.0.0.1:0", stats, nil, common.NewTestEntry(t, common.TestLogLevel))

	server := httptest.NewServer(s.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json, got %s", ct)
	}

	var res map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(res, map[string]string(stats)) {
		t.Fatalf("expected %v, got %v", stats, res)
	}
}

func TestMetrics(t *testing.T) {
	counter := metrics.NewPrometheusCounter()
	counter.Inc("submit_txns.Accepted")

	s := NewService("127.0.0.1:0", fixedStats{}, counter.Handler(), common.NewTestEntry(t, common.TestLogLevel))

	server := httptest.NewServer(s.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), `txbench_ops_total{op="submit_txns.Accepted"} 1`) {
		t.Fatalf("metrics output does not contain the counter:\n%s", body)
	}
}

func TestNoMetrics(t *testing.T) {
	s := NewService("127.0.0.1:0", fixedStats{}, nil, common.NewTestEntry(t, common.TestLogLevel))

	server := httptest.NewServer(s.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 without a metrics handler, got %d", resp.StatusCode)
	}
}
