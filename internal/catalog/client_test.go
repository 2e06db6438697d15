package catalog

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leecookson/cookson-pro-api/internal/apperr"
	"github.com/leecookson/cookson-pro-api/internal/astro"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func newTestClient(baseURL string) *Client {
	return NewClient(Config{BaseURL: baseURL}, testCreds, testLogger())
}

func TestClientSearch(t *testing.T) {
	var gotReq *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"name":"Orion Nebula","type":"Nebula"}],"metadata":{"total":1}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	result, err := c.Search(context.Background(), astro.TermSearch{Term: "Orion"})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Data) != 1 {
		t.Errorf("len(Data) = %d, want 1", len(result.Data))
	}
	if gotReq.URL.Path != "/search" {
		t.Errorf("path = %q, want /search", gotReq.URL.Path)
	}
	if got := gotReq.URL.Query().Get("term"); got != "Orion" {
		t.Errorf("term = %q, want Orion", got)
	}
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("app-id:app-secret"))
	if got := gotReq.Header.Get("Authorization"); got != wantAuth {
		t.Errorf("Authorization = %q, want %q", got, wantAuth)
	}
}

func TestClientSearchEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[],"metadata":{"total":0}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Search(context.Background(), astro.TermSearch{Term: "NonExistentObject123"})
	if !apperr.IsNotFound(err) {
		t.Errorf("error = %v, want not-found", err)
	}
	if got := apperr.Message(err); got != "No celestial objects found matching the criteria." {
		t.Errorf("message = %q", got)
	}
}

func TestClientSearchMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Search(context.Background(), astro.TermSearch{Term: "Orion"})
	if !apperr.IsUpstream(err) {
		t.Fatalf("error = %v, want upstream", err)
	}
	if got := apperr.Message(err); got != "Malformed response from the astronomy catalog service." {
		t.Errorf("message = %q", got)
	}
}

func TestClientSearchUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.Search(context.Background(), astro.TermSearch{Term: "Failure"})
	if !apperr.IsUpstream(err) {
		t.Errorf("error = %v, want upstream", err)
	}
}

func TestClientSearchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, Timeout: 20 * time.Millisecond}, testCreds, testLogger())
	_, err := c.Search(context.Background(), astro.TermSearch{Term: "slow"})
	if !apperr.IsUpstream(err) {
		t.Fatalf("error = %v, want upstream", err)
	}
	if !apperr.IsTimeout(err) {
		t.Errorf("error = %v, want timeout classification", err)
	}
}

func TestClientStarChart(t *testing.T) {
	var gotReq *http.Request
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"data":{"imageUrl":"https://cdn.test/chart.png"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	obs := astro.Observer{LatDeg: 40.0526, LonDeg: -74.8390}
	when := time.Date(2026, 8, 31, 2, 45, 0, 0, time.UTC)

	chart, err := c.StarChart(context.Background(), obs, when, "5")
	if err != nil {
		t.Fatal(err)
	}

	if gotReq.Method != http.MethodPost {
		t.Errorf("method = %q, want POST", gotReq.Method)
	}
	if gotReq.URL.Path != "/studio/star-chart" {
		t.Errorf("path = %q, want /studio/star-chart", gotReq.URL.Path)
	}

	var sent StarChartRequest
	if err := json.Unmarshal(gotBody, &sent); err != nil {
		t.Fatalf("decoding sent body: %v", err)
	}
	if sent.Style != "default" || sent.View.Type != "area" {
		t.Errorf("body = %+v, want style=default view.type=area", sent)
	}
	if sent.View.Parameters.Zoom != 5 {
		t.Errorf("zoom = %d, want 5", sent.View.Parameters.Zoom)
	}
	if sent.Observer.Date != "2026-08-31" {
		t.Errorf("date = %q, want 2026-08-31", sent.Observer.Date)
	}

	var payload struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := json.Unmarshal(chart, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.ImageURL != "https://cdn.test/chart.png" {
		t.Errorf("imageUrl = %q", payload.ImageURL)
	}
}

// TestClientStarChartValidationBeforeCall verifies fail-fast behavior: an
// invalid observer never produces an outbound request.
func TestClientStarChartValidationBeforeCall(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	_, err := c.StarChart(context.Background(), astro.Observer{LatDeg: 91, LonDeg: 0}, time.Now(), "")
	if !apperr.IsValidation(err) {
		t.Fatalf("error = %v, want validation", err)
	}
	if called {
		t.Error("upstream was called despite invalid observer")
	}
}
