package location

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leecookson/cookson-pro-api/internal/apperr"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func TestLookupIP(t *testing.T) {
	const payload = `{"status":"success","country":"United States","city":"Trenton","lat":40.0526,"lon":-74.839,"query":"8.8.8.8"}`

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer server.Close()

	c := NewClient(server.URL, testLogger())
	data, err := c.LookupIP(context.Background(), "8.8.8.8")
	if err != nil {
		t.Fatal(err)
	}

	if gotPath != "/8.8.8.8" {
		t.Errorf("path = %q, want /8.8.8.8", gotPath)
	}
	// Upstream document passes through verbatim.
	if string(data) != payload {
		t.Errorf("data = %s, want %s", data, payload)
	}
}

func TestLookupIPFailStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail","message":"reserved range","query":"192.168.0.1"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, testLogger())
	_, err := c.LookupIP(context.Background(), "192.168.0.1")
	if !apperr.IsNotFound(err) {
		t.Fatalf("error = %v, want not-found", err)
	}
	if got := apperr.Message(err); got != "reserved range" {
		t.Errorf("message = %q, want upstream message passed through", got)
	}
}

func TestLookupIPFailStatusNoMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, testLogger())
	_, err := c.LookupIP(context.Background(), "0.0.0.0")
	if !apperr.IsNotFound(err) {
		t.Fatalf("error = %v, want not-found", err)
	}
	if !strings.Contains(apperr.Message(err), "not found") {
		t.Errorf("message = %q, want fallback message", apperr.Message(err))
	}
}

func TestLookupIPUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL, testLogger())
	_, err := c.LookupIP(context.Background(), "8.8.8.8")
	if !apperr.IsUpstream(err) {
		t.Errorf("error = %v, want upstream", err)
	}
}
