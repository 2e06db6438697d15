package weather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leecookson/cookson-pro-api/internal/apperr"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func TestByCoordinates(t *testing.T) {
	const payload = `{"weather":[{"main":"Clear"}],"main":{"temp":21.5},"wind":{"speed":3.2}}`

	var gotURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.String()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer server.Close()

	c := NewClient(server.URL, "test-key", testLogger())
	data, err := c.ByCoordinates(context.Background(), 40.0526, -74.839)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != payload {
		t.Errorf("data = %s, want verbatim passthrough", data)
	}

	req, _ := http.NewRequest(http.MethodGet, gotURL, nil)
	q := req.URL.Query()
	if got := q.Get("lat"); got != "40.0526" {
		t.Errorf("lat = %q, want 40.0526", got)
	}
	if got := q.Get("lon"); got != "-74.839" {
		t.Errorf("lon = %q, want -74.839", got)
	}
	if got := q.Get("units"); got != "metric" {
		t.Errorf("units = %q, want metric", got)
	}
	if got := q.Get("appid"); got != "test-key" {
		t.Errorf("appid = %q, want test-key", got)
	}
}

func TestByCoordinatesUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":401,"message":"Invalid API key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewClient(server.URL, "bad-key", testLogger())
	_, err := c.ByCoordinates(context.Background(), 0, 0)
	if !apperr.IsUpstream(err) {
		t.Errorf("error = %v, want upstream", err)
	}
}
