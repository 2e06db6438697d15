// Package location looks up IP geolocation data from ip-api.com.
package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/leecookson/cookson-pro-api/internal/apperr"
	"github.com/leecookson/cookson-pro-api/internal/metrics"
)

const defaultBaseURL = "http://ip-api.com/json"

// Client fetches geolocation data for an IP address.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a location Client. baseURL overrides the ip-api
// endpoint for tests; empty means the real service.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// LookupIP returns the upstream's geolocation document for the given IP,
// passed through verbatim. A lookup the upstream reports as failed maps to
// a not-found error carrying the upstream's message.
func (c *Client) LookupIP(ctx context.Context, ip string) (json.RawMessage, error) {
	apiURL := c.baseURL + "/" + ip
	c.logger.Info("fetching location", "component", "location", "ip", ip, "url", apiURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstreamFailure("location")
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, apperr.NewUpstream("Timed out calling the location service.", err)
		}
		return nil, apperr.NewUpstream("Failed to fetch location data from external API.", err)
	}
	defer resp.Body.Close()
	metrics.ObserveUpstream("location", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("location service error", "component", "location",
			"status", resp.StatusCode, "body", string(errBody))
		return nil, apperr.NewUpstream(
			fmt.Sprintf("Failed to fetch location data from external API: %s", http.StatusText(resp.StatusCode)),
			fmt.Errorf("unexpected status code %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.NewUpstream("Failed to read location service response.", err)
	}

	// ip-api signals lookup failures in-band with status "fail".
	var probe struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, apperr.NewUpstream("Malformed response from the location service.", err)
	}
	if probe.Status == "fail" {
		msg := probe.Message
		if msg == "" {
			msg = "Location data not found for the given IP address."
		}
		return nil, apperr.NewNotFound(msg)
	}

	c.logger.Info("received location data", "component", "location", "ip", ip)
	return json.RawMessage(body), nil
}
