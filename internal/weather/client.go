// Package weather fetches current conditions from OpenWeatherMap.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/leecookson/cookson-pro-api/internal/apperr"
	"github.com/leecookson/cookson-pro-api/internal/metrics"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Client fetches weather data for a coordinate pair.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a weather Client. baseURL overrides the OpenWeatherMap
// endpoint for tests; empty means the real service.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// ByCoordinates returns OpenWeatherMap's current-conditions document for
// the given latitude/longitude, passed through verbatim. Units are metric.
func (c *Client) ByCoordinates(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("units", "metric")
	values.Set("appid", c.apiKey)
	apiURL := c.baseURL + "/weather?" + values.Encode()

	c.logger.Info("fetching weather", "component", "weather", "lat", lat, "lon", lon)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstreamFailure("weather")
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, apperr.NewUpstream("Timed out calling the weather service.", err)
		}
		return nil, apperr.NewUpstream("Failed to fetch weather data from external API.", err)
	}
	defer resp.Body.Close()
	metrics.ObserveUpstream("weather", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("weather service error", "component", "weather",
			"status", resp.StatusCode, "body", string(errBody))
		return nil, apperr.NewUpstream(
			fmt.Sprintf("Failed to fetch weather data from external API: %s", http.StatusText(resp.StatusCode)),
			fmt.Errorf("unexpected status code %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.NewUpstream("Failed to read weather service response.", err)
	}

	c.logger.Info("received weather data", "component", "weather", "lat", lat, "lon", lon)
	return json.RawMessage(body), nil
}
