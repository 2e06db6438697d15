package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/leecookson/cookson-pro-api/internal/apperr"
	"github.com/leecookson/cookson-pro-api/internal/astro"
	"github.com/leecookson/cookson-pro-api/internal/metrics"
)

const defaultBaseURL = "https://api.astronomyapi.com/api/v2"

// starChartTimeout bounds a chart-generation round trip. The upstream
// renders images on demand and can be slow, but must not hang the caller.
const starChartTimeout = 30 * time.Second

// Config controls the catalog client's transport behavior.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond caps outbound calls; 0 disables the limiter.
	RequestsPerSecond float64
	Burst             int
}

// Client calls the external catalog service. All validation happens before
// any request is sent; the client itself performs no retries.
type Client struct {
	cfg        Config
	creds      Credentials
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// SearchResult is the catalog's search response envelope.
type SearchResult struct {
	Data     []json.RawMessage `json:"data"`
	Metadata json.RawMessage   `json:"metadata,omitempty"`
}

// NewClient creates a catalog Client with a circuit breaker and optional
// outbound rate limiter.
func NewClient(cfg Config, creds Credentials, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = starChartTimeout
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "astronomy-catalog",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.8
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "component", "catalog", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Client{
		cfg:        cfg,
		creds:      creds,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		limiter:    limiter,
		logger:     logger,
	}
}

// Search executes a validated celestial-object search. An empty result set
// is a not-found error; transport and non-success statuses are upstream
// errors.
func (c *Client) Search(ctx context.Context, q astro.SearchQuery) (*SearchResult, error) {
	fullURL, headers := BuildSearchRequest(c.cfg.BaseURL, q, c.creds)
	c.logger.Info("searching celestial objects", "component", "catalog", "url", fullURL)

	body, err := c.do(ctx, http.MethodGet, fullURL, headers, nil)
	if err != nil {
		return nil, err
	}

	var result SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperr.Wrap(err, "Malformed response from the astronomy catalog service.")
	}
	if len(result.Data) == 0 {
		return nil, apperr.NewNotFound("No celestial objects found matching the criteria.")
	}
	return &result, nil
}

// StarChart builds a chart request centered on the observer's zenith and
// asks the upstream to render it. The chart payload arrives nested under
// the response's "data" key.
func (c *Client) StarChart(ctx context.Context, obs astro.Observer, t time.Time, zoomInput string) (json.RawMessage, error) {
	chartReq, err := BuildStarChartRequest(obs, t, zoomInput)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(chartReq)
	if err != nil {
		return nil, fmt.Errorf("encoding star chart request: %w", err)
	}

	headers := http.Header{}
	headers.Set("Accept", "application/json")
	headers.Set("Content-Type", "application/json")
	headers.Set("Authorization", c.creds.BasicAuth())

	ctx, cancel := context.WithTimeout(ctx, starChartTimeout)
	defer cancel()

	c.logger.Info("requesting star chart", "component", "catalog",
		"lat", obs.LatDeg, "lon", obs.LonDeg, "zoom", chartReq.View.Parameters.Zoom)

	body, err := c.do(ctx, http.MethodPost, c.cfg.BaseURL+"/studio/star-chart", headers, payload)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperr.Wrap(err, "Malformed response from the astronomy catalog service.")
	}
	return envelope.Data, nil
}

// do runs one outbound request through the rate limiter and circuit
// breaker, returning the response body for 2xx statuses.
func (c *Client) do(ctx context.Context, method, fullURL string, headers http.Header, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, classifyTransport(err)
		}
	}

	start := time.Now()
	result, err := c.breaker.Execute(func() (any, error) {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		for k, vs := range headers {
			req.Header[k] = vs
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		metrics.ObserveUpstream("catalog", resp.StatusCode, time.Since(start))

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			c.logger.Error("catalog service error", "component", "catalog",
				"status", resp.StatusCode, "body", string(errBody))
			return nil, apperr.NewUpstream(
				fmt.Sprintf("Failed to search celestial objects from external API: %s", http.StatusText(resp.StatusCode)),
				fmt.Errorf("unexpected status code %d", resp.StatusCode))
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		metrics.ObserveUpstreamFailure("catalog")
		return nil, classifyTransport(err)
	}
	return result.([]byte), nil
}

// classifyTransport maps transport-level failures to error kinds. Timeouts
// get a distinct upstream message so callers can tell a slow upstream from
// a broken one.
func classifyTransport(err error) error {
	var appErr *apperr.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperr.NewUpstream("Timed out calling the astronomy catalog service.", err)
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperr.NewUpstream("Astronomy catalog service is temporarily unavailable.", err)
	}
	return apperr.NewUpstream("Failed to reach the astronomy catalog service.", err)
}
