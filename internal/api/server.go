// Package api wires the HTTP surface: routing, CORS, access logging, and
// the mapping from error kinds to response statuses.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/leecookson/cookson-pro-api/internal/astro"
	"github.com/leecookson/cookson-pro-api/internal/catalog"
	"github.com/leecookson/cookson-pro-api/internal/health"
	"github.com/leecookson/cookson-pro-api/internal/httputil"
	"github.com/leecookson/cookson-pro-api/internal/metrics"
)

// Catalog is the celestial-catalog collaborator.
type Catalog interface {
	Search(ctx context.Context, q astro.SearchQuery) (*catalog.SearchResult, error)
	StarChart(ctx context.Context, obs astro.Observer, t time.Time, zoomInput string) (json.RawMessage, error)
}

// Locator is the IP-geolocation collaborator.
type Locator interface {
	LookupIP(ctx context.Context, ip string) (json.RawMessage, error)
}

// Weather is the weather-lookup collaborator.
type Weather interface {
	ByCoordinates(ctx context.Context, lat, lon float64) (json.RawMessage, error)
}

// Config holds HTTP server configuration.
type Config struct {
	Addr       string
	TrustProxy bool
	// Ready gates /readyz; nil means always ready.
	Ready func() bool
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// allowedOrigin matches any cookson.pro subdomain and localhost, with an
// optional port, over http or https.
var allowedOrigin = regexp.MustCompile(`(^https?://.*\.cookson\.pro(:\d+)?$)|(^https?://localhost(:\d+)?$)`)

// NewServer creates a configured HTTP server.
func NewServer(cfg Config, logger *slog.Logger, cat Catalog, loc Locator, wx Weather) *Server {
	r := chi.NewRouter()

	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware(logger, cfg.TrustProxy))
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc: func(r *http.Request, origin string) bool {
			return allowedOrigin.MatchString(origin)
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz(cfg.Ready))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/astro/search", searchHandler(logger, cat))
		r.Get("/astro/star-chart", starChartHandler(logger, cat))
		r.Get("/location", locationSelfHandler(logger, loc, cfg.TrustProxy))
		r.Get("/location/{ipAddress}", locationHandler(logger, loc))
		r.Get("/weather/{lat}/{long}", weatherHandler(logger, wx))
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           r,
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      35 * time.Second, // must outlast the star-chart upstream timeout
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(p []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(p)
	sr.bytes += n
	return n, err
}

func loggingMiddleware(logger *slog.Logger, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sr.statusCode,
				"bytes", sr.bytes,
				"duration_ms", duration.Milliseconds(),
				"remote_ip", httputil.ClientIP(r, trustProxy),
				"referer", r.Referer(),
				"user_agent", r.UserAgent(),
			)
		})
	}
}
