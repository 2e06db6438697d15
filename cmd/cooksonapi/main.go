package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/leecookson/cookson-pro-api/internal/api"
	"github.com/leecookson/cookson-pro-api/internal/catalog"
	"github.com/leecookson/cookson-pro-api/internal/location"
	"github.com/leecookson/cookson-pro-api/internal/secrets"
	"github.com/leecookson/cookson-pro-api/internal/weather"
)

func main() {
	// Local development reads secrets and config from a .env file; absence
	// is normal in deployed environments.
	godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))

	addr := os.Getenv("PORT")
	if addr == "" {
		addr = "3000"
	}
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	resolver := newSecretResolver(ctx, logger)

	creds, credsOK := loadCredentials(ctx, logger, resolver)
	weatherKey, _ := resolveSecret(ctx, logger, resolver, "OPEN_API_KEY")

	catalogClient := catalog.NewClient(loadCatalogConfig(logger), creds, logger)
	locationClient := location.NewClient(os.Getenv("COOKSON_LOCATION_BASE_URL"), logger)
	weatherClient := weather.NewClient(os.Getenv("COOKSON_WEATHER_BASE_URL"), weatherKey, logger)

	srvCfg := api.Config{
		Addr:       addr,
		TrustProxy: loadTrustProxy(logger),
		Ready:      func() bool { return credsOK },
	}
	srv := api.NewServer(srvCfg, logger, catalogClient, locationClient, weatherClient)

	go func() {
		logger.Info("starting server", "addr", addr, "trust_proxy", srvCfg.TrustProxy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func logLevel() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newSecretResolver builds the AWS-backed secret store, degrading to an
// environment-only store when no AWS credentials are available (local dev).
func newSecretResolver(ctx context.Context, logger *slog.Logger) secrets.Resolver {
	store, err := secrets.NewStoreFromAWS(ctx, logger)
	if err == nil {
		return store
	}
	logger.Warn("AWS secrets manager unavailable, using environment only", "error", err)

	store, err = secrets.NewStore(nil, logger)
	if err != nil {
		logger.Error("creating secret store", "error", err)
		os.Exit(1)
	}
	return store
}

func resolveSecret(ctx context.Context, logger *slog.Logger, r secrets.Resolver, name string) (string, bool) {
	v, err := r.Secret(ctx, name)
	if err != nil || v == "" {
		logger.Warn("secret not set", "name", name, "error", err)
		return "", false
	}
	logger.Info("secret resolved", "name", name)
	return v, true
}

func loadCredentials(ctx context.Context, logger *slog.Logger, r secrets.Resolver) (catalog.Credentials, bool) {
	id, idOK := resolveSecret(ctx, logger, r, "ASTRO_APP_ID")
	secret, secretOK := resolveSecret(ctx, logger, r, "ASTRO_APP_SECRET")
	return catalog.Credentials{AppID: id, AppSecret: secret}, idOK && secretOK
}

func loadCatalogConfig(logger *slog.Logger) catalog.Config {
	cfg := catalog.Config{
		BaseURL: os.Getenv("COOKSON_ASTRO_BASE_URL"),
	}

	if v := os.Getenv("COOKSON_ASTRO_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid COOKSON_ASTRO_TIMEOUT value, using default", "value", v, "default", 30)
		} else {
			cfg.Timeout = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("COOKSON_ASTRO_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			logger.Warn("invalid COOKSON_ASTRO_RATE_LIMIT value, rate limiting disabled", "value", v)
		} else {
			cfg.RequestsPerSecond = f
			cfg.Burst = 5
		}
	}

	logger.Info("catalog config",
		"base_url", cfg.BaseURL,
		"timeout_seconds", cfg.Timeout.Seconds(),
		"rate_limit_rps", cfg.RequestsPerSecond,
	)

	return cfg
}

func loadTrustProxy(logger *slog.Logger) bool {
	// Behind the production proxy, client IPs arrive in X-Forwarded-For.
	trust := true
	if v := os.Getenv("COOKSON_TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid COOKSON_TRUST_PROXY value, defaulting to true", "value", v)
		} else {
			trust = b
		}
	}
	return trust
}
