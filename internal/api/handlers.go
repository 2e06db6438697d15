package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leecookson/cookson-pro-api/internal/apperr"
	"github.com/leecookson/cookson-pro-api/internal/astro"
	"github.com/leecookson/cookson-pro-api/internal/httputil"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, status int, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// writeError maps an error to its HTTP outcome: validation → 400,
// not-found → 404, upstream → 502 (504 on timeout), anything else → 500.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case apperr.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": apperr.Message(err)})
	case apperr.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": apperr.Message(err)})
	case apperr.IsUpstream(err):
		logger.Error("upstream failure", "component", "api", "error", err)
		status := http.StatusBadGateway
		if apperr.IsTimeout(err) {
			status = http.StatusGatewayTimeout
		}
		writeJSON(w, status, map[string]string{"error": apperr.Message(err)})
	default:
		logger.Error("unhandled error", "component", "api", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Something broke!"})
	}
}

// searchHandler serves GET /api/v1/astro/search. Parameters are validated
// before any outbound call; an empty upstream result set is a 404.
func searchHandler(logger *slog.Logger, cat Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := astro.ParseSearchQuery(r.URL.Query())
		if err != nil {
			logger.Warn("rejected search parameters", "component", "api", "error", apperr.Message(err))
			writeError(w, logger, err)
			return
		}

		result, err := cat.Search(r.Context(), q)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// parseCoordinate parses a latitude or longitude string and enforces its
// range; boundary values are accepted.
func parseCoordinate(s string, min, max float64, message string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < min || v > max {
		return 0, apperr.NewValidation(message)
	}
	return v, nil
}

const (
	invalidLatitude  = "Invalid latitude. Must be between -90 and 90."
	invalidLongitude = "Invalid longitude. Must be between -180 and 180."
)

// starChartHandler serves GET /api/v1/astro/star-chart. It resolves the
// zenith for the given observer and moment (query param "time", RFC 3339,
// defaulting to now) and returns the rendered chart under "data".
func starChartHandler(logger *slog.Logger, cat Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		lat, err := parseCoordinate(query.Get("lat"), -90, 90, invalidLatitude)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		lon, err := parseCoordinate(query.Get("long"), -180, 180, invalidLongitude)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		moment := time.Now().UTC()
		if s := query.Get("time"); s != "" {
			t, perr := time.Parse(time.RFC3339, s)
			if perr != nil {
				writeError(w, logger, apperr.NewValidation(`Invalid parameter: "time" must be an RFC 3339 timestamp.`))
				return
			}
			moment = t.UTC()
		}

		chart, err := cat.StarChart(r.Context(), astro.Observer{LatDeg: lat, LonDeg: lon}, moment, query.Get("zoom"))
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]json.RawMessage{"data": chart})
	}
}

// locationSelfHandler serves GET /api/v1/location for the requester's own IP.
func locationSelfHandler(logger *slog.Logger, loc Locator, trustProxy bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := httputil.ClientIP(r, trustProxy)
		logger.Info("resolving requester location", "component", "api", "ip", ip)

		data, err := loc.LookupIP(r.Context(), ip)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeRaw(w, http.StatusOK, data)
	}
}

// locationHandler serves GET /api/v1/location/{ipAddress}. Reserved-range
// addresses are rejected before any outbound call.
func locationHandler(logger *slog.Logger, loc Locator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := chi.URLParam(r, "ipAddress")
		if !httputil.IsPublicIP(ip) {
			logger.Warn("non-public IP address provided", "component", "api", "ip", ip)
			writeError(w, logger, apperr.NewValidation("IP address is from a reserved range."))
			return
		}

		data, err := loc.LookupIP(r.Context(), ip)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeRaw(w, http.StatusOK, data)
	}
}

// weatherHandler serves GET /api/v1/weather/{lat}/{long}.
func weatherHandler(logger *slog.Logger, wx Weather) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, err := parseCoordinate(chi.URLParam(r, "lat"), -90, 90, invalidLatitude)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		lon, err := parseCoordinate(chi.URLParam(r, "long"), -180, 180, invalidLongitude)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		data, err := wx.ByCoordinates(r.Context(), lat, lon)
		if err != nil {
			writeError(w, logger, err)
			return
		}
		writeRaw(w, http.StatusOK, data)
	}
}
