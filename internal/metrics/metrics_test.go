package metrics

import "testing"

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		// Known exact routes.
		{"/healthz", "/healthz"},
		{"/readyz", "/readyz"},
		{"/metrics", "/metrics"},
		{"/", "/"},
		{"/api/v1/astro/search", "/api/v1/astro/search"},
		{"/api/v1/astro/star-chart", "/api/v1/astro/star-chart"},
		{"/api/v1/location", "/api/v1/location"},

		// Parameterized routes collapse to one label each.
		{"/api/v1/location/8.8.8.8", "/api/v1/location/{ipAddress}"},
		{"/api/v1/location/2606:4700:4700::1111", "/api/v1/location/{ipAddress}"},
		{"/api/v1/weather/40.0526/-74.8390", "/api/v1/weather/{lat}/{long}"},
		{"/api/v1/weather/0/0", "/api/v1/weather/{lat}/{long}"},

		// Unknown/bot paths collapse to "other".
		{"/wp-admin", "other"},
		{"/robots.txt", "other"},
		{"/.env", "other"},
		{"/api/v2/something", "other"},
		{"/favicon.ico", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := normalizeRoute(tt.path)
			if got != tt.want {
				t.Errorf("normalizeRoute(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

// TestMetricsCardinality verifies that many distinct client IPs produce
// exactly 1 distinct path label, not one per IP.
func TestMetricsCardinality(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		label := normalizeRoute("/api/v1/location/203.0.113." + string(rune('0'+i%10)))
		seen[label] = true
	}
	if len(seen) != 1 {
		t.Errorf("expected 1 unique label for parameterized paths, got %d: %v", len(seen), seen)
	}
}
