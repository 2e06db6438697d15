package weather

import (
	"encoding/json"
	"testing"
)

func TestWindType(t *testing.T) {
	tests := []struct {
		speed float64
		want  string
	}{
		{0, "calm"},
		{1.4, "calm"},
		{1.5, "breezy"},
		{7.9, "breezy"},
		{8.0, "windy"},
		{16.9, "windy"},
		{17, "gale"},
		{28, "storm"},
		{32, "hurricane"},
		{50, "hurricane"},
	}
	for _, tt := range tests {
		if got := WindType(tt.speed); got != tt.want {
			t.Errorf("WindType(%v) = %q, want %q", tt.speed, got, tt.want)
		}
	}
}

func conditions(t *testing.T, raw string) Conditions {
	t.Helper()
	var c Conditions
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestTypeIcon(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "clear calm",
			raw:  `{"weather":[{"main":"Clear"}],"wind":{"speed":0.5}}`,
			want: "☀",
		},
		{
			name: "clear windy",
			raw:  `{"weather":[{"main":"Clear"}],"wind":{"speed":10}}`,
			want: "💨☀",
		},
		{
			name: "heavy rain",
			raw:  `{"weather":[{"main":"Rain"}],"wind":{"speed":2},"rain":{"1h":2.5}}`,
			want: "🌧",
		},
		{
			name: "light rain reads as cloud",
			raw:  `{"weather":[{"main":"Rain"}],"wind":{"speed":2},"rain":{"1h":0.3}}`,
			want: "☁",
		},
		{
			name: "thunderstorm ignores wind",
			raw:  `{"weather":[{"main":"Thunderstorm"}],"wind":{"speed":30}}`,
			want: "⛈",
		},
		{
			name: "overcast",
			raw:  `{"weather":[{"main":"Clouds"}],"wind":{"speed":1},"clouds":{"all":80}}`,
			want: "☁",
		},
		{
			name: "partly cloudy",
			raw:  `{"weather":[{"main":"Clouds"}],"wind":{"speed":1},"clouds":{"all":30}}`,
			want: "🌤",
		},
		{
			name: "heavy snow",
			raw:  `{"weather":[{"main":"Snow"}],"wind":{"speed":1},"snow":{"1h":3}}`,
			want: "❄",
		},
		{
			name: "fog",
			raw:  `{"weather":[{"main":"Fog"}],"wind":{"speed":1}}`,
			want: "🌫",
		},
		{
			name: "unknown condition",
			raw:  `{"weather":[{"main":"Squall"}],"wind":{"speed":1}}`,
			want: "",
		},
		{
			name: "missing weather block",
			raw:  `{"wind":{"speed":1}}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeIcon(conditions(t, tt.raw)); got != tt.want {
				t.Errorf("TypeIcon = %q, want %q", got, tt.want)
			}
		})
	}
}
