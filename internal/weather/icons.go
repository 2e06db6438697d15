package weather

// Conditions is the subset of an OpenWeatherMap response needed to pick a
// display icon.
type Conditions struct {
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"` // m/s
	} `json:"wind"`
	Clouds *Clouds            `json:"clouds"`
	Rain   map[string]float64 `json:"rain"` // mm by window, e.g. "1h"
	Snow   map[string]float64 `json:"snow"`
}

// Clouds is OpenWeatherMap's cloud-cover block.
type Clouds struct {
	All float64 `json:"all"` // percent
}

// WindType buckets a wind speed (m/s) into a named band.
func WindType(speed float64) string {
	switch {
	case speed < 1.5:
		return "calm"
	case speed < 8.0:
		return "breezy"
	case speed < 17:
		return "windy"
	case speed < 28:
		return "gale"
	case speed < 32:
		return "storm"
	default:
		return "hurricane"
	}
}

func windIcon(windType string) string {
	switch windType {
	case "windy":
		return "💨"
	case "gale":
		return "🌬"
	case "storm":
		return "⛈"
	case "hurricane":
		return "🌪"
	default: // calm, breezy
		return ""
	}
}

func cloudyIcon(c *Clouds) string {
	if c == nil {
		return "☀"
	}
	if c.All >= 50 {
		return "☁"
	}
	if c.All > 20 {
		return "🌤"
	}
	return "☀"
}

func rainIcon(rain map[string]float64) string {
	if rain == nil {
		return ""
	}
	if rain["1h"] > 1.0 {
		return "🌧"
	}
	return "☁"
}

func snowIcon(snow map[string]float64) string {
	if snow == nil {
		return ""
	}
	if snow["1h"] > 2.0 {
		return "❄"
	}
	return "☁"
}

// TypeIcon maps current conditions to a compact emoji summary: a wind
// prefix plus the dominant weather symbol. Unknown condition types yield
// an empty string.
func TypeIcon(c Conditions) string {
	if len(c.Weather) == 0 || c.Weather[0].Main == "" {
		return ""
	}
	wind := windIcon(WindType(c.Wind.Speed))

	switch c.Weather[0].Main {
	case "Clear":
		return wind + "☀"
	case "Rain":
		return wind + rainIcon(c.Rain)
	case "Thunderstorm":
		return "⛈"
	case "Drizzle":
		return wind + "🌧"
	case "Clouds":
		return wind + cloudyIcon(c.Clouds)
	case "Snow":
		return wind + snowIcon(c.Snow)
	case "Tornado":
		return "🌪"
	case "Mist", "Smoke", "Haze", "Fog", "Sand", "Dust", "Ash":
		return wind + "🌫"
	default:
		return ""
	}
}
