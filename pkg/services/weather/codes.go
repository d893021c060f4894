package weather

// WMO weather interpretation codes as used by Open-Meteo.
var descriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Rime fog",
	51: "Light drizzle",
	53: "Drizzle",
	55: "Dense drizzle",
	56: "Freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Light rain",
	63: "Rain",
	65: "Heavy rain",
	66: "Freezing rain",
	67: "Heavy freezing rain",
	71: "Light snow",
	73: "Snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Light showers",
	81: "Showers",
	82: "Violent showers",
	85: "Snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm, hail",
	99: "Thunderstorm, heavy hail",
}

// Describe returns a short description for a WMO code.
func Describe(code int) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return "Unknown"
}

// Icon returns a single-glyph icon for a WMO code.
func Icon(code int) string {
	switch {
	case code == 0 || code == 1:
		return "☀"
	case code == 2:
		return "⛅"
	case code == 3:
		return "☁"
	case code == 45 || code == 48:
		return "≡"
	case code >= 51 && code <= 67, code >= 80 && code <= 82:
		return "☂"
	case code >= 71 && code <= 77, code == 85 || code == 86:
		return "❄"
	case code >= 95:
		return "⚡"
	}
	return "?"
}
