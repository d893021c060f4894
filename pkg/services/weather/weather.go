// Package weather fetches forecasts from the Open-Meteo API. No API key is
// required; the response is read with gjson so only the fields the
// dashboard shows are decoded.
package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"gitlab.com/tinyland/lab/infoboard/pkg/services"
)

// Name is the source identifier.
const Name = "weather"

// DefaultEndpoint is the Open-Meteo forecast API.
const DefaultEndpoint = "https://api.open-meteo.com/v1/forecast"

// Config controls the forecast request.
type Config struct {
	Endpoint  string
	Latitude  float64
	Longitude float64
	// Location is a display label, e.g. "Portland".
	Location string
	// Units is "metric" or "imperial".
	Units string
	Days  int
}

// Current is the observation at fetch time.
type Current struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    float64   `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	Code        int       `json:"code"`
	Description string    `json:"description"`
}

// Day is one daily forecast entry.
type Day struct {
	Date        time.Time `json:"date"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	PrecipPct   float64   `json:"precip_pct"`
	Code        int       `json:"code"`
	Description string    `json:"description"`
}

// Forecast is the value produced by one Load call.
type Forecast struct {
	Location string  `json:"location"`
	Current  Current `json:"current"`
	Daily    []Day   `json:"daily"`
	// Units is the temperature unit label reported by the API, e.g. "°C".
	Units string `json:"units"`
}

// Service is an Open-Meteo client.
type Service struct {
	cfg    Config
	client *http.Client
}

// New creates a weather Service. A nil client uses
// services.DefaultHTTPClient.
func New(cfg Config, client *http.Client) *Service {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Days <= 0 {
		cfg.Days = 3
	}
	return &Service{cfg: cfg, client: client}
}

// Name returns "weather".
func (s *Service) Name() string { return Name }

// URL returns the request URL for the configured location.
func (s *Service) URL() string {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(s.cfg.Latitude, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(s.cfg.Longitude, 'f', 4, 64))
	q.Set("current", "temperature_2m,apparent_temperature,relative_humidity_2m,wind_speed_10m,weather_code")
	q.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	q.Set("forecast_days", strconv.Itoa(s.cfg.Days))
	q.Set("timezone", "auto")
	if s.cfg.Units == "imperial" {
		q.Set("temperature_unit", "fahrenheit")
		q.Set("wind_speed_unit", "mph")
	}
	return s.cfg.Endpoint + "?" + q.Encode()
}

// Load fetches the forecast. The time argument is unused; forecasts are
// always relative to the API's clock.
func (s *Service) Load(ctx context.Context, _ time.Time) (Forecast, error) {
	body, err := services.Get(ctx, s.client, Name, s.URL())
	if err != nil {
		return Forecast{}, err
	}
	f, err := Parse(body)
	if err != nil {
		return Forecast{}, err
	}
	f.Location = s.cfg.Location
	return f, nil
}

// Parse decodes an Open-Meteo forecast response.
func Parse(body []byte) (Forecast, error) {
	if !gjson.ValidBytes(body) {
		return Forecast{}, fmt.Errorf("weather: invalid JSON response")
	}
	root := gjson.ParseBytes(body)
	if reason := root.Get("reason"); root.Get("error").Bool() {
		return Forecast{}, fmt.Errorf("weather: api error: %s", reason.String())
	}

	loc := time.UTC
	if tz := root.Get("timezone").String(); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}

	cur := root.Get("current")
	if !cur.Exists() {
		return Forecast{}, fmt.Errorf("weather: response has no current block")
	}
	code := int(cur.Get("weather_code").Int())
	f := Forecast{
		Units: root.Get("current_units.temperature_2m").String(),
		Current: Current{
			Temperature: cur.Get("temperature_2m").Float(),
			FeelsLike:   cur.Get("apparent_temperature").Float(),
			Humidity:    cur.Get("relative_humidity_2m").Float(),
			WindSpeed:   cur.Get("wind_speed_10m").Float(),
			Code:        code,
			Description: Describe(code),
		},
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", cur.Get("time").String(), loc); err == nil {
		f.Current.Time = t
	}

	daily := root.Get("daily")
	dates := daily.Get("time").Array()
	codes := daily.Get("weather_code").Array()
	highs := daily.Get("temperature_2m_max").Array()
	lows := daily.Get("temperature_2m_min").Array()
	precip := daily.Get("precipitation_probability_max").Array()
	for i, d := range dates {
		date, err := time.ParseInLocation(time.DateOnly, d.String(), loc)
		if err != nil {
			return Forecast{}, fmt.Errorf("weather: daily[%d]: %w", i, err)
		}
		day := Day{Date: date}
		if i < len(codes) {
			day.Code = int(codes[i].Int())
			day.Description = Describe(day.Code)
		}
		if i < len(highs) {
			day.High = highs[i].Float()
		}
		if i < len(lows) {
			day.Low = lows[i].Float()
		}
		if i < len(precip) {
			day.PrecipPct = precip[i].Float()
		}
		f.Daily = append(f.Daily, day)
	}
	return f, nil
}
