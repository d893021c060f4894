package stores

import (
	"context"
	"log/slog"
	"time"

	"gitlab.com/tinyland/lab/infoboard/pkg/flux"
	"gitlab.com/tinyland/lab/infoboard/pkg/query"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/weather"
	"gitlab.com/tinyland/lab/infoboard/pkg/store"
)

// WeatherStore holds the latest forecast.
type WeatherStore struct {
	*base

	forecast *store.Single[weather.Forecast]
	token    flux.ListenerID
}

// NewWeatherStore binds a weather store to action.
func NewWeatherStore(action *flux.RequestAction[time.Time, weather.Forecast], logger *slog.Logger) *WeatherStore {
	b := newBase(weather.Name, logger)
	w := &WeatherStore{base: b, forecast: store.BindSingle[weather.Forecast](b.Store, "forecast")}
	w.token = store.BindTo(b.Store, action, store.Handlers[weather.Forecast]{
		OnPending: b.onPending,
		OnError:   b.onError,
		OnSuccess: func(ctx context.Context, f weather.Forecast) error {
			if err := w.forecast.Set(f); err != nil {
				return err
			}
			return b.loaded(ctx)
		},
	})
	return w
}

// Token is the store's dispatch token.
func (w *WeatherStore) Token() flux.ListenerID { return w.token }

// Forecast returns the last forecast and whether one has loaded.
func (w *WeatherStore) Forecast() (weather.Forecast, bool) {
	return w.forecast.Get()
}

// Day returns the daily forecast for the calendar date of t.
func (w *WeatherStore) Day(t time.Time) (weather.Day, bool) {
	f, ok := w.forecast.Get()
	if !ok {
		return weather.Day{}, false
	}
	y, m, d := t.Date()
	return query.From(f.Daily).FirstOrDefault(func(day weather.Day) bool {
		dy, dm, dd := day.Date.Date()
		return dy == y && dm == m && dd == d
	})
}
