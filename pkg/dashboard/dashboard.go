// Package dashboard wires actions, stores, services, the scheduler and the
// calendar watcher into one explicitly constructed container. Nothing in
// the dashboard is a package-level singleton; tests build as many as they
// need.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"gitlab.com/tinyland/lab/infoboard/pkg/config"
	"gitlab.com/tinyland/lab/infoboard/pkg/flux"
	"gitlab.com/tinyland/lab/infoboard/pkg/schedule"
	"gitlab.com/tinyland/lab/infoboard/pkg/services"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/calendar"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/host"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/news"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/transit"
	"gitlab.com/tinyland/lab/infoboard/pkg/services/weather"
	"gitlab.com/tinyland/lab/infoboard/pkg/store"
	"gitlab.com/tinyland/lab/infoboard/pkg/stores"
)

// ErrUnknownSource is returned by Refresh for a name that is not enabled.
var ErrUnknownSource = errors.New("dashboard: unknown source")

// Clock is the name of the clock event. It is scheduled but is not a
// source.
const Clock = "clock"

// Actions are the dashboard's dispatch points.
type Actions struct {
	Clock    *flux.Action[time.Time]
	Ticks    *flux.Action[schedule.Tick]
	Weather  *flux.RequestAction[time.Time, weather.Forecast]
	Calendar *flux.RequestAction[time.Time, []calendar.Event]
	Transit  *flux.RequestAction[time.Time, []transit.Departure]
	News     *flux.RequestAction[time.Time, []news.Headline]
	Host     *flux.RequestAction[time.Time, host.Snapshot]
}

// Stores are the read side the widgets consume.
type Stores struct {
	Clock    *stores.ClockStore
	Weather  *stores.WeatherStore
	Calendar *stores.CalendarStore
	Transit  *stores.TransitStore
	News     *stores.NewsStore
	Host     *stores.HostStore
}

// Services are the loaders behind each request action.
type Services struct {
	Weather  services.Service[time.Time, weather.Forecast]
	Calendar services.Service[time.Time, []calendar.Event]
	Transit  services.Service[time.Time, []transit.Departure]
	News     services.Service[time.Time, []news.Headline]
	Host     services.Service[time.Time, host.Snapshot]
}

// Option configures a Dashboard.
type Option func(*options)

type options struct {
	client   *http.Client
	services *Services
	now      func() time.Time
}

// WithHTTPClient sets the client used by the HTTP-backed services.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithServices replaces the configured services, e.g. with mocks. Nil
// fields keep the configured service.
func WithServices(s Services) Option {
	return func(o *options) { o.services = &s }
}

// WithClock overrides the time source used for manual refreshes.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

type source struct {
	name     string
	interval time.Duration
	refresh  func(ctx context.Context, now time.Time) error
	busy     atomic.Bool
}

// Dashboard owns every runtime component.
type Dashboard struct {
	Actions Actions
	Stores  Stores

	cfg      *config.Config
	logger   *slog.Logger
	now      func() time.Time
	registry *services.Registry
	calendar *calendar.Service

	sources []*source
	byName  map[string]*source

	mu        sync.Mutex
	scheduler *schedule.Scheduler
	watcher   *calendar.Watcher
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New builds a dashboard from cfg. Only enabled sources get a service,
// but every action and store exists so widgets can always read.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Dashboard, error) {
	if cfg == nil {
		return nil, errors.New("dashboard: nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.client == nil {
		o.client = &http.Client{Timeout: cfg.General.RequestTimeout.Duration}
	}

	d := &Dashboard{
		cfg:      cfg,
		logger:   logger.With("component", "dashboard"),
		now:      o.now,
		registry: services.NewRegistry(),
		byName:   make(map[string]*source),
	}

	svc := d.buildServices(o.client)
	if o.services != nil {
		svc = merge(svc, *o.services)
	}

	d.buildActions(svc, logger)
	d.buildStores(logger)
	d.buildSources(svc)
	return d, nil
}

func (d *Dashboard) buildServices(client *http.Client) Services {
	c := d.cfg
	s := c.Sources
	d.calendar = calendar.New(calendar.Config{
		Sources: s.Calendar.Sources,
		Horizon: s.Calendar.Horizon.Duration,
	}, client)
	return Services{
		Weather: weather.New(weather.Config{
			Endpoint:  s.Weather.Endpoint,
			Latitude:  c.Location.Latitude,
			Longitude: c.Location.Longitude,
			Location:  c.Location.Name,
			Units:     c.Location.Units,
			Days:      s.Weather.Days,
		}, client),
		Calendar: d.calendar,
		Transit:  transit.New(transit.Config{URL: s.Transit.URL, Paths: s.Transit.Paths}, client),
		News:     news.New(news.Config{Feeds: s.News.Feeds, PerFeed: s.News.PerFeed}, client),
		Host:     host.New(host.Config{Mounts: s.Host.Mounts}),
	}
}

func merge(base, over Services) Services {
	if over.Weather != nil {
		base.Weather = over.Weather
	}
	if over.Calendar != nil {
		base.Calendar = over.Calendar
	}
	if over.Transit != nil {
		base.Transit = over.Transit
	}
	if over.News != nil {
		base.News = over.News
	}
	if over.Host != nil {
		base.Host = over.Host
	}
	return base
}

func (d *Dashboard) buildActions(svc Services, logger *slog.Logger) {
	clock := flux.WithClock(d.now)
	d.Actions = Actions{
		Clock: flux.NewAction[time.Time](Clock, logger),
		Ticks: flux.NewAction[schedule.Tick]("schedule", logger),
		Weather: flux.NewRequestAction(weather.Name,
			tolerate(d.logger, services.Track(d.registry, svc.Weather), func(f weather.Forecast) bool { return len(f.Daily) > 0 }), logger, clock),
		Calendar: flux.NewRequestAction(calendar.Name,
			tolerate(d.logger, services.Track(d.registry, svc.Calendar), nonEmpty[calendar.Event]), logger, clock),
		Transit: flux.NewRequestAction(transit.Name,
			tolerate(d.logger, services.Track(d.registry, svc.Transit), nonEmpty[transit.Departure]), logger, clock),
		News: flux.NewRequestAction(news.Name,
			tolerate(d.logger, services.Track(d.registry, svc.News), nonEmpty[news.Headline]), logger, clock),
		Host: flux.NewRequestAction(host.Name,
			tolerate(d.logger, services.Track(d.registry, svc.Host), func(s host.Snapshot) bool { return !s.At.IsZero() }), logger, clock),
	}
}

func (d *Dashboard) buildStores(logger *slog.Logger) {
	a := d.Actions
	clock := stores.NewClockStore(a.Clock, logger)
	d.Stores = Stores{
		Clock:    clock,
		Weather:  stores.NewWeatherStore(a.Weather, logger),
		Calendar: stores.NewCalendarStore(a.Calendar, a.Clock, clock, logger),
		Transit:  stores.NewTransitStore(a.Transit, logger),
		News:     stores.NewNewsStore(a.News, d.cfg.Sources.News.MaxHeadlines, logger),
		Host:     stores.NewHostStore(a.Host, logger),
	}
}

func (d *Dashboard) buildSources(svc Services) {
	s := d.cfg.Sources
	add := func(enabled bool, name string, interval config.Duration, refresh func(ctx context.Context, now time.Time) error) {
		if !enabled {
			return
		}
		src := &source{name: name, interval: interval.Duration, refresh: refresh}
		d.sources = append(d.sources, src)
		d.byName[name] = src
	}
	a := d.Actions
	add(s.Weather.Enabled, weather.Name, s.Weather.Interval, loadWith(a.Weather))
	add(s.Calendar.Enabled, calendar.Name, s.Calendar.Interval, loadWith(a.Calendar))
	add(s.Transit.Enabled, transit.Name, s.Transit.Interval, loadWith(a.Transit))
	add(s.News.Enabled, news.Name, s.News.Interval, loadWith(a.News))
	add(s.Host.Enabled, host.Name, s.Host.Interval, loadWith(a.Host))
}

func loadWith[Out any](action *flux.RequestAction[time.Time, Out]) func(ctx context.Context, now time.Time) error {
	return func(ctx context.Context, now time.Time) error {
		_, err := action.Load(ctx, now)
		return err
	}
}

// tolerate turns a partial failure into a success when the loader still
// produced data. The registry has already recorded the error.
func tolerate[Out any](logger *slog.Logger, load func(context.Context, time.Time) (Out, error), has func(Out) bool) flux.Loader[time.Time, Out] {
	return func(ctx context.Context, now time.Time) (Out, error) {
		out, err := load(ctx, now)
		if err != nil && has(out) {
			logger.Warn("partial load", "error", err)
			return out, nil
		}
		return out, err
	}
}

func nonEmpty[T any](items []T) bool { return len(items) > 0 }

// Sources returns the enabled source names in configuration order.
func (d *Dashboard) Sources() []string {
	names := make([]string, len(d.sources))
	for i, s := range d.sources {
		names[i] = s.name
	}
	return names
}

// Status returns the health of every enabled source, in configuration
// order.
func (d *Dashboard) Status() []services.Status {
	out := make([]services.Status, 0, len(d.sources))
	for _, src := range d.sources {
		if st, ok := d.registry.Status(src.name); ok {
			out = append(out, st)
		}
	}
	return out
}

// Store returns the change-notifying core of a named store, or nil.
func (d *Dashboard) Store(name string) *store.Store {
	switch name {
	case Clock:
		return d.Stores.Clock.Store
	case weather.Name:
		return d.Stores.Weather.Store
	case calendar.Name:
		return d.Stores.Calendar.Store
	case transit.Name:
		return d.Stores.Transit.Store
	case news.Name:
		return d.Stores.News.Store
	case host.Name:
		return d.Stores.Host.Store
	}
	return nil
}

// Lookup resolves a dotted path whose first element names a store, e.g.
// "weather.forecast.current.temperature".
func (d *Dashboard) Lookup(path string) (any, error) {
	p := store.ParsePath(path)
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: empty path", store.ErrPathNotFound)
	}
	name, _ := p[0].(string)
	s := d.Store(name)
	if s == nil {
		return nil, fmt.Errorf("%w: no store %v", store.ErrPathNotFound, p[0])
	}
	return s.Props().Lookup(p[1:])
}

// Refresh loads one source now and waits for its stores to settle.
func (d *Dashboard) Refresh(ctx context.Context, name string) error {
	src, ok := d.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	return src.refresh(ctx, d.now())
}

// RefreshAll loads every enabled source concurrently and returns the
// joined errors.
func (d *Dashboard) RefreshAll(ctx context.Context) error {
	errs := make([]error, len(d.sources))
	var g errgroup.Group
	for i, src := range d.sources {
		g.Go(func() error {
			errs[i] = src.refresh(ctx, d.now())
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Start ticks the clock, schedules every enabled source with an immediate
// first load and starts the calendar watcher. It returns an error if the
// dashboard is already running.
func (d *Dashboard) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.scheduler != nil {
		return errors.New("dashboard: already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	sched := schedule.NewScheduler(ctx, d.Actions.Ticks, d.logger)

	sched.On(Clock, func(ctx context.Context, tick schedule.Tick) error {
		_, err := d.Actions.Clock.Trigger(ctx, tick.Time).Wait(ctx)
		return err
	})
	for _, src := range d.sources {
		sched.On(src.name, func(ctx context.Context, tick schedule.Tick) error {
			d.scheduled(ctx, src, tick.Time)
			return nil
		})
	}

	if err := sched.Schedule(Clock, d.cfg.General.ClockInterval.Duration, schedule.Immediately()); err != nil {
		cancel()
		return err
	}
	for _, src := range d.sources {
		if err := sched.Schedule(src.name, src.interval, schedule.Immediately()); err != nil {
			sched.StopAll()
			cancel()
			return fmt.Errorf("dashboard: schedule %s: %w", src.name, err)
		}
	}

	if err := d.startWatcher(ctx); err != nil {
		d.logger.Warn("calendar watcher disabled", "error", err)
	}

	d.scheduler = sched
	d.cancel = cancel
	d.logger.Info("started", "sources", d.Sources())
	return nil
}

// scheduled runs a timer-driven refresh. A refresh still in flight from a
// previous tick is not doubled up.
func (d *Dashboard) scheduled(ctx context.Context, src *source, now time.Time) {
	if !src.busy.CompareAndSwap(false, true) {
		d.logger.Debug("refresh skipped, still running", "source", src.name)
		return
	}
	defer src.busy.Store(false)
	if err := src.refresh(ctx, now); err != nil {
		d.logger.Debug("scheduled refresh failed", "source", src.name, "error", err)
	}
}

func (d *Dashboard) startWatcher(ctx context.Context) error {
	cal := d.cfg.Sources.Calendar
	src, ok := d.byName[calendar.Name]
	if !ok || !cal.Watch {
		return nil
	}
	files := d.calendar.LocalFiles()
	if len(files) == 0 {
		return nil
	}
	w, err := calendar.NewWatcher(files, func() {
		d.scheduled(ctx, src, d.now())
	}, d.logger)
	if err != nil {
		return err
	}
	d.watcher = w
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, calendar.ErrWatcherClosed) {
			d.logger.Warn("calendar watcher stopped", "error", err)
		}
	}()
	return nil
}

// Running reports whether Start has been called without a matching Stop.
func (d *Dashboard) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.scheduler != nil
}

// Stop halts timers and the watcher and cancels in-flight loads. It is
// safe to call more than once.
func (d *Dashboard) Stop() {
	d.mu.Lock()
	sched, w, cancel := d.scheduler, d.watcher, d.cancel
	d.scheduler, d.watcher, d.cancel = nil, nil, nil
	d.mu.Unlock()

	if sched == nil {
		return
	}
	sched.StopAll()
	if w != nil {
		_ = w.Close()
	}
	cancel()
	d.wg.Wait()
	d.logger.Info("stopped")
}
