package config

import (
	"errors"
	"fmt"

	"gitlab.com/tinyland/lab/infoboard/pkg/services/transit"
)

// Config is the complete infoboard configuration.
type Config struct {
	General  GeneralConfig  `toml:"general" yaml:"general"`
	Location LocationConfig `toml:"location" yaml:"location"`
	Display  DisplayConfig  `toml:"display" yaml:"display"`
	Sources  SourcesConfig  `toml:"sources" yaml:"sources"`
}

// GeneralConfig holds process-wide settings.
type GeneralConfig struct {
	LogLevel string `toml:"log_level" yaml:"log_level"`
	// LogFile receives logs while the TUI owns the terminal.
	LogFile string `toml:"log_file" yaml:"log_file"`
	// ClockInterval is how often the clock action fires.
	ClockInterval Duration `toml:"clock_interval" yaml:"clock_interval"`
	// RequestTimeout bounds each upstream fetch.
	RequestTimeout Duration `toml:"request_timeout" yaml:"request_timeout"`
}

// LocationConfig places the dashboard for weather.
type LocationConfig struct {
	Name      string  `toml:"name" yaml:"name"`
	Latitude  float64 `toml:"latitude" yaml:"latitude"`
	Longitude float64 `toml:"longitude" yaml:"longitude"`
	// Units is "metric" or "imperial".
	Units string `toml:"units" yaml:"units"`
}

// DisplayConfig controls the TUI.
type DisplayConfig struct {
	Theme  string       `toml:"theme" yaml:"theme"`
	Layout LayoutConfig `toml:"layout" yaml:"layout"`
	// TimeFormat is a Go layout for the clock widget.
	TimeFormat string `toml:"time_format" yaml:"time_format"`
	// RenderInterval drives the UI refresh tick.
	RenderInterval Duration `toml:"render_interval" yaml:"render_interval"`
}

// LayoutConfig is a grid of widget rows. Rows and children are sized by
// their ratio relative to their siblings.
type LayoutConfig struct {
	Preset string      `toml:"preset" yaml:"preset"`
	Rows   []RowConfig `toml:"rows" yaml:"rows"`
}

// RowConfig is one horizontal band of widgets.
type RowConfig struct {
	Ratio    int           `toml:"ratio" yaml:"ratio"`
	Children []ChildConfig `toml:"children" yaml:"children"`
}

// ChildConfig places one widget within a row.
type ChildConfig struct {
	Type  string `toml:"type" yaml:"type"`
	Ratio int    `toml:"ratio" yaml:"ratio"`
}

// SourcesConfig holds per-source settings.
type SourcesConfig struct {
	Weather  WeatherConfig  `toml:"weather" yaml:"weather"`
	Calendar CalendarConfig `toml:"calendar" yaml:"calendar"`
	Transit  TransitConfig  `toml:"transit" yaml:"transit"`
	News     NewsConfig     `toml:"news" yaml:"news"`
	Host     HostConfig     `toml:"host" yaml:"host"`
}

// WeatherConfig configures the Open-Meteo source.
type WeatherConfig struct {
	Enabled  bool     `toml:"enabled" yaml:"enabled"`
	Interval Duration `toml:"interval" yaml:"interval"`
	Endpoint string   `toml:"endpoint" yaml:"endpoint"`
	Days     int      `toml:"days" yaml:"days"`
}

// CalendarConfig configures the ICS source.
type CalendarConfig struct {
	Enabled  bool     `toml:"enabled" yaml:"enabled"`
	Interval Duration `toml:"interval" yaml:"interval"`
	// Sources are ICS URLs or file paths.
	Sources []string `toml:"sources" yaml:"sources"`
	Horizon Duration `toml:"horizon" yaml:"horizon"`
	// Watch reloads local files when they change.
	Watch bool `toml:"watch" yaml:"watch"`
}

// TransitConfig configures the departures source.
type TransitConfig struct {
	Enabled  bool          `toml:"enabled" yaml:"enabled"`
	Interval Duration      `toml:"interval" yaml:"interval"`
	URL      string        `toml:"url" yaml:"url"`
	Paths    transit.Paths `toml:"paths" yaml:"paths"`
	// Direction, when set, is the widget's default filter.
	Direction string `toml:"direction" yaml:"direction"`
}

// NewsConfig configures the feed source.
type NewsConfig struct {
	Enabled      bool     `toml:"enabled" yaml:"enabled"`
	Interval     Duration `toml:"interval" yaml:"interval"`
	Feeds        []string `toml:"feeds" yaml:"feeds"`
	PerFeed      int      `toml:"per_feed" yaml:"per_feed"`
	MaxHeadlines int      `toml:"max_headlines" yaml:"max_headlines"`
}

// HostConfig configures the local host source.
type HostConfig struct {
	Enabled  bool     `toml:"enabled" yaml:"enabled"`
	Interval Duration `toml:"interval" yaml:"interval"`
	Mounts   []string `toml:"mounts" yaml:"mounts"`
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
		errs = append(errs, fmt.Errorf("location.latitude %v out of range [-90, 90]", c.Location.Latitude))
	}
	if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		errs = append(errs, fmt.Errorf("location.longitude %v out of range [-180, 180]", c.Location.Longitude))
	}
	switch c.Location.Units {
	case "metric", "imperial":
	default:
		errs = append(errs, fmt.Errorf("location.units %q must be metric or imperial", c.Location.Units))
	}

	if c.General.ClockInterval.Duration <= 0 {
		errs = append(errs, errors.New("general.clock_interval must be positive"))
	}

	check := func(name string, enabled bool, interval Duration) {
		if enabled && interval.Duration <= 0 {
			errs = append(errs, fmt.Errorf("sources.%s.interval must be positive", name))
		}
	}
	s := c.Sources
	check("weather", s.Weather.Enabled, s.Weather.Interval)
	check("calendar", s.Calendar.Enabled, s.Calendar.Interval)
	check("transit", s.Transit.Enabled, s.Transit.Interval)
	check("news", s.News.Enabled, s.News.Interval)
	check("host", s.Host.Enabled, s.Host.Interval)

	if s.Calendar.Enabled && len(s.Calendar.Sources) == 0 {
		errs = append(errs, errors.New("sources.calendar.sources is empty"))
	}
	if s.Transit.Enabled && s.Transit.URL == "" {
		errs = append(errs, errors.New("sources.transit.url is required"))
	}
	if s.News.Enabled && len(s.News.Feeds) == 0 {
		errs = append(errs, errors.New("sources.news.feeds is empty"))
	}

	for i, row := range c.Display.Layout.Rows {
		for _, child := range row.Children {
			if !knownWidget(child.Type) {
				errs = append(errs, fmt.Errorf("display.layout.rows[%d]: unknown widget %q", i, child.Type))
			}
		}
	}
	return errors.Join(errs...)
}

// WidgetTypes lists the widgets a layout may reference.
var WidgetTypes = []string{"clock", "weather", "calendar", "transit", "news", "host"}

func knownWidget(t string) bool {
	for _, w := range WidgetTypes {
		if w == t {
			return true
		}
	}
	return false
}
