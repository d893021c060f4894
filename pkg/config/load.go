package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format selects the decoder for a config document.
type Format int

const (
	TOML Format = iota
	YAML
)

// FormatFor picks the format from a file extension. Anything other than
// .yaml or .yml is TOML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return TOML
}

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/infoboard/config.toml (then config.yaml)
//  2. ~/.config/infoboard/config.toml (then config.yaml)
//
// If no file exists, returns DefaultConfig() with env overrides applied.
func Load() (*Config, error) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	finish(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path. A missing
// file yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			finish(cfg)
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()

	cfg, err := LoadFromReader(f, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a config document over the defaults.
func LoadFromReader(r io.Reader, format Format) (*Config, error) {
	cfg := DefaultConfig()
	switch format {
	case YAML:
		if err := yaml.NewDecoder(r).Decode(cfg); err != nil && err != io.EOF {
			return nil, err
		}
	default:
		if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
			return nil, err
		}
	}
	applyEnvOverrides(cfg)
	finish(cfg)
	return cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	logFile := filepath.Join(xdgStateHome(home), "infoboard", "infoboard.log")

	return &Config{
		General: GeneralConfig{
			LogLevel:       "info",
			LogFile:        logFile,
			ClockInterval:  Duration{time.Second},
			RequestTimeout: Duration{15 * time.Second},
		},
		Location: LocationConfig{
			Name:      "Home",
			Latitude:  45.5152,
			Longitude: -122.6784,
			Units:     "metric",
		},
		Display: DisplayConfig{
			Theme:          "default",
			Layout:         LayoutConfig{Preset: "dashboard"},
			TimeFormat:     "15:04:05",
			RenderInterval: Duration{time.Second},
		},
		Sources: SourcesConfig{
			Weather: WeatherConfig{
				Enabled:  true,
				Interval: Duration{15 * time.Minute},
				Days:     3,
			},
			Calendar: CalendarConfig{
				Enabled:  false,
				Interval: Duration{10 * time.Minute},
				Horizon:  Duration{7 * 24 * time.Hour},
				Watch:    true,
			},
			Transit: TransitConfig{
				Enabled:  false,
				Interval: Duration{30 * time.Second},
			},
			News: NewsConfig{
				Enabled:      false,
				Interval:     Duration{15 * time.Minute},
				PerFeed:      10,
				MaxHeadlines: 100,
			},
			Host: HostConfig{
				Enabled:  true,
				Interval: Duration{5 * time.Second},
			},
		},
	}
}

// finish fills derived settings after decoding.
func finish(cfg *Config) {
	if len(cfg.Display.Layout.Rows) == 0 {
		cfg.Display.Layout = LayoutPreset(cfg.Display.Layout.Preset)
	}
}

// applyEnvOverrides checks environment variables and overrides config values.
// Unparseable numbers are ignored.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INFOBOARD_LAT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Location.Latitude = f
		}
	}
	if v := os.Getenv("INFOBOARD_LON"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Location.Longitude = f
		}
	}
	if v := os.Getenv("INFOBOARD_TRANSIT_URL"); v != "" {
		cfg.Sources.Transit.URL = v
		cfg.Sources.Transit.Enabled = true
	}
	if v := os.Getenv("INFOBOARD_THEME"); v != "" {
		cfg.Display.Theme = v
	}
	if v := os.Getenv("INFOBOARD_LAYOUT"); v != "" {
		cfg.Display.Layout = LayoutConfig{Preset: v}
	}
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	dirs := []string{filepath.Join(xdgConfigHome(home), "infoboard")}

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	defaultDir := filepath.Join(home, ".config", "infoboard")
	if dirs[0] != defaultDir {
		dirs = append(dirs, defaultDir)
	}

	var paths []string
	for _, d := range dirs {
		paths = append(paths,
			filepath.Join(d, "config.toml"),
			filepath.Join(d, "config.yaml"),
		)
	}
	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

// xdgStateHome returns XDG_STATE_HOME or ~/.local/state as fallback.
func xdgStateHome(home string) string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".local", "state")
}
