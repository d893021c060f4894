package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const sampleTOML = `
[general]
log_level = "debug"
clock_interval = "500ms"

[location]
name = "Office"
latitude = 52.52
longitude = 13.40
units = "imperial"

[display]
theme = "nord"

[display.layout]
preset = "commute"

[sources.calendar]
enabled = true
sources = ["/tmp/work.ics", "https://example.com/cal.ics"]
horizon = "48h"

[sources.transit]
enabled = true
url = "https://transit.example/api"
interval = "20s"

[sources.transit.paths]
list = "data.stops"
due = "eta"
`

const sampleYAML = `
location:
  name: Cabin
  latitude: 61.2
  longitude: -149.9
sources:
  news:
    enabled: true
    feeds:
      - https://news.example/rss
    interval: 5m
display:
  layout:
    rows:
      - ratio: 1
        children:
          - type: news
            ratio: 1
`

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"INFOBOARD_LAT", "INFOBOARD_LON", "INFOBOARD_TRANSIT_URL", "INFOBOARD_THEME", "INFOBOARD_LAYOUT"} {
		t.Setenv(k, "")
	}
}

// --- Duration Tests ---

func TestDurationUnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30s", 30 * time.Second, false},
		{"1h30m", 90 * time.Minute, false},
		{"", 0, false},
		{"soon", 0, true},
		{"-5s", 0, true},
	}
	for _, tt := range tests {
		var d Duration
		err := d.UnmarshalText([]byte(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("UnmarshalText(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && d.Duration != tt.want {
			t.Errorf("UnmarshalText(%q) = %v, want %v", tt.in, d.Duration, tt.want)
		}
	}
}

// --- Load Tests ---

func TestLoadTOML(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromReader(strings.NewReader(sampleTOML), TOML)
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.General.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.General.LogLevel)
	}
	if cfg.General.ClockInterval.Duration != 500*time.Millisecond {
		t.Errorf("ClockInterval = %v, want 500ms", cfg.General.ClockInterval)
	}
	if cfg.Location.Units != "imperial" || cfg.Location.Latitude != 52.52 {
		t.Errorf("Location = %+v", cfg.Location)
	}
	if cfg.Sources.Calendar.Horizon.Duration != 48*time.Hour {
		t.Errorf("Horizon = %v, want 48h", cfg.Sources.Calendar.Horizon)
	}
	if cfg.Sources.Transit.Paths.List != "data.stops" || cfg.Sources.Transit.Paths.Due != "eta" {
		t.Errorf("Transit paths = %+v", cfg.Sources.Transit.Paths)
	}
	// defaults survive for unset keys
	if !cfg.Sources.Host.Enabled || cfg.Sources.Host.Interval.Duration != 5*time.Second {
		t.Errorf("Host = %+v, want defaults", cfg.Sources.Host)
	}
	// preset expanded into rows
	if diff := cmp.Diff([]string{"clock", "weather", "transit"}, cfg.Display.Layout.Widgets()); diff != "" {
		t.Errorf("layout widgets mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromReader(strings.NewReader(sampleYAML), YAML)
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Location.Name != "Cabin" {
		t.Errorf("Location.Name = %q, want Cabin", cfg.Location.Name)
	}
	if cfg.Sources.News.Interval.Duration != 5*time.Minute {
		t.Errorf("News.Interval = %v, want 5m", cfg.Sources.News.Interval)
	}
	if diff := cmp.Diff([]string{"news"}, cfg.Display.Layout.Widgets()); diff != "" {
		t.Errorf("custom rows mismatch (-want +got):\n%s", diff)
	}
	if cfg.Location.Units != "metric" {
		t.Errorf("Units = %q, want default metric", cfg.Location.Units)
	}
}

func TestLoadFromFilePicksFormat(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Location.Name != "Cabin" {
		t.Errorf("Location.Name = %q, want Cabin", cfg.Location.Name)
	}
}

func TestLoadFromFileMissingReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Display.Layout.Preset != "dashboard" || len(cfg.Display.Layout.Rows) == 0 {
		t.Errorf("Layout = %+v, want expanded dashboard preset", cfg.Display.Layout)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	if _, err := LoadFromReader(strings.NewReader("[general\n"), TOML); err == nil {
		t.Error("expected parse error")
	}
	if _, err := LoadFromReader(strings.NewReader("[general]\nclock_interval = \"fast\"\n"), TOML); err == nil {
		t.Error("expected duration error")
	}
}

func TestLoadSearchesXDG(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "infoboard"), 0o755); err != nil {
		t.Fatal(err)
	}
	_ = os.WriteFile(filepath.Join(dir, "infoboard", "config.toml"), []byte("[location]\nname = \"XDG\"\n"), 0o644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Location.Name != "XDG" {
		t.Errorf("Location.Name = %q, want XDG", cfg.Location.Name)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("INFOBOARD_LAT", "10.5")
	t.Setenv("INFOBOARD_LON", "not-a-number")
	t.Setenv("INFOBOARD_TRANSIT_URL", "https://env.example/deps")
	t.Setenv("INFOBOARD_LAYOUT", "compact")

	cfg, err := LoadFromReader(strings.NewReader(""), TOML)
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Location.Latitude != 10.5 {
		t.Errorf("Latitude = %v, want 10.5", cfg.Location.Latitude)
	}
	if cfg.Location.Longitude != DefaultConfig().Location.Longitude {
		t.Errorf("Longitude = %v, want default (bad env ignored)", cfg.Location.Longitude)
	}
	if !cfg.Sources.Transit.Enabled || cfg.Sources.Transit.URL != "https://env.example/deps" {
		t.Errorf("Transit = %+v", cfg.Sources.Transit)
	}
	if cfg.Display.Layout.Preset != "compact" || len(cfg.Display.Layout.Rows) != 2 {
		t.Errorf("Layout = %+v, want compact preset", cfg.Display.Layout)
	}
}

// --- Validate Tests ---

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	finish(cfg)
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Location.Latitude = 120
	cfg.Location.Units = "kelvin"
	cfg.Sources.Transit.Enabled = true
	cfg.Sources.Weather.Interval = Duration{}
	cfg.Display.Layout.Rows = []RowConfig{{Ratio: 1, Children: []ChildConfig{{Type: "stocks", Ratio: 1}}}}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want errors")
	}
	for _, want := range []string{"latitude", "kelvin", "transit.url", "weather.interval", "stocks"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate error missing %q:\n%v", want, err)
		}
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 5 {
		t.Errorf("expected 5 joined errors, got %v", err)
	}
}

// --- Preset Tests ---

func TestLayoutPresets(t *testing.T) {
	for _, name := range PresetNames() {
		l := LayoutPreset(name)
		if l.Preset != name {
			t.Errorf("LayoutPreset(%q).Preset = %q", name, l.Preset)
		}
		for _, w := range l.Widgets() {
			if !knownWidget(w) {
				t.Errorf("preset %q references unknown widget %q", name, w)
			}
		}
	}
	if LayoutPreset("unknown").Preset != "dashboard" {
		t.Error("unknown preset should fall back to dashboard")
	}
}
