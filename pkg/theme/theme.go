// Package theme holds the dashboard color palettes. Colors are "#RRGGBB"
// strings; lipgloss downsamples them for terminals with fewer colors.
package theme

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownTheme is returned by Resolve for a name that is not registered.
var ErrUnknownTheme = errors.New("theme: unknown theme")

// Theme is a named palette.
type Theme struct {
	Name string

	Foreground string
	Dim        string
	Accent     string
	Title      string

	Border      string
	BorderFocus string

	OK    string
	Warn  string
	Error string

	Chart string
}

var (
	mu       sync.RWMutex
	registry = map[string]Theme{}
)

func init() {
	for _, t := range builtins() {
		registry[t.Name] = t
	}
}

// Default is the palette used when none is configured.
func Default() Theme { return defaultTheme() }

// Get returns the named theme.
func Get(name string) (Theme, bool) {
	mu.RLock()
	defer mu.RUnlock()
	t, ok := registry[strings.ToLower(name)]
	return t, ok
}

// Names returns every registered theme name, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds or replaces a theme after validating it.
func Register(t Theme) error {
	if err := t.Validate(); err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(t.Name)] = t
	return nil
}

// Resolve returns the theme for a display.theme setting, which is either a
// registered name or a path to a .toml theme file. An empty value is the
// default theme.
func Resolve(ref string) (Theme, error) {
	if ref == "" {
		return Default(), nil
	}
	if strings.EqualFold(filepath.Ext(ref), ".toml") {
		return LoadFile(ref)
	}
	if t, ok := Get(ref); ok {
		return t, nil
	}
	return Theme{}, fmt.Errorf("%w: %q (have %s)", ErrUnknownTheme, ref, strings.Join(Names(), ", "))
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate checks that the theme is named and every color is "#RRGGBB".
func (t Theme) Validate() error {
	if t.Name == "" {
		return errors.New("theme: missing name")
	}
	var errs []error
	for _, c := range t.colors() {
		if !hexColor.MatchString(*c.value) {
			errs = append(errs, fmt.Errorf("theme %s: %s: invalid color %q (want #RRGGBB)", t.Name, c.key, *c.value))
		}
	}
	return errors.Join(errs...)
}

type colorField struct {
	key   string
	value *string
}

// colors lists the color fields by their file key.
func (t *Theme) colors() []colorField {
	return []colorField{
		{"foreground", &t.Foreground},
		{"dim", &t.Dim},
		{"accent", &t.Accent},
		{"title", &t.Title},
		{"border", &t.Border},
		{"border_focus", &t.BorderFocus},
		{"ok", &t.OK},
		{"warn", &t.Warn},
		{"error", &t.Error},
		{"chart", &t.Chart},
	}
}
