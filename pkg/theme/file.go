package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// fileTheme is the on-disk form of a theme:
//
//	name = "midnight"
//	base = "nord"
//
//	[colors]
//	accent = "#ff8800"
//
// Colors not listed come from base, or from the default theme.
type fileTheme struct {
	Name   string            `toml:"name"`
	Base   string            `toml:"base"`
	Colors map[string]string `toml:"colors"`
}

// LoadFile reads a TOML theme. The name defaults to the file name.
func LoadFile(path string) (Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("theme: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return Theme{}, fmt.Errorf("theme %s: %w", path, err)
	}
	if t.Name == "" {
		t.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err := t.Validate(); err != nil {
			return Theme{}, err
		}
	}
	return t, nil
}

// Parse decodes a TOML theme definition. A missing name is left empty for
// the caller to fill.
func Parse(data []byte) (Theme, error) {
	var ft fileTheme
	md, err := toml.Decode(string(data), &ft)
	if err != nil {
		return Theme{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Theme{}, fmt.Errorf("unknown key %s", undecoded[0])
	}

	t := Default()
	if ft.Base != "" {
		base, ok := Get(ft.Base)
		if !ok {
			return Theme{}, fmt.Errorf("%w: base %q", ErrUnknownTheme, ft.Base)
		}
		t = base
	}
	t.Name = ft.Name

	fields := map[string]*string{}
	for _, c := range t.colors() {
		fields[c.key] = c.value
	}
	for key, value := range ft.Colors {
		dst, ok := fields[key]
		if !ok {
			return Theme{}, fmt.Errorf("unknown color %q", key)
		}
		*dst = value
	}
	if t.Name == "" {
		return t, nil
	}
	return t, t.Validate()
}
