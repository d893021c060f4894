// Package terminal inspects the output terminal for one-shot renders.
package terminal

import (
	"os"
	"strconv"

	"github.com/charmbracelet/x/term"
)

// Size is a terminal's dimensions in character cells.
type Size struct {
	Cols int
	Rows int
}

// DefaultSize is used when nothing reports a size.
var DefaultSize = Size{Cols: 80, Rows: 24}

// GetSize returns the terminal dimensions. It tries stdout, then stderr,
// then COLUMNS and LINES, then DefaultSize.
func GetSize() Size {
	for _, f := range []*os.File{os.Stdout, os.Stderr} {
		if s, ok := GetSizeFromFd(f.Fd()); ok {
			return s
		}
	}
	return sizeFromEnv()
}

// GetSizeFromFd asks the terminal behind fd for its size.
func GetSizeFromFd(fd uintptr) (Size, bool) {
	w, h, err := term.GetSize(fd)
	if err != nil || w <= 0 || h <= 0 {
		return Size{}, false
	}
	return Size{Cols: w, Rows: h}, true
}

func sizeFromEnv() Size {
	return Size{
		Cols: envInt("COLUMNS", DefaultSize.Cols),
		Rows: envInt("LINES", DefaultSize.Rows),
	}
}

// envInt reads a positive integer from the named variable, or returns
// fallback.
func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
