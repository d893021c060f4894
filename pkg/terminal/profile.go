package terminal

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ColorProfile picks the color profile for output written to f. Pipes and
// dumb terminals get plain text; NO_COLOR and CLICOLOR_FORCE are honored.
func ColorProfile(f *os.File) termenv.Profile {
	if os.Getenv("CLICOLOR_FORCE") == "" && !IsTerminal(f) {
		return termenv.Ascii
	}
	if os.Getenv("TERM") == "dumb" {
		return termenv.Ascii
	}
	return termenv.NewOutput(f).EnvColorProfile()
}
