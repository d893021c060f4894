package components

import (
	"strings"
	"testing"
)

// --- Text Tests ---

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 6, "hello…"},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}

	styled := Truncate("\x1b[31mred text\x1b[0m", 4)
	if VisibleLen(styled) != 4 || !strings.Contains(styled, "red") {
		t.Errorf("Truncate(styled) = %q", styled)
	}
}

func TestPadding(t *testing.T) {
	if got := PadRight("ab", 4); got != "ab  " {
		t.Errorf("PadRight = %q", got)
	}
	if got := PadLeft("ab", 4); got != "  ab" {
		t.Errorf("PadLeft = %q", got)
	}
	if got := PadRight("abcdef", 4); got != "abcdef" {
		t.Errorf("PadRight wide = %q", got)
	}
}

func TestSpread(t *testing.T) {
	if got := Spread("12", "08:05", 10); got != "12   08:05" {
		t.Errorf("Spread = %q", got)
	}
	if got := Spread("Downtown express", "08:05", 10); VisibleLen(got) != 10 || strings.Contains(got, "08:05") {
		t.Errorf("Spread overflow = %q", got)
	}
}

func TestFit(t *testing.T) {
	got := Fit([]string{"a very long line", "b"}, 5, 3)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("Fit lines = %d, want 3", len(lines))
	}
	for i, l := range lines {
		if VisibleLen(l) != 5 {
			t.Errorf("line %d width = %d, want 5 (%q)", i, VisibleLen(l), l)
		}
	}
	if Fit(nil, 0, 3) != "" {
		t.Error("Fit with zero width should be empty")
	}
}

// --- Sparkline Tests ---

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 7}, 10); got != "▁█" {
		t.Errorf("Sparkline = %q, want ▁█", got)
	}
	if got := Sparkline([]float64{2, 2, 2}, 10); got != "▄▄▄" {
		t.Errorf("flat Sparkline = %q, want ▄▄▄", got)
	}
	if got := Sparkline([]float64{9, 0, 1, 2}, 3); got != "▁▅█" {
		t.Errorf("windowed Sparkline = %q, want ▁▅█", got)
	}
	if Sparkline(nil, 5) != "" {
		t.Error("empty data should render nothing")
	}
}

// --- Bar Tests ---

func TestBar(t *testing.T) {
	tests := []struct {
		ratio float64
		width int
		want  string
	}{
		{0, 4, "    "},
		{1, 4, "████"},
		{0.5, 4, "██  "},
		{0.5625, 4, "██▎ "},
		{1.5, 2, "██"},
		{-1, 2, "  "},
	}
	for _, tt := range tests {
		if got := Bar(tt.ratio, tt.width); got != tt.want {
			t.Errorf("Bar(%v, %d) = %q, want %q", tt.ratio, tt.width, got, tt.want)
		}
	}
}
