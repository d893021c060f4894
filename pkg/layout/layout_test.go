package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// --- Split Tests ---

func TestSplit(t *testing.T) {
	tests := []struct {
		total   int
		weights []int
		want    []int
	}{
		{10, []int{1, 1}, []int{5, 5}},
		{10, []int{1, 2}, []int{3, 7}},
		{10, []int{1, 1, 1}, []int{4, 3, 3}},
		{7, []int{0, 1}, []int{4, 3}},
		{0, []int{1, 1}, []int{0, 0}},
		{5, nil, []int{}},
	}
	for _, tt := range tests {
		got := Split(tt.total, tt.weights)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Split(%d, %v) mismatch (-want +got):\n%s", tt.total, tt.weights, diff)
		}
	}
}

func TestSplitAlwaysSumsToTotal(t *testing.T) {
	for total := 1; total < 50; total++ {
		parts := Split(total, []int{3, 5, 7, 2})
		sum := 0
		for _, p := range parts {
			sum += p
		}
		if sum != total {
			t.Errorf("Split(%d) sums to %d", total, sum)
		}
	}
}

// --- Grid Tests ---

func TestGrid(t *testing.T) {
	rows := []Row{
		{Weight: 1, Items: []Item{{ID: "clock", Weight: 1}, {ID: "weather", Weight: 3}}},
		{Weight: 0, Items: nil},
		{Weight: 3, Items: []Item{{ID: "calendar", Weight: 1}}},
	}
	got := Grid(rows, Rect{X: 0, Y: 0, Width: 80, Height: 24})
	want := []Cell{
		{ID: "clock", Rect: Rect{X: 0, Y: 0, Width: 20, Height: 6}},
		{ID: "weather", Rect: Rect{X: 20, Y: 0, Width: 60, Height: 6}},
		{ID: "calendar", Rect: Rect{X: 0, Y: 6, Width: 80, Height: 18}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Grid mismatch (-want +got):\n%s", diff)
	}
}

func TestGridEmpty(t *testing.T) {
	if cells := Grid(nil, Rect{Width: 10, Height: 10}); cells != nil {
		t.Errorf("Grid(nil) = %v", cells)
	}
	rows := []Row{{Weight: 1, Items: []Item{{ID: "a", Weight: 1}}}}
	if cells := Grid(rows, Rect{}); cells != nil {
		t.Errorf("Grid(empty area) = %v", cells)
	}
}

// --- Rect Tests ---

func TestRect(t *testing.T) {
	r := Rect{X: 2, Y: 3, Width: 4, Height: 2}
	if !r.Contains(2, 3) || !r.Contains(5, 4) || r.Contains(6, 4) || r.Contains(2, 5) {
		t.Error("Contains boundaries wrong")
	}
	if in := r.Inner(1); in != (Rect{X: 3, Y: 4, Width: 2, Height: 0}) {
		t.Errorf("Inner(1) = %+v", in)
	}
	if !r.Inner(5).Empty() {
		t.Error("Inner(5) should be empty")
	}
}
