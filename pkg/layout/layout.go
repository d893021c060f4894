// Package layout splits the terminal into the widget grid. A layout is a
// list of rows; each row takes a share of the height by weight and divides
// its width among its items the same way.
package layout

// Rect represents a rectangular area in terminal cells.
type Rect struct {
	X, Y, Width, Height int
}

// Empty returns true if this rectangle has zero area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains returns true if the point (px, py) lies within this rectangle.
func (r Rect) Contains(px, py int) bool {
	return px >= r.X && px < r.X+r.Width && py >= r.Y && py < r.Y+r.Height
}

// Inner returns r shrunk by margin on all sides, never negative.
func (r Rect) Inner(margin int) Rect {
	margin = max(margin, 0)
	return Rect{
		X:      r.X + margin,
		Y:      r.Y + margin,
		Width:  max(r.Width-2*margin, 0),
		Height: max(r.Height-2*margin, 0),
	}
}

// Item is one widget in a row.
type Item struct {
	ID     string
	Weight int
}

// Row is a horizontal band of items.
type Row struct {
	Weight int
	Items  []Item
}

// Cell is a placed item.
type Cell struct {
	ID string
	Rect
}

// Grid places every item of rows inside area. Rows without items take no
// space. Cells are returned in row-major order.
func Grid(rows []Row, area Rect) []Cell {
	var live []Row
	for _, r := range rows {
		if len(r.Items) > 0 {
			live = append(live, r)
		}
	}
	if len(live) == 0 || area.Empty() {
		return nil
	}

	heights := make([]int, len(live))
	for i, r := range live {
		heights[i] = r.Weight
	}
	heights = Split(area.Height, heights)

	var cells []Cell
	y := area.Y
	for i, r := range live {
		weights := make([]int, len(r.Items))
		for j, it := range r.Items {
			weights[j] = it.Weight
		}
		x := area.X
		for j, w := range Split(area.Width, weights) {
			cells = append(cells, Cell{ID: r.Items[j].ID, Rect: Rect{X: x, Y: y, Width: w, Height: heights[i]}})
			x += w
		}
		y += heights[i]
	}
	return cells
}

// Split divides total cells by weight using largest remainders, so the
// parts always sum to total. Weights below 1 count as 1.
func Split(total int, weights []int) []int {
	out := make([]int, len(weights))
	if len(weights) == 0 || total <= 0 {
		return out
	}
	sum := 0
	for _, w := range weights {
		sum += max(w, 1)
	}

	used := 0
	rem := make([]int, len(weights))
	for i, w := range weights {
		w = max(w, 1)
		out[i] = total * w / sum
		rem[i] = total * w % sum
		used += out[i]
	}
	for ; used < total; used++ {
		best := 0
		for i := range rem {
			if rem[i] > rem[best] {
				best = i
			}
		}
		out[best]++
		rem[best] = -1
	}
	return out
}
