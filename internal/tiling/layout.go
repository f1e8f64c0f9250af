package tiling

// Rect is an axis-aligned rectangle in preview units.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Intersects reports whether two rectangles share a region of positive area.
// Rectangles that only touch along an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	if r.Empty() || o.Empty() {
		return false
	}
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y &&
		o.X+o.Width <= r.X+r.Width &&
		o.Y+o.Height <= r.Y+r.Height
}

// Intersect returns the overlapping part of r and o (possibly empty).
func (r Rect) Intersect(o Rect) Rect {
	x1, y1 := max(r.X, o.X), max(r.Y, o.Y)
	x2 := min(r.X+r.Width, o.X+o.Width)
	y2 := min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{X: x1, Y: y1}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// span returns the start and length of r along axis.
func span(r Rect, axis Axis) (start, length int) {
	if axis == Row {
		return r.X, r.Width
	}
	return r.Y, r.Height
}

// slice cuts the sub-rectangle [off, off+length) of r along axis, keeping
// the full extent on the cross axis.
func slice(r Rect, axis Axis, off, length int) Rect {
	if axis == Row {
		return Rect{X: r.X + off, Y: r.Y, Width: length, Height: r.Height}
	}
	return Rect{X: r.X, Y: r.Y + off, Width: r.Width, Height: length}
}

// Squares produces n equally sized placeholders separated by fixed spacers
// of the given length. The enclosing band decides the orientation.
func Squares(n, side, spacing int) []Node {
	if n <= 0 {
		return nil
	}
	out := make([]Node, 0, 2*n-1)
	for i := 0; i < n; i++ {
		if i > 0 && spacing > 0 {
			out = append(out, FixedSpacer(spacing))
		}
		out = append(out, Square(side))
	}
	return out
}

// GridColumns determines how many items of at least minItem width fit in
// available with spacing between them, and the width each item gets.
// It always returns at least one column.
func GridColumns(available, minItem, spacing int) (columns, itemWidth int) {
	if available < 0 {
		available = 0
	}
	if spacing < 0 {
		spacing = 0
	}
	if minItem < 1 {
		minItem = 1
	}

	columns = (available + spacing) / (minItem + spacing)
	if columns < 1 {
		columns = 1
	}
	itemWidth = (available - (columns-1)*spacing) / columns
	if itemWidth < 0 {
		itemWidth = 0
	}
	return columns, itemWidth
}
