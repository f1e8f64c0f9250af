// Package preview draws placed arrangements for people to look at: a rune
// canvas for the terminal, a coloured variant of it, and SVG.
package preview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/shelltweak/internal/assets"
	"github.com/1broseidon/shelltweak/internal/tiling"
)

// Minimum canvas size that still has room for a border and one cell.
const (
	MinWidth  = 5
	MinHeight = 3
)

type canvas struct {
	width, height int
	cells         [][]rune
	owner         [][]string
}

func newCanvas(width, height int) *canvas {
	c := &canvas{width: width, height: height}
	c.cells = make([][]rune, height)
	c.owner = make([][]string, height)
	for y := range c.cells {
		c.cells[y] = make([]rune, width)
		c.owner[y] = make([]string, width)
		for x := range c.cells[y] {
			c.cells[y][x] = ' '
		}
	}
	return c
}

func (c *canvas) set(x, y int, r rune, style string) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.cells[y][x] = r
	c.owner[y][x] = style
}

// cellBox is an inclusive rectangle of canvas cells.
type cellBox struct{ x1, y1, x2, y2 int }

func (b cellBox) boxed() bool { return b.x2-b.x1 >= 2 && b.y2-b.y1 >= 2 }

// scale maps placement coordinates onto the canvas interior, one cell in
// from the screen border.
type scale struct {
	container tiling.Rect
	w, h      int
}

func (s scale) box(r tiling.Rect) (cellBox, bool) {
	if r.Empty() || s.container.Empty() {
		return cellBox{}, false
	}
	x1 := 1 + (r.X-s.container.X)*s.w/s.container.Width
	y1 := 1 + (r.Y-s.container.Y)*s.h/s.container.Height
	x2 := 1 + (r.X+r.Width-s.container.X)*s.w/s.container.Width - 1
	y2 := 1 + (r.Y+r.Height-s.container.Y)*s.h/s.container.Height - 1

	// Anything with area gets at least one cell.
	x2 = max(x2, x1)
	y2 = max(y2, y1)
	x1, y1 = max(x1, 1), max(y1, 1)
	x2, y2 = min(x2, s.w), min(y2, s.h)
	if x2 < x1 || y2 < y1 {
		return cellBox{}, false
	}
	return cellBox{x1, y1, x2, y2}, true
}

func (c *canvas) drawFrame(b cellBox, g assets.Glyphs, style string) {
	for x := b.x1; x <= b.x2; x++ {
		c.set(x, b.y1, g.Horizontal, style)
		c.set(x, b.y2, g.Horizontal, style)
	}
	for y := b.y1; y <= b.y2; y++ {
		c.set(b.x1, y, g.Vertical, style)
		c.set(b.x2, y, g.Vertical, style)
	}
	c.set(b.x1, b.y1, g.TopLeft, style)
	c.set(b.x2, b.y1, g.TopRight, style)
	c.set(b.x1, b.y2, g.BottomLeft, style)
	c.set(b.x2, b.y2, g.BottomRight, style)
}

func (c *canvas) fill(b cellBox, r rune, style string) {
	for y := b.y1; y <= b.y2; y++ {
		for x := b.x1; x <= b.x2; x++ {
			c.set(x, y, r, style)
		}
	}
}

func (c *canvas) drawBand(s scale, band tiling.PlacedBand, st assets.Style, name string) {
	b, ok := s.box(band.Rect)
	if !ok {
		return
	}
	inner := b
	if b.boxed() {
		c.drawFrame(b, st.Glyphs, name)
		inner = cellBox{b.x1 + 1, b.y1 + 1, b.x2 - 1, b.y2 - 1}
	} else {
		// Too thin for a frame: draw the band as a line.
		line := st.Glyphs.Horizontal
		if b.y2-b.y1 > b.x2-b.x1 {
			line = st.Glyphs.Vertical
		}
		c.fill(b, line, name)
	}
	for _, item := range band.Items {
		ib, ok := s.box(item)
		if !ok {
			continue
		}
		ib = cellBox{max(ib.x1, inner.x1), max(ib.y1, inner.y1), min(ib.x2, inner.x2), min(ib.y2, inner.y2)}
		if ib.x2 < ib.x1 || ib.y2 < ib.y1 {
			continue
		}
		c.fill(ib, st.Glyphs.Item, name)
	}
}

func render(reg *assets.Registry, p tiling.Placement, width, height int, showWindow bool) *canvas {
	c := newCanvas(width, height)
	s := scale{container: p.Container, w: width - 2, h: height - 2}

	if p.HasContent && showWindow {
		if b, ok := s.box(p.Content); ok {
			// Leave a one-cell margin around the window when there is room.
			if b.x2-b.x1 >= 4 && b.y2-b.y1 >= 4 {
				b = cellBox{b.x1 + 1, b.y1 + 1, b.x2 - 1, b.y2 - 1}
			}
			if b.boxed() {
				c.drawFrame(b, reg.Style(assets.Content).Glyphs, assets.Content)
			}
		}
	}
	for _, band := range p.Bands {
		name := assets.Panel
		if band.Region == tiling.RegionDock {
			name = assets.Dock
		}
		c.drawBand(s, band, reg.Style(name), name)
	}
	c.drawFrame(cellBox{0, 0, width - 1, height - 1}, reg.Style(assets.Screen).Glyphs, assets.Screen)
	return c
}

// ASCII draws a placement on a width×height rune canvas. The placement's
// container is scaled to fit inside a screen border. When showWindow is set
// a window frame is drawn in the content area.
func ASCII(reg *assets.Registry, p tiling.Placement, width, height int, showWindow bool) []string {
	if width < MinWidth || height < MinHeight {
		return emptyCanvas(width, height)
	}
	c := render(reg, p, width, height, showWindow)
	lines := make([]string, height)
	for y, row := range c.cells {
		lines[y] = string(row)
	}
	return lines
}

// Styled is ASCII with each element coloured by its registry style.
func Styled(reg *assets.Registry, p tiling.Placement, width, height int, showWindow bool) []string {
	if width < MinWidth || height < MinHeight {
		return emptyCanvas(width, height)
	}
	c := render(reg, p, width, height, showWindow)
	styles := map[string]lipgloss.Style{}
	for _, name := range reg.Names() {
		styles[name] = lipgloss.NewStyle().Foreground(lipgloss.Color(reg.Style(name).ANSI))
	}

	lines := make([]string, height)
	for y, row := range c.cells {
		var b strings.Builder
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && c.owner[y][x] == c.owner[y][start] {
				continue
			}
			run := string(row[start:x])
			if st, ok := styles[c.owner[y][start]]; ok {
				run = st.Render(run)
			}
			b.WriteString(run)
			start = x
		}
		lines[y] = b.String()
	}
	return lines
}

func emptyCanvas(width, height int) []string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	lines := make([]string, height)
	empty := strings.Repeat(" ", width)
	for i := range lines {
		lines[i] = empty
	}
	return lines
}
