package tui

import (
	"github.com/1broseidon/shelltweak/internal/assets"
	"github.com/1broseidon/shelltweak/internal/placement"
	"github.com/1broseidon/shelltweak/internal/preview"
	"github.com/1broseidon/shelltweak/internal/tiling"
)

// cellAspect is the height/width ratio of a terminal cell.
const cellAspect = 2

// previewer renders placements at the aspect ratio of the screen.
type previewer struct {
	reg    *assets.Registry
	memo   *tiling.Memo
	screen tiling.Rect
	color  bool
}

func (p previewer) place(spec placement.LayoutSpec) tiling.Placement {
	return tiling.Place(p.memo.ResolveSpec(spec), p.screen)
}

// render draws spec inside a width x height cell area. The canvas is shrunk
// along one axis to keep the screen's proportions.
func (p previewer) render(spec placement.LayoutSpec, width, height int) []string {
	w, h := fitCanvas(p.screen, width, height)
	placed := p.place(spec)
	if p.color {
		return preview.Styled(p.reg, placed, w, h, spec.ShowWindow)
	}
	return preview.ASCII(p.reg, placed, w, h, spec.ShowWindow)
}

func (p previewer) summary(spec placement.LayoutSpec) string {
	return preview.Summary(p.place(spec))
}

// fitCanvas returns the largest canvas inside width x height whose cell
// proportions match screen.
func fitCanvas(screen tiling.Rect, width, height int) (int, int) {
	if screen.Empty() || width <= 0 || height <= 0 {
		return width, height
	}
	// Height in cells needed to show the full width.
	h := width * screen.Height / (screen.Width * cellAspect)
	if h <= height {
		if h < preview.MinHeight {
			h = min(height, preview.MinHeight)
		}
		return width, h
	}
	w := height * screen.Width * cellAspect / screen.Height
	if w < preview.MinWidth {
		w = min(width, preview.MinWidth)
	}
	return w, height
}
