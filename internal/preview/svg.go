package preview

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/1broseidon/shelltweak/internal/assets"
	"github.com/1broseidon/shelltweak/internal/tiling"
)

// SVG writes the placement as an SVG document sized to its container.
func SVG(w io.Writer, reg *assets.Registry, p tiling.Placement, showWindow bool) error {
	c := p.Container
	if c.Empty() {
		return fmt.Errorf("cannot render an empty container (%dx%d)", c.Width, c.Height)
	}

	doc := svg.New(w)
	doc.Start(c.Width, c.Height)
	doc.Title("shell layout preview")
	doc.Rect(0, 0, c.Width, c.Height, fill(reg.Style(assets.Screen)))

	if p.HasContent && showWindow && !p.Content.Empty() {
		win := p.Content
		inset := min(win.Width, win.Height) / 10
		doc.Rect(win.X-c.X+inset, win.Y-c.Y+inset, win.Width-2*inset, win.Height-2*inset,
			fill(reg.Style(assets.Content)))
	}

	for _, band := range p.Bands {
		name := assets.Panel
		if band.Region == tiling.RegionDock {
			name = assets.Dock
		}
		st := reg.Style(name)
		doc.Gid(string(band.Region))
		doc.Rect(band.Rect.X-c.X, band.Rect.Y-c.Y, band.Rect.Width, band.Rect.Height, fill(st))
		for _, item := range band.Items {
			if item.Empty() {
				continue
			}
			doc.Rect(item.X-c.X, item.Y-c.Y, item.Width, item.Height,
				fmt.Sprintf("fill:%s;stroke:none", st.Stroke))
		}
		doc.Gend()
	}
	doc.End()
	return nil
}

func fill(st assets.Style) string {
	return fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", st.Fill, st.Stroke)
}
