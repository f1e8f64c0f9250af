package x11

import (
	"sort"

	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/shelltweak/internal/placement"
	"github.com/1broseidon/shelltweak/internal/tiling"
)

// extendRatio is the share of the monitor edge a strut has to cover to count
// as an extended band.
const extendRatio = 0.95

// Strut is the area one dock client reserves along one monitor edge.
type Strut struct {
	Window uint32
	Name   string
	Edge   placement.Position
	// Rect is the reserved area clipped to the monitor.
	Rect tiling.Rect
}

// Thickness is the strut's extent perpendicular to its edge.
func (s Strut) Thickness() int {
	if s.Edge.Horizontal() {
		return s.Rect.Height
	}
	return s.Rect.Width
}

// Length is the strut's extent along its edge.
func (s Strut) Length() int {
	if s.Edge.Horizontal() {
		return s.Rect.Width
	}
	return s.Rect.Height
}

// strutBands converts a _NET_WM_STRUT_PARTIAL into per-edge rectangles that
// intersect monitor.
func strutBands(monitor Monitor, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial) []Strut {
	mon := monitor.Rect()
	var out []Strut
	add := func(edge placement.Position, r tiling.Rect) {
		clipped := mon.Intersect(r)
		if clipped.Empty() {
			return
		}
		out = append(out, Strut{Edge: edge, Rect: clipped})
	}

	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		add(placement.Top, tiling.Rect{
			X: int(sp.TopStartX), Y: 0,
			Width: int(sp.TopEndX) - int(sp.TopStartX) + 1, Height: int(sp.Top),
		})
	}
	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		add(placement.Bottom, tiling.Rect{
			X: int(sp.BottomStartX), Y: rootHeight - int(sp.Bottom),
			Width: int(sp.BottomEndX) - int(sp.BottomStartX) + 1, Height: int(sp.Bottom),
		})
	}
	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		add(placement.Left, tiling.Rect{
			X: 0, Y: int(sp.LeftStartY),
			Width: int(sp.Left), Height: int(sp.LeftEndY) - int(sp.LeftStartY) + 1,
		})
	}
	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		add(placement.Right, tiling.Rect{
			X: rootWidth - int(sp.Right), Y: int(sp.RightStartY),
			Width: int(sp.Right), Height: int(sp.RightEndY) - int(sp.RightStartY) + 1,
		})
	}
	return out
}

// InferPlacement guesses the layout of the running shell from the struts on
// monitor. The strut covering the largest share of its edge becomes the
// panel and the next one the dock; a missing dock is hidden. It reports false
// when there are no struts at all.
func InferPlacement(monitor Monitor, struts []Strut) (placement.LayoutSpec, bool) {
	if len(struts) == 0 {
		return placement.LayoutSpec{}, false
	}

	coverage := func(s Strut) float64 {
		edge := monitor.Height
		if s.Edge.Horizontal() {
			edge = monitor.Width
		}
		if edge <= 0 {
			return 0
		}
		return float64(s.Length()) / float64(edge)
	}

	sorted := append([]Strut(nil), struts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := coverage(sorted[i]), coverage(sorted[j])
		if ci != cj {
			return ci > cj
		}
		return sorted[i].Thickness() < sorted[j].Thickness()
	})

	region := func(s Strut) placement.RegionSpec {
		return placement.RegionSpec{
			Position: s.Edge,
			Extend:   coverage(s) >= extendRatio,
			Size:     s.Thickness(),
		}
	}

	spec := placement.Default()
	spec.Panel = region(sorted[0])
	if len(sorted) > 1 {
		spec.Dock = region(sorted[1])
	} else {
		spec.Dock.Hidden = true
	}
	return spec, true
}
