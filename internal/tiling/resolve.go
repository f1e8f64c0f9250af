package tiling

import (
	"github.com/1broseidon/shelltweak/internal/placement"
)

const (
	// PlaceholderInset is subtracted from a band's thickness to get the side
	// of the squares inside it, and split evenly as end padding along the
	// band's long axis.
	PlaceholderInset = 8
	// ItemSpacing separates neighbouring dock items.
	ItemSpacing = 4
)

// Resolve composes the panel and dock placements into a non-overlapping
// arrangement. It is total and pure: every input maps to exactly one
// arrangement and nothing is mutated.
//
// Bands sharing an edge are ordered so the panel sits against the screen
// edge and the dock inside it. Horizontal-edge bands (top/bottom) form the
// outer column; vertical-edge bands (left/right) are nested in a row that
// fills the space between them, around the content area.
func Resolve(panel, dock placement.RegionSpec, dockItems int) Arrangement {
	panel = panel.Normalize(placement.Top)
	dock = dock.Normalize(placement.Bottom)
	if dockItems < 0 {
		dockItems = 0
	}

	// Outer-first: the panel claims the edge before the dock.
	var bands []Node
	if !panel.Hidden {
		bands = append(bands, panelBand(panel))
	}
	if !dock.Hidden {
		bands = append(bands, dockBand(dock, dockItems))
	}
	if len(bands) == 0 {
		return Arrangement{}
	}

	root := compose(bands)
	return Arrangement{Root: &root}
}

// ResolveSpec is Resolve over a full LayoutSpec.
func ResolveSpec(spec placement.LayoutSpec) Arrangement {
	return Resolve(spec.Panel, spec.Dock, spec.DockItemCount)
}

// compose places outer-first bands around the content node.
func compose(bands []Node) Node {
	atEdge := func(edge placement.Position) []Node {
		var out []Node
		for _, b := range bands {
			if b.Edge == edge {
				out = append(out, b)
			}
		}
		// Trailing edges list inner bands first so the outer band ends the
		// sequence. A Bottom/Bottom or Right/Right pair therefore reads dock
		// then panel in child order, with the panel still outermost.
		if !edge.Leading() {
			for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
				out[i], out[j] = out[j], out[i]
			}
		}
		return out
	}

	middle := Content()
	left, right := atEdge(placement.Left), atEdge(placement.Right)
	if len(left)+len(right) > 0 {
		middle = Stack(Row, bracket(left, middle, right)...)
	}

	top, bottom := atEdge(placement.Top), atEdge(placement.Bottom)
	if len(top)+len(bottom) == 0 {
		return middle
	}
	return Stack(Column, bracket(top, middle, bottom)...)
}

func bracket(before []Node, mid Node, after []Node) []Node {
	out := make([]Node, 0, len(before)+len(after)+1)
	out = append(out, before...)
	out = append(out, mid)
	return append(out, after...)
}

// longAxis is the direction a band on edge runs in.
func longAxis(edge placement.Position) Axis {
	if edge.Horizontal() {
		return Row
	}
	return Column
}

func squareSide(thickness int) int {
	side := thickness - PlaceholderInset
	if side < 0 {
		return 0
	}
	return side
}

func band(region Region, spec placement.RegionSpec, children []Node) Node {
	return Node{
		Kind:      KindBand,
		Axis:      longAxis(spec.Position),
		Region:    region,
		Edge:      spec.Position,
		Thickness: spec.Size,
		Extend:    spec.Extend,
		Children:  children,
	}
}

// panelBand holds two placeholders, pushed to the ends when extended.
func panelBand(spec placement.RegionSpec) Node {
	side := squareSide(spec.Size)
	if !spec.Extend {
		return band(RegionPanel, spec, Squares(2, side, 0))
	}
	children := make([]Node, 0, 3)
	children = append(children, Squares(1, side, 0)...)
	children = append(children, FlexSpacer())
	children = append(children, Squares(1, side, 0)...)
	return band(RegionPanel, spec, children)
}

func dockBand(spec placement.RegionSpec, items int) Node {
	return band(RegionDock, spec, Squares(items, squareSide(spec.Size), ItemSpacing))
}
