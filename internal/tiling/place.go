package tiling

import (
	"github.com/1broseidon/shelltweak/internal/placement"
)

// PlacedBand is a band laid out inside a container.
type PlacedBand struct {
	Region Region             `json:"region"`
	Edge   placement.Position `json:"edge"`
	Rect   Rect               `json:"rect"`
	Items  []Rect             `json:"items,omitempty"`
}

// Placement is an arrangement laid out inside a concrete rectangle.
type Placement struct {
	Container  Rect         `json:"container"`
	Bands      []PlacedBand `json:"bands"`
	Content    Rect         `json:"content"`
	HasContent bool         `json:"has_content"`
}

// Band returns the placed band for region, if present.
func (p Placement) Band(region Region) (PlacedBand, bool) {
	for _, b := range p.Bands {
		if b.Region == region {
			return b, true
		}
	}
	return PlacedBand{}, false
}

// Place lays an arrangement out inside container. Fixed-size children get
// their thickness (clamped to what is left, in order), flexible children
// share the rest. A band that does not extend is shrunk to its content and
// centred in its slot.
func Place(arr Arrangement, container Rect) Placement {
	p := Placement{Container: container}
	if arr.Root == nil {
		return p
	}
	p.layout(*arr.Root, container)
	return p
}

func (p *Placement) layout(n Node, r Rect) {
	switch n.Kind {
	case KindStack:
		_, length := span(r, n.Axis)
		lengths := distribute(n.Children, length)
		off := 0
		for i, c := range n.Children {
			p.layout(c, slice(r, n.Axis, off, lengths[i]))
			off += lengths[i]
		}
	case KindBand:
		p.Bands = append(p.Bands, placeBand(n, r))
	case KindContent:
		p.Content = r
		p.HasContent = true
	}
}

// placeBand sizes the band within its slot and lays out its placeholders.
func placeBand(n Node, slot Rect) PlacedBand {
	_, slotLen := span(slot, n.Axis)
	length := slotLen
	if !n.Extend {
		if want := contentLength(n); want < length {
			length = want
		}
	}
	rect := slice(slot, n.Axis, (slotLen-length)/2, length)
	out := PlacedBand{Region: n.Region, Edge: n.Edge, Rect: rect}
	if len(n.Children) == 0 {
		return out
	}

	pad := PlaceholderInset / 2
	inner := length - 2*pad
	if inner < 0 {
		pad, inner = 0, length
	}
	children := fitChildren(n.Children, inner)
	lengths := distribute(children, inner)

	crossStart, crossLen := span(rect, n.Axis.Cross())
	off := pad
	for i, c := range children {
		if c.Kind == KindSquare {
			side := c.Thickness
			crossOff := (crossLen - side) / 2
			var sq Rect
			if n.Axis == Row {
				sq = Rect{X: rect.X + off, Y: crossStart + crossOff, Width: side, Height: side}
			} else {
				sq = Rect{X: crossStart + crossOff, Y: rect.Y + off, Width: side, Height: side}
			}
			out.Items = append(out.Items, sq.Intersect(rect))
		}
		off += lengths[i]
	}
	return out
}

// fitChildren scales every fixed child by the same factor when together
// they need more than length, so placeholders stay equal and never
// overlap. Placeholders that scale to nothing stay in the list as empty
// squares.
func fitChildren(children []Node, length int) []Node {
	need := 0
	for _, c := range children {
		if !c.flexible() {
			need += c.Thickness
		}
	}
	if need <= length {
		return children
	}
	out := make([]Node, len(children))
	for i, c := range children {
		if !c.flexible() {
			c.Thickness = c.Thickness * max(length, 0) / need
		}
		out[i] = c
	}
	return out
}

// contentLength is the long-axis length a band needs for its children.
// An empty band is a square of its own thickness.
func contentLength(n Node) int {
	if len(n.Children) == 0 {
		return n.Thickness
	}
	total := PlaceholderInset
	for _, c := range n.Children {
		if !c.flexible() {
			total += c.Thickness
		}
	}
	return max(total, n.Thickness)
}

// distribute assigns each child a length along its parent's axis.
func distribute(children []Node, total int) []int {
	lengths := make([]int, len(children))
	remaining := max(total, 0)
	flex := 0
	for i, c := range children {
		if c.flexible() {
			flex++
			continue
		}
		l := min(c.Thickness, remaining)
		lengths[i] = l
		remaining -= l
	}
	if flex == 0 {
		return lengths
	}
	share, extra := remaining/flex, remaining%flex
	for i, c := range children {
		if !c.flexible() {
			continue
		}
		lengths[i] = share
		if extra > 0 {
			lengths[i]++
			extra--
		}
	}
	return lengths
}
