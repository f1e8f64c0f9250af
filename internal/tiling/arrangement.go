package tiling

import (
	"fmt"
	"strings"

	"github.com/1broseidon/shelltweak/internal/placement"
)

// Kind identifies a node in a composed arrangement.
type Kind int

const (
	KindStack   Kind = iota // container laying children along Axis
	KindBand                // a visible panel or dock region
	KindSpacer              // flexible or fixed gap
	KindSquare              // placeholder item inside a band
	KindContent             // the remaining window area
)

func (k Kind) String() string {
	switch k {
	case KindStack:
		return "stack"
	case KindBand:
		return "band"
	case KindSpacer:
		return "spacer"
	case KindSquare:
		return "square"
	case KindContent:
		return "content"
	default:
		return "?"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Axis is the direction children are laid out in.
type Axis int

const (
	Row    Axis = iota // left to right
	Column             // top to bottom
)

func (a Axis) String() string {
	if a == Column {
		return "column"
	}
	return "row"
}

func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Cross returns the perpendicular axis.
func (a Axis) Cross() Axis {
	if a == Row {
		return Column
	}
	return Row
}

// Region names which placement a band was built from.
type Region string

const (
	RegionPanel Region = "panel"
	RegionDock  Region = "dock"
)

// Node is one element of a composed arrangement.
type Node struct {
	Kind Kind `json:"kind"`
	// Axis is the child direction for stacks and the long axis for bands.
	Axis   Axis               `json:"axis"`
	Region Region             `json:"region,omitempty"`
	Edge   placement.Position `json:"edge,omitempty"`
	// Thickness is the band thickness, the square side, or the fixed spacer length.
	Thickness int    `json:"thickness,omitempty"`
	Extend    bool   `json:"extend,omitempty"`
	Flexible  bool   `json:"flexible,omitempty"`
	Children  []Node `json:"children,omitempty"`
}

// Stack builds a container node.
func Stack(axis Axis, children ...Node) Node {
	return Node{Kind: KindStack, Axis: axis, Children: children}
}

// FlexSpacer builds a spacer that absorbs leftover length.
func FlexSpacer() Node {
	return Node{Kind: KindSpacer, Flexible: true}
}

// FixedSpacer builds a spacer of a fixed length.
func FixedSpacer(length int) Node {
	if length < 0 {
		length = 0
	}
	return Node{Kind: KindSpacer, Thickness: length}
}

// Square builds a placeholder item.
func Square(side int) Node {
	if side < 0 {
		side = 0
	}
	return Node{Kind: KindSquare, Thickness: side}
}

// Content builds the flexible remaining-area node.
func Content() Node {
	return Node{Kind: KindContent, Flexible: true}
}

// flexible reports whether the node takes a share of leftover space rather
// than a fixed length along its parent's axis.
func (n Node) flexible() bool {
	switch n.Kind {
	case KindStack, KindContent:
		return true
	case KindSpacer:
		return n.Flexible
	}
	return false
}

// Squares counts the square placeholders directly inside a band.
func (n Node) Squares() int {
	count := 0
	for _, c := range n.Children {
		if c.Kind == KindSquare {
			count++
		}
	}
	return count
}

// Arrangement is the resolver output. A nil Root is the empty arrangement.
type Arrangement struct {
	Root *Node `json:"root,omitempty"`
}

// Empty reports whether the arrangement has no nodes at all.
func (a Arrangement) Empty() bool {
	return a.Root == nil
}

// Walk visits every node depth-first in document order.
func (a Arrangement) Walk(fn func(n Node, depth int)) {
	if a.Root == nil {
		return
	}
	var visit func(n Node, depth int)
	visit = func(n Node, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	visit(*a.Root, 0)
}

// Bands returns every band in document order.
func (a Arrangement) Bands() []Node {
	var out []Node
	a.Walk(func(n Node, _ int) {
		if n.Kind == KindBand {
			out = append(out, n)
		}
	})
	return out
}

// Band returns the band built for region, if it is visible.
func (a Arrangement) Band(region Region) (Node, bool) {
	for _, b := range a.Bands() {
		if b.Region == region {
			return b, true
		}
	}
	return Node{}, false
}

// String renders the tree one node per line, indented by depth.
func (a Arrangement) String() string {
	if a.Root == nil {
		return "(empty)\n"
	}
	var sb strings.Builder
	a.Walk(func(n Node, depth int) {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(describe(n))
		sb.WriteByte('\n')
	})
	return sb.String()
}

func describe(n Node) string {
	switch n.Kind {
	case KindStack:
		return n.Axis.String()
	case KindBand:
		mode := "shrink"
		if n.Extend {
			mode = "extend"
		}
		return fmt.Sprintf("band %s edge=%s thickness=%d axis=%s %s", n.Region, n.Edge, n.Thickness, n.Axis, mode)
	case KindSpacer:
		if n.Flexible {
			return "spacer flex"
		}
		return fmt.Sprintf("spacer %d", n.Thickness)
	case KindSquare:
		return fmt.Sprintf("square %d", n.Thickness)
	case KindContent:
		return "content"
	}
	return n.Kind.String()
}
