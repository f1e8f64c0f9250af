// Package placement holds the value types that describe where the panel and
// the dock sit on screen. Values are immutable by convention: edit a copy and
// hand the copy on.
package placement

import (
	"fmt"
	"strings"
)

// Position identifies the screen edge a region is anchored to.
type Position string

const (
	Top    Position = "top"
	Bottom Position = "bottom"
	Left   Position = "left"
	Right  Position = "right"
)

// Positions lists every edge in a stable order.
var Positions = [...]Position{Top, Bottom, Left, Right}

// ParsePosition converts user input (case-insensitive) into a Position.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid position %q (want top, bottom, left or right)", s)
	}
	return p, nil
}

func (p Position) Valid() bool {
	switch p {
	case Top, Bottom, Left, Right:
		return true
	}
	return false
}

// Horizontal reports whether a band on this edge runs horizontally (Top/Bottom).
func (p Position) Horizontal() bool {
	return p == Top || p == Bottom
}

// Leading reports whether the edge comes first in reading order (Top/Left).
func (p Position) Leading() bool {
	return p == Top || p == Left
}

// Opposite returns the edge across the screen.
func (p Position) Opposite() Position {
	switch p {
	case Top:
		return Bottom
	case Bottom:
		return Top
	case Left:
		return Right
	case Right:
		return Left
	}
	return p
}

// Flip mirrors the edge across the horizontal midline when vertical is true
// (Top<->Bottom) and across the vertical midline otherwise (Left<->Right).
// Edges on the other axis are unchanged.
func (p Position) Flip(vertical bool) Position {
	if p.Horizontal() == vertical {
		return p.Opposite()
	}
	return p
}

func (p Position) String() string { return string(p) }

// RegionSpec describes one screen-edge region.
type RegionSpec struct {
	Position Position `yaml:"position" json:"position"`
	// Extend stretches the long axis to the available space; otherwise the
	// region shrinks to its own content.
	Extend bool `yaml:"extend" json:"extend"`
	// Hidden regions contribute no geometry.
	Hidden bool `yaml:"hidden" json:"hidden"`
	// Size is the band thickness.
	Size int `yaml:"size" json:"size"`
}

// Normalize returns a copy with Size >= 0 and a valid Position. An invalid
// position falls back to fallback.
func (r RegionSpec) Normalize(fallback Position) RegionSpec {
	if r.Size < 0 {
		r.Size = 0
	}
	if !r.Position.Valid() {
		r.Position = fallback
	}
	return r
}

// LayoutSpec is the full placement state edited by the UI.
type LayoutSpec struct {
	Panel         RegionSpec `yaml:"panel" json:"panel"`
	Dock          RegionSpec `yaml:"dock" json:"dock"`
	DockItemCount int        `yaml:"dock_item_count" json:"dock_item_count"`
	ShowWindow    bool       `yaml:"show_window" json:"show_window"`
}

const (
	DefaultPanelSize     = 32
	DefaultDockSize      = 48
	DefaultDockItemCount = 6
)

// Default returns the placement used on first start.
func Default() LayoutSpec {
	return LayoutSpec{
		Panel: RegionSpec{
			Position: Top,
			Extend:   true,
			Size:     DefaultPanelSize,
		},
		Dock: RegionSpec{
			Position: Bottom,
			Size:     DefaultDockSize,
		},
		DockItemCount: DefaultDockItemCount,
		ShowWindow:    true,
	}
}

// Normalize clamps every field into its valid range.
func (s LayoutSpec) Normalize() LayoutSpec {
	s.Panel = s.Panel.Normalize(Top)
	s.Dock = s.Dock.Normalize(Bottom)
	if s.DockItemCount < 0 {
		s.DockItemCount = 0
	}
	return s
}

// Validate reports the first out-of-range field. Unlike Normalize it does not
// repair anything; it is used where user input should be rejected.
func (s LayoutSpec) Validate() error {
	for _, r := range []struct {
		name string
		spec RegionSpec
	}{{"panel", s.Panel}, {"dock", s.Dock}} {
		if !r.spec.Position.Valid() {
			return fmt.Errorf("%s.position: invalid position %q", r.name, r.spec.Position)
		}
		if r.spec.Size < 0 {
			return fmt.Errorf("%s.size: must be >= 0", r.name)
		}
	}
	if s.DockItemCount < 0 {
		return fmt.Errorf("dock_item_count: must be >= 0")
	}
	return nil
}

// WithPanel returns a copy with the panel replaced.
func (s LayoutSpec) WithPanel(r RegionSpec) LayoutSpec {
	s.Panel = r
	return s
}

// WithDock returns a copy with the dock replaced.
func (s LayoutSpec) WithDock(r RegionSpec) LayoutSpec {
	s.Dock = r
	return s
}

// WithDockItemCount returns a copy with the dock item count replaced.
func (s LayoutSpec) WithDockItemCount(n int) LayoutSpec {
	s.DockItemCount = n
	return s
}

// Flip mirrors both regions; see Position.Flip.
func (s LayoutSpec) Flip(vertical bool) LayoutSpec {
	s.Panel.Position = s.Panel.Position.Flip(vertical)
	s.Dock.Position = s.Dock.Position.Flip(vertical)
	return s
}
