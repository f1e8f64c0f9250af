// Package assets holds the glyphs and colours used to draw previews. A
// Registry is built once at startup and handed to whatever renders.
package assets

import (
	"fmt"
	"sort"
	"sync"
)

// Glyphs is the rune set used to outline a region on a text canvas.
type Glyphs struct {
	Horizontal  rune
	Vertical    rune
	TopLeft     rune
	TopRight    rune
	BottomLeft  rune
	BottomRight rune
	Fill        rune
	Item        rune
}

// Style describes how one kind of element is drawn.
type Style struct {
	Glyphs Glyphs
	// ANSI is a lipgloss colour ("62", "#ff8800", ...).
	ANSI string
	// Fill and Stroke are SVG colours.
	Fill   string
	Stroke string
}

// Well-known style names.
const (
	Panel   = "panel"
	Dock    = "dock"
	Content = "content"
	Screen  = "screen"
)

var (
	lightGlyphs = Glyphs{
		Horizontal: '─', Vertical: '│',
		TopLeft: '┌', TopRight: '┐', BottomLeft: '└', BottomRight: '┘',
		Fill: ' ', Item: '■',
	}
	heavyGlyphs = Glyphs{
		Horizontal: '━', Vertical: '┃',
		TopLeft: '┏', TopRight: '┓', BottomLeft: '┗', BottomRight: '┛',
		Fill: ' ', Item: '▪',
	}
	doubleGlyphs = Glyphs{
		Horizontal: '═', Vertical: '║',
		TopLeft: '╔', TopRight: '╗', BottomLeft: '╚', BottomRight: '╝',
		Fill: ' ', Item: ' ',
	}
	asciiGlyphs = Glyphs{
		Horizontal: '-', Vertical: '|',
		TopLeft: '+', TopRight: '+', BottomLeft: '+', BottomRight: '+',
		Fill: ' ', Item: '#',
	}
)

// Registry maps style names to styles. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	styles map[string]Style
}

// NewRegistry returns a registry seeded with the default styles. When
// asciiOnly is set every style uses plain ASCII glyphs.
func NewRegistry(asciiOnly bool) *Registry {
	r := &Registry{styles: map[string]Style{
		Panel:   {Glyphs: heavyGlyphs, ANSI: "62", Fill: "#5f5fd7", Stroke: "#3a3a8c"},
		Dock:    {Glyphs: lightGlyphs, ANSI: "42", Fill: "#00d787", Stroke: "#00875f"},
		Content: {Glyphs: lightGlyphs, ANSI: "238", Fill: "#eeeeee", Stroke: "#bcbcbc"},
		Screen:  {Glyphs: doubleGlyphs, ANSI: "247", Fill: "#262626", Stroke: "#9e9e9e"},
	}}
	if asciiOnly {
		for name, s := range r.styles {
			s.Glyphs = asciiGlyphs
			r.styles[name] = s
		}
	}
	return r
}

// Style returns the named style, falling back to Content.
func (r *Registry) Style(name string) Style {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.styles[name]; ok {
		return s
	}
	return r.styles[Content]
}

// Register adds or replaces a style.
func (r *Registry) Register(name string, s Style) error {
	if name == "" {
		return fmt.Errorf("style name is required")
	}
	if s.Glyphs.Horizontal == 0 || s.Glyphs.Vertical == 0 {
		return fmt.Errorf("style %q: border glyphs are required", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.styles[name] = s
	return nil
}

// Names lists the registered style names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.styles))
	for name := range r.styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
