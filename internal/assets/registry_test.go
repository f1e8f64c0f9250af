package assets

import "testing"

func TestNewRegistry_DefaultStyles(t *testing.T) {
	r := NewRegistry(false)
	for _, name := range []string{Panel, Dock, Content, Screen} {
		s := r.Style(name)
		if s.Glyphs.Horizontal == 0 || s.ANSI == "" || s.Fill == "" {
			t.Fatalf("style %q incomplete: %+v", name, s)
		}
	}
	if got := len(r.Names()); got != 4 {
		t.Fatalf("expected 4 styles, got %d", got)
	}
}

func TestNewRegistry_ASCIIOnly(t *testing.T) {
	r := NewRegistry(true)
	for _, name := range r.Names() {
		g := r.Style(name).Glyphs
		for _, c := range []rune{g.Horizontal, g.Vertical, g.TopLeft, g.Item} {
			if c > 127 {
				t.Fatalf("style %q: expected ASCII glyphs, got %q", name, c)
			}
		}
	}
}

func TestRegistry_RegisterAndFallback(t *testing.T) {
	r := NewRegistry(false)
	if err := r.Register("", Style{}); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if err := r.Register("accent", Style{}); err == nil {
		t.Fatalf("expected error for missing glyphs")
	}
	custom := Style{Glyphs: asciiGlyphs, ANSI: "196"}
	if err := r.Register("accent", custom); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := r.Style("accent"); got.ANSI != "196" {
		t.Fatalf("expected registered style, got %+v", got)
	}
	if got := r.Style("missing"); got != r.Style(Content) {
		t.Fatalf("expected fallback to content style")
	}
}
