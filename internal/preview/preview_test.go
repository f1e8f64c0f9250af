package preview

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/shelltweak/internal/assets"
	"github.com/1broseidon/shelltweak/internal/placement"
	"github.com/1broseidon/shelltweak/internal/tiling"
)

func scenario() tiling.Placement {
	arr := tiling.Resolve(
		placement.RegionSpec{Position: placement.Top, Extend: true, Size: 10},
		placement.RegionSpec{Position: placement.Bottom, Extend: true, Size: 20},
		6,
	)
	return tiling.Place(arr, tiling.Rect{Width: 200, Height: 100})
}

func TestASCII_Dimensions(t *testing.T) {
	reg := assets.NewRegistry(false)
	lines := ASCII(reg, scenario(), 42, 12, false)
	if len(lines) != 12 {
		t.Fatalf("expected 12 lines, got %d", len(lines))
	}
	for i, l := range lines {
		if n := utf8.RuneCountInString(l); n != 42 {
			t.Fatalf("line %d: expected 42 runes, got %d", i, n)
		}
	}
	first := []rune(lines[0])
	last := []rune(lines[11])
	if first[0] != '╔' || first[41] != '╗' || last[0] != '╚' || last[41] != '╝' {
		t.Fatalf("expected screen border corners, got %q / %q", lines[0], lines[11])
	}
}

func TestASCII_DrawsBandsAndItems(t *testing.T) {
	reg := assets.NewRegistry(false)
	out := strings.Join(ASCII(reg, scenario(), 42, 12, false), "\n")
	panel := reg.Style(assets.Panel).Glyphs
	dock := reg.Style(assets.Dock).Glyphs
	for _, r := range []rune{panel.Horizontal, panel.Item, dock.Item} {
		if !strings.ContainsRune(out, r) {
			t.Fatalf("expected canvas to contain %q:\n%s", r, out)
		}
	}
	if strings.ContainsRune(out, '┌') {
		t.Fatalf("expected no window frame when the window is hidden:\n%s", out)
	}
}

func TestASCII_ShowWindow(t *testing.T) {
	reg := assets.NewRegistry(false)
	out := strings.Join(ASCII(reg, scenario(), 42, 12, true), "\n")
	if !strings.ContainsRune(out, '┌') || !strings.ContainsRune(out, '┘') {
		t.Fatalf("expected a window frame in the content area:\n%s", out)
	}
}

func TestASCII_EmptyPlacementIsBorderOnly(t *testing.T) {
	reg := assets.NewRegistry(true)
	p := tiling.Place(tiling.Arrangement{}, tiling.Rect{Width: 100, Height: 50})
	lines := ASCII(reg, p, 10, 4, true)
	want := []string{"+--------+", "|        |", "|        |", "+--------+"}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestASCII_TooSmall(t *testing.T) {
	reg := assets.NewRegistry(false)
	lines := ASCII(reg, scenario(), 3, 2, false)
	if len(lines) != 2 || lines[0] != "   " {
		t.Fatalf("expected blank canvas, got %q", lines)
	}
	if got := ASCII(reg, scenario(), -1, -1, false); len(got) != 0 {
		t.Fatalf("expected no lines for negative size, got %d", len(got))
	}
}

func TestStyled_Width(t *testing.T) {
	reg := assets.NewRegistry(false)
	lines := Styled(reg, scenario(), 30, 10, true)
	if len(lines) != 10 {
		t.Fatalf("expected 10 lines, got %d", len(lines))
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w != 30 {
			t.Fatalf("line %d: expected visible width 30, got %d", i, w)
		}
	}
}

func TestASCII_AllPairsStayInsideBorder(t *testing.T) {
	reg := assets.NewRegistry(false)
	for _, pp := range placement.Positions {
		for _, dp := range placement.Positions {
			arr := tiling.Resolve(
				placement.RegionSpec{Position: pp, Size: 32},
				placement.RegionSpec{Position: dp, Size: 48},
				6,
			)
			p := tiling.Place(arr, tiling.Rect{Width: 1920, Height: 1080})
			lines := ASCII(reg, p, 40, 14, true)
			for i, l := range lines {
				if n := utf8.RuneCountInString(l); n != 40 {
					t.Fatalf("%s/%s line %d: expected 40 runes, got %d", pp, dp, i, n)
				}
			}
			if lines[0] != "╔"+strings.Repeat("═", 38)+"╗" {
				t.Fatalf("%s/%s: border overwritten: %q", pp, dp, lines[0])
			}
		}
	}
}

func TestSVG(t *testing.T) {
	reg := assets.NewRegistry(false)
	var buf bytes.Buffer
	if err := SVG(&buf, reg, scenario(), true); err != nil {
		t.Fatalf("svg: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Fatalf("expected an svg document, got %q", out)
	}
	// screen + window + panel with 2 items + dock with 6 items
	if got := strings.Count(out, "<rect"); got != 12 {
		t.Fatalf("expected 12 rects, got %d", got)
	}
	if !strings.Contains(out, `id="dock"`) {
		t.Fatalf("expected dock group")
	}
}

func TestSVG_EmptyContainer(t *testing.T) {
	var buf bytes.Buffer
	err := SVG(&buf, assets.NewRegistry(false), tiling.Placement{}, false)
	if err == nil {
		t.Fatalf("expected error for empty container")
	}
}

func TestSummary(t *testing.T) {
	got := Summary(scenario())
	want := "panel top 200×10 • dock bottom 200×20 (6 items) • window 200×70"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if got := Summary(tiling.Placement{}); got != "no bands" {
		t.Fatalf("expected %q, got %q", "no bands", got)
	}
}
