package preview

import (
	"fmt"
	"strings"

	"github.com/1broseidon/shelltweak/internal/tiling"
)

// Summary describes a placement in one line, e.g.
// "panel top 1920×32 • dock bottom 296×48 (6 items) • window 1920×1000".
func Summary(p tiling.Placement) string {
	if len(p.Bands) == 0 && !p.HasContent {
		return "no bands"
	}
	parts := make([]string, 0, len(p.Bands)+1)
	for _, b := range p.Bands {
		s := fmt.Sprintf("%s %s %d×%d", b.Region, b.Edge, b.Rect.Width, b.Rect.Height)
		if b.Region == tiling.RegionDock {
			noun := "items"
			if len(b.Items) == 1 {
				noun = "item"
			}
			s += fmt.Sprintf(" (%d %s)", len(b.Items), noun)
		}
		parts = append(parts, s)
	}
	if p.HasContent {
		parts = append(parts, fmt.Sprintf("window %d×%d", p.Content.Width, p.Content.Height))
	}
	return strings.Join(parts, " • ")
}
