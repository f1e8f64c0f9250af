package config

import "github.com/1broseidon/shelltweak/internal/placement"

const (
	DefaultBuiltinLayout = "classic"
)

// BuiltinLayouts returns the built-in layout presets.
//
// These are always available to users without needing to define them in YAML.
// Users can define additional presets in their config file.
func BuiltinLayouts() map[string]placement.LayoutSpec {
	return map[string]placement.LayoutSpec{
		"classic": placement.Default(),
		"unity": {
			Panel:         placement.RegionSpec{Position: placement.Top, Extend: true, Size: 28},
			Dock:          placement.RegionSpec{Position: placement.Left, Extend: true, Size: 56},
			DockItemCount: 8,
			ShowWindow:    true,
		},
		"macos": {
			Panel:         placement.RegionSpec{Position: placement.Top, Extend: true, Size: 24},
			Dock:          placement.RegionSpec{Position: placement.Bottom, Size: 64},
			DockItemCount: 10,
			ShowWindow:    true,
		},
		"taskbar": {
			Panel:         placement.RegionSpec{Position: placement.Bottom, Extend: true, Size: 40},
			Dock:          placement.RegionSpec{Position: placement.Bottom, Hidden: true, Size: placement.DefaultDockSize},
			DockItemCount: placement.DefaultDockItemCount,
			ShowWindow:    true,
		},
		"minimal": {
			Panel:         placement.RegionSpec{Position: placement.Top, Extend: true, Size: 24},
			Dock:          placement.RegionSpec{Position: placement.Bottom, Hidden: true, Size: placement.DefaultDockSize},
			DockItemCount: placement.DefaultDockItemCount,
			ShowWindow:    true,
		},
		"sidebar": {
			Panel:         placement.RegionSpec{Position: placement.Left, Extend: true, Size: 40},
			Dock:          placement.RegionSpec{Position: placement.Right, Size: 48},
			DockItemCount: 5,
			ShowWindow:    true,
		},
	}
}
