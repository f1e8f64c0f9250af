package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/shelltweak/internal/placement"
)

// placementFlags adjusts a base placement from the command line. Only flags
// the user set are applied.
type placementFlags struct {
	cmd *cobra.Command

	panelPosition string
	panelExtend   bool
	panelHidden   bool
	panelSize     int
	dockPosition  string
	dockExtend    bool
	dockHidden    bool
	dockSize      int
	dockItems     int
	showWindow    bool
}

func addPlacementFlags(cmd *cobra.Command) *placementFlags {
	f := &placementFlags{cmd: cmd}
	fs := cmd.Flags()
	fs.StringVar(&f.panelPosition, "panel", "", "panel edge (top, bottom, left, right)")
	fs.BoolVar(&f.panelExtend, "panel-extend", false, "stretch the panel across its edge")
	fs.BoolVar(&f.panelHidden, "panel-hidden", false, "hide the panel")
	fs.IntVar(&f.panelSize, "panel-size", placement.DefaultPanelSize, "panel thickness in pixels")
	fs.StringVar(&f.dockPosition, "dock", "", "dock edge (top, bottom, left, right)")
	fs.BoolVar(&f.dockExtend, "dock-extend", false, "stretch the dock across its edge")
	fs.BoolVar(&f.dockHidden, "dock-hidden", false, "hide the dock")
	fs.IntVar(&f.dockSize, "dock-size", placement.DefaultDockSize, "dock thickness in pixels")
	fs.IntVar(&f.dockItems, "dock-items", placement.DefaultDockItemCount, "number of dock items")
	fs.BoolVar(&f.showWindow, "window", true, "draw a sample window in the content area")
	return f
}

func (f *placementFlags) changed(name string) bool {
	return f.cmd.Flags().Changed(name)
}

// apply returns base with every explicitly set flag applied.
func (f *placementFlags) apply(base placement.LayoutSpec) (placement.LayoutSpec, error) {
	spec := base
	if f.changed("panel") {
		p, err := placement.ParsePosition(f.panelPosition)
		if err != nil {
			return placement.LayoutSpec{}, fmt.Errorf("--panel: %w", err)
		}
		spec.Panel.Position = p
	}
	if f.changed("dock") {
		p, err := placement.ParsePosition(f.dockPosition)
		if err != nil {
			return placement.LayoutSpec{}, fmt.Errorf("--dock: %w", err)
		}
		spec.Dock.Position = p
	}
	if f.changed("panel-extend") {
		spec.Panel.Extend = f.panelExtend
	}
	if f.changed("panel-hidden") {
		spec.Panel.Hidden = f.panelHidden
	}
	if f.changed("panel-size") {
		spec.Panel.Size = f.panelSize
	}
	if f.changed("dock-extend") {
		spec.Dock.Extend = f.dockExtend
	}
	if f.changed("dock-hidden") {
		spec.Dock.Hidden = f.dockHidden
	}
	if f.changed("dock-size") {
		spec.Dock.Size = f.dockSize
	}
	if f.changed("dock-items") {
		spec.DockItemCount = f.dockItems
	}
	if f.changed("window") {
		spec.ShowWindow = f.showWindow
	}
	if err := spec.Validate(); err != nil {
		return placement.LayoutSpec{}, err
	}
	return spec, nil
}
