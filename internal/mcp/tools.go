package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/shelltweak/internal/placement"
	"github.com/1broseidon/shelltweak/internal/preview"
	"github.com/1broseidon/shelltweak/internal/store"
	"github.com/1broseidon/shelltweak/internal/tiling"
)

// Apply returns base with every set override applied.
func (o PlacementOverrides) Apply(base placement.LayoutSpec) (placement.LayoutSpec, error) {
	spec := base
	if o.PanelPosition != "" {
		p, err := placement.ParsePosition(o.PanelPosition)
		if err != nil {
			return placement.LayoutSpec{}, fmt.Errorf("panel_position: %w", err)
		}
		spec.Panel.Position = p
	}
	if o.DockPosition != "" {
		p, err := placement.ParsePosition(o.DockPosition)
		if err != nil {
			return placement.LayoutSpec{}, fmt.Errorf("dock_position: %w", err)
		}
		spec.Dock.Position = p
	}
	setBool(&spec.Panel.Extend, o.PanelExtend)
	setBool(&spec.Panel.Hidden, o.PanelHidden)
	setInt(&spec.Panel.Size, o.PanelSize)
	setBool(&spec.Dock.Extend, o.DockExtend)
	setBool(&spec.Dock.Hidden, o.DockHidden)
	setInt(&spec.Dock.Size, o.DockSize)
	setInt(&spec.DockItemCount, o.DockItems)
	setBool(&spec.ShowWindow, o.ShowWindow)
	if err := spec.Validate(); err != nil {
		return placement.LayoutSpec{}, err
	}
	return spec, nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// baseSpec returns the placement of the layout named by ref, or the
// configured placement when ref is empty.
func (s *Server) baseSpec(ctx context.Context, ref string) (placement.LayoutSpec, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return s.config.Placement, nil
	}
	l, err := s.bridge.Layout(ctx, ref)
	if err != nil {
		return placement.LayoutSpec{}, err
	}
	return l.Preview, nil
}

func (s *Server) summarize(spec placement.LayoutSpec) string {
	return preview.Summary(tiling.Place(s.memo.ResolveSpec(spec), s.screen))
}

func (s *Server) layoutInfo(l store.Layout) LayoutInfo {
	return LayoutInfo{
		ID:      l.ID.String(),
		Name:    l.Name,
		Custom:  l.Custom,
		Summary: s.summarize(l.Preview),
	}
}

func snapshotInfo(snap store.Snapshot) SnapshotInfo {
	return SnapshotInfo{
		ID:      snap.ID.String(),
		Name:    snap.Name,
		Kind:    string(snap.Kind),
		Created: snap.Created.Format(time.RFC3339),
		Entries: len(snap.Schema.Entries),
	}
}

func textResult(format string, args ...any) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

func (s *Server) handleResolveLayout(ctx context.Context, _ *mcpsdk.CallToolRequest, args ResolveLayoutInput) (*mcpsdk.CallToolResult, ResolveLayoutOutput, error) {
	base, err := s.baseSpec(ctx, args.Layout)
	if err != nil {
		return nil, ResolveLayoutOutput{}, err
	}
	spec, err := args.Overrides.Apply(base)
	if err != nil {
		return nil, ResolveLayoutOutput{}, err
	}

	width, height := args.Width, args.Height
	if width <= 0 {
		width = s.config.Preview.Width
	}
	if height <= 0 {
		height = s.config.Preview.Height
	}

	arr := s.memo.ResolveSpec(spec)
	placed := tiling.Place(arr, s.screen)
	out := ResolveLayoutOutput{
		Summary: preview.Summary(placed),
		Tree:    arr.String(),
		Preview: strings.Join(preview.ASCII(s.registry, placed, width, height, spec.ShowWindow), "\n"),
		Bands:   make([]BandInfo, 0, len(placed.Bands)),
	}
	for _, b := range placed.Bands {
		out.Bands = append(out.Bands, BandInfo{
			Region: string(b.Region),
			Edge:   b.Edge.String(),
			X:      b.Rect.X,
			Y:      b.Rect.Y,
			Width:  b.Rect.Width,
			Height: b.Rect.Height,
			Items:  len(b.Items),
		})
	}
	s.logger.Debug("resolved layout", "layout", args.Layout, "bands", len(out.Bands))
	return nil, out, nil
}

func (s *Server) handleListLayouts(ctx context.Context, _ *mcpsdk.CallToolRequest, args ListLayoutsInput) (*mcpsdk.CallToolResult, ListLayoutsOutput, error) {
	layouts, err := s.bridge.FindLayouts(ctx, args.Query)
	if err != nil {
		return nil, ListLayoutsOutput{}, err
	}
	out := ListLayoutsOutput{Layouts: make([]LayoutInfo, 0, len(layouts))}
	for _, l := range layouts {
		out.Layouts = append(out.Layouts, s.layoutInfo(l))
	}
	return nil, out, nil
}

func (s *Server) handleApplyLayout(ctx context.Context, _ *mcpsdk.CallToolRequest, args ApplyLayoutInput) (*mcpsdk.CallToolResult, LayoutInfo, error) {
	l, err := s.bridge.Layout(ctx, strings.TrimSpace(args.Layout))
	if err != nil {
		return nil, LayoutInfo{}, err
	}
	applied, err := s.bridge.ApplyLayout(ctx, l.ID)
	if err != nil {
		return nil, LayoutInfo{}, err
	}
	info := s.layoutInfo(applied)
	return textResult("Applied layout %s (%s)", applied.Name, info.Summary), info, nil
}

func (s *Server) handleSaveLayout(ctx context.Context, _ *mcpsdk.CallToolRequest, args SaveLayoutInput) (*mcpsdk.CallToolResult, LayoutInfo, error) {
	base, err := s.baseSpec(ctx, args.Base)
	if err != nil {
		return nil, LayoutInfo{}, err
	}
	spec, err := args.Overrides.Apply(base)
	if err != nil {
		return nil, LayoutInfo{}, err
	}
	l, err := s.bridge.SaveLayout(ctx, strings.TrimSpace(args.Name), spec)
	if err != nil {
		return nil, LayoutInfo{}, err
	}
	return textResult("Saved layout %s (id %s)", l.Name, l.ID), s.layoutInfo(l), nil
}

func (s *Server) handleListSnapshots(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ListSnapshotsInput) (*mcpsdk.CallToolResult, ListSnapshotsOutput, error) {
	snaps, err := s.bridge.Snapshots(ctx)
	if err != nil {
		return nil, ListSnapshotsOutput{}, err
	}
	out := ListSnapshotsOutput{Snapshots: make([]SnapshotInfo, 0, len(snaps))}
	for _, snap := range snaps {
		out.Snapshots = append(out.Snapshots, snapshotInfo(snap))
	}
	return nil, out, nil
}

func (s *Server) handleCreateSnapshot(ctx context.Context, _ *mcpsdk.CallToolRequest, args CreateSnapshotInput) (*mcpsdk.CallToolResult, SnapshotInfo, error) {
	snap, err := s.bridge.CreateSnapshot(ctx, strings.TrimSpace(args.Name), store.KindUser)
	if err != nil {
		return nil, SnapshotInfo{}, err
	}
	return textResult("Created snapshot %s (%d settings)", snap.Name, len(snap.Schema.Entries)), snapshotInfo(snap), nil
}

func (s *Server) handleRestoreSnapshot(ctx context.Context, _ *mcpsdk.CallToolRequest, args RestoreSnapshotInput) (*mcpsdk.CallToolResult, SnapshotInfo, error) {
	snap, err := s.bridge.Snapshot(ctx, strings.TrimSpace(args.Snapshot))
	if err != nil {
		return nil, SnapshotInfo{}, err
	}
	restored, err := s.bridge.RestoreSnapshot(ctx, snap.ID)
	if err != nil {
		return nil, SnapshotInfo{}, err
	}
	return textResult("Restored snapshot %s", restored.Name), snapshotInfo(restored), nil
}
