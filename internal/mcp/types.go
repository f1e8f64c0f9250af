package mcp

// PlacementOverrides adjusts a base placement. Unset fields keep the base
// value.
type PlacementOverrides struct {
	PanelPosition string `json:"panel_position,omitempty" jsonschema:"Panel edge: top, bottom, left or right"`
	PanelExtend   *bool  `json:"panel_extend,omitempty" jsonschema:"Stretch the panel across the whole edge"`
	PanelHidden   *bool  `json:"panel_hidden,omitempty" jsonschema:"Hide the panel"`
	PanelSize     *int   `json:"panel_size,omitempty" jsonschema:"Panel thickness in pixels"`
	DockPosition  string `json:"dock_position,omitempty" jsonschema:"Dock edge: top, bottom, left or right"`
	DockExtend    *bool  `json:"dock_extend,omitempty" jsonschema:"Stretch the dock across the whole edge"`
	DockHidden    *bool  `json:"dock_hidden,omitempty" jsonschema:"Hide the dock"`
	DockSize      *int   `json:"dock_size,omitempty" jsonschema:"Dock thickness in pixels"`
	DockItems     *int   `json:"dock_items,omitempty" jsonschema:"Number of placeholder items in the dock"`
	ShowWindow    *bool  `json:"show_window,omitempty" jsonschema:"Draw a sample window in the content area"`
}

// ResolveLayoutInput is the input for the resolve_layout tool.
type ResolveLayoutInput struct {
	Layout    string             `json:"layout,omitempty" jsonschema:"Layout name or id to start from (default: the configured placement)"`
	Overrides PlacementOverrides `json:"overrides,omitempty" jsonschema:"Changes applied on top of the starting placement"`
	Width     int                `json:"width,omitempty" jsonschema:"Preview width in characters (default: preview.width from config)"`
	Height    int                `json:"height,omitempty" jsonschema:"Preview height in characters (default: preview.height from config)"`
}

// BandInfo describes one placed band.
type BandInfo struct {
	Region string `json:"region"`
	Edge   string `json:"edge"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Items  int    `json:"items"`
}

// ResolveLayoutOutput is the output for the resolve_layout tool.
type ResolveLayoutOutput struct {
	Summary string     `json:"summary"`
	Tree    string     `json:"tree"`
	Preview string     `json:"preview"`
	Bands   []BandInfo `json:"bands"`
}

// ListLayoutsInput is the input for the list_layouts tool.
type ListLayoutsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Optional fuzzy filter on layout names"`
}

// LayoutInfo describes a stored or built-in layout.
type LayoutInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Custom  bool   `json:"custom"`
	Summary string `json:"summary"`
}

// ListLayoutsOutput is the output for the list_layouts tool.
type ListLayoutsOutput struct {
	Layouts []LayoutInfo `json:"layouts"`
}

// ApplyLayoutInput is the input for the apply_layout tool.
type ApplyLayoutInput struct {
	Layout string `json:"layout" jsonschema:"required,Layout name or id to apply"`
}

// SaveLayoutInput is the input for the save_layout tool.
type SaveLayoutInput struct {
	Name      string             `json:"name" jsonschema:"required,Name for the new custom layout"`
	Base      string             `json:"base,omitempty" jsonschema:"Layout name or id to start from (default: the configured placement)"`
	Overrides PlacementOverrides `json:"overrides,omitempty" jsonschema:"Changes applied on top of the starting placement"`
}

// ListSnapshotsInput is the input for the list_snapshots tool.
type ListSnapshotsInput struct{}

// SnapshotInfo describes a stored snapshot.
type SnapshotInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Created string `json:"created"`
	Entries int    `json:"entries"`
}

// ListSnapshotsOutput is the output for the list_snapshots tool.
type ListSnapshotsOutput struct {
	Snapshots []SnapshotInfo `json:"snapshots"`
}

// CreateSnapshotInput is the input for the create_snapshot tool.
type CreateSnapshotInput struct {
	Name string `json:"name" jsonschema:"required,Name for the snapshot"`
}

// RestoreSnapshotInput is the input for the restore_snapshot tool.
type RestoreSnapshotInput struct {
	Snapshot string `json:"snapshot" jsonschema:"required,Snapshot name or id to restore"`
}
