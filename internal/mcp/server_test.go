package mcp

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/shelltweak/internal/config"
	"github.com/1broseidon/shelltweak/internal/placement"
	"github.com/1broseidon/shelltweak/internal/shell"
	"github.com/1broseidon/shelltweak/internal/store"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func newTestServer(t *testing.T) (*Server, *shell.FileEngine) {
	t.Helper()
	dir := t.TempDir()
	repo, err := store.NewFileRepository(filepath.Join(dir, "store"))
	if err != nil {
		t.Fatalf("failed to open repository: %v", err)
	}
	engine := shell.NewFileEngine(filepath.Join(dir, "settings.yaml"))
	cfg := config.DefaultConfig()
	bridge := store.NewBridge(repo, engine, store.Options{
		Presets:            cfg.Layouts,
		AutoSnapshot:       true,
		MaxSystemSnapshots: 5,
	})
	return NewServer(cfg, bridge, Options{}), engine
}

func TestPlacementOverrides_Apply(t *testing.T) {
	base := placement.Default()
	tests := []struct {
		name    string
		o       PlacementOverrides
		check   func(placement.LayoutSpec) bool
		wantErr bool
	}{
		{"empty keeps base", PlacementOverrides{}, func(s placement.LayoutSpec) bool { return s == base }, false},
		{"dock left", PlacementOverrides{DockPosition: "Left"}, func(s placement.LayoutSpec) bool {
			return s.Dock.Position == placement.Left && s.Panel == base.Panel
		}, false},
		{"hide panel and resize dock", PlacementOverrides{PanelHidden: boolPtr(true), DockSize: intPtr(64)}, func(s placement.LayoutSpec) bool {
			return s.Panel.Hidden && s.Dock.Size == 64
		}, false},
		{"explicit false", PlacementOverrides{ShowWindow: boolPtr(false)}, func(s placement.LayoutSpec) bool { return !s.ShowWindow }, false},
		{"bad position", PlacementOverrides{PanelPosition: "middle"}, nil, true},
		{"negative items", PlacementOverrides{DockItems: intPtr(-1)}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.o.Apply(base)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.check(got) {
				t.Fatalf("unexpected result %+v", got)
			}
		})
	}
}

func TestHandleResolveLayout(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, out, err := s.handleResolveLayout(ctx, nil, ResolveLayoutInput{
		Layout:    "unity",
		Overrides: PlacementOverrides{DockItems: intPtr(3)},
		Width:     40,
		Height:    12,
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(out.Bands) != 2 {
		t.Fatalf("expected 2 bands, got %d", len(out.Bands))
	}
	var dock BandInfo
	for _, b := range out.Bands {
		if b.Region == "dock" {
			dock = b
		}
	}
	if dock.Edge != "left" || dock.Items != 3 {
		t.Fatalf("expected left dock with 3 items, got %+v", dock)
	}
	if lines := strings.Split(out.Preview, "\n"); len(lines) != 12 {
		t.Fatalf("expected 12 preview lines, got %d", len(lines))
	}
	if !strings.Contains(out.Tree, "band dock") {
		t.Fatalf("expected tree to describe the dock band, got:\n%s", out.Tree)
	}
}

func TestHandleResolveLayout_BothHidden(t *testing.T) {
	s, _ := newTestServer(t)
	_, out, err := s.handleResolveLayout(context.Background(), nil, ResolveLayoutInput{
		Overrides: PlacementOverrides{PanelHidden: boolPtr(true), DockHidden: boolPtr(true)},
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(out.Bands) != 0 {
		t.Fatalf("expected no bands, got %d", len(out.Bands))
	}
	if out.Tree != "(empty)\n" {
		t.Fatalf("expected empty tree, got %q", out.Tree)
	}
}

func TestHandleResolveLayout_UnknownLayout(t *testing.T) {
	s, _ := newTestServer(t)
	_, _, err := s.handleResolveLayout(context.Background(), nil, ResolveLayoutInput{Layout: "nope"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHandleSaveAndApplyLayout(t *testing.T) {
	s, engine := newTestServer(t)
	ctx := context.Background()

	_, saved, err := s.handleSaveLayout(ctx, nil, SaveLayoutInput{
		Name:      "work",
		Base:      "macos",
		Overrides: PlacementOverrides{DockPosition: "right"},
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !saved.Custom || saved.Name != "work" {
		t.Fatalf("unexpected saved layout %+v", saved)
	}

	if _, _, err := s.handleSaveLayout(ctx, nil, SaveLayoutInput{Name: "macos"}); !errors.Is(err, store.ErrBuiltin) {
		t.Fatalf("expected ErrBuiltin for builtin name, got %v", err)
	}

	res, applied, err := s.handleApplyLayout(ctx, nil, ApplyLayoutInput{Layout: "work"})
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	if applied.ID != saved.ID {
		t.Fatalf("expected applied id %s, got %s", saved.ID, applied.ID)
	}
	if res == nil || len(res.Content) == 0 {
		t.Fatalf("expected text content in result")
	}

	schema, err := engine.Generate(ctx)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	got := shell.PlacementOf(schema, placement.Default())
	if got.Dock.Position != placement.Right {
		t.Fatalf("expected dock right in shell settings, got %s", got.Dock.Position)
	}

	_, list, err := s.handleListSnapshots(ctx, nil, ListSnapshotsInput{})
	if err != nil {
		t.Fatalf("list snapshots failed: %v", err)
	}
	if len(list.Snapshots) != 1 || list.Snapshots[0].Kind != string(store.KindSystem) {
		t.Fatalf("expected one system snapshot from apply, got %+v", list.Snapshots)
	}
}

func TestHandleListLayouts(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	_, all, err := s.handleListLayouts(ctx, nil, ListLayoutsInput{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all.Layouts) != len(config.BuiltinLayouts()) {
		t.Fatalf("expected %d layouts, got %d", len(config.BuiltinLayouts()), len(all.Layouts))
	}
	for _, l := range all.Layouts {
		if l.Custom || l.Summary == "" {
			t.Fatalf("expected builtin with summary, got %+v", l)
		}
	}

	_, found, err := s.handleListLayouts(ctx, nil, ListLayoutsInput{Query: "uni"})
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(found.Layouts) == 0 || found.Layouts[0].Name != "unity" {
		t.Fatalf("expected unity first, got %+v", found.Layouts)
	}
}

func TestHandleSnapshots(t *testing.T) {
	s, engine := newTestServer(t)
	ctx := context.Background()

	before := shell.Schema{Shell: engine.Name(), Entries: map[string]string{"theme": "dark"}}
	if err := engine.Apply(ctx, before); err != nil {
		t.Fatalf("seed settings failed: %v", err)
	}
	_, created, err := s.handleCreateSnapshot(ctx, nil, CreateSnapshotInput{Name: "baseline"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Kind != string(store.KindUser) || created.Entries != 1 {
		t.Fatalf("unexpected snapshot %+v", created)
	}

	if err := engine.Apply(ctx, shell.Schema{Shell: engine.Name(), Entries: map[string]string{"theme": "light"}}); err != nil {
		t.Fatalf("change settings failed: %v", err)
	}
	if _, _, err := s.handleRestoreSnapshot(ctx, nil, RestoreSnapshotInput{Snapshot: "baseline"}); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	schema, err := engine.Generate(ctx)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if schema.Entries["theme"] != "dark" {
		t.Fatalf("expected theme dark after restore, got %q", schema.Entries["theme"])
	}

	if _, _, err := s.handleRestoreSnapshot(ctx, nil, RestoreSnapshotInput{Snapshot: "missing"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServer_ListsTools(t *testing.T) {
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	ss, err := s.Connect(ctx, serverTransport)
	if err != nil {
		t.Fatalf("server connect failed: %v", err)
	}
	defer ss.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect failed: %v", err)
	}
	defer cs.Close()

	res, err := cs.ListTools(ctx, &mcpsdk.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools failed: %v", err)
	}
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	want := []string{"apply_layout", "create_snapshot", "list_layouts", "list_snapshots", "resolve_layout", "restore_snapshot", "save_layout"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("expected tools %v, got %v", want, names)
	}

	call, err := cs.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "resolve_layout",
		Arguments: map[string]any{"layout": "minimal"},
	})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if call.IsError {
		t.Fatalf("expected resolve_layout to succeed, got %+v", call.Content)
	}
}
