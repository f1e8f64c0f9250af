package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/shelltweak/internal/actionlog"
	"github.com/1broseidon/shelltweak/internal/placement"
	"github.com/1broseidon/shelltweak/internal/shell"
)

// memEngine is an in-memory shell.
type memEngine struct {
	entries     map[string]string
	generateErr error
	applyErr    error
	applied     int
}

func newMemEngine() *memEngine {
	return &memEngine{entries: map[string]string{"theme/name": "Adwaita"}}
}

func (e *memEngine) Name() string { return "mem" }

func (e *memEngine) Generate(context.Context) (shell.Schema, error) {
	if e.generateErr != nil {
		return shell.Schema{}, e.generateErr
	}
	return shell.Schema{Shell: e.Name(), Entries: e.entries}.Clone(), nil
}

func (e *memEngine) Apply(_ context.Context, s shell.Schema) error {
	if e.applyErr != nil {
		return e.applyErr
	}
	e.applied++
	e.entries = s.Clone().Entries
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newTestBridge(t *testing.T, opts Options) (*Bridge, *memEngine, Repository) {
	t.Helper()
	repo, err := NewFileRepository(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if opts.Presets == nil {
		opts.Presets = map[string]placement.LayoutSpec{
			"classic": placement.Default(),
			"unity": placement.Default().
				WithPanel(placement.RegionSpec{Position: placement.Top, Extend: true, Size: 28}).
				WithDock(placement.RegionSpec{Position: placement.Left, Extend: true, Size: 56}),
		}
	}
	if opts.Now == nil {
		c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		opts.Now = c.now
	}
	engine := newMemEngine()
	return NewBridge(repo, engine, opts), engine, repo
}

func TestBridge_LayoutsMergesBuiltinsAndCustom(t *testing.T) {
	ctx := context.Background()
	b, _, _ := newTestBridge(t, Options{})
	if _, err := b.SaveLayout(ctx, "mine", placement.Default()); err != nil {
		t.Fatalf("save: %v", err)
	}
	list, err := b.Layouts(ctx)
	if err != nil {
		t.Fatalf("layouts: %v", err)
	}
	var names []string
	for _, l := range list {
		names = append(names, l.Name)
	}
	if strings.Join(names, ",") != "classic,mine,unity" {
		t.Fatalf("expected sorted names, got %v", names)
	}
	if list[0].Custom || !list[1].Custom {
		t.Fatalf("expected builtin/custom flags to be set")
	}
	if list[0].ID != BuiltinID("classic") {
		t.Fatalf("expected stable builtin id")
	}
}

func TestBridge_SaveLayoutCapturesPlacement(t *testing.T) {
	ctx := context.Background()
	b, _, repo := newTestBridge(t, Options{})
	spec := placement.Default().WithDockItemCount(-3)
	l, err := b.SaveLayout(ctx, "work", spec)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if l.Preview.DockItemCount != 0 {
		t.Fatalf("expected normalised preview, got %+v", l.Preview)
	}
	if l.Schema.Entries["theme/name"] != "Adwaita" || l.Schema.Entries[shell.KeyDockItems] != "0" {
		t.Fatalf("expected current settings plus placement, got %v", l.Schema.Entries)
	}
	stored, err := repo.GetLayout(ctx, l.ID)
	if err != nil || stored.Name != "work" {
		t.Fatalf("expected layout to be stored, got %+v (%v)", stored, err)
	}

	if _, err := b.SaveLayout(ctx, "  ", spec); err == nil {
		t.Fatalf("expected error for blank name")
	}
	if _, err := b.SaveLayout(ctx, "classic", spec); !errors.Is(err, ErrBuiltin) {
		t.Fatalf("expected ErrBuiltin for builtin name, got %v", err)
	}
}

func TestBridge_SaveLayoutEngineFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	b, engine, repo := newTestBridge(t, Options{})
	engine.generateErr = errors.New("dconf missing")
	if _, err := b.SaveLayout(ctx, "work", placement.Default()); err == nil {
		t.Fatalf("expected engine error")
	}
	list, _ := repo.ListLayouts(ctx)
	if len(list) != 0 {
		t.Fatalf("expected nothing stored, got %d", len(list))
	}
}

func TestBridge_ApplyLayout(t *testing.T) {
	ctx := context.Background()
	b, engine, repo := newTestBridge(t, Options{AutoSnapshot: true})

	if _, err := b.ApplyLayout(ctx, BuiltinID("unity")); err != nil {
		t.Fatalf("apply builtin: %v", err)
	}
	if engine.entries[shell.KeyDockPosition] != "left" || engine.entries["theme/name"] != "Adwaita" {
		t.Fatalf("expected builtin placement over current settings, got %v", engine.entries)
	}
	snaps, _ := repo.ListSnapshots(ctx)
	if len(snaps) != 1 || snaps[0].Kind != KindSystem || snaps[0].Schema.Entries[shell.KeyDockPosition] != "" {
		t.Fatalf("expected a system snapshot of the previous settings, got %+v", snaps)
	}

	saved, err := b.SaveLayout(ctx, "mine", placement.Default())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.ApplyLayout(ctx, saved.ID); err != nil {
		t.Fatalf("apply custom: %v", err)
	}
	if engine.entries[shell.KeyDockPosition] != "bottom" {
		t.Fatalf("expected custom layout applied, got %v", engine.entries)
	}

	if _, err := b.ApplyLayout(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBridge_ApplyFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	b, engine, _ := newTestBridge(t, Options{})
	engine.applyErr = errors.New("permission denied")
	if _, err := b.ApplyLayout(ctx, BuiltinID("classic")); err == nil {
		t.Fatalf("expected apply error")
	}
	if _, ok := engine.entries[shell.KeyPanelPosition]; ok || engine.applied != 0 {
		t.Fatalf("expected settings untouched")
	}
}

func TestBridge_DeleteLayout(t *testing.T) {
	ctx := context.Background()
	b, _, _ := newTestBridge(t, Options{})
	if err := b.DeleteLayout(ctx, BuiltinID("classic")); !errors.Is(err, ErrBuiltin) {
		t.Fatalf("expected ErrBuiltin, got %v", err)
	}
	l, err := b.SaveLayout(ctx, "temp", placement.Default())
	if err != nil {
		t.Fatal(err)
	}
	if err := b.DeleteLayout(ctx, l.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := b.DeleteLayout(ctx, l.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBridge_LayoutLookup(t *testing.T) {
	ctx := context.Background()
	b, _, _ := newTestBridge(t, Options{})
	saved, err := b.SaveLayout(ctx, "focus", placement.Default())
	if err != nil {
		t.Fatal(err)
	}
	if l, err := b.Layout(ctx, "focus"); err != nil || l.ID != saved.ID {
		t.Fatalf("lookup by name: %+v, %v", l, err)
	}
	if l, err := b.Layout(ctx, saved.ID.String()); err != nil || l.Name != "focus" {
		t.Fatalf("lookup by id: %+v, %v", l, err)
	}
	if l, err := b.Layout(ctx, BuiltinID("unity").String()); err != nil || l.Name != "unity" {
		t.Fatalf("lookup builtin by id: %+v, %v", l, err)
	}
	if _, err := b.Layout(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBridge_FindLayouts(t *testing.T) {
	ctx := context.Background()
	b, _, _ := newTestBridge(t, Options{})
	if _, err := b.SaveLayout(ctx, "coding", placement.Default()); err != nil {
		t.Fatal(err)
	}
	got, err := b.FindLayouts(ctx, "cls")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].Name != "classic" {
		t.Fatalf("expected classic, got %+v", got)
	}
	all, _ := b.FindLayouts(ctx, "")
	if len(all) != 3 {
		t.Fatalf("expected all layouts for empty query, got %d", len(all))
	}
	none, _ := b.FindLayouts(ctx, "zzz")
	if len(none) != 0 {
		t.Fatalf("expected no matches, got %d", len(none))
	}
}

func TestBridge_SnapshotLifecycle(t *testing.T) {
	ctx := context.Background()
	b, engine, _ := newTestBridge(t, Options{})

	snap, err := b.CreateSnapshot(ctx, "clean", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if snap.Kind != KindUser {
		t.Fatalf("expected user snapshot by default, got %q", snap.Kind)
	}

	engine.entries = map[string]string{"theme/name": "Yaru"}
	if _, err := b.RestoreSnapshot(ctx, snap.ID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if engine.entries["theme/name"] != "Adwaita" {
		t.Fatalf("expected restored settings, got %v", engine.entries)
	}

	if got, err := b.Snapshot(ctx, "clean"); err != nil || got.ID != snap.ID {
		t.Fatalf("lookup by name: %+v, %v", got, err)
	}
	if err := b.DeleteSnapshot(ctx, snap.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := b.RestoreSnapshot(ctx, snap.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBridge_PrunesSystemSnapshots(t *testing.T) {
	ctx := context.Background()
	b, _, repo := newTestBridge(t, Options{MaxSystemSnapshots: 2})
	if _, err := b.CreateSnapshot(ctx, "keep me", KindUser); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"s1", "s2", "s3"} {
		if _, err := b.CreateSnapshot(ctx, name, KindSystem); err != nil {
			t.Fatal(err)
		}
	}
	list, _ := repo.ListSnapshots(ctx)
	var names []string
	for _, s := range list {
		names = append(names, s.Name)
	}
	if strings.Join(names, ",") != "s3,s2,keep me" {
		t.Fatalf("expected oldest system snapshot pruned, got %v", names)
	}
}

func frozenNow() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func TestBridge_SameSecondSnapshotsNewestFirst(t *testing.T) {
	ctx := context.Background()
	b, _, _ := newTestBridge(t, Options{Now: frozenNow})
	for _, name := range []string{"a-first", "b-second"} {
		if _, err := b.CreateSnapshot(ctx, name, KindUser); err != nil {
			t.Fatal(err)
		}
	}
	list, err := b.Snapshots(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "b-second" {
		t.Fatalf("expected b-second first, got %+v", list)
	}
	if list[0].Seq <= list[1].Seq {
		t.Fatalf("expected increasing seq, got %d then %d", list[1].Seq, list[0].Seq)
	}
}

func TestBridge_PruneKeepsNewestWithinSameSecond(t *testing.T) {
	ctx := context.Background()
	b, _, repo := newTestBridge(t, Options{Now: frozenNow, MaxSystemSnapshots: 1})
	for _, name := range []string{"a-first", "b-second"} {
		if _, err := b.CreateSnapshot(ctx, name, KindSystem); err != nil {
			t.Fatal(err)
		}
	}
	list, _ := repo.ListSnapshots(ctx)
	if len(list) != 1 || list[0].Name != "b-second" {
		t.Fatalf("expected only b-second kept, got %+v", list)
	}
}

func TestBridge_ApplyThenRestoreWithinSameSecond(t *testing.T) {
	ctx := context.Background()
	b, engine, _ := newTestBridge(t, Options{Now: frozenNow, AutoSnapshot: true})
	spec := placement.Default()
	spec.DockItemCount = 2
	l, err := b.SaveLayout(ctx, "mine", spec)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.ApplyLayout(ctx, l.ID); err != nil {
		t.Fatal(err)
	}
	applied := engine.entries[shell.KeyDockItems]
	if applied != "2" {
		t.Fatalf("expected dock item count 2 after apply, got %q", applied)
	}

	list, _ := b.Snapshots(ctx)
	if _, err := b.RestoreSnapshot(ctx, list[0].ID); err != nil {
		t.Fatal(err)
	}
	list, _ = b.Snapshots(ctx)
	if list[0].Name != "before restore before layout mine" {
		t.Fatalf("expected the restore's own snapshot newest, got %q", list[0].Name)
	}
	if _, err := b.RestoreSnapshot(ctx, list[0].ID); err != nil {
		t.Fatal(err)
	}
	if got := engine.entries[shell.KeyDockItems]; got != applied {
		t.Fatalf("expected second restore to bring back %q, got %q", applied, got)
	}
}

func TestBridge_ExportImport(t *testing.T) {
	ctx := context.Background()
	b, _, _ := newTestBridge(t, Options{})
	snap, err := b.CreateSnapshot(ctx, "before upgrade", KindSystem)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := b.ExportSnapshot(ctx, snap.ID, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(buf.String(), `name = "before upgrade"`) {
		t.Fatalf("expected TOML output, got:\n%s", buf.String())
	}

	imported, err := b.ImportSnapshot(ctx, &buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported.ID == snap.ID || imported.Kind != KindUser {
		t.Fatalf("expected fresh id and user kind, got %+v", imported)
	}
	if !imported.Created.Equal(snap.Created) || imported.Schema.Entries["theme/name"] != "Adwaita" {
		t.Fatalf("expected contents preserved, got %+v", imported)
	}

	if _, err := b.ImportSnapshot(ctx, strings.NewReader("name = ")); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := b.ImportSnapshot(ctx, strings.NewReader(`kind = "user"`)); err == nil {
		t.Fatalf("expected error for missing name")
	}
}

func TestBridge_WritesActionLog(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "actions.log")
	actions, err := actionlog.New(actionlog.Config{Enabled: true, FilePath: path, MaxSizeMB: 1, MaxFiles: 1})
	if err != nil {
		t.Fatal(err)
	}
	b, _, _ := newTestBridge(t, Options{Actions: actions})
	l, err := b.SaveLayout(ctx, "work", placement.Default())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.ApplyLayout(ctx, l.ID); err != nil {
		t.Fatal(err)
	}
	actions.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "[SAVE-LAYOUT] name=\"work\"") || !strings.Contains(out, "[APPLY-LAYOUT] name=\"work\"") {
		t.Fatalf("expected save and apply entries, got:\n%s", out)
	}
}
