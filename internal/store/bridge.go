package store

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"

	"github.com/1broseidon/shelltweak/internal/actionlog"
	"github.com/1broseidon/shelltweak/internal/placement"
	"github.com/1broseidon/shelltweak/internal/shell"
)

// builtinNamespace seeds the stable ids of built-in layouts.
var builtinNamespace = uuid.MustParse("5b0c6f5e-2a43-4d7c-9d1e-7f3b8c2e9a10")

// BuiltinID returns the id of the built-in layout called name.
func BuiltinID(name string) uuid.UUID {
	return uuid.NewSHA1(builtinNamespace, []byte(name))
}

// Options configures a Bridge.
type Options struct {
	// Presets are the built-in layouts, keyed by name.
	Presets map[string]placement.LayoutSpec
	Logger  *log.Logger
	Actions *actionlog.Logger
	// AutoSnapshot takes a system snapshot before a layout or snapshot is
	// applied.
	AutoSnapshot bool
	// MaxSystemSnapshots bounds how many automatic snapshots are kept.
	// Zero keeps all of them.
	MaxSystemSnapshots int
	// Now replaces time.Now for snapshot timestamps.
	Now func() time.Time
}

// Bridge ties the repository to the shell engine. A failed operation is
// logged and returned and leaves stored records as they were.
type Bridge struct {
	repo    Repository
	engine  shell.Engine
	opts    Options
	log     *log.Logger
	actions *actionlog.Logger
	now     func() time.Time

	// snapMu serialises sequence assignment for new snapshots.
	snapMu sync.Mutex
}

func NewBridge(repo Repository, engine shell.Engine, opts Options) *Bridge {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Bridge{
		repo:    repo,
		engine:  engine,
		opts:    opts,
		log:     logger,
		actions: opts.Actions,
		now:     now,
	}
}

// Engine returns the shell engine the bridge applies through.
func (b *Bridge) Engine() shell.Engine { return b.engine }

func (b *Bridge) fail(msg string, err error, keyvals ...any) error {
	b.log.Error(msg, append(keyvals, "err", err)...)
	return err
}

func (b *Bridge) builtins() []Layout {
	out := make([]Layout, 0, len(b.opts.Presets))
	for name, spec := range b.opts.Presets {
		out = append(out, Layout{
			ID:      BuiltinID(name),
			Name:    name,
			Preview: spec.Normalize(),
		})
	}
	return out
}

func (b *Bridge) builtin(id uuid.UUID) (Layout, bool) {
	for _, l := range b.builtins() {
		if l.ID == id {
			return l, true
		}
	}
	return Layout{}, false
}

// Layouts returns built-in and custom layouts sorted by name, built-ins
// first on a tie.
func (b *Bridge) Layouts(ctx context.Context) ([]Layout, error) {
	custom, err := b.repo.ListLayouts(ctx)
	if err != nil {
		return nil, b.fail("list layouts failed", err)
	}
	out := append(b.builtins(), custom...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return !out[i].Custom && out[j].Custom
	})
	return out, nil
}

// Layout looks a layout up by id, or by exact name when ref is not a uuid.
func (b *Bridge) Layout(ctx context.Context, ref string) (Layout, error) {
	if id, err := uuid.Parse(ref); err == nil {
		if l, ok := b.builtin(id); ok {
			return l, nil
		}
		return b.repo.GetLayout(ctx, id)
	}
	all, err := b.Layouts(ctx)
	if err != nil {
		return Layout{}, err
	}
	for _, l := range all {
		if l.Name == ref {
			return l, nil
		}
	}
	return Layout{}, fmt.Errorf("layout %q: %w", ref, ErrNotFound)
}

// FindLayouts fuzzy-matches query against layout names, best match first.
// An empty query returns every layout.
func (b *Bridge) FindLayouts(ctx context.Context, query string) ([]Layout, error) {
	all, err := b.Layouts(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return all, nil
	}
	names := make([]string, len(all))
	for i, l := range all {
		names[i] = l.Name
	}
	matches := fuzzy.Find(query, names)
	out := make([]Layout, 0, len(matches))
	for _, m := range matches {
		out = append(out, all[m.Index])
	}
	return out, nil
}

// SaveLayout captures the current settings with spec's placement applied and
// stores them as a new custom layout.
func (b *Bridge) SaveLayout(ctx context.Context, name string, spec placement.LayoutSpec) (Layout, error) {
	if err := validateName("layout", name); err != nil {
		return Layout{}, err
	}
	if _, ok := b.opts.Presets[name]; ok {
		return Layout{}, fmt.Errorf("layout %q: %w", name, ErrBuiltin)
	}
	spec = spec.Normalize()
	schema, err := b.engine.Generate(ctx)
	if err != nil {
		return Layout{}, b.fail("save layout failed", err, "name", name)
	}
	l := Layout{
		ID:      uuid.New(),
		Name:    name,
		Custom:  true,
		Schema:  shell.WithPlacement(schema, spec),
		Preview: spec,
	}
	if err := b.repo.PutLayout(ctx, l); err != nil {
		return Layout{}, b.fail("save layout failed", err, "name", name)
	}
	b.log.Info("saved layout", "name", name, "id", l.ID)
	b.actions.Log(actionlog.ActionSaveLayout, name, map[string]any{"id": l.ID.String()})
	return l, nil
}

// ApplyLayout writes a layout's settings to the shell. Built-in layouts
// apply their placement on top of the current settings.
func (b *Bridge) ApplyLayout(ctx context.Context, id uuid.UUID) (Layout, error) {
	l, ok := b.builtin(id)
	if !ok {
		var err error
		l, err = b.repo.GetLayout(ctx, id)
		if err != nil {
			return Layout{}, b.fail("apply layout failed", err, "id", id)
		}
	}

	schema := l.Schema
	if !l.Custom {
		current, err := b.engine.Generate(ctx)
		if err != nil {
			return Layout{}, b.fail("apply layout failed", err, "name", l.Name)
		}
		schema = shell.WithPlacement(current, l.Preview)
	}

	if err := b.autoSnapshot(ctx, "before layout "+l.Name); err != nil {
		return Layout{}, b.fail("apply layout failed", err, "name", l.Name)
	}
	if err := b.engine.Apply(ctx, schema); err != nil {
		return Layout{}, b.fail("apply layout failed", err, "name", l.Name)
	}
	b.log.Info("applied layout", "name", l.Name, "custom", l.Custom)
	b.actions.Log(actionlog.ActionApplyLayout, l.Name, map[string]any{"id": l.ID.String(), "custom": l.Custom})
	return l, nil
}

// DeleteLayout removes a custom layout.
func (b *Bridge) DeleteLayout(ctx context.Context, id uuid.UUID) error {
	if l, ok := b.builtin(id); ok {
		return b.fail("delete layout failed", fmt.Errorf("layout %q: %w", l.Name, ErrBuiltin), "id", id)
	}
	l, err := b.repo.GetLayout(ctx, id)
	if err != nil {
		return b.fail("delete layout failed", err, "id", id)
	}
	if err := b.repo.DeleteLayout(ctx, id); err != nil {
		return b.fail("delete layout failed", err, "id", id)
	}
	b.log.Info("deleted layout", "name", l.Name)
	b.actions.Log(actionlog.ActionDeleteLayout, l.Name, map[string]any{"id": id.String()})
	return nil
}

// Snapshots lists snapshots newest first.
func (b *Bridge) Snapshots(ctx context.Context) ([]Snapshot, error) {
	out, err := b.repo.ListSnapshots(ctx)
	if err != nil {
		return nil, b.fail("list snapshots failed", err)
	}
	return out, nil
}

// Snapshot looks a snapshot up by id, or by exact name (newest wins).
func (b *Bridge) Snapshot(ctx context.Context, ref string) (Snapshot, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return b.repo.GetSnapshot(ctx, id)
	}
	all, err := b.Snapshots(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	for _, s := range all {
		if s.Name == ref {
			return s, nil
		}
	}
	return Snapshot{}, fmt.Errorf("snapshot %q: %w", ref, ErrNotFound)
}

// CreateSnapshot records the current settings.
func (b *Bridge) CreateSnapshot(ctx context.Context, name string, kind SnapshotKind) (Snapshot, error) {
	if err := validateName("snapshot", name); err != nil {
		return Snapshot{}, err
	}
	if kind == "" {
		kind = KindUser
	}
	schema, err := b.engine.Generate(ctx)
	if err != nil {
		return Snapshot{}, b.fail("create snapshot failed", err, "name", name)
	}
	s := Snapshot{
		ID:      uuid.New(),
		Name:    name,
		Kind:    kind,
		Created: b.now().UTC().Truncate(time.Second),
		Schema:  schema,
	}
	if err := b.putSnapshot(ctx, &s); err != nil {
		return Snapshot{}, b.fail("create snapshot failed", err, "name", name)
	}
	b.log.Info("created snapshot", "name", name, "kind", kind)
	b.actions.Log(actionlog.ActionSnapshotCreate, name, map[string]any{"id": s.ID.String(), "kind": string(kind)})
	if kind == KindSystem {
		b.prune(ctx)
	}
	return s, nil
}

// RestoreSnapshot writes a snapshot's settings back to the shell.
func (b *Bridge) RestoreSnapshot(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	s, err := b.repo.GetSnapshot(ctx, id)
	if err != nil {
		return Snapshot{}, b.fail("restore snapshot failed", err, "id", id)
	}
	if err := b.autoSnapshot(ctx, "before restore "+s.Name); err != nil {
		return Snapshot{}, b.fail("restore snapshot failed", err, "name", s.Name)
	}
	if err := b.engine.Apply(ctx, s.Schema); err != nil {
		return Snapshot{}, b.fail("restore snapshot failed", err, "name", s.Name)
	}
	b.log.Info("restored snapshot", "name", s.Name)
	b.actions.Log(actionlog.ActionSnapshotRestore, s.Name, map[string]any{"id": id.String()})
	return s, nil
}

func (b *Bridge) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	s, err := b.repo.GetSnapshot(ctx, id)
	if err != nil {
		return b.fail("delete snapshot failed", err, "id", id)
	}
	if err := b.repo.DeleteSnapshot(ctx, id); err != nil {
		return b.fail("delete snapshot failed", err, "id", id)
	}
	b.log.Info("deleted snapshot", "name", s.Name)
	b.actions.Log(actionlog.ActionSnapshotDelete, s.Name, map[string]any{"id": id.String()})
	return nil
}

// ExportSnapshot writes a snapshot to w as TOML.
func (b *Bridge) ExportSnapshot(ctx context.Context, id uuid.UUID, w io.Writer) error {
	s, err := b.repo.GetSnapshot(ctx, id)
	if err != nil {
		return b.fail("export snapshot failed", err, "id", id)
	}
	if err := toml.NewEncoder(w).Encode(s); err != nil {
		return b.fail("export snapshot failed", fmt.Errorf("encode snapshot: %w", err), "id", id)
	}
	return nil
}

// ImportSnapshot reads a TOML snapshot from r and stores it as a new user
// snapshot with a fresh id.
func (b *Bridge) ImportSnapshot(ctx context.Context, r io.Reader) (Snapshot, error) {
	var s Snapshot
	if _, err := toml.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, b.fail("import snapshot failed", fmt.Errorf("decode snapshot: %w", err))
	}
	if err := validateName("snapshot", s.Name); err != nil {
		return Snapshot{}, b.fail("import snapshot failed", err)
	}
	s.ID = uuid.New()
	s.Kind = KindUser
	if s.Created.IsZero() {
		s.Created = b.now().UTC().Truncate(time.Second)
	}
	if s.Schema.Entries == nil {
		s.Schema.Entries = map[string]string{}
	}
	if err := b.putSnapshot(ctx, &s); err != nil {
		return Snapshot{}, b.fail("import snapshot failed", err, "name", s.Name)
	}
	b.log.Info("imported snapshot", "name", s.Name, "id", s.ID)
	b.actions.Log(actionlog.ActionSnapshotImport, s.Name, map[string]any{"id": s.ID.String()})
	return s, nil
}

// putSnapshot stores s with the next sequence number so that it sorts
// after every snapshot already stored with the same timestamp.
func (b *Bridge) putSnapshot(ctx context.Context, s *Snapshot) error {
	b.snapMu.Lock()
	defer b.snapMu.Unlock()
	all, err := b.repo.ListSnapshots(ctx)
	if err != nil {
		return err
	}
	s.Seq = 1
	for _, existing := range all {
		s.Seq = max(s.Seq, existing.Seq+1)
	}
	return b.repo.PutSnapshot(ctx, *s)
}

func (b *Bridge) autoSnapshot(ctx context.Context, name string) error {
	if !b.opts.AutoSnapshot {
		return nil
	}
	_, err := b.CreateSnapshot(ctx, name, KindSystem)
	return err
}

// prune drops the oldest system snapshots beyond MaxSystemSnapshots.
// Failures are logged only.
func (b *Bridge) prune(ctx context.Context) {
	if b.opts.MaxSystemSnapshots <= 0 {
		return
	}
	all, err := b.repo.ListSnapshots(ctx)
	if err != nil {
		b.log.Warn("prune snapshots failed", "err", err)
		return
	}
	kept := 0
	for _, s := range all {
		if s.Kind != KindSystem {
			continue
		}
		kept++
		if kept <= b.opts.MaxSystemSnapshots {
			continue
		}
		if err := b.repo.DeleteSnapshot(ctx, s.ID); err != nil {
			b.log.Warn("prune snapshot failed", "name", s.Name, "err", err)
			continue
		}
		b.log.Debug("pruned snapshot", "name", s.Name)
		b.actions.Log(actionlog.ActionSnapshotPrune, s.Name, map[string]any{"id": s.ID.String()})
	}
}
