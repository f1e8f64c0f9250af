package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/shelltweak/internal/placement"
	"github.com/1broseidon/shelltweak/internal/shell"
)

func repositories(t *testing.T) map[string]Repository {
	t.Helper()
	fileRepo, err := NewFileRepository(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("file repository: %v", err)
	}
	sqliteRepo, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "shelltweak.db"))
	if err != nil {
		t.Fatalf("sqlite repository: %v", err)
	}
	t.Cleanup(func() { sqliteRepo.Close() })
	return map[string]Repository{"json": fileRepo, "sqlite": sqliteRepo}
}

func sampleLayout(name string) Layout {
	spec := placement.Default()
	return Layout{
		ID:      uuid.New(),
		Name:    name,
		Custom:  true,
		Schema:  shell.WithPlacement(shell.Schema{Shell: "file", Entries: map[string]string{}}, spec),
		Preview: spec,
	}
}

func sampleSnapshot(name string, created time.Time) Snapshot {
	return Snapshot{
		ID:      uuid.New(),
		Name:    name,
		Kind:    KindUser,
		Created: created.UTC(),
		Schema:  shell.Schema{Shell: "file", Entries: map[string]string{"panel/size": "32"}},
	}
}

func TestRepository_Layouts(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			b := sampleLayout("beta")
			a := sampleLayout("alpha")
			for _, l := range []Layout{b, a} {
				if err := repo.PutLayout(ctx, l); err != nil {
					t.Fatalf("put: %v", err)
				}
			}
			if err := repo.PutLayout(ctx, a); !errors.Is(err, ErrExists) {
				t.Fatalf("expected ErrExists for duplicate id, got %v", err)
			}

			got, err := repo.GetLayout(ctx, a.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.Name != "alpha" || got.Preview != a.Preview || got.Schema.Entries[shell.KeyDockSize] != "48" {
				t.Fatalf("unexpected layout %+v", got)
			}

			list, err := repo.ListLayouts(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(list) != 2 || list[0].Name != "alpha" || list[1].Name != "beta" {
				t.Fatalf("expected [alpha beta], got %+v", list)
			}

			if err := repo.DeleteLayout(ctx, a.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := repo.GetLayout(ctx, a.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
			if err := repo.DeleteLayout(ctx, a.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound deleting twice, got %v", err)
			}
		})
	}
}

func TestRepository_Snapshots(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			older := sampleSnapshot("older", base)
			newer := sampleSnapshot("newer", base.Add(time.Hour))
			for _, s := range []Snapshot{older, newer} {
				if err := repo.PutSnapshot(ctx, s); err != nil {
					t.Fatalf("put: %v", err)
				}
			}
			if err := repo.PutSnapshot(ctx, older); !errors.Is(err, ErrExists) {
				t.Fatalf("expected ErrExists, got %v", err)
			}

			got, err := repo.GetSnapshot(ctx, older.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !got.Created.Equal(older.Created) || got.Kind != KindUser || got.Schema.Entries["panel/size"] != "32" {
				t.Fatalf("unexpected snapshot %+v", got)
			}

			list, err := repo.ListSnapshots(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(list) != 2 || list[0].Name != "newer" {
				t.Fatalf("expected newest first, got %+v", list)
			}

			if err := repo.DeleteSnapshot(ctx, newer.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := repo.GetSnapshot(ctx, newer.ID); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestRepository_SnapshotsSameSecondOrderBySeq(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			for i, n := range []string{"a-first", "b-second", "c-third"} {
				s := sampleSnapshot(n, at)
				s.Seq = int64(i + 1)
				if err := repo.PutSnapshot(ctx, s); err != nil {
					t.Fatalf("put: %v", err)
				}
			}
			list, err := repo.ListSnapshots(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			var names []string
			for _, s := range list {
				names = append(names, s.Name)
			}
			if got := strings.Join(names, ","); got != "c-third,b-second,a-first" {
				t.Fatalf("expected newest seq first, got %s", got)
			}
		})
	}
}

func TestFileRepository_IgnoresStrayFiles(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileRepository(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "layouts", "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "layouts", "not-a-uuid.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	list, err := repo.ListLayouts(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected stray files to be ignored, got %d layouts", len(list))
	}
}

func TestFileRepository_CorruptRecord(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileRepository(dir)
	if err != nil {
		t.Fatal(err)
	}
	id := uuid.New()
	if err := os.WriteFile(filepath.Join(dir, "snapshots", id.String()+".json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetSnapshot(context.Background(), id); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{"", BackendJSON, BackendSQLite} {
		repo, err := Open(backend, dir)
		if err != nil {
			t.Fatalf("open %q: %v", backend, err)
		}
		repo.Close()
	}
	if _, err := Open("redis", dir); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestParseSnapshotKind(t *testing.T) {
	for in, want := range map[string]SnapshotKind{"": KindUser, "user": KindUser, "System": KindSystem} {
		got, err := ParseSnapshotKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseSnapshotKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseSnapshotKind("auto"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
