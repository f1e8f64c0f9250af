package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// FileRepository keeps one JSON file per record:
// <dir>/layouts/<id>.json and <dir>/snapshots/<id>.json.
type FileRepository struct {
	dir string
}

func NewFileRepository(dir string) (*FileRepository, error) {
	if dir == "" {
		return nil, fmt.Errorf("store directory is required")
	}
	for _, sub := range []string{"layouts", "snapshots"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}
	return &FileRepository{dir: dir}, nil
}

func (r *FileRepository) Close() error { return nil }

func (r *FileRepository) path(kind string, id uuid.UUID) string {
	return filepath.Join(r.dir, kind, id.String()+".json")
}

// put writes v to a file that must not exist yet. A failed write removes
// the partial file.
func (r *FileRepository) put(kind string, id uuid.UUID, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", kind, id, err)
	}
	path := r.path(kind, id)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s %s: %w", kind, id, ErrExists)
		}
		return fmt.Errorf("failed to write %s %s: %w", kind, id, err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write %s %s: %w", kind, id, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write %s %s: %w", kind, id, err)
	}
	return nil
}

func (r *FileRepository) get(kind string, id uuid.UUID, v any) error {
	data, err := os.ReadFile(r.path(kind, id))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
		}
		return fmt.Errorf("failed to read %s %s: %w", kind, id, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s %s: %w", kind, id, err)
	}
	return nil
}

func (r *FileRepository) delete(kind string, id uuid.UUID) error {
	if err := os.Remove(r.path(kind, id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
		}
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}
	return nil
}

// ids lists the record ids under kind. Files whose name is not a uuid are
// ignored.
func (r *FileRepository) ids(kind string) ([]uuid.UUID, error) {
	entries, err := os.ReadDir(filepath.Join(r.dir, kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	var out []uuid.UUID
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := uuid.Parse(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

func (r *FileRepository) PutLayout(ctx context.Context, l Layout) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.put("layouts", l.ID, l)
}

func (r *FileRepository) GetLayout(ctx context.Context, id uuid.UUID) (Layout, error) {
	var l Layout
	if err := ctx.Err(); err != nil {
		return l, err
	}
	err := r.get("layouts", id, &l)
	return l, err
}

func (r *FileRepository) ListLayouts(ctx context.Context) ([]Layout, error) {
	ids, err := r.ids("layouts")
	if err != nil {
		return nil, err
	}
	out := make([]Layout, 0, len(ids))
	for _, id := range ids {
		l, err := r.GetLayout(ctx, id)
		if err != nil {
			// Deleted between listing and reading.
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *FileRepository) DeleteLayout(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.delete("layouts", id)
}

func (r *FileRepository) PutSnapshot(ctx context.Context, s Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.put("snapshots", s.ID, s)
}

func (r *FileRepository) GetSnapshot(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	var s Snapshot
	if err := ctx.Err(); err != nil {
		return s, err
	}
	err := r.get("snapshots", id, &s)
	return s, err
}

func (r *FileRepository) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	ids, err := r.ids("snapshots")
	if err != nil {
		return nil, err
	}
	out := make([]Snapshot, 0, len(ids))
	for _, id := range ids {
		s, err := r.GetSnapshot(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, s)
	}
	sortSnapshots(out)
	return out, nil
}

func (r *FileRepository) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.delete("snapshots", id)
}

// sortSnapshots orders newest first: by Created, then by Seq.
func sortSnapshots(s []Snapshot) {
	sort.SliceStable(s, func(i, j int) bool {
		if !s[i].Created.Equal(s[j].Created) {
			return s[i].Created.After(s[j].Created)
		}
		if s[i].Seq != s[j].Seq {
			return s[i].Seq > s[j].Seq
		}
		return s[i].Name < s[j].Name
	})
}
