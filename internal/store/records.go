// Package store persists named layouts and snapshots of the shell settings
// and applies them through a shell engine.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/shelltweak/internal/placement"
	"github.com/1broseidon/shelltweak/internal/shell"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
	ErrBuiltin  = errors.New("built-in layouts cannot be changed")
)

// Layout is a named placement together with the settings it produces.
// Built-in layouts come from configuration and are never stored.
type Layout struct {
	ID      uuid.UUID            `json:"id"`
	Name    string               `json:"name"`
	Custom  bool                 `json:"custom"`
	Schema  shell.Schema         `json:"schema"`
	Preview placement.LayoutSpec `json:"preview"`
}

// SnapshotKind tells automatic snapshots apart from ones a user took.
type SnapshotKind string

const (
	KindSystem SnapshotKind = "system"
	KindUser   SnapshotKind = "user"
)

func ParseSnapshotKind(s string) (SnapshotKind, error) {
	switch SnapshotKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindSystem:
		return KindSystem, nil
	case KindUser, "":
		return KindUser, nil
	}
	return "", fmt.Errorf("invalid snapshot kind %q (expected system or user)", s)
}

// Snapshot is a point-in-time copy of the shell settings.
type Snapshot struct {
	ID      uuid.UUID    `json:"id" toml:"id"`
	Name    string       `json:"name" toml:"name"`
	Kind    SnapshotKind `json:"kind" toml:"kind"`
	Created time.Time    `json:"created" toml:"created"`
	// Seq increases with every snapshot the bridge stores and orders
	// snapshots taken within the same second.
	Seq    int64        `json:"seq,omitempty" toml:"-"`
	Schema shell.Schema `json:"schema" toml:"schema"`
}

// Repository stores layouts and snapshots by id. Records are written once:
// Put refuses an id that is already present.
type Repository interface {
	PutLayout(ctx context.Context, l Layout) error
	GetLayout(ctx context.Context, id uuid.UUID) (Layout, error)
	ListLayouts(ctx context.Context) ([]Layout, error)
	DeleteLayout(ctx context.Context, id uuid.UUID) error

	PutSnapshot(ctx context.Context, s Snapshot) error
	GetSnapshot(ctx context.Context, id uuid.UUID) (Snapshot, error)
	ListSnapshots(ctx context.Context) ([]Snapshot, error)
	DeleteSnapshot(ctx context.Context, id uuid.UUID) error

	Close() error
}

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open returns the repository for backend rooted at dir.
func Open(backend, dir string) (Repository, error) {
	switch backend {
	case BackendJSON, "":
		return NewFileRepository(dir)
	case BackendSQLite:
		return OpenSQLite(filepath.Join(dir, "shelltweak.db"))
	}
	return nil, fmt.Errorf("unknown store backend %q", backend)
}

// DefaultDir returns ~/.local/share/shelltweak, honouring XDG_DATA_HOME.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "shelltweak"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "shelltweak"), nil
}

func validateName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s name is required", kind)
	}
	if strings.ContainsAny(name, "\n\r") {
		return fmt.Errorf("invalid %s name %q", kind, name)
	}
	return nil
}
