package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// SQLiteRepository keeps layouts and snapshots in a single SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at dbPath.
func OpenSQLite(dbPath string) (*SQLiteRepository, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	r := &SQLiteRepository{db: db}
	if err := r.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return r, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS layouts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		custom INTEGER NOT NULL DEFAULT 1,
		schema TEXT NOT NULL,
		preview TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_layouts_name ON layouts(name);

	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		seq INTEGER NOT NULL DEFAULT 0,
		schema TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);
	`
	if _, err := r.db.Exec(schema); err != nil {
		return err
	}
	return r.addColumn("snapshots", "seq", "INTEGER NOT NULL DEFAULT 0")
}

// addColumn adds a column that databases created by older versions lack.
func (r *SQLiteRepository) addColumn(table, column, decl string) error {
	rows, err := r.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	_, err = r.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl))
	return err
}

// insertErr maps a primary key violation to ErrExists.
func insertErr(kind string, id uuid.UUID, err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%s %s: %w", kind, id, ErrExists)
	}
	return fmt.Errorf("insert %s %s: %w", kind, id, err)
}

func deleteResult(kind string, id uuid.UUID, res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) PutLayout(ctx context.Context, l Layout) error {
	schema, err := json.Marshal(l.Schema)
	if err != nil {
		return fmt.Errorf("encode layout schema: %w", err)
	}
	preview, err := json.Marshal(l.Preview)
	if err != nil {
		return fmt.Errorf("encode layout preview: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO layouts (id, name, custom, schema, preview)
		VALUES (?, ?, ?, ?, ?)
	`, l.ID.String(), l.Name, l.Custom, string(schema), string(preview))
	if err != nil {
		return insertErr("layout", l.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLayout(row rowScanner) (Layout, error) {
	var (
		l               Layout
		id              string
		schema, preview string
	)
	if err := row.Scan(&id, &l.Name, &l.Custom, &schema, &preview); err != nil {
		return l, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return l, fmt.Errorf("layout id %q: %w", id, err)
	}
	l.ID = parsed
	if err := json.Unmarshal([]byte(schema), &l.Schema); err != nil {
		return l, fmt.Errorf("decode layout %s schema: %w", id, err)
	}
	if err := json.Unmarshal([]byte(preview), &l.Preview); err != nil {
		return l, fmt.Errorf("decode layout %s preview: %w", id, err)
	}
	return l, nil
}

func (r *SQLiteRepository) GetLayout(ctx context.Context, id uuid.UUID) (Layout, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, custom, schema, preview
		FROM layouts
		WHERE id = ?
	`, id.String())
	l, err := scanLayout(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Layout{}, fmt.Errorf("layout %s: %w", id, ErrNotFound)
	}
	return l, err
}

func (r *SQLiteRepository) ListLayouts(ctx context.Context) ([]Layout, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, custom, schema, preview
		FROM layouts
		ORDER BY name, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Layout
	for rows.Next() {
		l, err := scanLayout(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteLayout(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM layouts WHERE id = ?`, id.String())
	return deleteResult("layout", id, res, err)
}

func (r *SQLiteRepository) PutSnapshot(ctx context.Context, s Snapshot) error {
	schema, err := json.Marshal(s.Schema)
	if err != nil {
		return fmt.Errorf("encode snapshot schema: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, name, kind, created_at, seq, schema)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID.String(), s.Name, string(s.Kind), s.Created.UTC(), s.Seq, string(schema))
	if err != nil {
		return insertErr("snapshot", s.ID, err)
	}
	return nil
}

func scanSnapshot(row rowScanner) (Snapshot, error) {
	var (
		s       Snapshot
		id      string
		kind    string
		created time.Time
		schema  string
	)
	if err := row.Scan(&id, &s.Name, &kind, &created, &s.Seq, &schema); err != nil {
		return s, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return s, fmt.Errorf("snapshot id %q: %w", id, err)
	}
	s.ID = parsed
	s.Kind = SnapshotKind(kind)
	s.Created = created
	if err := json.Unmarshal([]byte(schema), &s.Schema); err != nil {
		return s, fmt.Errorf("decode snapshot %s schema: %w", id, err)
	}
	return s, nil
}

func (r *SQLiteRepository) GetSnapshot(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, kind, created_at, seq, schema
		FROM snapshots
		WHERE id = ?
	`, id.String())
	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("snapshot %s: %w", id, ErrNotFound)
	}
	return s, err
}

func (r *SQLiteRepository) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, kind, created_at, seq, schema
		FROM snapshots
		ORDER BY created_at DESC, seq DESC, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id.String())
	return deleteResult("snapshot", id, res, err)
}
