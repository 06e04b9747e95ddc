package warps

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the default Store backend. One connection, WAL journal;
// the warp table is small and every call is a single statement.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func initPragmas(db *sql.DB) error {
	// WAL + NORMAL: the store is read-heavy and a lost last write on power
	// failure is acceptable for warp metadata.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS warps (
  id          TEXT PRIMARY KEY,
  name        TEXT NOT NULL,
  owner_id    TEXT NOT NULL,
  owner_name  TEXT NOT NULL,
  world       TEXT NOT NULL,
  x           INTEGER NOT NULL,
  y           INTEGER NOT NULL,
  z           INTEGER NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  public      INTEGER NOT NULL DEFAULT 0,
  icon        TEXT NOT NULL DEFAULT '',
  created_at  TEXT NOT NULL,
  UNIQUE(owner_id, name)
);
CREATE INDEX IF NOT EXISTS idx_warps_owner  ON warps(owner_id);
CREATE INDEX IF NOT EXISTS idx_warps_public ON warps(public);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

const warpCols = "id, name, owner_id, owner_name, world, x, y, z, description, public, icon, created_at"

func scanWarp(row interface{ Scan(...any) error }) (Warp, error) {
	var w Warp
	var public int
	var created string
	err := row.Scan(&w.ID, &w.Name, &w.OwnerID, &w.OwnerName, &w.World,
		&w.X, &w.Y, &w.Z, &w.Description, &public, &w.Icon, &created)
	if err != nil {
		return Warp{}, err
	}
	w.Public = public != 0
	if t, perr := time.Parse(time.RFC3339, created); perr == nil {
		w.CreatedAt = t
	}
	return w, nil
}

func (s *SQLiteStore) queryWarps(ctx context.Context, where string, args ...any) ([]Warp, error) {
	q := "SELECT " + warpCols + " FROM warps " + where + " ORDER BY created_at, name"
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Warp
	for rows.Next() {
		w, err := scanWarp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) FindOwned(ctx context.Context, ownerID string) ([]Warp, error) {
	return s.queryWarps(ctx, "WHERE owner_id = ?", ownerID)
}

func (s *SQLiteStore) FindPublic(ctx context.Context) ([]Warp, error) {
	return s.queryWarps(ctx, "WHERE public = 1")
}

func (s *SQLiteStore) findOne(ctx context.Context, where string, args ...any) (*Warp, error) {
	q := "SELECT " + warpCols + " FROM warps " + where + " LIMIT 1"
	w, err := scanWarp(s.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *SQLiteStore) FindByID(ctx context.Context, id string) (*Warp, error) {
	return s.findOne(ctx, "WHERE id = ?", id)
}

func (s *SQLiteStore) FindByNameAndOwner(ctx context.Context, name, ownerID string) (*Warp, error) {
	return s.findOne(ctx, "WHERE owner_id = ? AND name = ? COLLATE NOCASE", ownerID, name)
}

func (s *SQLiteStore) FindPublicByName(ctx context.Context, name string) (*Warp, error) {
	return s.findOne(ctx, "WHERE public = 1 AND name = ? COLLATE NOCASE", name)
}

func (s *SQLiteStore) Create(ctx context.Context, w Warp) (Warp, error) {
	if strings.TrimSpace(w.Name) == "" {
		return Warp{}, fmt.Errorf("empty warp name")
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	public := 0
	if w.Public {
		public = 1
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO warps ("+warpCols+") VALUES (?,?,?,?,?,?,?,?,?,?,?,?)",
		w.ID, w.Name, w.OwnerID, w.OwnerName, w.World,
		w.X, w.Y, w.Z, w.Description, public, w.Icon,
		w.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return Warp{}, fmt.Errorf("create warp %q: %w", w.Name, err)
	}
	return w, nil
}

func (s *SQLiteStore) exec1(ctx context.Context, q string, args ...any) (bool, error) {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) (bool, error) {
	return s.exec1(ctx, "DELETE FROM warps WHERE id = ?", id)
}

func (s *SQLiteStore) Rename(ctx context.Context, id, newName string) (bool, error) {
	if strings.TrimSpace(newName) == "" {
		return false, fmt.Errorf("empty warp name")
	}
	return s.exec1(ctx, "UPDATE warps SET name = ? WHERE id = ?", newName, id)
}

func (s *SQLiteStore) SetVisibility(ctx context.Context, id string, public bool) (bool, error) {
	v := 0
	if public {
		v = 1
	}
	return s.exec1(ctx, "UPDATE warps SET public = ? WHERE id = ?", v, id)
}

func (s *SQLiteStore) UpdateDescription(ctx context.Context, id, text string) (bool, error) {
	return s.exec1(ctx, "UPDATE warps SET description = ? WHERE id = ?", text, id)
}

func (s *SQLiteStore) SetIcon(ctx context.Context, id, icon string) (bool, error) {
	return s.exec1(ctx, "UPDATE warps SET icon = ? WHERE id = ?", icon, id)
}

func (s *SQLiteStore) CountOwned(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM warps WHERE owner_id = ?", ownerID).Scan(&n)
	return n, err
}
