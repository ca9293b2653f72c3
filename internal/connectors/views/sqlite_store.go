// Package views persists named filter presets for the dashboard sidebar in an
// app-owned SQLite database.
package views

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"go-pdm-fleet-dashboard/internal/fleet"
)

// SavedView is one named filter preset.
type SavedView struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Filter      fleet.Filter `json:"filter"`
	CreatedAt   *time.Time   `json:"created_at,omitempty"`
	UpdatedAt   *time.Time   `json:"updated_at,omitempty"`
}

// Store manages saved views in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

func NewSQLiteStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS saved_views (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  filter_json TEXT NOT NULL,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_sv_name ON saved_views(name);`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the sqlite file backing this store.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Ping verifies the store is reachable, for the status endpoint.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("views store not initialized")
	}
	return s.db.PingContext(ctx)
}

func (s *Store) List(ctx context.Context, limit int) ([]SavedView, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, description, filter_json, created_at, updated_at
FROM saved_views
ORDER BY name ASC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SavedView, 0, limit)
	for rows.Next() {
		item, err := scanView(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id int64) (*SavedView, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, name, description, filter_json, created_at, updated_at
FROM saved_views
WHERE id = ?;
`, id)
	item, err := scanView(row.Scan)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Upsert creates or replaces a view by name and returns its id.
func (s *Store) Upsert(ctx context.Context, name, description string, filter fleet.Filter) (int64, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return 0, fmt.Errorf("view name is required")
	}
	if filter.RULMax < filter.RULMin {
		return 0, fmt.Errorf("rul_max must be >= rul_min")
	}

	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return 0, err
	}

	if _, err := s.db.ExecContext(ctx, `
INSERT INTO saved_views (name, description, filter_json, created_at, updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
ON CONFLICT(name) DO UPDATE SET
  description = excluded.description,
  filter_json = excluded.filter_json,
  updated_at = CURRENT_TIMESTAMP;
`, name, description, string(filterJSON)); err != nil {
		return 0, err
	}

	// LastInsertId reports the connection's most recent insert, which on the
	// conflict/update path is some earlier row. The name is unique, so resolve
	// the id from it instead.
	var id int64
	if err := s.db.QueryRowContext(ctx, `SELECT id FROM saved_views WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_views WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanView(scan func(dest ...any) error) (SavedView, error) {
	var (
		item       SavedView
		filterJSON string
		createdAt  sql.NullTime
		updatedAt  sql.NullTime
	)
	if err := scan(&item.ID, &item.Name, &item.Description, &filterJSON, &createdAt, &updatedAt); err != nil {
		return SavedView{}, err
	}
	if err := json.Unmarshal([]byte(filterJSON), &item.Filter); err != nil {
		return SavedView{}, fmt.Errorf("corrupt filter_json for view %d: %w", item.ID, err)
	}
	if createdAt.Valid {
		t := createdAt.Time.UTC()
		item.CreatedAt = &t
	}
	if updatedAt.Valid {
		t := updatedAt.Time.UTC()
		item.UpdatedAt = &t
	}
	return item, nil
}
