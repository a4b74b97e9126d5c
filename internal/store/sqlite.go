package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteFile = "lifeplan.db"

// SQLiteStore keeps every record in a single records table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) dataDir/lifeplan.db.
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if dataDir == "" {
		return nil, errors.New("store: data dir is empty")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dataDir, sqliteFile))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers inside this process.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS records (
  ns TEXT NOT NULL,
  name TEXT NOT NULL,
  value BLOB NOT NULL,
  updated_at TEXT NOT NULL,
  PRIMARY KEY (ns, name)
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create records table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, ns, name string) ([]byte, error) {
	if err := validName(ns); err != nil {
		return nil, err
	}
	if err := validName(name); err != nil {
		return nil, err
	}
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE ns = ? AND name = ?`, ns, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", ns, name, err)
	}
	return value, nil
}

func (s *SQLiteStore) Put(ctx context.Context, ns, name string, data []byte) error {
	if err := validName(ns); err != nil {
		return err
	}
	if err := validName(name); err != nil {
		return err
	}
	const stmt = `
INSERT INTO records (ns, name, value, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(ns, name) DO UPDATE SET
  value=excluded.value,
  updated_at=excluded.updated_at;
`
	if _, err := s.db.ExecContext(ctx, stmt, ns, name, data, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("put %s/%s: %w", ns, name, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, ns, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE ns = ? AND name = ?`, ns, name)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", ns, name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, ns string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM records WHERE ns = ? ORDER BY name`, ns)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", ns, err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
