package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"sessiongate/internal/codec"
)

const kvSchema = `CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteSlots keeps slots as CBOR-encoded rows of a single kv table.
type SQLiteSlots struct {
	db *sql.DB
}

// OpenSQLiteSlots creates or opens the database at dbPath and ensures the
// kv table exists.
func OpenSQLiteSlots(dbPath string) (*SQLiteSlots, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite handles one writer at a time

	if _, err := db.Exec(kvSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteSlots{db: db}, nil
}

// Load decodes the row for key into out.
func (s *SQLiteSlots) Load(key string, out any) (bool, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load slot %q: %w", key, err)
	}
	if err := codec.Unmarshal(value, out); err != nil {
		return false, fmt.Errorf("decode slot %q: %w", key, err)
	}
	return true, nil
}

// Store upserts the row for key.
func (s *SQLiteSlots) Store(key string, v any) error {
	value, err := codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode slot %q: %w", key, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store slot %q: %w", key, err)
	}
	return nil
}

// Delete removes the row for key.
func (s *SQLiteSlots) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete slot %q: %w", key, err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteSlots) Close() error { return s.db.Close() }

var _ Slots = (*SQLiteSlots)(nil)
