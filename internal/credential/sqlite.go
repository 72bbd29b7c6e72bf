// ABOUTME: SQLite backend storing credentials in a key/value table
// ABOUTME: Uses the pure-Go modernc driver so no cgo toolchain is needed

package credential

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteFileName is the database inside the config directory.
const SQLiteFileName = "credentials.db"

const (
	createKVTable = `CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`
	selectKV      = `SELECT value FROM kv WHERE key = ?`
	upsertKV      = `INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	deleteKV      = `DELETE FROM kv WHERE key = ?`
)

type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (creating if needed) the database at path.
func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open credential database: %w", err)
	}

	b, err := NewSQLiteBackendFromDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// NewSQLiteBackendFromDB wraps an open handle and ensures the schema exists.
func NewSQLiteBackendFromDB(db *sql.DB) (*SQLiteBackend, error) {
	if _, err := db.Exec(createKVTable); err != nil {
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Load(key string) (string, bool, error) {
	var value string
	err := b.db.QueryRow(selectKV, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query %s: %w", key, err)
	}
	return value, value != "", nil
}

func (b *SQLiteBackend) Save(key, value string) error {
	if _, err := b.db.Exec(upsertKV, key, value); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

func (b *SQLiteBackend) Delete(key string) error {
	if _, err := b.db.Exec(deleteKV, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
