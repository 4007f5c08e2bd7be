// Package store persists the cashcast dataset as a JSON blob in a SQLite key-value table.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/cashcast/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Store provides SQLite-backed dataset persistence.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

func get(q querier, key string, v any) (bool, error) {
	var raw string
	err := q.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

func put(q querier, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = q.Exec(`INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)`, key, string(raw), now)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Load reads the dataset. The bool is false when nothing has been saved yet.
func (s *Store) Load() (model.Dataset, bool, error) {
	var ds model.Dataset
	ok, err := get(s.db, DatasetKey, &ds)
	return ds, ok, err
}

// Save replaces the stored dataset.
func (s *Store) Save(ds model.Dataset) error {
	return put(s.db, DatasetKey, ds)
}

// LoadOrSeed loads the dataset, writing the seed dataset first when the store is empty.
// The bool reports whether seeding happened.
func (s *Store) LoadOrSeed(now time.Time) (model.Dataset, bool, error) {
	ds, ok, err := s.Load()
	if err != nil || ok {
		return ds, false, err
	}
	ds = Seed(now)
	if err := s.Save(ds); err != nil {
		return model.Dataset{}, false, err
	}
	return ds, true, nil
}

// Update loads the dataset, applies fn and saves the result in one transaction.
// Nothing is written when fn returns an error.
func (s *Store) Update(fn func(*model.Dataset) error) (model.Dataset, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return model.Dataset{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var ds model.Dataset
	if _, err := get(tx, DatasetKey, &ds); err != nil {
		return model.Dataset{}, err
	}
	if err := fn(&ds); err != nil {
		return model.Dataset{}, err
	}
	if err := put(tx, DatasetKey, ds); err != nil {
		return model.Dataset{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Dataset{}, err
	}
	return ds, nil
}

// UpdatedAt returns when the dataset was last written, or the zero time if never.
func (s *Store) UpdatedAt() (time.Time, error) {
	var raw string
	err := s.db.QueryRow("SELECT updated_at FROM kv WHERE key = ?", DatasetKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, raw)
}

// FileInfo holds the mtime and size recorded when a CSV file was imported.
type FileInfo struct {
	MtimeNs   int64 `json:"mtimeNs"`
	SizeBytes int64 `json:"sizeBytes"`
	Rows      int   `json:"rows"`
}

// Changed reports whether fi no longer matches the file on disk.
func (fi FileInfo) Changed(mtimeNs, sizeBytes int64) bool {
	return fi.MtimeNs != mtimeNs || fi.SizeBytes != sizeBytes
}

// GetImportedFiles returns file path -> FileInfo for every imported CSV file.
func (s *Store) GetImportedFiles() (map[string]FileInfo, error) {
	files := make(map[string]FileInfo)
	if _, err := get(s.db, importsKey, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// MarkImported records files as imported, merging with the existing log.
func (s *Store) MarkImported(entries map[string]FileInfo) error {
	files, err := s.GetImportedFiles()
	if err != nil {
		return err
	}
	for path, fi := range entries {
		files[path] = fi
	}
	return put(s.db, importsKey, files)
}
