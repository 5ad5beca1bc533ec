// Package localcache is a best-effort on-disk mirror of the last-known remote
// collections. It backs the offline-resume behavior: when the database is
// unreachable, services fall back to the snapshot stored here.
package localcache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ispeaktu/backend/core"
)

var ErrMiss = errors.New("localcache: key not found")

const schema = `
CREATE TABLE IF NOT EXISTS cache (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    updated_at TEXT NOT NULL
);
`

type Store struct {
	db *sql.DB
	mu sync.Mutex
}

var _ core.CacheStore = (*Store)(nil) // interface compliance check

// Open opens (or creates) the mirror file at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value []byte
	err := s.db.QueryRow("SELECT value FROM cache WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(value, dest)
}

func (s *Store) Put(key string, v interface{}) error {
	value, err := json.Marshal(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		`INSERT INTO cache (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	return err
}
