package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Khootz/FYP2026/internal/openrice"
)

// ensure FileStore implements Store
var _ Store = (*FileStore)(nil)

// FileStore keeps one JSON file per cache key under a directory scoped to
// this pipeline. Concurrent operations on different keys touch different
// files; a same-key write race is last-writer-wins, which is the only
// ordering the contract promises.
type FileStore struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewFileStore creates the cache directory if needed.
func NewFileStore(dir string, ttl time.Duration) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileStore{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (s *FileStore) path(query string) string {
	return filepath.Join(s.dir, Key(query)+".json")
}

// Get returns the cached record for the query, or a miss. Expired entries
// are ignored but not deleted; the next Set overwrites them.
func (s *FileStore) Get(query string) (*openrice.Restaurant, bool) {
	raw, err := os.ReadFile(s.path(query))
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false
	}
	if !e.valid(s.ttl, s.now()) {
		return nil, false
	}
	return e.Data, true
}

// Set overwrites any prior entry for the query.
func (s *FileStore) Set(query string, r *openrice.Restaurant) error {
	e := entry{
		Version:  openrice.SchemaVersion,
		CachedAt: s.now(),
		Query:    query,
		Data:     r,
	}

	raw, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if err := os.WriteFile(s.path(query), raw, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Clear removes every persisted entry.
func (s *FileStore) Clear() error {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return fmt.Errorf("list cache entries: %w", err)
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove cache entry: %w", err)
		}
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
