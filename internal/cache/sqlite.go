package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Khootz/FYP2026/internal/openrice"
	_ "modernc.org/sqlite"
)

// ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore keeps cache entries in a single sqlite table, one row per key.
type SQLiteStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS restaurant_cache (
	cache_key TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	version INTEGER NOT NULL,
	cached_at DATETIME NOT NULL,
	payload TEXT NOT NULL
);
`

// NewSQLiteStore opens (and if needed initializes) the cache database at dsn.
func NewSQLiteStore(dsn string, ttl time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite cache schema: %w", err)
	}
	return &SQLiteStore{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *SQLiteStore) Get(query string) (*openrice.Restaurant, bool) {
	row := s.db.QueryRow(
		`SELECT version, cached_at, payload FROM restaurant_cache WHERE cache_key = ?`,
		Key(query),
	)

	var version int
	var cachedAt time.Time
	var payload string
	if err := row.Scan(&version, &cachedAt, &payload); err != nil {
		return nil, false
	}

	var r openrice.Restaurant
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, false
	}

	e := entry{Version: version, CachedAt: cachedAt, Data: &r}
	if !e.valid(s.ttl, s.now()) {
		return nil, false
	}
	return &r, true
}

func (s *SQLiteStore) Set(query string, r *openrice.Restaurant) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	_, err = s.db.Exec(`
	INSERT INTO restaurant_cache (cache_key, query, version, cached_at, payload)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(cache_key) DO UPDATE SET
		query = excluded.query,
		version = excluded.version,
		cached_at = excluded.cached_at,
		payload = excluded.payload`,
		Key(query), query, openrice.SchemaVersion, s.now(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM restaurant_cache`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
