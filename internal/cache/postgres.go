package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Khootz/FYP2026/internal/openrice"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ensure PostgresStore implements Store
var _ Store = (*PostgresStore)(nil)

// PostgresStore backs the cache with a shared postgres table, letting several
// resolver instances reuse each other's results. Different keys never
// interfere; same-key concurrent writes are last-writer-wins via upsert.
type PostgresStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
	now  func() time.Time
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS restaurant_cache (
	cache_key TEXT PRIMARY KEY,
	query TEXT NOT NULL,
	version INTEGER NOT NULL,
	cached_at TIMESTAMPTZ NOT NULL,
	payload JSONB NOT NULL
);
`

// NewPostgresStore connects to the database and ensures the cache table
// exists.
func NewPostgresStore(ctx context.Context, dsn string, ttl time.Duration) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres cache: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres cache: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init postgres cache schema: %w", err)
	}
	return &PostgresStore{pool: pool, ttl: ttl, now: time.Now}, nil
}

func (s *PostgresStore) Get(query string) (*openrice.Restaurant, bool) {
	row := s.pool.QueryRow(context.Background(),
		`SELECT version, cached_at, payload FROM restaurant_cache WHERE cache_key = $1`,
		Key(query),
	)

	var version int
	var cachedAt time.Time
	var payload []byte
	if err := row.Scan(&version, &cachedAt, &payload); err != nil {
		return nil, false
	}

	var r openrice.Restaurant
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, false
	}

	e := entry{Version: version, CachedAt: cachedAt, Data: &r}
	if !e.valid(s.ttl, s.now()) {
		return nil, false
	}
	return &r, true
}

func (s *PostgresStore) Set(query string, r *openrice.Restaurant) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	_, err = s.pool.Exec(context.Background(), `
	INSERT INTO restaurant_cache (cache_key, query, version, cached_at, payload)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (cache_key) DO UPDATE SET
		query = EXCLUDED.query,
		version = EXCLUDED.version,
		cached_at = EXCLUDED.cached_at,
		payload = EXCLUDED.payload`,
		Key(query), query, openrice.SchemaVersion, s.now(), payload,
	)
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear() error {
	if _, err := s.pool.Exec(context.Background(), `DELETE FROM restaurant_cache`); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
