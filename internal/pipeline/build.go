package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Khootz/FYP2026/internal/cache"
	"github.com/Khootz/FYP2026/internal/config"
	"github.com/Khootz/FYP2026/internal/fetch"
	"github.com/Khootz/FYP2026/pkg/politeness"
	"github.com/Khootz/FYP2026/pkg/proxy"
)

// OpenStore picks the cache backend named by the configuration.
func OpenStore(ctx context.Context, cfg config.Config) (cache.Store, error) {
	switch cfg.CacheBackend {
	case "", "file":
		return cache.NewFileStore(cfg.CacheDir, cfg.CacheTTL)
	case "sqlite":
		return cache.NewSQLiteStore(cfg.CacheDSN, cfg.CacheTTL)
	case "postgres":
		return cache.NewPostgresStore(ctx, cfg.CacheDSN, cfg.CacheTTL)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
}

// newLoader starts one fetch session of the configured kind.
func newLoader(cfg config.Config) (fetch.Loader, error) {
	if cfg.StaticLoader {
		static := fetch.StaticConfig{Timeout: cfg.PageTimeout}
		if cfg.ProxyURL != "" {
			pool := proxy.NewPool(proxy.Config{})
			if err := pool.Add(cfg.ProxyURL); err != nil {
				return nil, err
			}
			static.Proxies = pool
		}
		return fetch.NewStaticLoader(static)
	}
	return fetch.NewSession(fetch.SessionConfig{
		Headless:     cfg.Headless,
		PageTimeout:  cfg.PageTimeout,
		SelectorWait: cfg.SelectorWait,
		FallbackWait: cfg.FallbackWait,
		ProxyURL:     cfg.ProxyURL,
	})
}

// Build assembles one resolver: a fresh fetch session over a shared cache
// store. The resolver owns the session; the caller keeps owning the store.
func Build(cfg config.Config, store cache.Store, logger *slog.Logger) (*Resolver, error) {
	loader, err := newLoader(cfg)
	if err != nil {
		return nil, fmt.Errorf("start loader: %w", err)
	}

	engine := fetch.NewEngine(loader, fetch.Config{
		Attempts:   cfg.LoadAttempts,
		RetryDelay: cfg.RetryDelay,
		Delayer:    politeness.NewDelayer(cfg.DelayMin, cfg.DelayMax),
		Logger:     logger,
	})
	opts := Options{Floor: cfg.ConfidenceFloor, MaxPhotos: cfg.MaxPhotos}
	return NewResolver(engine, store, opts, logger), nil
}

// BuildPool assembles n resolvers sharing one cache store. Started sessions
// are torn down if a later one fails.
func BuildPool(cfg config.Config, store cache.Store, n int, logger *slog.Logger) (*Pool, error) {
	if n <= 0 {
		n = 1
	}

	resolvers := make([]*Resolver, 0, n)
	for i := 0; i < n; i++ {
		r, err := Build(cfg, store, logger)
		if err != nil {
			for _, started := range resolvers {
				_ = started.Close()
			}
			return nil, err
		}
		resolvers = append(resolvers, r)
	}
	return NewPool(resolvers), nil
}
