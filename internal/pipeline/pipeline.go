// Package pipeline sequences a resolution: cache lookup, search fetch,
// parse, match, optional detail enrichment, cache write. It is the single
// seam where internal failures become domain outcomes; callers always get a
// well-formed record, never a raw transport error.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Khootz/FYP2026/internal/cache"
	"github.com/Khootz/FYP2026/internal/detail"
	"github.com/Khootz/FYP2026/internal/fetch"
	"github.com/Khootz/FYP2026/internal/listing"
	"github.com/Khootz/FYP2026/internal/match"
	"github.com/Khootz/FYP2026/internal/metrics"
	"github.com/Khootz/FYP2026/internal/openrice"
)

// Meta describes how a resolution was satisfied.
type Meta struct {
	ID       string
	CacheHit bool
	Elapsed  time.Duration
}

// Options tunes a resolver. Zero values fall back to the package defaults.
type Options struct {
	// Floor is the minimum confidence a candidate must reach to match.
	Floor float64
	// MaxPhotos caps the gallery images taken during enrichment.
	MaxPhotos int
}

// Resolver owns one fetch session and runs one query at a time. All loads
// within a resolution are strictly sequential; parallelism happens across
// resolvers (see Pool), never inside one.
type Resolver struct {
	engine    *fetch.Engine
	store     cache.Store
	floor     float64
	maxPhotos int
	logger    *slog.Logger
}

// NewResolver wires an engine and a cache store into a resolver.
func NewResolver(engine *fetch.Engine, store cache.Store, opts Options, logger *slog.Logger) *Resolver {
	if opts.Floor <= 0 {
		opts.Floor = match.DefaultFloor
	}
	if opts.MaxPhotos <= 0 {
		opts.MaxPhotos = detail.DefaultMaxPhotos
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		engine:    engine,
		store:     store,
		floor:     opts.Floor,
		maxPhotos: opts.MaxPhotos,
		logger:    logger,
	}
}

// Close releases the resolver's fetch session.
func (r *Resolver) Close() error {
	return r.engine.Close()
}

// Resolve maps a free-text restaurant name to a canonical listing. A
// non-nil error is returned only for caller cancellation; every pipeline
// failure degrades to an unmatched or partial record instead.
func (r *Resolver) Resolve(ctx context.Context, query string, withDetail bool) (*openrice.Restaurant, Meta, error) {
	start := time.Now()
	meta := Meta{ID: uuid.New().String()}
	log := r.logger.With("resolution", meta.ID, "query", query)

	if cached, ok := r.store.Get(query); ok {
		meta.CacheHit = true
		meta.Elapsed = time.Since(start)
		log.Info("cache hit", "matched", cached.Matched)
		metrics.RecordResolve(outcome(cached), true)
		return cached, meta, nil
	}

	result, err := r.resolve(ctx, log, query, withDetail)
	if err != nil {
		return nil, meta, err
	}
	meta.Elapsed = time.Since(start)
	metrics.RecordResolve(outcome(result), false)
	return result, meta, nil
}

func (r *Resolver) resolve(ctx context.Context, log *slog.Logger, query string, withDetail bool) (*openrice.Restaurant, error) {
	if err := r.engine.Delay(ctx); err != nil {
		return nil, err
	}

	doc, err := r.engine.Load(ctx, "search", openrice.SearchURL(query))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Terminal for this call, but a transport failure says nothing
		// about the query itself, so it is not cached.
		log.Warn("search fetch failed", "err", err)
		return unmatched(query, 0), nil
	}

	candidates := listing.Parse(doc)
	if len(candidates) == 0 {
		log.Info("no candidates found")
		return r.finish(log, unmatched(query, 0)), nil
	}

	best, ok := match.Resolve(query, candidates, r.floor)
	if !ok {
		log.Info("no candidate cleared the confidence floor",
			"best", best.Confidence, "candidates", len(candidates))
		return r.finish(log, unmatched(query, best.Confidence)), nil
	}

	log.Info("matched", "name", best.Candidate.Name, "confidence", best.Confidence)
	result := assemble(query, best)

	if withDetail {
		r.enrich(ctx, log, result)
	}

	return r.finish(log, result), nil
}

// enrich loads the listing page for review excerpts and metrics, then the
// photo gallery. A confirmed identity match is still valuable without
// enrichment, so every failure here degrades instead of reverting the match.
func (r *Resolver) enrich(ctx context.Context, log *slog.Logger, result *openrice.Restaurant) {
	if err := r.engine.Delay(ctx); err != nil {
		return
	}

	doc, err := r.engine.Load(ctx, "listing", result.URL)
	if err != nil {
		log.Warn("detail fetch failed, returning identity-only result", "err", err)
		return
	}

	result.ReviewTexts = detail.ExtractReviews(doc)

	summary := detail.ExtractSummary(doc)
	if summary.Rating != nil || summary.ReviewCount != nil {
		if result.Reviews == nil {
			result.Reviews = &openrice.Review{}
		}
		result.Reviews.Rating = summary.Rating
		result.Reviews.ReviewCount = summary.ReviewCount
	}

	result.Images = detail.ExtractPhotos(ctx, r.engine, result.URL, r.maxPhotos, log)
}

// finish writes the record to the cache, best-effort: a write failure is
// logged and never changes the returned result.
func (r *Resolver) finish(log *slog.Logger, result *openrice.Restaurant) *openrice.Restaurant {
	if err := r.store.Set(result.Query, result); err != nil {
		log.Warn("cache write failed", "err", err)
	}
	return result
}

func assemble(query string, best match.Result) *openrice.Restaurant {
	c := best.Candidate
	result := &openrice.Restaurant{
		Query:      query,
		Matched:    true,
		Confidence: best.Confidence,
		Name:       c.Name,
		ID:         c.ID,
		URL:        c.URL,
		District:   c.District,
		Cuisines:   c.Cuisines,
		PriceRange: c.PriceRange,
		MainImage:  c.Thumbnail,
		ScrapedAt:  time.Now().UTC(),
	}
	if c.SmileCount != nil {
		result.Reviews = &openrice.Review{SmileCount: c.SmileCount}
	}
	return result
}

// unmatched builds the terminal no-match record: no listing fields, just the
// best confidence seen.
func unmatched(query string, confidence float64) *openrice.Restaurant {
	return &openrice.Restaurant{
		Query:      query,
		Matched:    false,
		Confidence: confidence,
		ScrapedAt:  time.Now().UTC(),
	}
}

func outcome(r *openrice.Restaurant) string {
	if r.Matched {
		return "matched"
	}
	return "no_match"
}
