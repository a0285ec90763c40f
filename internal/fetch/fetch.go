// Package fetch loads pages from the review site and hands back parsed
// documents. A Loader does one navigation; the Engine wraps a Loader with
// the retry budget, politeness delays and challenge accounting.
//
// A Loader drives a single reusable session and is NOT safe for concurrent
// Load calls; callers serialize, one in-flight resolution per session.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/Khootz/FYP2026/internal/challenge"
	"github.com/Khootz/FYP2026/internal/metrics"
	"github.com/Khootz/FYP2026/pkg/politeness"
)

// Loader navigates to a URL and returns the document once dynamic content
// has settled. Close releases the underlying session and must run on every
// exit path.
type Loader interface {
	Load(ctx context.Context, url string) (*goquery.Document, error)
	Close() error
}

// Config tunes the Engine around a Loader.
type Config struct {
	// Attempts is the total load budget per URL (first try included).
	Attempts int
	// RetryDelay is the fixed pause between attempts.
	RetryDelay time.Duration
	// Delayer spaces out independent loads within one resolution. Nil or
	// zero-window skips the pause (tests rely on this).
	Delayer *politeness.Delayer
	// Detectors identify anti-automation interstitials. Detection is
	// logged and counted but does not fail the load; the wait heuristic
	// inside the Loader usually already absorbed the challenge.
	Detectors []challenge.Detector
	Logger    *slog.Logger
}

// Engine owns the retry policy for one session's loads. It never decides to
// give up on a whole resolution; that call belongs to the orchestrator.
type Engine struct {
	loader Loader
	cfg    Config
}

// NewEngine wraps loader with retry and delay policy.
func NewEngine(loader Loader, cfg Config) *Engine {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Detectors == nil {
		cfg.Detectors = challenge.DefaultDetectors()
	}
	return &Engine{loader: loader, cfg: cfg}
}

// Load fetches url, retrying transport and timeout failures within the
// budget. page labels the load kind (search, listing, photos) for metrics.
func (e *Engine) Load(ctx context.Context, page, url string) (*goquery.Document, error) {
	var lastErr error

	for attempt := 1; attempt <= e.cfg.Attempts; attempt++ {
		start := time.Now()
		doc, err := e.loader.Load(ctx, url)
		metrics.RecordFetch(page, time.Since(start))

		if err == nil {
			e.inspect(page, url, doc)
			e.cfg.Logger.Debug("page loaded", "page", page, "url", url, "attempt", attempt)
			return doc, nil
		}

		lastErr = err
		e.cfg.Logger.Warn("page load failed",
			"page", page, "url", url, "attempt", attempt, "of", e.cfg.Attempts, "err", err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt < e.cfg.Attempts {
			metrics.FetchRetries.Inc()
			if err := sleep(ctx, e.cfg.RetryDelay); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("load %s after %d attempts: %w", url, e.cfg.Attempts, lastErr)
}

// Delay applies the politeness pause between independent loads of one
// resolution.
func (e *Engine) Delay(ctx context.Context) error {
	return e.cfg.Delayer.Wait(ctx)
}

// Close releases the underlying loader session.
func (e *Engine) Close() error {
	return e.loader.Close()
}

func (e *Engine) inspect(page, url string, doc *goquery.Document) {
	html, err := doc.Html()
	if err != nil {
		return
	}
	if sig := challenge.Analyze(0, []byte(html), e.cfg.Detectors); sig.Detected {
		metrics.ChallengesDetected.WithLabelValues(sig.Source).Inc()
		e.cfg.Logger.Warn("challenge page detected", "page", page, "url", url, "source", sig.Source)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
