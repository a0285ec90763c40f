package fetch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
)

// contentSelector marks a page whose dynamic rendering has produced real
// data: a search-result cell, a detail pane or an address block.
const contentSelector = "div.poi-list-cell, div.restaurant-detail, section.address-section"

// SessionConfig configures one headless browser session.
type SessionConfig struct {
	Headless bool
	// PageTimeout bounds a whole navigation.
	PageTimeout time.Duration
	// SelectorWait bounds the wait for contentSelector after navigation.
	SelectorWait time.Duration
	// FallbackWait is the fixed settle time when the selector never
	// appears; it absorbs challenge pages that inject content late.
	FallbackWait time.Duration
	UserAgent    string
	ProxyURL     string
}

// Session drives one browser tab across a sequence of navigations,
// amortizing startup cost over a resolution's loads. Not safe for
// concurrent Load calls.
type Session struct {
	cfg         SessionConfig
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

var _ Loader = (*Session)(nil)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// NewSession launches the browser and opens the tab. The caller owns the
// session and must Close it on every exit path, error paths included.
func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.PageTimeout <= 0 {
		cfg.PageTimeout = 15 * time.Second
	}
	if cfg.SelectorWait <= 0 {
		cfg.SelectorWait = 5 * time.Second
	}
	if cfg.FallbackWait <= 0 {
		cfg.FallbackWait = time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(cfg.UserAgent),
	)
	if cfg.ProxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(cfg.ProxyURL))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so a broken environment fails here, not on
	// the first query.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &Session{
		cfg:         cfg,
		tabCtx:      tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}, nil
}

// Load navigates the session's tab to url, waits for dynamic content to
// settle and returns the rendered document. The caller's context aborts the
// in-flight navigation when canceled.
func (s *Session) Load(ctx context.Context, url string) (*goquery.Document, error) {
	runCtx, cancel := context.WithTimeout(s.tabCtx, s.cfg.PageTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		s.waitForContent(),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}

// waitForContent waits up to SelectorWait for a content-bearing selector,
// falling back to a fixed sleep when the page's structure differs from the
// common case.
func (s *Session) waitForContent() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		waitCtx, cancel := context.WithTimeout(ctx, s.cfg.SelectorWait)
		defer cancel()

		if err := chromedp.WaitVisible(contentSelector, chromedp.ByQuery).Do(waitCtx); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return chromedp.Sleep(s.cfg.FallbackWait).Do(ctx)
	})
}

// Close tears down the tab and the browser process.
func (s *Session) Close() error {
	s.cancelTab()
	s.cancelAlloc()
	return nil
}
