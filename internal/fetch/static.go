package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/Khootz/FYP2026/internal/challenge"
	"github.com/Khootz/FYP2026/internal/fingerprint"
	"github.com/Khootz/FYP2026/pkg/headers"
	"github.com/Khootz/FYP2026/pkg/httpclient"
	"github.com/Khootz/FYP2026/pkg/proxy"
)

type contextKey string

const proxyKey contextKey = "proxy_url"

// StaticConfig configures a plain-HTTP loader.
type StaticConfig struct {
	Timeout     time.Duration
	Fingerprint fingerprint.Profile
	Headers     *headers.Pool
	Proxies     *proxy.Pool
	Detectors   []challenge.Detector
}

// StaticLoader fetches pages over plain HTTP with a browser-like TLS
// fingerprint and header profile. It cannot execute scripts, so it only
// serves pages that render server-side; tests and static mirrors use it in
// place of a real browser.
type StaticLoader struct {
	cfg    StaticConfig
	client *httpclient.Client
}

var _ Loader = (*StaticLoader)(nil)

// NewStaticLoader builds the loader. One client is held for the loader's
// lifetime so cookies and connections persist across loads.
func NewStaticLoader(cfg StaticConfig) (*StaticLoader, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Headers == nil {
		cfg.Headers = headers.NewPool(nil)
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}
	if cfg.Detectors == nil {
		cfg.Detectors = challenge.DefaultDetectors()
	}

	// Per-request proxy rotation: the transport's proxy func reads the URL
	// the loader put into the request context.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if val := req.Context().Value(proxyKey); val != nil {
			if u, ok := val.(*url.URL); ok {
				return u, nil
			}
		}
		return nil, nil
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, proxyFunc)
	if err != nil {
		return nil, fmt.Errorf("setup transport: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: 5,
		UseCookieJar: true,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &StaticLoader{cfg: cfg, client: client}, nil
}

// Load fetches targetURL and parses the response body. A block or challenge
// response is returned as an error so the engine's retry budget applies.
func (l *StaticLoader) Load(ctx context.Context, targetURL string) (*goquery.Document, error) {
	var activeProxy *url.URL
	if l.cfg.Proxies != nil {
		if activeProxy = l.cfg.Proxies.Next(); activeProxy != nil {
			ctx = context.WithValue(ctx, proxyKey, activeProxy)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	l.cfg.Headers.Next().Apply(req)

	resp, err := l.client.Do(ctx, req)
	if err != nil {
		if activeProxy != nil {
			_ = l.cfg.Proxies.MarkFailure(activeProxy)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if activeProxy != nil {
		_ = l.cfg.Proxies.MarkSuccess(activeProxy)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if sig := challenge.Analyze(resp.StatusCode, body, l.cfg.Detectors); sig.Detected {
		return nil, fmt.Errorf("challenged by %s (status %d)", sig.Source, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d from %s", resp.StatusCode, targetURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", targetURL, err)
	}
	return doc, nil
}

func (l *StaticLoader) Close() error { return nil }
