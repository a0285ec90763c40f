// Package proxy maintains a rotating pool of outbound proxies with failure
// tracking, so a dead proxy is benched instead of burning retry budget.
package proxy

import (
	"fmt"
	"net/url"
	"sync"
	"time"
)

// Config tunes failure handling for the pool.
type Config struct {
	// MaxFailures benches a proxy after this many consecutive failures.
	MaxFailures int
	// Cooldown is how long a benched proxy sits out before rotation may
	// pick it again.
	Cooldown time.Duration
}

type member struct {
	url       *url.URL
	failures  int
	benchedAt time.Time
}

// Pool rotates proxies round-robin, skipping benched members. Safe for
// concurrent use.
type Pool struct {
	cfg Config

	mu      sync.Mutex
	members []*member
	idx     int
}

// NewPool creates an empty pool.
func NewPool(cfg Config) *Pool {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}
	return &Pool{cfg: cfg}
}

// Add registers a proxy by URL.
func (p *Pool) Add(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse proxy url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("proxy url %q missing scheme or host", rawURL)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.members = append(p.members, &member{url: u})
	return nil
}

// Next returns the next healthy proxy, or nil when none is available
// (callers then connect directly).
func (p *Pool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.members) == 0 {
		return nil
	}

	now := time.Now()
	for i := 0; i < len(p.members); i++ {
		m := p.members[p.idx%len(p.members)]
		p.idx++

		if m.failures >= p.cfg.MaxFailures {
			if now.Sub(m.benchedAt) < p.cfg.Cooldown {
				continue
			}
			// Cooldown over, give it another chance.
			m.failures = 0
		}
		return m.url
	}
	return nil
}

// MarkFailure records a failed request through the proxy.
func (p *Pool) MarkFailure(u *url.URL) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	m := p.find(u)
	if m == nil {
		return fmt.Errorf("proxy %q not in pool", u)
	}
	m.failures++
	if m.failures >= p.cfg.MaxFailures {
		m.benchedAt = time.Now()
	}
	return nil
}

// MarkSuccess resets the failure count for the proxy.
func (p *Pool) MarkSuccess(u *url.URL) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	m := p.find(u)
	if m == nil {
		return fmt.Errorf("proxy %q not in pool", u)
	}
	m.failures = 0
	return nil
}

// Len reports the number of registered proxies, healthy or not.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.members)
}

func (p *Pool) find(u *url.URL) *member {
	for _, m := range p.members {
		if m.url.String() == u.String() {
			return m
		}
	}
	return nil
}
