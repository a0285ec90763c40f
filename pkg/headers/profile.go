// Package headers provides realistic browser request-header profiles so
// outbound requests don't trivially identify themselves as automation.
package headers

import (
	"crypto/rand"
	"math/big"
	"net/http"
	"sync/atomic"
)

// Profile is a coherent set of headers mimicking one real browser. UA and
// Accept-Language travel together; mixing them across profiles is itself a
// fingerprinting signal.
type Profile struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
}

const defaultAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"

// DefaultProfiles covers current desktop Chrome, Firefox and Safari builds.
var DefaultProfiles = []Profile{
	{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		Accept:         defaultAccept,
		AcceptLanguage: "en-US,en;q=0.9",
	},
	{
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		Accept:         defaultAccept,
		AcceptLanguage: "en-US,en;q=0.9",
	},
	{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
		Accept:         defaultAccept,
		AcceptLanguage: "en-US,en;q=0.5",
	},
	{
		UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
		Accept:         defaultAccept,
		AcceptLanguage: "en-GB,en;q=0.9",
	},
}

// Pool rotates through a set of Profiles. Safe for concurrent use.
type Pool struct {
	profiles []Profile
	counter  atomic.Uint64
}

// NewPool copies the given profiles, falling back to DefaultProfiles when
// the slice is empty.
func NewPool(profiles []Profile) *Pool {
	if len(profiles) == 0 {
		profiles = DefaultProfiles
	}
	copied := make([]Profile, len(profiles))
	copy(copied, profiles)
	return &Pool{profiles: copied}
}

// Next returns profiles in round-robin order.
func (p *Pool) Next() Profile {
	idx := p.counter.Add(1) - 1
	return p.profiles[idx%uint64(len(p.profiles))]
}

// Random returns a uniformly random profile using crypto/rand, falling back
// to round-robin if the randomness source fails.
func (p *Pool) Random() Profile {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(p.profiles))))
	if err != nil {
		return p.Next()
	}
	return p.profiles[n.Int64()]
}

// Apply sets the profile's headers on the request.
func (pr Profile) Apply(req *http.Request) {
	req.Header.Set("User-Agent", pr.UserAgent)
	req.Header.Set("Accept", pr.Accept)
	req.Header.Set("Accept-Language", pr.AcceptLanguage)
}
