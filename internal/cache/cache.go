// Package cache persists resolved restaurant records keyed by normalized
// query. Entries expire passively after a TTL; unreadable entries are treated
// as misses so a corrupt cache can never fail a lookup.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/Khootz/FYP2026/internal/openrice"
)

// Store is the contract every cache backend satisfies. Get fails open: any
// deserialization error, missing timestamp or expired entry reads as a miss.
// Set overwrites wholesale; there are no merge semantics. Clear removes all
// entries and is safe alongside in-flight operations on other keys.
type Store interface {
	Get(query string) (*openrice.Restaurant, bool)
	Set(query string, r *openrice.Restaurant) error
	Clear() error
	Close() error
}

// entry is the versioned on-disk envelope wrapping a Restaurant payload.
type entry struct {
	Version  int                  `json:"version"`
	CachedAt time.Time            `json:"cached_at"`
	Query    string               `json:"query"`
	Data     *openrice.Restaurant `json:"data"`
}

func (e *entry) valid(ttl time.Duration, now time.Time) bool {
	if e.Version != openrice.SchemaVersion || e.Data == nil {
		return false
	}
	if e.CachedAt.IsZero() {
		return false
	}
	return now.Sub(e.CachedAt) < ttl
}

// Key derives the storage identifier for a query: hex md5 of the lowercased,
// trimmed text. Hashing decouples storage naming from raw query content, so
// arbitrary characters and long names are handled uniformly.
func Key(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
