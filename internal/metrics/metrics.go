// Package metrics exposes Prometheus collectors for the resolution pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ResolveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "openrice_resolve_total",
			Help: "Resolutions performed, by outcome and cache disposition",
		},
		[]string{"outcome", "cache"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "openrice_fetch_duration_seconds",
			Help:    "Duration of page loads, by page kind",
			Buckets: []float64{0.5, 1, 2, 5, 10, 15, 30},
		},
		[]string{"page"},
	)

	FetchRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "openrice_fetch_retries_total",
			Help: "Page-load attempts beyond the first",
		},
	)

	ChallengesDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "openrice_challenges_detected_total",
			Help: "Anti-automation challenges detected, by vendor",
		},
		[]string{"source"},
	)
)

// RecordResolve counts one finished resolution. Outcome is one of matched,
// no_match, error; cache is hit or miss.
func RecordResolve(outcome string, cacheHit bool) {
	cache := "miss"
	if cacheHit {
		cache = "hit"
	}
	ResolveTotal.WithLabelValues(outcome, cache).Inc()
}

// RecordFetch observes a completed page load.
func RecordFetch(page string, d time.Duration) {
	FetchDuration.WithLabelValues(page).Observe(d.Seconds())
}
