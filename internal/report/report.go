// Package report summarizes a batch resolution session for operators:
// totals, hit rates and confidence distribution, writable as text or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Khootz/FYP2026/internal/pipeline"
)

// Report is the aggregate view of one batch run.
type Report struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Duration    time.Duration `json:"duration"`

	Total     int `json:"total"`
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
	Failed    int `json:"failed"`
	CacheHits int `json:"cache_hits"`

	// MeanConfidence averages over matched results only; an all-unmatched
	// run reports zero.
	MeanConfidence float64 `json:"mean_confidence"`

	Items []pipeline.BatchItem `json:"items"`
}

// Build computes the aggregates for a finished batch.
func Build(items []pipeline.BatchItem, duration time.Duration) Report {
	r := Report{
		GeneratedAt: time.Now().UTC(),
		Duration:    duration,
		Total:       len(items),
		Items:       items,
	}

	var confidenceSum float64
	for _, item := range items {
		if item.CacheHit {
			r.CacheHits++
		}
		switch {
		case item.Err != "":
			r.Failed++
		case item.Restaurant != nil && item.Restaurant.Matched:
			r.Matched++
			confidenceSum += item.Restaurant.Confidence
		default:
			r.Unmatched++
		}
	}
	if r.Matched > 0 {
		r.MeanConfidence = confidenceSum / float64(r.Matched)
	}
	return r
}

// WriteJSON emits the full report, items included.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText emits a terminal-friendly summary with one line per query.
func (r Report) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "Batch resolution report (%s)\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "  queries:    %d\n", r.Total)
	fmt.Fprintf(w, "  matched:    %d\n", r.Matched)
	fmt.Fprintf(w, "  unmatched:  %d\n", r.Unmatched)
	fmt.Fprintf(w, "  failed:     %d\n", r.Failed)
	fmt.Fprintf(w, "  cache hits: %d\n", r.CacheHits)
	if r.Matched > 0 {
		fmt.Fprintf(w, "  mean confidence: %.2f\n", r.MeanConfidence)
	}
	fmt.Fprintf(w, "  duration:   %s\n\n", r.Duration.Round(time.Millisecond))

	for _, item := range r.Items {
		switch {
		case item.Err != "":
			fmt.Fprintf(w, "  FAIL  %-40s %s\n", item.Query, item.Err)
		case item.Restaurant != nil && item.Restaurant.Matched:
			fmt.Fprintf(w, "  OK    %-40s %.2f  %s\n",
				item.Query, item.Restaurant.Confidence, item.Restaurant.Name)
		default:
			fmt.Fprintf(w, "  MISS  %-40s\n", item.Query)
		}
	}
	return nil
}
