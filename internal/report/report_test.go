package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/Khootz/FYP2026/internal/openrice"
	"github.com/Khootz/FYP2026/internal/pipeline"
)

func sampleItems() []pipeline.BatchItem {
	return []pipeline.BatchItem{
		{
			Query:      "Tai Cheong Bakery",
			CacheHit:   true,
			Restaurant: &openrice.Restaurant{Query: "Tai Cheong Bakery", Matched: true, Confidence: 1.0, Name: "Tai Cheong Bakery"},
		},
		{
			Query:      "Kau Kee",
			Restaurant: &openrice.Restaurant{Query: "Kau Kee", Matched: true, Confidence: 0.5, Name: "Kau Kee Beef Brisket"},
		},
		{
			Query:      "no such place",
			Restaurant: &openrice.Restaurant{Query: "no such place", Matched: false},
		},
		{
			Query: "broken",
			Err:   "context deadline exceeded",
		},
	}
}

func TestBuild_Aggregates(t *testing.T) {
	r := Build(sampleItems(), 3*time.Second)

	if r.Total != 4 || r.Matched != 2 || r.Unmatched != 1 || r.Failed != 1 {
		t.Errorf("counts = total %d matched %d unmatched %d failed %d",
			r.Total, r.Matched, r.Unmatched, r.Failed)
	}
	if r.CacheHits != 1 {
		t.Errorf("cache hits = %d", r.CacheHits)
	}
	if r.MeanConfidence != 0.75 {
		t.Errorf("mean confidence over matched = %v, want 0.75", r.MeanConfidence)
	}
}

func TestBuild_EmptyBatch(t *testing.T) {
	r := Build(nil, 0)
	if r.Total != 0 || r.MeanConfidence != 0 {
		t.Errorf("empty batch = %+v", r)
	}
}

func TestWriteJSON_RoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := Build(sampleItems(), time.Second).WriteJSON(&buf); err != nil {
		t.Fatalf("write json: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Matched != 2 || len(decoded.Items) != 4 {
		t.Errorf("decoded report = %+v", decoded)
	}
}

func TestWriteText_OneLinePerQuery(t *testing.T) {
	var buf bytes.Buffer
	if err := Build(sampleItems(), time.Second).WriteText(&buf); err != nil {
		t.Fatalf("write text: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"OK", "MISS", "FAIL", "Tai Cheong Bakery", "context deadline exceeded"} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q:\n%s", want, out)
		}
	}
}
