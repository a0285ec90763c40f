package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Khootz/FYP2026/internal/config"
	"github.com/Khootz/FYP2026/internal/openrice"
	"github.com/Khootz/FYP2026/internal/pipeline"
)

type stubService struct {
	lastQuery  string
	lastDetail bool
	result     *openrice.Restaurant
	meta       pipeline.Meta
	err        error

	batchQueries []string
	batchItems   []pipeline.BatchItem
	batchErr     error
}

func (s *stubService) Resolve(_ context.Context, query string, withDetail bool) (*openrice.Restaurant, pipeline.Meta, error) {
	s.lastQuery = query
	s.lastDetail = withDetail
	return s.result, s.meta, s.err
}

func (s *stubService) ResolveBatch(_ context.Context, queries []string, _ bool) ([]pipeline.BatchItem, error) {
	s.batchQueries = queries
	return s.batchItems, s.batchErr
}

func newTestServer(svc Service) *httptest.Server {
	cfg := config.Default()
	cfg.MetricsOn = false
	return httptest.NewServer(New(svc, cfg, slog.New(slog.DiscardHandler)).Handler())
}

func decode(t *testing.T, resp *http.Response) response {
	t.Helper()
	defer resp.Body.Close()
	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return r
}

func TestHealth(t *testing.T) {
	ts := newTestServer(&stubService{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestSearch(t *testing.T) {
	svc := &stubService{
		result: &openrice.Restaurant{Query: "Tai Cheong", Matched: true, Confidence: 0.9, Name: "Tai Cheong Bakery"},
		meta:   pipeline.Meta{CacheHit: true},
	}
	ts := newTestServer(svc)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/restaurants/search/Tai%20Cheong")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body := decode(t, resp)

	if resp.StatusCode != http.StatusOK || !body.Success {
		t.Fatalf("status %d, body %+v", resp.StatusCode, body)
	}
	if svc.lastQuery != "Tai Cheong" {
		t.Errorf("query passed through = %q", svc.lastQuery)
	}
	if !svc.lastDetail {
		t.Error("details should default to true")
	}
	if !body.CacheHit {
		t.Error("cache_hit not surfaced")
	}
}

func TestSearch_DetailsFlag(t *testing.T) {
	svc := &stubService{result: &openrice.Restaurant{}}
	ts := newTestServer(svc)
	defer ts.Close()

	if _, err := http.Get(ts.URL + "/api/restaurants/search/x?details=false"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if svc.lastDetail {
		t.Error("details=false must disable enrichment")
	}

	resp, err := http.Get(ts.URL + "/api/restaurants/search/x?details=maybe")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("non-boolean details: status = %d", resp.StatusCode)
	}
}

func TestSearch_ServiceError(t *testing.T) {
	ts := newTestServer(&stubService{err: errors.New("session died")})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/restaurants/search/x")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body := decode(t, resp)
	if resp.StatusCode != http.StatusInternalServerError || body.Success {
		t.Errorf("status %d, body %+v", resp.StatusCode, body)
	}
	if strings.Contains(body.Error, "session died") {
		t.Error("internal error detail must not leak to clients")
	}
}

func TestBatch(t *testing.T) {
	svc := &stubService{batchItems: []pipeline.BatchItem{
		{Query: "a", Restaurant: &openrice.Restaurant{Query: "a", Matched: true}},
		{Query: "b", Restaurant: &openrice.Restaurant{Query: "b"}},
	}}
	ts := newTestServer(svc)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/restaurants/batch", "application/json",
		strings.NewReader(`{"queries":["a","b"]}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	body := decode(t, resp)

	if resp.StatusCode != http.StatusOK || !body.Success {
		t.Fatalf("status %d, body %+v", resp.StatusCode, body)
	}
	if len(svc.batchQueries) != 2 {
		t.Errorf("queries passed through = %v", svc.batchQueries)
	}
}

func TestBatch_Validation(t *testing.T) {
	ts := newTestServer(&stubService{})
	defer ts.Close()

	cases := []struct {
		name string
		body string
	}{
		{"empty queries", `{"queries":[]}`},
		{"malformed json", `{"queries":`},
		{"over the limit", `{"queries":["1","2","3","4","5","6","7","8","9","10","11"]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/restaurants/batch", "application/json",
				strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("post: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}
