package headers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPool_RoundRobin(t *testing.T) {
	pool := NewPool([]Profile{
		{UserAgent: "A"},
		{UserAgent: "B"},
	})

	got := []string{pool.Next().UserAgent, pool.Next().UserAgent, pool.Next().UserAgent}
	want := []string{"A", "B", "A"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rotation %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPool_DefaultsWhenEmpty(t *testing.T) {
	pool := NewPool(nil)
	p := pool.Next()
	if p.UserAgent == "" || p.AcceptLanguage == "" {
		t.Errorf("default profiles must carry UA and Accept-Language, got %+v", p)
	}
}

func TestPool_RandomStaysInPool(t *testing.T) {
	pool := NewPool([]Profile{{UserAgent: "only"}})
	for i := 0; i < 5; i++ {
		if pool.Random().UserAgent != "only" {
			t.Fatalf("random draw left the pool")
		}
	}
}

func TestProfile_Apply(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	p := Profile{UserAgent: "UA/1.0", Accept: "text/html", AcceptLanguage: "en-US"}
	p.Apply(req)

	if req.Header.Get("User-Agent") != "UA/1.0" {
		t.Errorf("User-Agent not applied")
	}
	if req.Header.Get("Accept-Language") != "en-US" {
		t.Errorf("Accept-Language not applied")
	}
}
