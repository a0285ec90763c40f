package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Khootz/FYP2026/internal/fingerprint"
	"github.com/Khootz/FYP2026/pkg/headers"
)

func newStaticForTest(t *testing.T) *StaticLoader {
	t.Helper()
	l, err := NewStaticLoader(StaticConfig{
		Timeout:     5 * time.Second,
		Fingerprint: fingerprint.ProfileGo,
		Headers:     headers.NewPool([]headers.Profile{{UserAgent: "TestBrowser/1.0", Accept: "text/html", AcceptLanguage: "en-US"}}),
	})
	if err != nil {
		t.Fatalf("NewStaticLoader: %v", err)
	}
	return l
}

func TestStaticLoader_ParsesDocument(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "TestBrowser/1.0" {
			t.Errorf("header profile not applied, UA=%q", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("Accept-Language") == "" {
			t.Errorf("expected Accept-Language header")
		}
		_, _ = w.Write([]byte(`<div class="poi-name">Tai Cheong Bakery</div>`))
	}))
	defer ts.Close()

	doc, err := newStaticForTest(t).Load(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := doc.Find("div.poi-name").Text(); got != "Tai Cheong Bakery" {
		t.Errorf("parsed %q", got)
	}
}

func TestStaticLoader_ErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	if _, err := newStaticForTest(t).Load(context.Background(), ts.URL); err == nil {
		t.Errorf("expected error for 404 response")
	}
}

func TestStaticLoader_ChallengeIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<div class="cf-turnstile"></div>`))
	}))
	defer ts.Close()

	_, err := newStaticForTest(t).Load(context.Background(), ts.URL)
	if err == nil {
		t.Fatalf("expected challenge error")
	}
}

func TestStaticLoader_ContextCancellation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := newStaticForTest(t).Load(ctx, ts.URL); err == nil {
		t.Errorf("expected cancellation error")
	}
}
