package fingerprint

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestTransport_GoProfile(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	rt, err := Transport(ProfileGo, nil)
	if err != nil {
		t.Fatalf("Transport: %v", err)
	}

	client := &http.Client{Transport: rt}
	resp, err := client.Get(ts.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestTransport_UnknownProfile(t *testing.T) {
	if _, err := Transport(Profile("netscape"), nil); err == nil {
		t.Errorf("expected error for unknown profile")
	}
}

func TestTransport_ProxyFuncInstalled(t *testing.T) {
	proxyURL, _ := url.Parse("http://127.0.0.1:9999")
	called := false
	proxyFunc := func(*http.Request) (*url.URL, error) {
		called = true
		return proxyURL, nil
	}

	rt, err := Transport(ProfileChrome, proxyFunc)
	if err != nil {
		t.Fatalf("Transport: %v", err)
	}

	transport, ok := rt.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", rt)
	}
	req, _ := http.NewRequest(http.MethodGet, "https://example.com", nil)
	if _, err := transport.Proxy(req); err != nil {
		t.Fatalf("proxy func: %v", err)
	}
	if !called {
		t.Errorf("proxy func was not installed on the transport")
	}
}

func TestTransport_BrowserProfilesBuild(t *testing.T) {
	for _, p := range []Profile{ProfileChrome, ProfileFirefox, ProfileSafari, ProfileRandom} {
		if _, err := Transport(p, nil); err != nil {
			t.Errorf("profile %q: %v", p, err)
		}
	}
}
