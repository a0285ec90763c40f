package challenge

import (
	"net/http"
	"testing"
)

func TestAnalyze_Cloudflare(t *testing.T) {
	body := []byte(`<html><head><title>Attention Required! | Cloudflare</title></head></html>`)
	sig := Analyze(http.StatusForbidden, body, DefaultDetectors())
	if !sig.Detected || sig.Source != "Cloudflare" {
		t.Errorf("expected Cloudflare detection, got %+v", sig)
	}
}

func TestAnalyze_BrowserLoadNoStatus(t *testing.T) {
	// Browser loads have no status code; body signatures must still fire.
	body := []byte(`<script src="https://geo.captcha-delivery.com/captcha.js"></script>`)
	sig := Analyze(0, body, DefaultDetectors())
	if !sig.Detected || sig.Source != "DataDome" {
		t.Errorf("expected DataDome detection, got %+v", sig)
	}
}

func TestAnalyze_CleanPageWith200(t *testing.T) {
	body := []byte(`<div class="poi-list-cell"><div class="poi-name">Tai Cheong</div></div>`)
	if sig := Analyze(http.StatusOK, body, DefaultDetectors()); sig.Detected {
		t.Errorf("clean page flagged: %+v", sig)
	}
}

func TestAnalyze_SignatureIgnoredOnOKStatus(t *testing.T) {
	// A 200 page mentioning a vendor (e.g. in an article) is not a block.
	body := []byte(`<p>how datadome works</p>`)
	if sig := Analyze(http.StatusOK, body, DefaultDetectors()); sig.Detected {
		t.Errorf("vendor mention on a 200 page flagged: %+v", sig)
	}
}

func TestAnalyze_GenericInterstitial(t *testing.T) {
	body := []byte(`<h1>Checking your browser before accessing...</h1>`)
	sig := Analyze(0, body, DefaultDetectors())
	if !sig.Detected || sig.Source != "Generic" {
		t.Errorf("expected generic detection, got %+v", sig)
	}
}
