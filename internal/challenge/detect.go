// Package challenge recognizes anti-automation interstitials in fetched
// pages. The fetch engine uses it to tell a genuinely empty page apart from a
// bot-management block, and metrics count what was detected.
package challenge

import (
	"bytes"
	"net/http"
)

// Detector inspects a page and reports whether a protection vendor
// challenged or blocked the load. Browser loads carry no status code and
// pass zero; detectors must handle that.
type Detector func(statusCode int, body []byte) (detected bool, source string)

// Signal is the outcome of running the detectors.
type Signal struct {
	Detected bool
	Source   string
}

// DefaultDetectors returns the standard detector set.
func DefaultDetectors() []Detector {
	return []Detector{
		detectCloudflare,
		detectDataDome,
		detectPerimeterX,
		detectGenericInterstitial,
	}
}

// Analyze runs the page through the detectors, first hit wins.
func Analyze(statusCode int, body []byte, detectors []Detector) Signal {
	for _, d := range detectors {
		if detected, source := d(statusCode, body); detected {
			return Signal{Detected: true, Source: source}
		}
	}
	return Signal{}
}

// blockedStatus reports whether the status code is one a challenge page is
// typically served under. Status zero means a browser load, where only body
// signatures are available.
func blockedStatus(code int) bool {
	return code == 0 || code == http.StatusForbidden || code == http.StatusServiceUnavailable
}

func detectCloudflare(code int, body []byte) (bool, string) {
	if !blockedStatus(code) {
		return false, ""
	}
	for _, sig := range [][]byte{
		[]byte("cf-browser-verification"),
		[]byte("cf-turnstile"),
		[]byte("Attention Required! | Cloudflare"),
	} {
		if bytes.Contains(body, sig) {
			return true, "Cloudflare"
		}
	}
	return false, ""
}

func detectDataDome(code int, body []byte) (bool, string) {
	if !blockedStatus(code) {
		return false, ""
	}
	if bytes.Contains(body, []byte("geo.captcha-delivery.com")) ||
		bytes.Contains(body, []byte("datadome")) {
		return true, "DataDome"
	}
	return false, ""
}

func detectPerimeterX(code int, body []byte) (bool, string) {
	if !blockedStatus(code) {
		return false, ""
	}
	if bytes.Contains(body, []byte("client.perimeterx.net")) ||
		bytes.Contains(body, []byte("px-captcha")) {
		return true, "PerimeterX"
	}
	return false, ""
}

// detectGenericInterstitial catches vendor-neutral "prove you are human"
// pages rendered in place of content.
func detectGenericInterstitial(code int, body []byte) (bool, string) {
	if !blockedStatus(code) {
		return false, ""
	}
	if bytes.Contains(body, []byte("verify you are a human")) ||
		bytes.Contains(body, []byte("Checking your browser")) {
		return true, "Generic"
	}
	return false, ""
}
